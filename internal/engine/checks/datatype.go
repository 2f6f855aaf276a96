package checks

import (
	"classlint/internal/engine/bytecode"
	"classlint/internal/engine/model"
	"fmt"
	"log/slog"
)

// DataTypeCompatibility verifies that return instructions agree with the
// method descriptor and that writes to the class's own fields use the
// declared field descriptor. Both only fire on hand-made or corrupted
// bytecode.
type DataTypeCompatibility struct{}

func NewDataTypeCompatibility() *DataTypeCompatibility { return &DataTypeCompatibility{} }

func (d *DataTypeCompatibility) Name() string       { return "DataTypeCompatibility" }
func (d *DataTypeCompatibility) Category() Category { return Style }
func (d *DataTypeCompatibility) Description() string {
	return "Return instructions or field writes whose type disagrees with the declaration."
}

func (d *DataTypeCompatibility) Run(class *model.Class, _ *Context) []Finding {
	var findings []Finding
	for _, m := range class.Methods {
		if !m.HasBody() {
			continue
		}
		mt, err := m.Type()
		if err != nil {
			slog.Debug("skipping method with malformed descriptor",
				"check", d.Name(), "class", class.Name, "method", m.Name, "error", err)
			continue
		}
		returnReported := false
		fieldReported := make(map[string]bool)
		for i, in := range m.Instructions {
			if in.IsPseudo() {
				continue
			}
			if sort, ok := bytecode.ReturnSort(in.Op); ok {
				if !returnReported && !returnMatches(sort, mt.Return) {
					returnReported = true
					findings = append(findings, newFinding(d, methodLocation(class, m, m.LineAt(i)),
						fmt.Sprintf("Incompatible return type in method '%s'", m.Name)))
				}
				continue
			}
			if !bytecode.IsFieldWrite(in.Op) || in.Owner != class.Name || fieldReported[in.Name] {
				continue
			}
			f := class.Field(in.Name)
			if f == nil || f.Desc == in.Desc {
				continue
			}
			fieldReported[in.Name] = true
			findings = append(findings, newFinding(d, methodLocation(class, m, m.LineAt(i)),
				fmt.Sprintf("Incompatible type assigned to field '%s'", in.Name)))
		}
	}
	return findings
}

func returnMatches(op bytecode.Sort, declared bytecode.Type) bool {
	switch op {
	case bytecode.SortVoid:
		return declared.Sort == bytecode.SortVoid
	case bytecode.SortInt:
		return declared.IntLike()
	case bytecode.SortObject:
		return declared.IsReference()
	default:
		return declared.Sort == op
	}
}

package model

import (
	"classlint/internal/engine/bytecode"
	"fmt"
)

// Kind separates real instructions from the pseudo-instructions the loader
// interleaves into a method body.
type Kind uint8

const (
	KindInsn Kind = iota
	KindLabel
	KindLine
	KindFrame
)

// Label identifies a position in a method body. The loader uses the bytecode
// offset of the position it marks.
type Label int

// Instruction is one element of a method's instruction stream. Only the
// operands the analysis needs are kept.
type Instruction struct {
	Kind Kind
	Op   bytecode.Opcode

	// Var is the local-variable slot of a load, store, iinc or ret.
	Var int

	// Owner, Name and Desc describe the member of a field or method
	// instruction. For invokedynamic Owner is empty.
	Owner string
	Name  string
	Desc  string

	// Type is the class operand of new, anewarray, checkcast, instanceof and
	// multianewarray.
	Type string

	// Target is the jump destination of branch instructions and the default
	// destination of switches. Targets lists switch case destinations.
	Target  Label
	Targets []Label

	// Label is set on KindLabel pseudo-instructions and Line on KindLine ones.
	Label Label
	Line  int
}

func (in Instruction) IsPseudo() bool { return in.Kind != KindInsn }

// Category is the opcode category of a real instruction.
func (in Instruction) Category() bytecode.Category {
	if in.IsPseudo() {
		return bytecode.CategoryOther
	}
	return bytecode.Classify(in.Op)
}

// Cases is the number of case labels of a switch instruction, not counting
// the default branch.
func (in Instruction) Cases() int {
	return len(in.Targets)
}

func (in Instruction) String() string {
	switch in.Kind {
	case KindLabel:
		return fmt.Sprintf("L%d:", in.Label)
	case KindLine:
		return fmt.Sprintf("line %d", in.Line)
	case KindFrame:
		return "frame"
	}
	switch in.Category() {
	case bytecode.CategoryFieldAccess, bytecode.CategoryMethodCall:
		if in.Owner == "" {
			return fmt.Sprintf("%s %s%s", in.Op, in.Name, in.Desc)
		}
		return fmt.Sprintf("%s %s.%s%s", in.Op, in.Owner, in.Name, in.Desc)
	case bytecode.CategoryLoad, bytecode.CategoryStore, bytecode.CategoryIncrement:
		return fmt.Sprintf("%s %d", in.Op, in.Var)
	case bytecode.CategoryConditionalBranch, bytecode.CategoryJump:
		if in.Op == bytecode.OpRet {
			return fmt.Sprintf("%s %d", in.Op, in.Var)
		}
		return fmt.Sprintf("%s L%d", in.Op, in.Target)
	case bytecode.CategorySwitch:
		return fmt.Sprintf("%s cases=%d default=L%d", in.Op, in.Cases(), in.Target)
	}
	if in.Type != "" {
		return fmt.Sprintf("%s %s", in.Op, in.Type)
	}
	return in.Op.String()
}

// LocalVariable is one LocalVariableTable entry. Start and End bound the
// range where the variable is live.
type LocalVariable struct {
	Name  string
	Desc  string
	Slot  int
	Start Label
	End   Label
}

// TryCatch is one exception table entry. Type is empty for handlers that
// catch everything (finally blocks).
type TryCatch struct {
	Start   Label
	End     Label
	Handler Label
	Type    string
}

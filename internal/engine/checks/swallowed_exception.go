package checks

import (
	"classlint/internal/engine/bytecode"
	"classlint/internal/engine/model"
	"fmt"
)

// SwallowedException flags typed catch handlers that drop the exception and
// carry on without doing anything.
type SwallowedException struct{}

func NewSwallowedException() *SwallowedException { return &SwallowedException{} }

func (s *SwallowedException) Name() string       { return "SwallowedException" }
func (s *SwallowedException) Category() Category { return Style }
func (s *SwallowedException) Description() string {
	return "Catch blocks that discard the exception without handling it."
}

func (s *SwallowedException) Run(class *model.Class, _ *Context) []Finding {
	var findings []Finding
	for _, m := range class.Methods {
		if !m.HasBody() || len(m.TryCatches) == 0 {
			continue
		}
		seen := make(map[model.TryCatch]bool)
		for _, tc := range m.TryCatches {
			// Finally blocks catch everything and rethrow.
			if tc.Type == "" {
				continue
			}
			key := model.TryCatch{Handler: tc.Handler, Type: tc.Type}
			if seen[key] {
				continue
			}
			seen[key] = true
			handler := m.LabelIndex(tc.Handler)
			if handler < 0 {
				continue
			}
			exit, hasExit := tryExit(m, tc)
			if !emptyHandler(m, handler, exit, hasExit) {
				continue
			}
			findings = append(findings, newFinding(s, methodLocation(class, m, handlerLine(m, handler)),
				fmt.Sprintf("Caught exception type '%s' is swallowed without handling", simpleName(tc.Type))))
		}
	}
	return findings
}

// tryExit returns the label normal control flow continues at once the
// protected region completes. Compilers close the region with a goto placed
// at its exclusive end.
func tryExit(m *model.Method, tc model.TryCatch) (model.Label, bool) {
	end := m.LabelIndex(tc.End)
	if end < 0 {
		return 0, false
	}
	for _, in := range m.Instructions[end:] {
		if in.IsPseudo() {
			continue
		}
		if in.Op == bytecode.OpGoto {
			return in.Target, true
		}
		return 0, false
	}
	return 0, false
}

// emptyHandler skips the store or pop of the caught exception and reports
// whether the next step leaves the handler without doing any work. A handler
// that falls through to a return only pushes the returned value, so constant
// and local loads ahead of a return are not work unless they load the caught
// exception itself.
func emptyHandler(m *model.Method, start int, exit model.Label, hasExit bool) bool {
	skipped := false
	caught := -1
	pushed := false
	for i := start + 1; i < len(m.Instructions); i++ {
		in := m.Instructions[i]
		if in.Kind == model.KindLabel && hasExit && in.Label == exit {
			return true
		}
		if in.IsPseudo() {
			continue
		}
		if !skipped {
			skipped = true
			if in.Category() == bytecode.CategoryStore {
				caught = in.Var
				continue
			}
			if in.Op == bytecode.OpPop {
				continue
			}
		}
		switch in.Category() {
		case bytecode.CategoryJump:
			return !pushed && in.Op == bytecode.OpGoto
		case bytecode.CategoryReturn:
			return true
		case bytecode.CategoryLoad:
			if in.Var == caught {
				return false
			}
			pushed = true
			continue
		}
		if isConstant(in.Op) {
			pushed = true
			continue
		}
		return false
	}
	return true
}

func isConstant(op bytecode.Opcode) bool {
	return op >= bytecode.OpAconstNull && op <= bytecode.OpLdc2W
}

// handlerLine prefers the line marker that follows the handler label.
func handlerLine(m *model.Method, handler int) int {
	for i := handler; i < len(m.Instructions) && m.Instructions[i].IsPseudo(); i++ {
		if m.Instructions[i].Kind == model.KindLine {
			return m.Instructions[i].Line
		}
	}
	return m.LineAt(handler)
}

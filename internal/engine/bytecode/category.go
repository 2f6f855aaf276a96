package bytecode

// Category groups opcodes by the role they play in the detection algorithms.
// Opcodes outside the modeled groups classify as CategoryOther and simply never
// match a detection pattern.
type Category uint8

const (
	CategoryOther Category = iota
	CategoryFieldAccess
	CategoryMethodCall
	CategoryConditionalBranch
	CategorySwitch
	CategoryJump
	CategoryReturn
	CategoryThrow
	CategoryLoad
	CategoryStore
	CategoryIncrement
)

func (c Category) String() string {
	switch c {
	case CategoryFieldAccess:
		return "field-access"
	case CategoryMethodCall:
		return "method-call"
	case CategoryConditionalBranch:
		return "conditional-branch"
	case CategorySwitch:
		return "switch"
	case CategoryJump:
		return "jump"
	case CategoryReturn:
		return "return"
	case CategoryThrow:
		return "throw"
	case CategoryLoad:
		return "load"
	case CategoryStore:
		return "store"
	case CategoryIncrement:
		return "increment"
	default:
		return "other"
	}
}

// Classify maps an opcode to its category. Array element loads and stores are
// not local-variable accesses and stay in CategoryOther.
func Classify(op Opcode) Category {
	switch {
	case op >= OpGetstatic && op <= OpPutfield:
		return CategoryFieldAccess
	case op >= OpInvokevirtual && op <= OpInvokedynamic:
		return CategoryMethodCall
	case op >= OpIfeq && op <= OpIfAcmpne, op == OpIfnull, op == OpIfnonnull:
		return CategoryConditionalBranch
	case op == OpTableswitch, op == OpLookupswitch:
		return CategorySwitch
	case op == OpGoto, op == OpGotoW, op == OpJsr, op == OpJsrW, op == OpRet:
		return CategoryJump
	case op >= OpIreturn && op <= OpReturn:
		return CategoryReturn
	case op == OpAthrow:
		return CategoryThrow
	case op >= OpIload && op <= OpAload3:
		return CategoryLoad
	case op >= OpIstore && op <= OpAstore3:
		return CategoryStore
	case op == OpIinc:
		return CategoryIncrement
	default:
		return CategoryOther
	}
}

// IsFieldRead reports whether op reads a field (getfield/getstatic).
func IsFieldRead(op Opcode) bool {
	return op == OpGetfield || op == OpGetstatic
}

// IsFieldWrite reports whether op writes a field (putfield/putstatic).
func IsFieldWrite(op Opcode) bool {
	return op == OpPutfield || op == OpPutstatic
}

// ReturnSort is the descriptor sort a typed return instruction produces.
// OpReturn maps to SortVoid; non-return opcodes report ok=false.
func ReturnSort(op Opcode) (Sort, bool) {
	switch op {
	case OpIreturn:
		return SortInt, true
	case OpLreturn:
		return SortLong, true
	case OpFreturn:
		return SortFloat, true
	case OpDreturn:
		return SortDouble, true
	case OpAreturn:
		return SortObject, true
	case OpReturn:
		return SortVoid, true
	default:
		return SortVoid, false
	}
}

package bytecode

import "testing"

func TestClassify(t *testing.T) {
	cases := map[Opcode]Category{
		OpGetfield:        CategoryFieldAccess,
		OpPutstatic:       CategoryFieldAccess,
		OpInvokevirtual:   CategoryMethodCall,
		OpInvokedynamic:   CategoryMethodCall,
		OpIfeq:            CategoryConditionalBranch,
		OpIfAcmpne:        CategoryConditionalBranch,
		OpIfnull:          CategoryConditionalBranch,
		OpIfnonnull:       CategoryConditionalBranch,
		OpTableswitch:     CategorySwitch,
		OpLookupswitch:    CategorySwitch,
		OpGoto:            CategoryJump,
		OpAreturn:         CategoryReturn,
		OpReturn:          CategoryReturn,
		OpAthrow:          CategoryThrow,
		OpAload:           CategoryLoad,
		OpIload0:          CategoryLoad,
		OpAstore3:         CategoryStore,
		OpIinc:            CategoryIncrement,
		OpIaload:          CategoryOther,
		OpIastore:         CategoryOther,
		OpNop:             CategoryOther,
		OpInvokeinterface: CategoryMethodCall,
	}
	for op, want := range cases {
		if got := Classify(op); got != want {
			t.Errorf("Classify(%s) = %s, want %s", op, got, want)
		}
	}
}

func TestFieldReadWrite(t *testing.T) {
	if !IsFieldRead(OpGetstatic) || IsFieldRead(OpPutfield) {
		t.Error("IsFieldRead misclassifies")
	}
	if !IsFieldWrite(OpPutfield) || IsFieldWrite(OpGetfield) {
		t.Error("IsFieldWrite misclassifies")
	}
}

func TestReturnSort(t *testing.T) {
	if s, ok := ReturnSort(OpIreturn); !ok || s != SortInt {
		t.Errorf("ireturn -> %v %v", s, ok)
	}
	if s, ok := ReturnSort(OpReturn); !ok || s != SortVoid {
		t.Errorf("return -> %v %v", s, ok)
	}
	if _, ok := ReturnSort(OpGoto); ok {
		t.Error("goto is not a return")
	}
}

func TestOpcodeString(t *testing.T) {
	if OpInvokespecial.String() != "invokespecial" {
		t.Errorf("unexpected name %q", OpInvokespecial.String())
	}
	if !OpTableswitch.Valid() {
		t.Error("tableswitch should be valid")
	}
}

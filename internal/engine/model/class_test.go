package model

import (
	"classlint/internal/engine/bytecode"
	"testing"
)

func TestNames(t *testing.T) {
	c := &Class{Name: "com/acme/web/OrderController$Inner"}
	if c.Package() != "com/acme/web" {
		t.Errorf("unexpected package %q", c.Package())
	}
	if c.SimpleName() != "Inner" {
		t.Errorf("unexpected simple name %q", c.SimpleName())
	}
	if c.DisplayName() != "com.acme.web.OrderController$Inner" {
		t.Errorf("unexpected display name %q", c.DisplayName())
	}
	if PackageOf("Plain") != "" || SimpleNameOf("Plain") != "Plain" {
		t.Error("default package names mishandled")
	}
	if InternalName("a.b.C") != "a/b/C" {
		t.Error("InternalName mishandled")
	}
}

func TestClassKinds(t *testing.T) {
	iface := &Class{Access: AccPublic | AccInterface | AccAbstract}
	if iface.IsConcrete() || !iface.IsInterface() {
		t.Error("interface misclassified")
	}
	plain := &Class{Access: AccPublic, Super: ObjectClass}
	if !plain.IsConcrete() || plain.HasSuper() {
		t.Error("plain class misclassified")
	}
	sub := &Class{Super: "a/Base"}
	if !sub.HasSuper() {
		t.Error("subclass should report a super")
	}
}

func TestMethodLookupAndStreams(t *testing.T) {
	m := &Method{
		Name: "run",
		Desc: "(I)V",
		Instructions: []Instruction{
			{Kind: KindLabel, Label: 0},
			{Kind: KindLine, Line: 12},
			{Kind: KindInsn, Op: bytecode.OpIload, Var: 1},
			{Kind: KindLine, Line: 13},
			{Kind: KindInsn, Op: bytecode.OpPop},
			{Kind: KindLabel, Label: 4},
			{Kind: KindInsn, Op: bytecode.OpReturn},
		},
		Locals: []LocalVariable{{Name: "count", Desc: "I", Slot: 1}},
	}
	c := &Class{Name: "a/B", Methods: []*Method{m}}
	if c.Method("run", "(I)V") != m || c.Method("run", "()V") != nil {
		t.Fatal("method lookup must match name and descriptor")
	}
	if got := len(m.Meaningful()); got != 3 {
		t.Errorf("expected 3 meaningful instructions, got %d", got)
	}
	if m.FirstLine() != 12 || m.LineAt(4) != 13 {
		t.Errorf("unexpected lines %d %d", m.FirstLine(), m.LineAt(4))
	}
	if m.LabelIndex(4) != 5 || m.LabelIndex(9) != -1 {
		t.Error("LabelIndex mismatch")
	}
	if name, ok := m.LocalName(1); !ok || name != "count" {
		t.Errorf("unexpected local %q", name)
	}
	if m.Signature() != "run(I)V" {
		t.Errorf("unexpected signature %q", m.Signature())
	}
	if !m.HasBody() {
		t.Error("method with code should have a body")
	}
}

func TestAccessString(t *testing.T) {
	a := AccPublic | AccStatic | AccFinal
	if a.String() != "public static final" {
		t.Errorf("unexpected %q", a.String())
	}
}

func TestInstructionString(t *testing.T) {
	in := Instruction{Kind: KindInsn, Op: bytecode.OpInvokevirtual, Owner: "a/B", Name: "go", Desc: "()V"}
	if in.String() != "invokevirtual a/B.go()V" {
		t.Errorf("unexpected %q", in.String())
	}
	sw := Instruction{Kind: KindInsn, Op: bytecode.OpLookupswitch, Target: 9, Targets: []Label{3, 5}}
	if sw.Cases() != 2 || sw.String() != "lookupswitch cases=2 default=L9" {
		t.Errorf("unexpected %q", sw.String())
	}
}

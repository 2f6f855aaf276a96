package checks

import (
	"classlint/internal/engine/bytecode"
	"classlint/internal/engine/model"
	"classlint/internal/engine/model/modeltest"
	"strings"
	"testing"
)

func arithmeticBody(line int) []model.Instruction {
	return []model.Instruction{
		modeltest.Line(line),
		modeltest.Load(bytecode.OpIload, 1),
		modeltest.Load(bytecode.OpIload, 2),
		modeltest.Op(bytecode.OpIadd),
		modeltest.Store(bytecode.OpIstore, 3),
		modeltest.Load(bytecode.OpIload, 3),
		modeltest.Op(bytecode.OpIreturn),
	}
}

func TestSimilarity(t *testing.T) {
	a := []bytecode.Opcode{bytecode.OpIload, bytecode.OpIload, bytecode.OpIadd, bytecode.OpIreturn}
	b := []bytecode.Opcode{bytecode.OpAload, bytecode.OpGetfield, bytecode.OpAreturn}

	tests := []struct {
		name string
		x, y []bytecode.Opcode
		want float64
	}{
		{"identical", a, a, 1.0},
		{"disjoint", a, b, 0.0},
		{"empty", nil, a, 0.0},
		{"prefix", a, a[:2], 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Similarity(tt.x, tt.y); got != tt.want {
				t.Errorf("Similarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDuplicationFlagsIdenticalMethods(t *testing.T) {
	class := modeltest.Class("com/acme/Calc").
		Method(modeltest.Method("add", "(II)I", arithmeticBody(10)...)).
		Method(modeltest.Method("sum", "(II)I", arithmeticBody(20)...)).
		Build()

	findings := Run(NewDuplication(DuplicationOptions{}), class, nil)
	requireCount(t, findings, 1)
	f := findings[0]
	if f.Message != "Methods 'add' and 'sum' have high code duplication (100% similar)" {
		t.Errorf("unexpected message %q", f.Message)
	}
	if f.Location != "com.acme.Calc.add:10" {
		t.Errorf("unexpected location %q", f.Location)
	}
	if f.Category != Principle || f.CheckName != "Duplication" {
		t.Errorf("unexpected identity %+v", f)
	}
}

func TestDuplicationIgnoresDisjointAndShortMethods(t *testing.T) {
	other := []model.Instruction{
		modeltest.Load(bytecode.OpAload, 0),
		modeltest.GetField("com/acme/Calc", "name", "Ljava/lang/String;"),
		modeltest.Op(bytecode.OpDup),
		modeltest.Op(bytecode.OpPop),
		modeltest.Op(bytecode.OpAreturn),
	}
	short := []model.Instruction{
		modeltest.Load(bytecode.OpIload, 1),
		modeltest.Op(bytecode.OpIreturn),
	}
	class := modeltest.Class("com/acme/Calc").
		Method(modeltest.Method("add", "(II)I", arithmeticBody(1)...)).
		Method(modeltest.Method("name", "()Ljava/lang/String;", other...)).
		Method(modeltest.Method("id", "(I)I", short...)).
		Method(modeltest.Method("id2", "(I)I", short...)).
		Build()

	requireCount(t, Run(NewDuplication(DuplicationOptions{}), class, nil), 0)
}

func TestDuplicationSkipsConstructors(t *testing.T) {
	class := modeltest.Class("com/acme/Calc").
		Method(modeltest.Method(model.ConstructorName, "(II)V", arithmeticBody(1)...)).
		Method(modeltest.Method("sum", "(II)I", arithmeticBody(2)...)).
		Build()

	requireCount(t, Run(NewDuplication(DuplicationOptions{}), class, nil), 0)
}

func TestDuplicationReportsEachPairOnceInOrder(t *testing.T) {
	class := modeltest.Class("com/acme/Calc").
		Method(modeltest.Method("a", "(II)I", arithmeticBody(1)...)).
		Method(modeltest.Method("b", "(II)I", arithmeticBody(2)...)).
		Method(modeltest.Method("c", "(II)I", arithmeticBody(3)...)).
		Build()

	findings := Run(NewDuplication(DuplicationOptions{}), class, nil)
	requireCount(t, findings, 3)
	want := []string{"'a' and 'b'", "'a' and 'c'", "'b' and 'c'"}
	for i, w := range want {
		if !strings.Contains(findings[i].Message, w) {
			t.Errorf("finding %d = %q, want pair %s", i, findings[i].Message, w)
		}
	}
}

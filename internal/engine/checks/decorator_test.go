package checks

import (
	"classlint/internal/engine/bytecode"
	"classlint/internal/engine/model"
	"classlint/internal/engine/model/modeltest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	coffee     = "com/acme/Coffee"
	coffeeDesc = "Lcom/acme/Coffee;"
	milk       = "com/acme/Milk"
)

func storingConstructor() *model.Method {
	return modeltest.Constructor(milk, model.ObjectClass, "(Lcom/acme/Coffee;)V",
		modeltest.Load(bytecode.OpAload, 0),
		modeltest.Load(bytecode.OpAload, 1),
		modeltest.PutField(milk, "inner", coffeeDesc),
		modeltest.Op(bytecode.OpReturn),
	)
}

func delegatingCost() *model.Method {
	return modeltest.Method("cost", "()D",
		modeltest.Load(bytecode.OpAload, 0),
		modeltest.GetField(milk, "inner", coffeeDesc),
		modeltest.Line(14),
		modeltest.Invoke(bytecode.OpInvokeinterface, coffee, "cost", "()D"),
		modeltest.Op(bytecode.OpDconst1),
		modeltest.Op(bytecode.OpDadd),
		modeltest.Op(bytecode.OpDreturn),
	)
}

func decorator(methods ...*model.Method) *model.Class {
	b := modeltest.Class(milk).
		Implements(coffee).
		Field("inner", coffeeDesc, model.AccPrivate|model.AccFinal)
	for _, m := range methods {
		b.Method(m)
	}
	return b.Build()
}

func TestDecoratorDelegating(t *testing.T) {
	class := decorator(storingConstructor(), delegatingCost())
	assert.Empty(t, Run(NewDecoratorQuality(), class, nil))
}

func TestDecoratorNotDelegated(t *testing.T) {
	cost := modeltest.Method("cost", "()D",
		modeltest.Op(bytecode.OpDconst1),
		modeltest.Op(bytecode.OpDreturn),
	)
	inner := modeltest.Method("inner", "()Lcom/acme/Coffee;",
		modeltest.Load(bytecode.OpAload, 0),
		modeltest.GetField(milk, "inner", coffeeDesc),
		modeltest.Op(bytecode.OpAreturn),
	)
	class := decorator(storingConstructor(), cost, inner)

	findings := Run(NewDecoratorQuality(), class, nil)
	require.Len(t, findings, 1)
	assert.Equal(t, "Decorator field 'inner' in class Milk is not properly delegated to", findings[0].Message)
	assert.Equal(t, Pattern, findings[0].Category)
}

func TestDecoratorStoreResetsLookahead(t *testing.T) {
	cost := modeltest.Method("cost", "()D",
		modeltest.Load(bytecode.OpAload, 0),
		modeltest.GetField(milk, "inner", coffeeDesc),
		modeltest.Store(bytecode.OpAstore, 1),
		modeltest.Load(bytecode.OpAload, 1),
		modeltest.Invoke(bytecode.OpInvokeinterface, coffee, "cost", "()D"),
		modeltest.Op(bytecode.OpDreturn),
	)
	class := decorator(storingConstructor(), cost)

	findings := Run(NewDecoratorQuality(), class, nil)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Message, "not properly delegated")
}

func TestDecoratorOtherFieldReadResetsLookahead(t *testing.T) {
	cost := modeltest.Method("cost", "()D",
		modeltest.Load(bytecode.OpAload, 0),
		modeltest.GetField(milk, "inner", coffeeDesc),
		modeltest.GetStatic("java/lang/System", "out", "Ljava/io/PrintStream;"),
		modeltest.Invoke(bytecode.OpInvokevirtual, "java/io/PrintStream", "println", "(Ljava/lang/Object;)V"),
		modeltest.Op(bytecode.OpDconst0),
		modeltest.Op(bytecode.OpDreturn),
	)
	class := decorator(storingConstructor(), cost)

	require.Len(t, Run(NewDecoratorQuality(), class, nil), 1)
}

func TestDecoratorUnusedField(t *testing.T) {
	ctor := modeltest.Constructor(milk, model.ObjectClass, "()V", modeltest.Op(bytecode.OpReturn))
	class := decorator(ctor)

	findings := Run(NewDecoratorQuality(), class, nil)
	require.Len(t, findings, 1)
	assert.Equal(t, "Decorator field 'inner' in class Milk is never used", findings[0].Message)
}

func TestDecoratorConstructorDoesNotStore(t *testing.T) {
	ctor := modeltest.Constructor(milk, model.ObjectClass, "(Lcom/acme/Coffee;)V", modeltest.Op(bytecode.OpReturn))
	store := modeltest.Method("setInner", "(Lcom/acme/Coffee;)V",
		modeltest.Load(bytecode.OpAload, 0),
		modeltest.Load(bytecode.OpAload, 1),
		modeltest.PutField(milk, "inner", coffeeDesc),
		modeltest.Op(bytecode.OpReturn),
	)
	class := decorator(ctor, store, delegatingCost())

	findings := Run(NewDecoratorQuality(), class, nil)
	require.Len(t, findings, 1)
	assert.Equal(t, "Constructor in decorator class Milk takes component parameter but doesn't store it", findings[0].Message)
}

func TestDecoratorConstructorStaticStoreCounts(t *testing.T) {
	ctor := modeltest.Constructor(milk, model.ObjectClass, "(Lcom/acme/Coffee;)V",
		modeltest.Load(bytecode.OpAload, 1),
		modeltest.PutStatic(milk, "last", coffeeDesc),
		modeltest.Op(bytecode.OpReturn),
	)
	class := decorator(ctor, delegatingCost())

	assert.Empty(t, Run(NewDecoratorQuality(), class, nil))
}

func TestDecoratorIgnoresUnrelatedClasses(t *testing.T) {
	plain := modeltest.Class("com/acme/Plain").
		Field("inner", coffeeDesc, model.AccPrivate).
		Build()
	abstract := modeltest.Class("com/acme/Base").Abstract().
		Implements(coffee).
		Field("inner", coffeeDesc, model.AccPrivate).
		Build()
	static := modeltest.Class("com/acme/Holder").
		Implements(coffee).
		Field("inner", coffeeDesc, model.AccPrivate|model.AccStatic).
		Build()

	for _, class := range []*model.Class{plain, abstract, static} {
		assert.Empty(t, Run(NewDecoratorQuality(), class, nil), class.Name)
	}
}

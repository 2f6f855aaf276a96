// Package modeltest builds class models for tests without going through the
// class-file loader.
package modeltest

import (
	"classlint/internal/engine/bytecode"
	"classlint/internal/engine/model"
)

type ClassBuilder struct {
	class *model.Class
}

// Class starts a public class extending java/lang/Object.
func Class(name string) *ClassBuilder {
	return &ClassBuilder{class: &model.Class{
		Name:   name,
		Access: model.AccPublic | model.AccSuper,
		Super:  model.ObjectClass,
	}}
}

// Interface starts a public abstract interface.
func Interface(name string, extends ...string) *ClassBuilder {
	b := Class(name)
	b.class.Access = model.AccPublic | model.AccInterface | model.AccAbstract
	b.class.Interfaces = append(b.class.Interfaces, extends...)
	return b
}

func (b *ClassBuilder) Abstract() *ClassBuilder {
	b.class.Access |= model.AccAbstract
	return b
}

func (b *ClassBuilder) Extends(super string) *ClassBuilder {
	b.class.Super = super
	return b
}

func (b *ClassBuilder) Implements(names ...string) *ClassBuilder {
	b.class.Interfaces = append(b.class.Interfaces, names...)
	return b
}

func (b *ClassBuilder) Field(name, desc string, access model.Access) *ClassBuilder {
	b.class.Fields = append(b.class.Fields, &model.Field{Name: name, Desc: desc, Access: access})
	return b
}

func (b *ClassBuilder) Method(m *model.Method) *ClassBuilder {
	b.class.Methods = append(b.class.Methods, m)
	return b
}

func (b *ClassBuilder) Build() *model.Class {
	return b.class
}

// Method builds a public method with the given body.
func Method(name, desc string, body ...model.Instruction) *model.Method {
	return &model.Method{Name: name, Desc: desc, Access: model.AccPublic, Instructions: body}
}

// StaticMethod builds a public static method with the given body.
func StaticMethod(name, desc string, body ...model.Instruction) *model.Method {
	m := Method(name, desc, body...)
	m.Access |= model.AccStatic
	return m
}

// AbstractMethod builds a public abstract method without a body.
func AbstractMethod(name, desc string) *model.Method {
	return &model.Method{Name: name, Desc: desc, Access: model.AccPublic | model.AccAbstract}
}

// Constructor builds a constructor whose body starts with a super() call.
func Constructor(owner, super, desc string, body ...model.Instruction) *model.Method {
	prefix := []model.Instruction{
		Load(bytecode.OpAload, 0),
		Invoke(bytecode.OpInvokespecial, super, model.ConstructorName, "()V"),
	}
	return Method(model.ConstructorName, desc, append(prefix, body...)...)
}

func Op(op bytecode.Opcode) model.Instruction {
	return model.Instruction{Kind: model.KindInsn, Op: op}
}

func Load(op bytecode.Opcode, slot int) model.Instruction {
	return model.Instruction{Kind: model.KindInsn, Op: op, Var: slot}
}

func Store(op bytecode.Opcode, slot int) model.Instruction {
	return model.Instruction{Kind: model.KindInsn, Op: op, Var: slot}
}

func Iinc(slot int) model.Instruction {
	return model.Instruction{Kind: model.KindInsn, Op: bytecode.OpIinc, Var: slot}
}

func GetField(owner, name, desc string) model.Instruction {
	return member(bytecode.OpGetfield, owner, name, desc)
}

func PutField(owner, name, desc string) model.Instruction {
	return member(bytecode.OpPutfield, owner, name, desc)
}

func GetStatic(owner, name, desc string) model.Instruction {
	return member(bytecode.OpGetstatic, owner, name, desc)
}

func PutStatic(owner, name, desc string) model.Instruction {
	return member(bytecode.OpPutstatic, owner, name, desc)
}

func Invoke(op bytecode.Opcode, owner, name, desc string) model.Instruction {
	return member(op, owner, name, desc)
}

func New(class string) model.Instruction {
	return model.Instruction{Kind: model.KindInsn, Op: bytecode.OpNew, Type: class}
}

func Jump(op bytecode.Opcode, target model.Label) model.Instruction {
	return model.Instruction{Kind: model.KindInsn, Op: op, Target: target}
}

// Switch builds a tableswitch with one target per case.
func Switch(def model.Label, cases ...model.Label) model.Instruction {
	return model.Instruction{Kind: model.KindInsn, Op: bytecode.OpTableswitch, Target: def, Targets: cases}
}

func Label(l model.Label) model.Instruction {
	return model.Instruction{Kind: model.KindLabel, Label: l}
}

func Line(n int) model.Instruction {
	return model.Instruction{Kind: model.KindLine, Line: n}
}

func member(op bytecode.Opcode, owner, name, desc string) model.Instruction {
	return model.Instruction{Kind: model.KindInsn, Op: op, Owner: owner, Name: name, Desc: desc}
}

package model

import (
	"classlint/internal/engine/bytecode"
	"strings"
)

// ObjectClass is the root of every class hierarchy.
const ObjectClass = "java/lang/Object"

const (
	ConstructorName = "<init>"
	InitializerName = "<clinit>"
)

// Class is the in-memory model of one class file. Names are internal names
// with '/' separators. Values are built once by the loader and never mutated
// afterwards.
type Class struct {
	Name       string
	Access     Access
	Super      string
	Interfaces []string
	Fields     []*Field
	Methods    []*Method

	SourceFile string
	// Origin is the file or jar entry the class was loaded from.
	Origin       string
	MajorVersion uint16
}

type Field struct {
	Name   string
	Desc   string
	Access Access
}

type Method struct {
	Name         string
	Desc         string
	Access       Access
	Instructions []Instruction
	Locals       []LocalVariable
	TryCatches   []TryCatch
	Exceptions   []string
}

func (c *Class) IsInterface() bool { return c.Access.IsInterface() }
func (c *Class) IsAbstract() bool  { return c.Access.IsAbstract() }

// IsConcrete reports whether c is neither abstract nor an interface.
func (c *Class) IsConcrete() bool {
	return !c.Access.IsAbstract() && !c.Access.IsInterface()
}

// HasSuper reports whether c extends something other than the root class.
func (c *Class) HasSuper() bool {
	return c.Super != "" && c.Super != ObjectClass
}

// Package returns the package part of the internal name, "" for the
// default package.
func (c *Class) Package() string {
	return PackageOf(c.Name)
}

// SimpleName returns the name without its package.
func (c *Class) SimpleName() string {
	return SimpleNameOf(c.Name)
}

// DisplayName returns the dotted binary name, e.g. "com.acme.Order".
func (c *Class) DisplayName() string {
	return strings.ReplaceAll(c.Name, "/", ".")
}

// Method returns the method with the exact name and descriptor.
func (c *Class) Method(name, desc string) *Method {
	for _, m := range c.Methods {
		if m.Name == name && m.Desc == desc {
			return m
		}
	}
	return nil
}

func (c *Class) Field(name string) *Field {
	for _, f := range c.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func (c *Class) Constructors() []*Method {
	var out []*Method
	for _, m := range c.Methods {
		if m.IsConstructor() {
			out = append(out, m)
		}
	}
	return out
}

// Implements reports whether name is among the directly declared interfaces.
func (c *Class) Implements(name string) bool {
	for _, i := range c.Interfaces {
		if i == name {
			return true
		}
	}
	return false
}

// Type parses the field descriptor.
func (f *Field) Type() (bytecode.Type, error) {
	return bytecode.ParseFieldType(f.Desc)
}

func (m *Method) IsConstructor() bool { return m.Name == ConstructorName }
func (m *Method) IsInitializer() bool { return m.Name == InitializerName }
func (m *Method) IsStatic() bool      { return m.Access.IsStatic() }
func (m *Method) IsAbstract() bool    { return m.Access.IsAbstract() }
func (m *Method) IsNative() bool      { return m.Access.IsNative() }
func (m *Method) IsPrivate() bool     { return m.Access.IsPrivate() }

// HasBody reports whether the method carries code.
func (m *Method) HasBody() bool {
	return !m.IsAbstract() && !m.IsNative() && len(m.Instructions) > 0
}

// Signature is the name+descriptor pair that identifies an overload.
func (m *Method) Signature() string {
	return m.Name + m.Desc
}

// Type parses the method descriptor.
func (m *Method) Type() (bytecode.MethodType, error) {
	return bytecode.ParseMethodType(m.Desc)
}

// Meaningful returns the real instructions with labels, line markers and
// frames removed.
func (m *Method) Meaningful() []Instruction {
	out := make([]Instruction, 0, len(m.Instructions))
	for _, in := range m.Instructions {
		if !in.IsPseudo() {
			out = append(out, in)
		}
	}
	return out
}

// Opcodes returns the opcode sequence of the meaningful instructions.
func (m *Method) Opcodes() []bytecode.Opcode {
	var out []bytecode.Opcode
	for _, in := range m.Instructions {
		if !in.IsPseudo() {
			out = append(out, in.Op)
		}
	}
	return out
}

// FirstLine returns the first line-number marker in the body, or 0.
func (m *Method) FirstLine() int {
	for _, in := range m.Instructions {
		if in.Kind == KindLine {
			return in.Line
		}
	}
	return 0
}

// LineAt returns the line in effect at instruction index i, or 0.
func (m *Method) LineAt(i int) int {
	line := 0
	for j := 0; j <= i && j < len(m.Instructions); j++ {
		if m.Instructions[j].Kind == KindLine {
			line = m.Instructions[j].Line
		}
	}
	return line
}

// LabelIndex returns the index of the label pseudo-instruction, or -1.
func (m *Method) LabelIndex(l Label) int {
	for i, in := range m.Instructions {
		if in.Kind == KindLabel && in.Label == l {
			return i
		}
	}
	return -1
}

// LocalName returns the debug name of slot, if the method has a
// LocalVariableTable entry for it.
func (m *Method) LocalName(slot int) (string, bool) {
	for _, lv := range m.Locals {
		if lv.Slot == slot {
			return lv.Name, true
		}
	}
	return "", false
}

// PackageOf returns the package part of an internal name.
func PackageOf(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		return name[:i]
	}
	return ""
}

// SimpleNameOf returns the last segment of an internal name, dropping any
// enclosing class prefix of nested classes.
func SimpleNameOf(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndexByte(name, '$'); i >= 0 && i < len(name)-1 {
		name = name[i+1:]
	}
	return name
}

// InternalName converts a dotted binary name to its internal form.
func InternalName(name string) string {
	return strings.ReplaceAll(name, ".", "/")
}

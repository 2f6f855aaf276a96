package model

import "strings"

// Access is the access_flags bit set shared by classes, fields and methods.
// Some bits mean different things depending on where they appear
// (0x0020 is ACC_SUPER on classes and ACC_SYNCHRONIZED on methods).
type Access uint16

const (
	AccPublic       Access = 0x0001
	AccPrivate      Access = 0x0002
	AccProtected    Access = 0x0004
	AccStatic       Access = 0x0008
	AccFinal        Access = 0x0010
	AccSuper        Access = 0x0020
	AccSynchronized Access = 0x0020
	AccVolatile     Access = 0x0040
	AccBridge       Access = 0x0040
	AccTransient    Access = 0x0080
	AccVarargs      Access = 0x0080
	AccNative       Access = 0x0100
	AccInterface    Access = 0x0200
	AccAbstract     Access = 0x0400
	AccStrict       Access = 0x0800
	AccSynthetic    Access = 0x1000
	AccAnnotation   Access = 0x2000
	AccEnum         Access = 0x4000
	AccModule       Access = 0x8000
)

func (a Access) Has(flag Access) bool { return a&flag != 0 }

func (a Access) IsPublic() bool    { return a.Has(AccPublic) }
func (a Access) IsPrivate() bool   { return a.Has(AccPrivate) }
func (a Access) IsProtected() bool { return a.Has(AccProtected) }
func (a Access) IsStatic() bool    { return a.Has(AccStatic) }
func (a Access) IsFinal() bool     { return a.Has(AccFinal) }
func (a Access) IsAbstract() bool  { return a.Has(AccAbstract) }
func (a Access) IsInterface() bool { return a.Has(AccInterface) }
func (a Access) IsNative() bool    { return a.Has(AccNative) }
func (a Access) IsSynthetic() bool { return a.Has(AccSynthetic) }

// String renders the visibility and modifier keywords that apply to classes
// and members alike.
func (a Access) String() string {
	var parts []string
	switch {
	case a.IsPublic():
		parts = append(parts, "public")
	case a.IsProtected():
		parts = append(parts, "protected")
	case a.IsPrivate():
		parts = append(parts, "private")
	}
	if a.IsStatic() {
		parts = append(parts, "static")
	}
	if a.IsAbstract() {
		parts = append(parts, "abstract")
	}
	if a.IsFinal() {
		parts = append(parts, "final")
	}
	if a.IsInterface() {
		parts = append(parts, "interface")
	}
	return strings.Join(parts, " ")
}

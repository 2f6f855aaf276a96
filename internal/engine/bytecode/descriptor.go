package bytecode

import (
	"classlint/internal/core/errors"
	"fmt"
	"strings"
)

// Sort is the semantic kind of a descriptor type.
type Sort uint8

const (
	SortVoid Sort = iota
	SortBoolean
	SortChar
	SortByte
	SortShort
	SortInt
	SortFloat
	SortLong
	SortDouble
	SortObject
	SortArray
)

// Type is a parsed field type descriptor.
type Type struct {
	Sort Sort
	// ClassName is the internal name (slash separated) for objects and for the
	// element type of object arrays.
	ClassName string
	// Dims is the array dimension count; Elem holds the element sort when Dims > 0.
	Dims int
	Elem Sort
}

// MethodType is a parsed method descriptor.
type MethodType struct {
	Params []Type
	Return Type
}

// IsPrimitive reports whether t is one of the eight primitive types.
func (t Type) IsPrimitive() bool {
	return t.Sort >= SortBoolean && t.Sort <= SortDouble
}

// IsReference reports whether t is an object or array type.
func (t Type) IsReference() bool {
	return t.Sort == SortObject || t.Sort == SortArray
}

// Slots is the number of local-variable slots a value of t occupies.
func (t Type) Slots() int {
	switch t.Sort {
	case SortVoid:
		return 0
	case SortLong, SortDouble:
		return 2
	default:
		return 1
	}
}

// Referenced returns the class a value of t refers to: the class itself for
// objects, the element class for object arrays, and "" otherwise.
func (t Type) Referenced() string {
	if t.Sort == SortObject || (t.Sort == SortArray && t.Elem == SortObject) {
		return t.ClassName
	}
	return ""
}

// IntLike reports whether the JVM represents values of t as int on the stack.
func (t Type) IntLike() bool {
	switch t.Sort {
	case SortBoolean, SortChar, SortByte, SortShort, SortInt:
		return true
	}
	return false
}

func (t Type) String() string {
	var b strings.Builder
	for i := 0; i < t.Dims; i++ {
		b.WriteByte('[')
	}
	sort := t.Sort
	if t.Dims > 0 {
		sort = t.Elem
	}
	if sort == SortObject {
		b.WriteString("L" + t.ClassName + ";")
	} else {
		b.WriteByte(primitiveCodes[sort])
	}
	return b.String()
}

var primitiveCodes = map[Sort]byte{
	SortVoid: 'V', SortBoolean: 'Z', SortChar: 'C', SortByte: 'B', SortShort: 'S',
	SortInt: 'I', SortFloat: 'F', SortLong: 'J', SortDouble: 'D',
}

var primitiveSorts = map[byte]Sort{
	'V': SortVoid, 'Z': SortBoolean, 'C': SortChar, 'B': SortByte, 'S': SortShort,
	'I': SortInt, 'F': SortFloat, 'J': SortLong, 'D': SortDouble,
}

// ParseFieldType parses a complete field descriptor such as "I",
// "Ljava/lang/String;" or "[[J".
func ParseFieldType(desc string) (Type, error) {
	t, n, err := parseType(desc, 0)
	if err != nil {
		return Type{}, err
	}
	if t.Sort == SortVoid {
		return Type{}, malformed(desc, "void is not a field type")
	}
	if n != len(desc) {
		return Type{}, malformed(desc, "trailing characters")
	}
	return t, nil
}

// ParseMethodType parses a method descriptor such as "(ILjava/lang/String;)V".
func ParseMethodType(desc string) (MethodType, error) {
	if !strings.HasPrefix(desc, "(") {
		return MethodType{}, malformed(desc, "missing '('")
	}
	var mt MethodType
	i := 1
	for {
		if i >= len(desc) {
			return MethodType{}, malformed(desc, "unterminated parameter list")
		}
		if desc[i] == ')' {
			i++
			break
		}
		t, n, err := parseType(desc, i)
		if err != nil {
			return MethodType{}, err
		}
		if t.Sort == SortVoid {
			return MethodType{}, malformed(desc, "void parameter")
		}
		mt.Params = append(mt.Params, t)
		i = n
	}
	ret, n, err := parseType(desc, i)
	if err != nil {
		return MethodType{}, err
	}
	if n != len(desc) {
		return MethodType{}, malformed(desc, "trailing characters")
	}
	mt.Return = ret
	return mt, nil
}

// ParamSlots returns the local-variable slot of each parameter. Instance
// methods reserve slot 0 for the receiver.
func (mt MethodType) ParamSlots(static bool) []int {
	slot := 1
	if static {
		slot = 0
	}
	slots := make([]int, 0, len(mt.Params))
	for _, p := range mt.Params {
		slots = append(slots, slot)
		slot += p.Slots()
	}
	return slots
}

// ParseOwner parses the owner operand of a field or method instruction, which is
// either an internal class name or, for calls on arrays, an array descriptor.
func ParseOwner(owner string) Type {
	if strings.HasPrefix(owner, "[") {
		if t, err := ParseFieldType(owner); err == nil {
			return t
		}
	}
	return Type{Sort: SortObject, ClassName: owner}
}

func parseType(desc string, i int) (Type, int, error) {
	dims := 0
	for i < len(desc) && desc[i] == '[' {
		dims++
		i++
	}
	if i >= len(desc) {
		return Type{}, i, malformed(desc, "unexpected end")
	}
	var elem Type
	c := desc[i]
	switch {
	case c == 'L':
		end := strings.IndexByte(desc[i:], ';')
		if end <= 1 {
			return Type{}, i, malformed(desc, "unterminated class name")
		}
		elem = Type{Sort: SortObject, ClassName: desc[i+1 : i+end]}
		i += end + 1
	default:
		sort, ok := primitiveSorts[c]
		if !ok {
			return Type{}, i, malformed(desc, fmt.Sprintf("unknown type code %q", c))
		}
		elem = Type{Sort: sort}
		i++
	}
	if dims == 0 {
		return elem, i, nil
	}
	if elem.Sort == SortVoid {
		return Type{}, i, malformed(desc, "array of void")
	}
	return Type{Sort: SortArray, ClassName: elem.ClassName, Dims: dims, Elem: elem.Sort}, i, nil
}

func malformed(desc, reason string) error {
	return errors.AddContext(errors.New(errors.CodeMalformedDescriptor, reason), errors.CtxDescriptor, desc)
}

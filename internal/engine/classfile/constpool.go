package classfile

import (
	"classlint/internal/core/errors"
	"unicode/utf16"
)

const (
	tagUtf8               = 1
	tagInteger            = 3
	tagFloat              = 4
	tagLong               = 5
	tagDouble             = 6
	tagClass              = 7
	tagString             = 8
	tagFieldref           = 9
	tagMethodref          = 10
	tagInterfaceMethodref = 11
	tagNameAndType        = 12
	tagMethodHandle       = 15
	tagMethodType         = 16
	tagDynamic            = 17
	tagInvokeDynamic      = 18
	tagModule             = 19
	tagPackage            = 20
)

// cpEntry keeps the raw indices of one constant; a and b hold the first and
// second u2 operand where the tag has them. Numeric constants are not needed
// by the analysis and are skipped.
type cpEntry struct {
	tag  uint8
	a, b uint16
	utf8 string
}

type constantPool []cpEntry

func readConstantPool(r *reader) constantPool {
	count := int(r.u2())
	if count == 0 {
		r.fail("constant pool count is zero")
		return nil
	}
	pool := make(constantPool, count)
	for i := 1; i < count && r.err == nil; i++ {
		tag := r.u1()
		e := cpEntry{tag: tag}
		switch tag {
		case tagUtf8:
			n := int(r.u2())
			e.utf8 = decodeModifiedUTF8(r.bytes(n))
		case tagInteger, tagFloat:
			r.skip(4)
		case tagLong, tagDouble:
			r.skip(8)
			pool[i] = e
			// Eight-byte constants take two pool slots.
			i++
			continue
		case tagClass, tagString, tagMethodType, tagModule, tagPackage:
			e.a = r.u2()
		case tagFieldref, tagMethodref, tagInterfaceMethodref, tagNameAndType, tagDynamic, tagInvokeDynamic:
			e.a = r.u2()
			e.b = r.u2()
		case tagMethodHandle:
			e.a = uint16(r.u1())
			e.b = r.u2()
		default:
			r.fail("unknown constant pool tag %d at index %d", tag, i)
		}
		pool[i] = e
	}
	return pool
}

func (p constantPool) entry(index uint16, tag uint8) (cpEntry, error) {
	if int(index) <= 0 || int(index) >= len(p) {
		return cpEntry{}, errors.Newf(errors.CodeMalformedClass, "constant pool index %d out of range", index)
	}
	e := p[index]
	if e.tag != tag {
		return cpEntry{}, errors.Newf(errors.CodeMalformedClass, "constant %d has tag %d, expected %d", index, e.tag, tag)
	}
	return e, nil
}

func (p constantPool) utf8(index uint16) (string, error) {
	e, err := p.entry(index, tagUtf8)
	if err != nil {
		return "", err
	}
	return e.utf8, nil
}

func (p constantPool) className(index uint16) (string, error) {
	e, err := p.entry(index, tagClass)
	if err != nil {
		return "", err
	}
	return p.utf8(e.a)
}

func (p constantPool) nameAndType(index uint16) (name, desc string, err error) {
	e, err := p.entry(index, tagNameAndType)
	if err != nil {
		return "", "", err
	}
	if name, err = p.utf8(e.a); err != nil {
		return "", "", err
	}
	desc, err = p.utf8(e.b)
	return name, desc, err
}

// memberRef resolves a field, method or interface method reference.
func (p constantPool) memberRef(index uint16) (owner, name, desc string, err error) {
	if int(index) <= 0 || int(index) >= len(p) {
		return "", "", "", errors.Newf(errors.CodeMalformedClass, "constant pool index %d out of range", index)
	}
	e := p[index]
	switch e.tag {
	case tagFieldref, tagMethodref, tagInterfaceMethodref:
	default:
		return "", "", "", errors.Newf(errors.CodeMalformedClass, "constant %d is not a member reference", index)
	}
	if owner, err = p.className(e.a); err != nil {
		return "", "", "", err
	}
	name, desc, err = p.nameAndType(e.b)
	return owner, name, desc, err
}

// dynamicRef resolves the name and type of an invokedynamic call site.
func (p constantPool) dynamicRef(index uint16) (name, desc string, err error) {
	e, err := p.entry(index, tagInvokeDynamic)
	if err != nil {
		return "", "", err
	}
	return p.nameAndType(e.b)
}

// decodeModifiedUTF8 decodes the JVM's modified UTF-8: NUL is encoded on two
// bytes and supplementary characters as surrogate pairs of three bytes each.
func decodeModifiedUTF8(b []byte) string {
	ascii := true
	for _, c := range b {
		if c >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return string(b)
	}
	units := make([]uint16, 0, len(b))
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c < 0x80:
			units = append(units, uint16(c))
			i++
		case c&0xE0 == 0xC0 && i+1 < len(b):
			units = append(units, uint16(c&0x1F)<<6|uint16(b[i+1]&0x3F))
			i += 2
		case c&0xF0 == 0xE0 && i+2 < len(b):
			units = append(units, uint16(c&0x0F)<<12|uint16(b[i+1]&0x3F)<<6|uint16(b[i+2]&0x3F))
			i += 3
		default:
			units = append(units, 0xFFFD)
			i++
		}
	}
	return string(utf16.Decode(units))
}

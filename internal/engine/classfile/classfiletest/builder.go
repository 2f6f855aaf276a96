// Package classfiletest assembles minimal class files for tests outside the
// classfile package.
package classfiletest

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

const (
	AccPublic    uint16 = 0x0001
	AccPrivate   uint16 = 0x0002
	AccStatic    uint16 = 0x0008
	AccSuper     uint16 = 0x0020
	AccInterface uint16 = 0x0200
	AccAbstract  uint16 = 0x0400
)

const (
	tagUtf8  = 1
	tagClass = 7
)

type member struct {
	access     uint16
	name, desc string
	code       []byte
}

// Builder collects the parts of one class. Methods with nil code carry no
// Code attribute.
type Builder struct {
	name, super string
	access      uint16
	interfaces  []string
	fields      []member
	methods     []member
}

func New(name, super string) *Builder {
	return &Builder{name: name, super: super, access: AccPublic | AccSuper}
}

func (b *Builder) Access(flags uint16) *Builder {
	b.access = flags
	return b
}

func (b *Builder) Interfaces(names ...string) *Builder {
	b.interfaces = append(b.interfaces, names...)
	return b
}

func (b *Builder) Field(access uint16, name, desc string) *Builder {
	b.fields = append(b.fields, member{access: access, name: name, desc: desc})
	return b
}

func (b *Builder) Method(access uint16, name, desc string, code []byte) *Builder {
	b.methods = append(b.methods, member{access: access, name: name, desc: desc, code: code})
	return b
}

type pool struct {
	buf   bytes.Buffer
	count uint16
	utf8s map[string]uint16
}

func (p *pool) utf8(s string) uint16 {
	if i, ok := p.utf8s[s]; ok {
		return i
	}
	p.buf.WriteByte(tagUtf8)
	_ = binary.Write(&p.buf, binary.BigEndian, uint16(len(s)))
	p.buf.WriteString(s)
	i := p.count
	p.count++
	p.utf8s[s] = i
	return i
}

func (p *pool) class(name string) uint16 {
	nameIdx := p.utf8(name)
	p.buf.WriteByte(tagClass)
	_ = binary.Write(&p.buf, binary.BigEndian, nameIdx)
	i := p.count
	p.count++
	return i
}

// Bytes assembles the class file.
func (b *Builder) Bytes() []byte {
	p := &pool{count: 1, utf8s: map[string]uint16{}}
	var body bytes.Buffer
	put := func(v any) { _ = binary.Write(&body, binary.BigEndian, v) }

	put(b.access)
	put(p.class(b.name))
	if b.super == "" {
		put(uint16(0))
	} else {
		put(p.class(b.super))
	}
	put(uint16(len(b.interfaces)))
	for _, i := range b.interfaces {
		put(p.class(i))
	}

	writeMembers := func(members []member) {
		put(uint16(len(members)))
		for _, m := range members {
			put(m.access)
			put(p.utf8(m.name))
			put(p.utf8(m.desc))
			if m.code == nil {
				put(uint16(0))
				continue
			}
			put(uint16(1))
			put(p.utf8("Code"))
			put(uint32(12 + len(m.code)))
			put(uint16(4)) // max stack
			put(uint16(4)) // max locals
			put(uint32(len(m.code)))
			body.Write(m.code)
			put(uint16(0)) // exception table
			put(uint16(0)) // attributes
		}
	}
	writeMembers(b.fields)
	writeMembers(b.methods)
	put(uint16(0)) // class attributes

	var out bytes.Buffer
	_ = binary.Write(&out, binary.BigEndian, uint32(0xCAFEBABE))
	_ = binary.Write(&out, binary.BigEndian, uint16(0))
	_ = binary.Write(&out, binary.BigEndian, uint16(61))
	_ = binary.Write(&out, binary.BigEndian, p.count)
	out.Write(p.buf.Bytes())
	out.Write(body.Bytes())
	return out.Bytes()
}

// WriteClass stores the class under dir at its package path and returns the
// file path.
func WriteClass(t testing.TB, dir string, b *Builder) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(b.name)+".class")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// WriteJar stores the classes in a new jar at path.
func WriteJar(t testing.TB, path string, classes ...*Builder) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, c := range classes {
		w, err := zw.Create(c.name + ".class")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write(c.Bytes()); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// ReturnFalse is the body of a method returning boolean or int zero.
var ReturnFalse = []byte{0x03, 0xac}

// ReturnVoid is the body of a void method.
var ReturnVoid = []byte{0xb1}

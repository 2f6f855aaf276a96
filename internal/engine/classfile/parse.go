// Package classfile turns class-file bytes into model.Class values.
package classfile

import (
	"classlint/internal/core/errors"
	"classlint/internal/engine/model"
)

const magic = 0xCAFEBABE

// Parse decodes one class file. Malformed input yields a MALFORMED_CLASS error
// and never a partially filled class.
func Parse(data []byte) (*model.Class, error) {
	r := newReader(data)
	if r.u4() != magic {
		if r.err != nil {
			return nil, r.err
		}
		return nil, errors.New(errors.CodeMalformedClass, "bad magic number")
	}
	r.skip(2) // minor version
	c := &model.Class{MajorVersion: r.u2()}

	pool := readConstantPool(r)
	if r.err != nil {
		return nil, r.err
	}

	var err error
	c.Access = model.Access(r.u2())
	if c.Name, err = pool.className(r.u2()); err != nil {
		return nil, err
	}
	if super := r.u2(); super != 0 {
		if c.Super, err = pool.className(super); err != nil {
			return nil, err
		}
	}
	n := int(r.u2())
	for i := 0; i < n && r.err == nil; i++ {
		name, err := pool.className(r.u2())
		if err != nil {
			return nil, err
		}
		c.Interfaces = append(c.Interfaces, name)
	}

	n = int(r.u2())
	for i := 0; i < n && r.err == nil; i++ {
		f, err := readField(r, pool)
		if err != nil {
			return nil, errors.AddContext(err, errors.CtxClass, c.Name)
		}
		c.Fields = append(c.Fields, f)
	}

	n = int(r.u2())
	for i := 0; i < n && r.err == nil; i++ {
		m, err := readMethod(r, pool)
		if err != nil {
			return nil, errors.AddContext(err, errors.CtxClass, c.Name)
		}
		c.Methods = append(c.Methods, m)
	}

	n = int(r.u2())
	for i := 0; i < n && r.err == nil; i++ {
		name, body, err := readAttribute(r, pool)
		if err != nil {
			return nil, err
		}
		if name == "SourceFile" {
			if c.SourceFile, err = pool.utf8(body.u2()); err != nil {
				return nil, err
			}
		}
	}
	if r.err != nil {
		return nil, errors.AddContext(r.err, errors.CtxClass, c.Name)
	}
	return c, nil
}

func readField(r *reader, pool constantPool) (*model.Field, error) {
	f := &model.Field{Access: model.Access(r.u2())}
	var err error
	if f.Name, err = pool.utf8(r.u2()); err != nil {
		return nil, err
	}
	if f.Desc, err = pool.utf8(r.u2()); err != nil {
		return nil, err
	}
	n := int(r.u2())
	for i := 0; i < n && r.err == nil; i++ {
		if _, _, err := readAttribute(r, pool); err != nil {
			return nil, err
		}
	}
	return f, r.err
}

func readMethod(r *reader, pool constantPool) (*model.Method, error) {
	m := &model.Method{Access: model.Access(r.u2())}
	var err error
	if m.Name, err = pool.utf8(r.u2()); err != nil {
		return nil, err
	}
	if m.Desc, err = pool.utf8(r.u2()); err != nil {
		return nil, err
	}
	n := int(r.u2())
	for i := 0; i < n && r.err == nil; i++ {
		name, body, err := readAttribute(r, pool)
		if err != nil {
			return nil, err
		}
		switch name {
		case "Code":
			if err := readCode(body, pool, m); err != nil {
				return nil, errors.AddContext(err, errors.CtxMethod, m.Name+m.Desc)
			}
		case "Exceptions":
			count := int(body.u2())
			for j := 0; j < count && body.err == nil; j++ {
				ex, err := pool.className(body.u2())
				if err != nil {
					return nil, err
				}
				m.Exceptions = append(m.Exceptions, ex)
			}
			if body.err != nil {
				return nil, body.err
			}
		}
	}
	return m, r.err
}

// readAttribute reads one attribute header and returns its name with a reader
// scoped to its body.
func readAttribute(r *reader, pool constantPool) (string, *reader, error) {
	nameIdx := r.u2()
	length := int(r.u4())
	body := r.sub(length)
	if r.err != nil {
		return "", nil, r.err
	}
	name, err := pool.utf8(nameIdx)
	if err != nil {
		return "", nil, err
	}
	return name, body, nil
}

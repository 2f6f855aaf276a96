package classfile

import (
	"classlint/internal/core/errors"
	"encoding/binary"
)

// reader reads big-endian values from an in-memory class file. The first
// failure sticks: later reads return zero values and err reports the cause.
type reader struct {
	buf []byte
	pos int
	err error
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

func (r *reader) fail(format string, args ...interface{}) {
	if r.err == nil {
		err := errors.Newf(errors.CodeMalformedClass, format, args...)
		r.err = errors.AddContext(err, errors.CtxOffset, r.pos)
	}
}

func (r *reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if n < 0 || r.pos+n > len(r.buf) {
		r.fail("unexpected end of data: need %d bytes, have %d", n, len(r.buf)-r.pos)
		return false
	}
	return true
}

func (r *reader) u1() uint8 {
	if !r.need(1) {
		return 0
	}
	v := r.buf[r.pos]
	r.pos++
	return v
}

func (r *reader) u2() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.BigEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v
}

func (r *reader) u4() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v
}

func (r *reader) i2() int16 { return int16(r.u2()) }
func (r *reader) i4() int32 { return int32(r.u4()) }

func (r *reader) bytes(n int) []byte {
	if !r.need(n) {
		return nil
	}
	v := r.buf[r.pos : r.pos+n]
	r.pos += n
	return v
}

func (r *reader) skip(n int) {
	if r.need(n) {
		r.pos += n
	}
}

func (r *reader) done() bool {
	return r.err != nil || r.pos >= len(r.buf)
}

// sub returns a reader over the next n bytes and advances past them.
func (r *reader) sub(n int) *reader {
	b := r.bytes(n)
	if b == nil && r.err != nil {
		return &reader{err: r.err}
	}
	return newReader(b)
}

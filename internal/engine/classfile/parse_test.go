package classfile

import (
	"archive/zip"
	"bytes"
	"classlint/internal/core/errors"
	"classlint/internal/engine/bytecode"
	"classlint/internal/engine/model"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func u2(v int) []byte { return []byte{byte(v >> 8), byte(v)} }
func u4(v int) []byte { return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)} }

func cat(parts ...[]byte) []byte {
	var b []byte
	for _, p := range parts {
		b = append(b, p...)
	}
	return b
}

type poolBuilder struct {
	buf   bytes.Buffer
	count int
	utf8s map[string]int
}

func newPool() *poolBuilder {
	return &poolBuilder{count: 1, utf8s: map[string]int{}}
}

func (p *poolBuilder) add(b []byte) int {
	p.buf.Write(b)
	i := p.count
	p.count++
	return i
}

func (p *poolBuilder) utf8(s string) int {
	if i, ok := p.utf8s[s]; ok {
		return i
	}
	i := p.add(cat([]byte{tagUtf8}, u2(len(s)), []byte(s)))
	p.utf8s[s] = i
	return i
}

func (p *poolBuilder) class(name string) int {
	return p.add(cat([]byte{tagClass}, u2(p.utf8(name))))
}

func (p *poolBuilder) ref(tag byte, owner, name, desc string) int {
	c := p.class(owner)
	nt := p.add(cat([]byte{tagNameAndType}, u2(p.utf8(name)), u2(p.utf8(desc))))
	return p.add(cat([]byte{tag}, u2(c), u2(nt)))
}

func (p *poolBuilder) long() {
	p.buf.Write([]byte{tagLong, 0, 0, 0, 0, 0, 0, 0, 1})
	p.count += 2
}

func (p *poolBuilder) attr(name string, body []byte) []byte {
	return cat(u2(p.utf8(name)), u4(len(body)), body)
}

func (p *poolBuilder) member(access int, name, desc string, attrs ...[]byte) []byte {
	return cat(u2(access), u2(p.utf8(name)), u2(p.utf8(desc)), u2(len(attrs)), cat(attrs...))
}

// codeAttr assembles a Code attribute; exc holds raw exception table entries.
func (p *poolBuilder) codeAttr(code []byte, exc [][]byte, attrs ...[]byte) []byte {
	body := cat(u2(4), u2(4), u4(len(code)), code, u2(len(exc)), cat(exc...), u2(len(attrs)), cat(attrs...))
	return p.attr("Code", body)
}

func assemble(p *poolBuilder, access int, this, super string, ifaces []string, fields, methods [][]byte) []byte {
	thisIdx := p.class(this)
	superIdx := 0
	if super != "" {
		superIdx = p.class(super)
	}
	var ifaceIdx []byte
	for _, i := range ifaces {
		ifaceIdx = append(ifaceIdx, u2(p.class(i))...)
	}
	source := p.attr("SourceFile", u2(p.utf8("Foo.java")))
	return cat(
		u4(magic), u2(0), u2(61),
		u2(p.count), p.buf.Bytes(),
		u2(access), u2(thisIdx), u2(superIdx),
		u2(len(ifaces)), ifaceIdx,
		u2(len(fields)), cat(fields...),
		u2(len(methods)), cat(methods...),
		u2(1), source,
	)
}

func sampleClass(t *testing.T) []byte {
	t.Helper()
	p := newPool()
	p.long()
	fieldRef := p.ref(tagFieldref, "com/acme/Foo", "count", "I")
	callRef := p.ref(tagMethodref, "com/acme/Helper", "log", "(Ljava/lang/String;)V")

	run := cat(
		[]byte{0x2a},               // 0 aload_0
		[]byte{0xb4}, u2(fieldRef), // 1 getfield
		[]byte{0x1b},               // 4 iload_1
		[]byte{0x99}, u2(6),        // 5 ifeq -> 11
		[]byte{0x84, 0x01, 0x01},   // 8 iinc 1 1
		[]byte{0xb1},               // 11 return
	)
	lines := p.attr("LineNumberTable", cat(u2(3), u2(0), u2(10), u2(5), u2(11), u2(11), u2(12)))
	locals := p.attr("LocalVariableTable", cat(u2(2),
		u2(0), u2(12), u2(p.utf8("this")), u2(p.utf8("Lcom/acme/Foo;")), u2(0),
		u2(0), u2(12), u2(p.utf8("flag")), u2(p.utf8("I")), u2(1),
	))
	runMethod := p.member(0x0001, "run", "(I)V", p.codeAttr(run, nil, lines, locals))

	pick := cat(
		[]byte{0x1a},             // 0 iload_0
		[]byte{0xaa, 0x00, 0x00}, // 1 tableswitch + padding to 4
		u4(27), u4(0), u4(1), u4(23), u4(25),
		[]byte{0x03, 0xac}, // 24 iconst_0, ireturn
		[]byte{0x04, 0xac}, // 26 iconst_1, ireturn
		[]byte{0x02, 0xac}, // 28 iconst_m1, ireturn
	)
	pickMethod := p.member(0x0009, "pick", "(I)I", p.codeAttr(pick, nil))

	guarded := cat(
		[]byte{0xb8}, u2(callRef), // 0 invokestatic
		[]byte{0xa7}, u2(5),       // 3 goto -> 8
		[]byte{0x4c},              // 6 astore_1
		[]byte{0x00},              // 7 nop
		[]byte{0xb1},              // 8 return
	)
	exc := [][]byte{cat(u2(0), u2(3), u2(6), u2(p.class("java/io/IOException")))}
	guardedMethod := p.member(0x0001, "guarded", "()V", p.codeAttr(guarded, exc),
		p.attr("Exceptions", cat(u2(1), u2(p.class("java/lang/Exception")))))

	abstractMethod := p.member(0x0401, "shape", "()Ljava/lang/String;")
	field := p.member(0x0002, "count", "I")

	return assemble(p, 0x0021, "com/acme/Foo", "java/lang/Object", []string{"java/lang/Runnable"},
		[][]byte{field}, [][]byte{runMethod, pickMethod, guardedMethod, abstractMethod})
}

func TestParseHeaderAndMembers(t *testing.T) {
	c, err := Parse(sampleClass(t))
	require.NoError(t, err)

	assert.Equal(t, "com/acme/Foo", c.Name)
	assert.Equal(t, "java/lang/Object", c.Super)
	assert.Equal(t, []string{"java/lang/Runnable"}, c.Interfaces)
	assert.Equal(t, "Foo.java", c.SourceFile)
	assert.Equal(t, uint16(61), c.MajorVersion)
	assert.True(t, c.Access.IsPublic())

	require.Len(t, c.Fields, 1)
	assert.Equal(t, "count", c.Fields[0].Name)
	assert.True(t, c.Fields[0].Access.IsPrivate())

	require.Len(t, c.Methods, 4)
	shape := c.Method("shape", "()Ljava/lang/String;")
	require.NotNil(t, shape)
	assert.True(t, shape.IsAbstract())
	assert.Empty(t, shape.Instructions)
}

func TestParseCodeStream(t *testing.T) {
	c, err := Parse(sampleClass(t))
	require.NoError(t, err)
	run := c.Method("run", "(I)V")
	require.NotNil(t, run)

	want := []model.Instruction{
		{Kind: model.KindLabel, Label: 0},
		{Kind: model.KindLine, Line: 10},
		{Kind: model.KindInsn, Op: bytecode.OpAload, Var: 0},
		{Kind: model.KindInsn, Op: bytecode.OpGetfield, Owner: "com/acme/Foo", Name: "count", Desc: "I"},
		{Kind: model.KindInsn, Op: bytecode.OpIload, Var: 1},
		{Kind: model.KindLine, Line: 11},
		{Kind: model.KindInsn, Op: bytecode.OpIfeq, Target: 11},
		{Kind: model.KindInsn, Op: bytecode.OpIinc, Var: 1},
		{Kind: model.KindLabel, Label: 11},
		{Kind: model.KindLine, Line: 12},
		{Kind: model.KindInsn, Op: bytecode.OpReturn},
		{Kind: model.KindLabel, Label: 12},
	}
	assert.Equal(t, want, run.Instructions)

	require.Len(t, run.Locals, 2)
	name, ok := run.LocalName(1)
	assert.True(t, ok)
	assert.Equal(t, "flag", name)
	assert.Equal(t, 10, run.FirstLine())
}

func TestParseTableswitch(t *testing.T) {
	c, err := Parse(sampleClass(t))
	require.NoError(t, err)
	pick := c.Method("pick", "(I)I")
	require.NotNil(t, pick)
	assert.True(t, pick.IsStatic())

	var sw *model.Instruction
	for i := range pick.Instructions {
		if pick.Instructions[i].Op == bytecode.OpTableswitch && !pick.Instructions[i].IsPseudo() {
			sw = &pick.Instructions[i]
		}
	}
	require.NotNil(t, sw)
	assert.Equal(t, 2, sw.Cases())
	assert.Equal(t, model.Label(28), sw.Target)
	assert.Equal(t, []model.Label{24, 26}, sw.Targets)
	assert.Len(t, pick.Meaningful(), 8)
}

func TestParseExceptionTable(t *testing.T) {
	c, err := Parse(sampleClass(t))
	require.NoError(t, err)
	m := c.Method("guarded", "()V")
	require.NotNil(t, m)

	require.Len(t, m.TryCatches, 1)
	tc := m.TryCatches[0]
	assert.Equal(t, "java/io/IOException", tc.Type)
	assert.Equal(t, model.Label(6), tc.Handler)
	assert.GreaterOrEqual(t, m.LabelIndex(tc.Handler), 0)
	assert.GreaterOrEqual(t, m.LabelIndex(tc.End), 0)
	assert.Equal(t, []string{"java/lang/Exception"}, m.Exceptions)

	store := m.Instructions[m.LabelIndex(tc.Handler)+1]
	assert.Equal(t, bytecode.OpAstore, store.Op)
	assert.Equal(t, 1, store.Var)
}

func TestParseRejectsMalformed(t *testing.T) {
	data := sampleClass(t)

	_, err := Parse([]byte{0xCA, 0xFE})
	assert.True(t, errors.IsCode(err, errors.CodeMalformedClass))

	bad := append([]byte{}, data...)
	bad[0] = 0x00
	_, err = Parse(bad)
	assert.True(t, errors.IsCode(err, errors.CodeMalformedClass))

	for _, n := range []int{10, len(data) / 2, len(data) - 1} {
		_, err = Parse(data[:n])
		assert.Truef(t, errors.IsCode(err, errors.CodeMalformedClass), "truncated at %d: %v", n, err)
	}
}

func TestParseRejectsUnknownOpcode(t *testing.T) {
	p := newPool()
	m := p.member(0x0001, "bad", "()V", p.codeAttr([]byte{0xfe}, nil))
	_, err := Parse(assemble(p, 0x0021, "a/Bad", "java/lang/Object", nil, nil, [][]byte{m}))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeMalformedClass))
}

func TestDecodeWideAndGotoW(t *testing.T) {
	code := cat(
		[]byte{0xc4, 0x15}, u2(300),       // wide iload 300
		[]byte{0xc4, 0x84}, u2(7), u2(1),  // wide iinc 7 1
		[]byte{0xc8}, u4(-10+0x100000000), // goto_w -10
		[]byte{0x13, 0x00, 0x01},          // ldc_w
	)
	insns, err := decodeInstructions(code, constantPool{{}, {tag: tagInteger}})
	require.NoError(t, err)
	require.Len(t, insns, 4)
	assert.Equal(t, bytecode.OpIload, insns[0].insn.Op)
	assert.Equal(t, 300, insns[0].insn.Var)
	assert.Equal(t, bytecode.OpIinc, insns[1].insn.Op)
	assert.Equal(t, 7, insns[1].insn.Var)
	assert.Equal(t, bytecode.OpGoto, insns[2].insn.Op)
	assert.Equal(t, model.Label(0), insns[2].insn.Target)
	assert.Equal(t, bytecode.OpLdc, insns[3].insn.Op)
}

func TestModifiedUTF8(t *testing.T) {
	assert.Equal(t, "plain", decodeModifiedUTF8([]byte("plain")))
	assert.Equal(t, "a\x00b", decodeModifiedUTF8([]byte{'a', 0xC0, 0x80, 'b'}))
	assert.Equal(t, "é", decodeModifiedUTF8([]byte{0xC3, 0xA9}))
}

func TestJar(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lib.jar")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("com/acme/Foo.class")
	require.NoError(t, err)
	_, err = w.Write(sampleClass(t))
	require.NoError(t, err)
	w, err = zw.Create("META-INF/MANIFEST.MF")
	require.NoError(t, err)
	_, err = w.Write([]byte("Manifest-Version: 1.0\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	jar, err := OpenJar(path)
	require.NoError(t, err)
	defer jar.Close()

	assert.Equal(t, []string{"com/acme/Foo"}, jar.Names())
	c, err := jar.Load("com/acme/Foo")
	require.NoError(t, err)
	assert.Equal(t, "com/acme/Foo", c.Name)
	assert.Contains(t, c.Origin, "lib.jar!com/acme/Foo.class")

	_, err = jar.Load("com/acme/Missing")
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Foo.class")
	require.NoError(t, os.WriteFile(path, sampleClass(t), 0o644))

	c, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, c.Origin)

	_, err = ParseFile(filepath.Join(dir, "Nope.class"))
	assert.Error(t, err)
}

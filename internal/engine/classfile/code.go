package classfile

import (
	"classlint/internal/core/errors"
	"classlint/internal/engine/bytecode"
	"classlint/internal/engine/model"
	"sort"
)

type exceptionEntry struct {
	start, end, handler uint16
	catchType           string
}

type lineEntry struct {
	pc   uint16
	line uint16
}

type localEntry struct {
	start, length uint16
	name, desc    string
	slot          uint16
}

// rawInsn is a decoded instruction still addressed by bytecode offset.
type rawInsn struct {
	pc  int
	insn model.Instruction
}

// readCode decodes a Code attribute body into m.
func readCode(r *reader, pool constantPool, m *model.Method) error {
	r.skip(4) // max_stack, max_locals
	codeLen := int(r.u4())
	code := r.bytes(codeLen)
	if r.err != nil {
		return r.err
	}
	insns, err := decodeInstructions(code, pool)
	if err != nil {
		return err
	}

	var handlers []exceptionEntry
	n := int(r.u2())
	for i := 0; i < n && r.err == nil; i++ {
		e := exceptionEntry{start: r.u2(), end: r.u2(), handler: r.u2()}
		if idx := r.u2(); idx != 0 {
			if e.catchType, err = pool.className(idx); err != nil {
				return err
			}
		}
		handlers = append(handlers, e)
	}

	var lines []lineEntry
	var locals []localEntry
	attrs := int(r.u2())
	for i := 0; i < attrs && r.err == nil; i++ {
		name, body, err := readAttribute(r, pool)
		if err != nil {
			return err
		}
		switch name {
		case "LineNumberTable":
			count := int(body.u2())
			for j := 0; j < count; j++ {
				lines = append(lines, lineEntry{pc: body.u2(), line: body.u2()})
			}
		case "LocalVariableTable":
			count := int(body.u2())
			for j := 0; j < count && body.err == nil; j++ {
				lv := localEntry{start: body.u2(), length: body.u2()}
				nameIdx, descIdx := body.u2(), body.u2()
				lv.slot = body.u2()
				if lv.name, err = pool.utf8(nameIdx); err != nil {
					return err
				}
				if lv.desc, err = pool.utf8(descIdx); err != nil {
					return err
				}
				locals = append(locals, lv)
			}
		}
		if body.err != nil {
			return body.err
		}
	}
	if r.err != nil {
		return r.err
	}

	labels := map[int]bool{}
	mark := func(pc int) {
		if pc >= 0 && pc <= codeLen {
			labels[pc] = true
		}
	}
	for _, ri := range insns {
		in := ri.insn
		switch in.Category() {
		case bytecode.CategoryConditionalBranch, bytecode.CategorySwitch:
			mark(int(in.Target))
			for _, t := range in.Targets {
				mark(int(t))
			}
		case bytecode.CategoryJump:
			if in.Op != bytecode.OpRet {
				mark(int(in.Target))
			}
		}
	}
	for _, h := range handlers {
		mark(int(h.start))
		mark(int(h.end))
		mark(int(h.handler))
		m.TryCatches = append(m.TryCatches, model.TryCatch{
			Start:   model.Label(h.start),
			End:     model.Label(h.end),
			Handler: model.Label(h.handler),
			Type:    h.catchType,
		})
	}
	for _, lv := range locals {
		mark(int(lv.start))
		mark(int(lv.start) + int(lv.length))
		m.Locals = append(m.Locals, model.LocalVariable{
			Name:  lv.name,
			Desc:  lv.desc,
			Slot:  int(lv.slot),
			Start: model.Label(lv.start),
			End:   model.Label(int(lv.start) + int(lv.length)),
		})
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].pc < lines[j].pc })

	out := make([]model.Instruction, 0, len(insns)+len(labels)+len(lines))
	li := 0
	for _, ri := range insns {
		if labels[ri.pc] {
			out = append(out, model.Instruction{Kind: model.KindLabel, Label: model.Label(ri.pc)})
		}
		for li < len(lines) && int(lines[li].pc) <= ri.pc {
			if int(lines[li].pc) == ri.pc {
				out = append(out, model.Instruction{Kind: model.KindLine, Line: int(lines[li].line)})
			}
			li++
		}
		out = append(out, ri.insn)
	}
	if labels[codeLen] {
		out = append(out, model.Instruction{Kind: model.KindLabel, Label: model.Label(codeLen)})
	}
	m.Instructions = out
	return nil
}

// decodeInstructions walks the bytecode array. Shortcut forms are rewritten
// to their general opcode with an explicit slot, wide is folded into the
// instruction it prefixes, and ldc_w, goto_w and jsr_w become ldc, goto and jsr.
func decodeInstructions(code []byte, pool constantPool) ([]rawInsn, error) {
	r := newReader(code)
	var out []rawInsn
	for !r.done() {
		pc := r.pos
		op := bytecode.Opcode(r.u1())
		in := model.Instruction{Kind: model.KindInsn, Op: op}
		target := func(off int) model.Label { return model.Label(pc + off) }

		switch {
		case op >= bytecode.OpIload0 && op <= bytecode.OpAload3:
			rel := int(op - bytecode.OpIload0)
			in.Op = bytecode.OpIload + bytecode.Opcode(rel/4)
			in.Var = rel % 4
		case op >= bytecode.OpIstore0 && op <= bytecode.OpAstore3:
			rel := int(op - bytecode.OpIstore0)
			in.Op = bytecode.OpIstore + bytecode.Opcode(rel/4)
			in.Var = rel % 4
		case op >= bytecode.OpIload && op <= bytecode.OpAload,
			op >= bytecode.OpIstore && op <= bytecode.OpAstore,
			op == bytecode.OpRet:
			in.Var = int(r.u1())
		case op == bytecode.OpIinc:
			in.Var = int(r.u1())
			r.skip(1)
		case op == bytecode.OpBipush, op == bytecode.OpLdc, op == bytecode.OpNewarray:
			r.skip(1)
		case op == bytecode.OpSipush, op == bytecode.OpLdc2W:
			r.skip(2)
		case op == bytecode.OpLdcW:
			in.Op = bytecode.OpLdc
			r.skip(2)
		case op >= bytecode.OpIfeq && op <= bytecode.OpJsr,
			op == bytecode.OpIfnull, op == bytecode.OpIfnonnull:
			in.Target = target(int(r.i2()))
		case op == bytecode.OpGotoW:
			in.Op = bytecode.OpGoto
			in.Target = target(int(r.i4()))
		case op == bytecode.OpJsrW:
			in.Op = bytecode.OpJsr
			in.Target = target(int(r.i4()))
		case op == bytecode.OpTableswitch:
			r.skip((4 - r.pos%4) % 4)
			in.Target = target(int(r.i4()))
			low, high := r.i4(), r.i4()
			if high < low || int(high-low) >= len(code) {
				r.fail("invalid tableswitch range %d..%d", low, high)
				break
			}
			for i := low; i <= high && r.err == nil; i++ {
				in.Targets = append(in.Targets, target(int(r.i4())))
			}
		case op == bytecode.OpLookupswitch:
			r.skip((4 - r.pos%4) % 4)
			in.Target = target(int(r.i4()))
			pairs := int(r.i4())
			if pairs < 0 || pairs*8 > len(code) {
				r.fail("invalid lookupswitch pair count %d", pairs)
				break
			}
			for i := 0; i < pairs && r.err == nil; i++ {
				r.skip(4)
				in.Targets = append(in.Targets, target(int(r.i4())))
			}
		case op >= bytecode.OpGetstatic && op <= bytecode.OpInvokestatic:
			owner, name, desc, err := pool.memberRef(r.u2())
			if err != nil {
				return nil, errors.AddContext(err, errors.CtxOffset, pc)
			}
			in.Owner, in.Name, in.Desc = owner, name, desc
		case op == bytecode.OpInvokeinterface:
			owner, name, desc, err := pool.memberRef(r.u2())
			if err != nil {
				return nil, errors.AddContext(err, errors.CtxOffset, pc)
			}
			in.Owner, in.Name, in.Desc = owner, name, desc
			r.skip(2)
		case op == bytecode.OpInvokedynamic:
			name, desc, err := pool.dynamicRef(r.u2())
			if err != nil {
				return nil, errors.AddContext(err, errors.CtxOffset, pc)
			}
			in.Name, in.Desc = name, desc
			r.skip(2)
		case op == bytecode.OpNew, op == bytecode.OpAnewarray,
			op == bytecode.OpCheckcast, op == bytecode.OpInstanceof:
			name, err := pool.className(r.u2())
			if err != nil {
				return nil, errors.AddContext(err, errors.CtxOffset, pc)
			}
			in.Type = name
		case op == bytecode.OpMultianewarray:
			name, err := pool.className(r.u2())
			if err != nil {
				return nil, errors.AddContext(err, errors.CtxOffset, pc)
			}
			in.Type = name
			r.skip(1)
		case op == bytecode.OpWide:
			in.Op = bytecode.Opcode(r.u1())
			in.Var = int(r.u2())
			switch {
			case in.Op == bytecode.OpIinc:
				r.skip(2)
			case in.Op >= bytecode.OpIload && in.Op <= bytecode.OpAload,
				in.Op >= bytecode.OpIstore && in.Op <= bytecode.OpAstore,
				in.Op == bytecode.OpRet:
			default:
				r.fail("invalid wide operand %s", in.Op)
			}
		case !op.Valid():
			r.fail("unknown opcode 0x%02x", uint8(op))
		}
		if r.err != nil {
			return nil, errors.AddContext(r.err, errors.CtxOperation, "decode bytecode")
		}
		out = append(out, rawInsn{pc: pc, insn: in})
	}
	return out, nil
}

package interpreter

import (
	"github.com/wasmvm-go/wasmvm/exec"
	"github.com/wasmvm-go/wasmvm/wasm"
	"github.com/wasmvm-go/wasmvm/wasm/code"
)

func (r *Runtime) push(v wasm.Value) { r.operand = append(r.operand, v) }

func (r *Runtime) pop() wasm.Value {
	v := r.operand[len(r.operand)-1]
	r.operand = r.operand[:len(r.operand)-1]
	return v
}

func (r *Runtime) popI32() int32 {
	v := r.pop()
	if v.Type() != wasm.ValueTypeI32 {
		panic(execErr(TypeMismatch, "expected i32, got %s", v.Type()))
	}
	return v.AsI32()
}

// rewind implements the stack-rewind rule shared by End, Return, and
// frame exit (spec §4.4.3): preserve the top `arity` values, drop
// everything down to sp.
func (r *Runtime) rewind(sp, arity int) {
	if arity == 0 {
		r.operand = r.operand[:sp]
		return
	}
	saved := r.operand[len(r.operand)-arity:]
	kept := append([]wasm.Value(nil), saved...)
	r.operand = append(r.operand[:sp], kept...)
}

// invokeInternal constructs a new frame for fn (splitting its declared
// parameters off the top of the operand stack, zero-initializing its
// locals) and pushes it onto the call stack (spec §4.4.2). It does not
// drive execution itself: per spec §9's "control flow without recursion"
// note, a call is realized entirely by pushing a frame and letting run's
// own loop pick it up as the new top of stack, so host-stack depth never
// grows with Wasm call depth.
func (r *Runtime) invokeInternal(fn *exec.InternalFunction) error {
	nparams := len(fn.Sig.Params)
	if len(r.operand) < nparams {
		return execErr(StackUnderflow, "call requires %d arguments", nparams)
	}

	locals := make([]wasm.Value, 0, nparams+len(fn.Locals))
	locals = append(locals, r.operand[len(r.operand)-nparams:]...)
	r.operand = r.operand[:len(r.operand)-nparams]

	for _, lt := range fn.Locals {
		switch lt {
		case wasm.ValueTypeI32:
			locals = append(locals, wasm.I32(0))
		case wasm.ValueTypeI64:
			locals = append(locals, wasm.I64(0))
		}
	}

	f := newFrame(fn.Code, locals, len(r.operand), len(fn.Sig.Results))
	r.frames = append(r.frames, f)
	return nil
}

// dispatchExternal invokes an imported function: through the WASI handler
// when the import names wasi_snapshot_preview1 and one is attached,
// otherwise through the host import registry (spec §4.4.1 step 4, §4.4.4).
func (r *Runtime) dispatchExternal(fn *exec.ExternalFunction) (*wasm.Value, error) {
	nparams := len(fn.Sig.Params)
	if len(r.operand) < nparams {
		return nil, execErr(StackUnderflow, "call requires %d arguments", nparams)
	}
	args := append([]wasm.Value(nil), r.operand[len(r.operand)-nparams:]...)
	r.operand = r.operand[:len(r.operand)-nparams]

	if fn.ModuleName == wasiModuleName && r.wasi != nil {
		return r.wasi.Call(r.store, fn.FieldName, args)
	}

	module, ok := r.imports[fn.ModuleName]
	if !ok {
		return nil, errMissingHostFunction(fn.ModuleName, fn.FieldName)
	}
	host, ok := module[fn.FieldName]
	if !ok {
		return nil, errMissingHostFunction(fn.ModuleName, fn.FieldName)
	}

	v, err := host(r.store, args)
	if err != nil {
		return nil, hostErr(err)
	}
	return v, nil
}

// run is the central execute loop (spec §4.4.3): it dispatches
// instructions against the innermost frame until the call stack empties.
func (r *Runtime) run() error {
	for len(r.frames) > 0 {
		f := r.frames[len(r.frames)-1]
		f.pc++

		if f.pc >= len(f.insts) {
			// Well-formed modules never reach this: End always pops the
			// frame before falling off the end of its instructions.
			r.frames = r.frames[:len(r.frames)-1]
			continue
		}

		if err := r.step(f, &f.insts[f.pc]); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runtime) step(f *frame, inst *wasm.Instruction) error {
	switch inst.Op {
	case code.OpLocalGet:
		i := inst.Localidx()
		if int(i) >= len(f.locals) {
			return execErr(BadLocalIndex, "local %d out of range", i)
		}
		r.push(f.locals[i])

	case code.OpLocalSet:
		i := inst.Localidx()
		if int(i) >= len(f.locals) {
			return execErr(BadLocalIndex, "local %d out of range", i)
		}
		f.locals[i] = r.pop()

	case code.OpI32Const:
		r.push(wasm.I32(inst.I32Const()))

	case code.OpI32Add:
		b, a := r.popI32(), r.popI32()
		r.push(wasm.I32(a + b))

	case code.OpI32Sub:
		b, a := r.popI32(), r.popI32()
		r.push(wasm.I32(a - b))

	case code.OpI32LtS:
		b, a := r.popI32(), r.popI32()
		if a < b {
			r.push(wasm.I32(1))
		} else {
			r.push(wasm.I32(0))
		}

	case code.OpI32Store:
		offset, _ := inst.MemArg()
		value := r.popI32()
		addr := r.popI32()
		if r.store.Memory == nil {
			return execErr(BadMemoryAccess, "no memory declared")
		}
		r.store.Memory.PutUint32(uint32(addr)+offset, uint32(value))

	case code.OpIf:
		cond := r.popI32()
		if cond == 0 {
			f.pc = skipToMatchingEnd(f.insts, f.pc)
		}
		f.pushLabel(label{resumePC: f.pc, sp: len(r.operand), arity: inst.Block.ResultCount()})

	case code.OpCall:
		return r.call(inst.Funcidx())

	case code.OpReturn:
		if l, ok := f.popLabel(); ok {
			f.pc = l.resumePC
			r.rewind(l.sp, l.arity)
			return nil
		}
		r.frames = r.frames[:len(r.frames)-1]
		r.rewind(f.sp, f.arity)

	case code.OpEnd:
		// End always terminates the current frame in this instruction
		// subset; see SPEC_FULL.md §13.1 for why no label-popping path is
		// needed here.
		r.frames = r.frames[:len(r.frames)-1]
		r.rewind(f.sp, f.arity)

	default:
		return execErr(Unimplemented, "opcode %s", inst.Op)
	}
	return nil
}

// call dispatches a Call instruction. Internal calls push a new frame onto
// the shared call stack and return, leaving run's own loop to pick up the
// new top frame on its next iteration (spec §9, no host-language recursion
// per Wasm call); external calls, WASI or host, have no frame of their own
// and run to completion inline, pushing their result directly.
func (r *Runtime) call(idx uint32) error {
	fn, ok := r.store.Function(idx)
	if !ok {
		return errMissingFunction(idx)
	}
	switch f := fn.(type) {
	case *exec.InternalFunction:
		return r.invokeInternal(f)
	case *exec.ExternalFunction:
		ret, err := r.dispatchExternal(f)
		if err != nil {
			return err
		}
		if ret != nil {
			r.push(*ret)
		}
		return nil
	default:
		panic("unreachable: unknown Function variant")
	}
}

// skipToMatchingEnd returns the index of the End that closes the If whose
// condition byte sits at ifPC, by tracking nested Ifs with a depth
// counter (spec §4.4.3, If semantics).
func skipToMatchingEnd(insts []wasm.Instruction, ifPC int) int {
	depth := 0
	for pc := ifPC + 1; pc < len(insts); pc++ {
		switch insts[pc].Op {
		case code.OpIf:
			depth++
		case code.OpEnd:
			if depth == 0 {
				return pc
			}
			depth--
		}
	}
	return len(insts) - 1
}

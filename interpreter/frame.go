package interpreter

import "github.com/wasmvm-go/wasmvm/wasm"

// label is pushed when entering a structured If and popped by a Return
// inside it (spec §3, "Label"). End never pops a label: it always ends the
// current frame (see step in execute.go).
type label struct {
	resumePC int
	sp       int
	arity    int
}

// frame is one function activation record (spec §3, "Frame"). pc starts
// at -1 so that execute's pre-increment lands on index 0 of insts.
type frame struct {
	pc     int
	sp     int
	insts  []wasm.Instruction
	arity  int
	locals []wasm.Value
	labels []label
}

func newFrame(insts []wasm.Instruction, locals []wasm.Value, sp, arity int) *frame {
	return &frame{pc: -1, sp: sp, insts: insts, arity: arity, locals: locals}
}

func (f *frame) pushLabel(l label) {
	f.labels = append(f.labels, l)
}

// popLabel removes and returns the innermost label, reporting whether one
// existed.
func (f *frame) popLabel() (label, bool) {
	if len(f.labels) == 0 {
		return label{}, false
	}
	l := f.labels[len(f.labels)-1]
	f.labels = f.labels[:len(f.labels)-1]
	return l, true
}

// Package code defines the bounded instruction subset this module's
// interpreter understands: the opcode bytes a producer may emit, the
// decoded Instruction representation, and the value-type tag shared with
// the wasm package. Opcode values are taken from the Wasm v1 binary
// format; any other valid Wasm opcode is rejected at decode time as
// DecodeError.UnknownOpcode. This package has no dependency on the wasm
// package so that the module model can depend on it instead of the
// reverse, mirroring the teacher's wasm/code split.
package code

import "fmt"

// Op identifies a decoded instruction's opcode.
type Op byte

const (
	OpIf       Op = 0x04
	OpEnd      Op = 0x0b
	OpReturn   Op = 0x0f
	OpCall     Op = 0x10
	OpLocalGet Op = 0x20
	OpLocalSet Op = 0x21
	OpI32Store Op = 0x36
	OpI32Const Op = 0x41
	OpI32LtS   Op = 0x48
	OpI32Add   Op = 0x6a
	OpI32Sub   Op = 0x6b
)

func (op Op) String() string {
	switch op {
	case OpIf:
		return "if"
	case OpEnd:
		return "end"
	case OpReturn:
		return "return"
	case OpCall:
		return "call"
	case OpLocalGet:
		return "local.get"
	case OpLocalSet:
		return "local.set"
	case OpI32Store:
		return "i32.store"
	case OpI32Const:
		return "i32.const"
	case OpI32LtS:
		return "i32.lt_s"
	case OpI32Add:
		return "i32.add"
	case OpI32Sub:
		return "i32.sub"
	default:
		return "unknown"
	}
}

// ValueType tags a value or a function signature's param/result slot.
type ValueType byte

const (
	ValueTypeI32 ValueType = 0x7f
	ValueTypeI64 ValueType = 0x7e
)

func (t ValueType) String() string {
	switch t {
	case ValueTypeI32:
		return "i32"
	case ValueTypeI64:
		return "i64"
	default:
		return fmt.Sprintf("invalid(%#x)", byte(t))
	}
}

// BlockType is the decoded immediate of an If instruction's block-type
// byte: either Void (0x40) or a single result ValueType.
type BlockType struct {
	Void   bool
	Result ValueType
}

// ResultCount returns 0 for Void and 1 otherwise, i.e. the label arity an
// If introduces.
func (bt BlockType) ResultCount() int {
	if bt.Void {
		return 0
	}
	return 1
}

// Instruction is a decoded instruction. Rather than model the instruction
// set as one Go type per opcode, a single struct carries every opcode's
// immediate packed into Imm (and, for If, Block); accessor methods
// interpret Imm according to Op, mirroring the teacher's
// Instruction{Opcode, Immediate uint64} design.
type Instruction struct {
	Op    Op
	Imm   int64
	Block BlockType
}

// Localidx returns the local index immediate of LocalGet/LocalSet.
func (i Instruction) Localidx() uint32 { return uint32(i.Imm) }

// Funcidx returns the function index immediate of Call.
func (i Instruction) Funcidx() uint32 { return uint32(i.Imm) }

// I32Const returns the i32 literal immediate of I32Const.
func (i Instruction) I32Const() int32 { return int32(i.Imm) }

// MemArg returns the (offset, align) immediates of I32Store. Align is
// decoded but, per the bounded subset's semantics, never checked.
func (i Instruction) MemArg() (offset, align uint32) {
	return uint32(i.Imm), uint32(i.Imm >> 32)
}

package wasmtest

import (
	"github.com/wasmvm-go/wasmvm/wasm"
	"github.com/wasmvm-go/wasmvm/wasm/code"
)

// Instruction constructors, one per opcode in the bounded subset, so that
// fixture bodies read like the mnemonics they encode.

func LocalGet(idx uint32) wasm.Instruction {
	return wasm.Instruction{Op: code.OpLocalGet, Imm: int64(idx)}
}

func LocalSet(idx uint32) wasm.Instruction {
	return wasm.Instruction{Op: code.OpLocalSet, Imm: int64(idx)}
}

func I32Const(v int32) wasm.Instruction {
	return wasm.Instruction{Op: code.OpI32Const, Imm: int64(v)}
}

func I32Add() wasm.Instruction { return wasm.Instruction{Op: code.OpI32Add} }
func I32Sub() wasm.Instruction { return wasm.Instruction{Op: code.OpI32Sub} }
func I32LtS() wasm.Instruction { return wasm.Instruction{Op: code.OpI32LtS} }

func I32Store(offset, align uint32) wasm.Instruction {
	return wasm.Instruction{Op: code.OpI32Store, Imm: int64(uint64(offset) | uint64(align)<<32)}
}

func Call(idx uint32) wasm.Instruction {
	return wasm.Instruction{Op: code.OpCall, Imm: int64(idx)}
}

// If opens a void-result structured block; this fixture package never
// needs a value-yielding If.
func If() wasm.Instruction {
	return wasm.Instruction{Op: code.OpIf, Block: code.BlockType{Void: true}}
}

func Return() wasm.Instruction { return wasm.Instruction{Op: code.OpReturn} }
func End() wasm.Instruction    { return wasm.Instruction{Op: code.OpEnd} }

// I32 and I64 are re-exported for fixture readability.
var (
	I32 = wasm.ValueTypeI32
	I64 = wasm.ValueTypeI64
)

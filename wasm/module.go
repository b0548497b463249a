// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wasm defines the value and type model and the decoded
// representation of a WebAssembly version-1 module, plus the decoder that
// turns a byte slice into one.
package wasm

import (
	"fmt"

	"github.com/wasmvm-go/wasmvm/wasm/code"
)

// Magic and Version are the two little-endian u32 words of a module's
// 8-byte preamble.
const (
	Magic   uint32 = 0x6d736100 // "\0asm"
	Version uint32 = 0x1
)

// ValueType tags a Value or a function signature's param/result slot.
// Only the integer types are in scope; floats, vectors, and reference
// types are not decoded by this module. It is an alias of code.ValueType
// so that the instruction and module models share one representation.
type ValueType = code.ValueType

const (
	ValueTypeI32 = code.ValueTypeI32
	ValueTypeI64 = code.ValueTypeI64
)

// Instruction is a decoded instruction; see the code package for its
// shape and per-opcode accessors.
type Instruction = code.Instruction

// Value is a single typed runtime value: either an I32 or an I64. Values
// are copyable and live on the operand stack, in locals, and as call
// arguments/results.
type Value struct {
	typ ValueType
	bits uint64
}

// I32 constructs an I32 value.
func I32(v int32) Value { return Value{typ: ValueTypeI32, bits: uint64(uint32(v))} }

// I64 constructs an I64 value.
func I64(v int64) Value { return Value{typ: ValueTypeI64, bits: uint64(v)} }

// Type returns the value's tag.
func (v Value) Type() ValueType { return v.typ }

// AsI32 returns the value reinterpreted as a signed 32-bit integer. The
// caller is responsible for checking Type() first; this is the runtime
// analog of the interpreter's own internal type checks.
func (v Value) AsI32() int32 { return int32(uint32(v.bits)) }

// AsI64 returns the value reinterpreted as a signed 64-bit integer.
func (v Value) AsI64() int64 { return int64(v.bits) }

func (v Value) String() string {
	switch v.typ {
	case ValueTypeI32:
		return fmt.Sprintf("i32:%d", v.AsI32())
	case ValueTypeI64:
		return fmt.Sprintf("i64:%d", v.AsI64())
	default:
		return "invalid"
	}
}

// FuncType is a function signature: an ordered vector of parameter types
// and an ordered vector of result types. In this module's scope, the
// result vector has length 0 or 1.
type FuncType struct {
	Params  []ValueType
	Results []ValueType
}

// Equals reports whether two signatures have identical params and results.
func (t FuncType) Equals(o FuncType) bool {
	if len(t.Params) != len(o.Params) || len(t.Results) != len(o.Results) {
		return false
	}
	for i, p := range t.Params {
		if p != o.Params[i] {
			return false
		}
	}
	for i, r := range t.Results {
		if r != o.Results[i] {
			return false
		}
	}
	return true
}

// ImportKind distinguishes the kinds of importable entities. Only
// ImportKindFunc is supported; any other kind decoded from the binary is a
// DecodeError.Unsupported.
type ImportKind byte

const ImportKindFunc ImportKind = 0x00

// Import is a single entry of the Import section: a (module, field) name
// pair naming an external dependency, here always a function of a given
// type.
type Import struct {
	Module    string
	Field     string
	TypeIndex uint32
}

// ExportKind distinguishes the kinds of exportable entities. Only
// ExportKindFunc is used; any other kind decoded from the binary is a
// DecodeError.Unsupported.
type ExportKind byte

const ExportKindFunc ExportKind = 0x00

// Export is a single entry of the Export section: a unique name naming a
// function in the module's flat function index space.
type Export struct {
	Name       string
	Kind       ExportKind
	FuncIndex  uint32
}

// Limits describes a memory's minimum size, and an optional maximum, in
// 64KiB pages.
type Limits struct {
	Min uint32
	Max uint32
	HasMax bool
}

// LocalGroup is a single run-length entry in a function body's locals
// declaration: Count consecutive locals of type Type.
type LocalGroup struct {
	Count uint32
	Type  ValueType
}

// FunctionBody is the decoded Code-section entry for one locally defined
// function: its run-length local declarations and its instruction stream.
// The final instruction is always code.OpEnd.
type FunctionBody struct {
	Locals []LocalGroup
	Code   []Instruction
}

// ExpandedLocals returns the body's locals with run-length groups expanded
// into one ValueType per declared local, in declaration order.
func (b *FunctionBody) ExpandedLocals() []ValueType {
	n := 0
	for _, g := range b.Locals {
		n += int(g.Count)
	}
	out := make([]ValueType, 0, n)
	for _, g := range b.Locals {
		for i := uint32(0); i < g.Count; i++ {
			out = append(out, g.Type)
		}
	}
	return out
}

// DataSegment is a single entry of the Data section: a memory index, a
// constant i32 offset, and the raw bytes to copy into memory at that
// offset during instantiation.
type DataSegment struct {
	MemoryIndex uint32
	Offset      int32
	Init        []byte
}

// Module is the fully decoded representation of a Wasm v1 binary. All
// sections are optional except the preamble; Custom sections are skipped
// by the decoder and are not recorded here.
type Module struct {
	Version uint32

	Types     []FuncType
	Imports   []Import
	FuncTypes []uint32 // Function section: one Types index per local function
	Memory    *Limits
	Exports   []Export
	Code      []FunctionBody
	Data      []DataSegment
}

// NumFuncImports returns the number of function imports, i.e. the offset
// at which locally defined functions begin in the flat function index
// space.
func (m *Module) NumFuncImports() int {
	return len(m.Imports)
}

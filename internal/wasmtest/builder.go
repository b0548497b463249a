// Package wasmtest builds binary Wasm v1 modules for use as test fixtures.
// It is the test-only counterpart to wasm.DecodeModule: where that package
// reads the bounded format, this package writes it, the way the teacher's
// wasm/code.Encode paired with its decoder.
package wasmtest

import (
	"bytes"
	"encoding/binary"

	"github.com/wasmvm-go/wasmvm/wasm"
	"github.com/wasmvm-go/wasmvm/wasm/code"
	"github.com/wasmvm-go/wasmvm/wasm/leb128"
)

// FuncType is a (params, results) pair, reused for both the type section
// and the shorthand Func/Import helpers below.
type FuncType struct {
	Params  []wasm.ValueType
	Results []wasm.ValueType
}

// Import describes one entry of the import section.
type Import struct {
	Module, Field string
	Type          FuncType
}

// Local is one run of same-typed declared locals in a function body.
type Local struct {
	Count uint32
	Type  wasm.ValueType
}

// Func is one entry of the function and code sections together: its
// signature, its declared locals, and its instruction stream (which must
// end with an End instruction).
type Func struct {
	Type   FuncType
	Locals []Local
	Body   []wasm.Instruction
}

// Export names a locally defined or imported function by its flat
// function-index-space index.
type Export struct {
	Name      string
	FuncIndex uint32
}

// Data is one data segment: a constant i32 offset and its init bytes.
type Data struct {
	Offset int32
	Init   []byte
}

// Module is the in-memory description of a fixture module; Encode turns
// it into the bytes wasm.DecodeModule expects.
type Module struct {
	Imports []Import
	Funcs   []Func
	Memory  *wasm.Limits
	Exports []Export
	Data    []Data
}

// Encode serializes m into the Wasm v1 binary format, emitting only the
// sections it needs (Type, Import, Function, Memory, Export, Code, Data).
func (m *Module) Encode() []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, wasm.Magic)
	binary.Write(&buf, binary.LittleEndian, wasm.Version)

	types := m.collectTypes()

	writeSection(&buf, 1, func(b *bytes.Buffer) {
		leb128.WriteVarUint32(b, uint32(len(types)))
		for _, t := range types {
			encodeFuncType(b, t)
		}
	})

	if len(m.Imports) > 0 {
		writeSection(&buf, 2, func(b *bytes.Buffer) {
			leb128.WriteVarUint32(b, uint32(len(m.Imports)))
			for _, imp := range m.Imports {
				encodeName(b, imp.Module)
				encodeName(b, imp.Field)
				b.WriteByte(0x00) // func import kind
				leb128.WriteVarUint32(b, indexOf(types, imp.Type))
			}
		})
	}

	writeSection(&buf, 3, func(b *bytes.Buffer) {
		leb128.WriteVarUint32(b, uint32(len(m.Funcs)))
		for _, f := range m.Funcs {
			leb128.WriteVarUint32(b, indexOf(types, f.Type))
		}
	})

	if m.Memory != nil {
		writeSection(&buf, 5, func(b *bytes.Buffer) {
			leb128.WriteVarUint32(b, 1)
			encodeLimits(b, *m.Memory)
		})
	}

	if len(m.Exports) > 0 {
		writeSection(&buf, 7, func(b *bytes.Buffer) {
			leb128.WriteVarUint32(b, uint32(len(m.Exports)))
			for _, exp := range m.Exports {
				encodeName(b, exp.Name)
				b.WriteByte(0x00) // func export kind
				leb128.WriteVarUint32(b, exp.FuncIndex)
			}
		})
	}

	writeSection(&buf, 10, func(b *bytes.Buffer) {
		leb128.WriteVarUint32(b, uint32(len(m.Funcs)))
		for _, f := range m.Funcs {
			var body bytes.Buffer
			leb128.WriteVarUint32(&body, uint32(len(f.Locals)))
			for _, l := range f.Locals {
				leb128.WriteVarUint32(&body, l.Count)
				body.WriteByte(byte(l.Type))
			}
			for _, inst := range f.Body {
				encodeInstruction(&body, inst)
			}
			leb128.WriteVarUint32(b, uint32(body.Len()))
			b.Write(body.Bytes())
		}
	})

	if len(m.Data) > 0 {
		writeSection(&buf, 11, func(b *bytes.Buffer) {
			leb128.WriteVarUint32(b, uint32(len(m.Data)))
			for _, d := range m.Data {
				leb128.WriteVarUint32(b, 0) // memory index
				encodeInstruction(b, I32Const(d.Offset))
				encodeInstruction(b, End())
				leb128.WriteVarUint32(b, uint32(len(d.Init)))
				b.Write(d.Init)
			}
		})
	}

	return buf.Bytes()
}

// collectTypes gathers the distinct FuncTypes used by imports and
// functions, in first-use order, the way a real toolchain deduplicates
// the type section.
func (m *Module) collectTypes() []FuncType {
	var types []FuncType
	seen := func(t FuncType) bool {
		for _, existing := range types {
			if funcTypeEqual(existing, t) {
				return true
			}
		}
		return false
	}
	for _, imp := range m.Imports {
		if !seen(imp.Type) {
			types = append(types, imp.Type)
		}
	}
	for _, f := range m.Funcs {
		if !seen(f.Type) {
			types = append(types, f.Type)
		}
	}
	return types
}

func indexOf(types []FuncType, t FuncType) uint32 {
	for i, existing := range types {
		if funcTypeEqual(existing, t) {
			return uint32(i)
		}
	}
	panic("wasmtest: type not registered")
}

func funcTypeEqual(a, b FuncType) bool {
	return valueTypesEqual(a.Params, b.Params) && valueTypesEqual(a.Results, b.Results)
}

func valueTypesEqual(a, b []wasm.ValueType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func writeSection(buf *bytes.Buffer, id byte, write func(*bytes.Buffer)) {
	var body bytes.Buffer
	write(&body)
	buf.WriteByte(id)
	leb128.WriteVarUint32(buf, uint32(body.Len()))
	buf.Write(body.Bytes())
}

func encodeName(b *bytes.Buffer, s string) {
	leb128.WriteVarUint32(b, uint32(len(s)))
	b.WriteString(s)
}

func encodeFuncType(b *bytes.Buffer, t FuncType) {
	b.WriteByte(0x60)
	encodeValueTypeVec(b, t.Params)
	encodeValueTypeVec(b, t.Results)
}

func encodeValueTypeVec(b *bytes.Buffer, vs []wasm.ValueType) {
	leb128.WriteVarUint32(b, uint32(len(vs)))
	for _, v := range vs {
		b.WriteByte(byte(v))
	}
}

func encodeLimits(b *bytes.Buffer, l wasm.Limits) {
	if l.HasMax {
		b.WriteByte(1)
		leb128.WriteVarUint32(b, l.Min)
		leb128.WriteVarUint32(b, l.Max)
		return
	}
	b.WriteByte(0)
	leb128.WriteVarUint32(b, l.Min)
}

func encodeInstruction(b *bytes.Buffer, inst wasm.Instruction) {
	b.WriteByte(byte(inst.Op))
	switch inst.Op {
	case code.OpIf:
		if inst.Block.Void {
			b.WriteByte(0x40)
		} else {
			b.WriteByte(byte(inst.Block.Result))
		}
	case code.OpCall, code.OpLocalGet, code.OpLocalSet:
		leb128.WriteVarUint32(b, inst.Localidx())
	case code.OpI32Store:
		offset, align := inst.MemArg()
		leb128.WriteVarUint32(b, align)
		leb128.WriteVarUint32(b, offset)
	case code.OpI32Const:
		leb128.WriteVarint32(b, inst.I32Const())
	}
}

// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wasm

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"unicode/utf8"

	"github.com/willf/bitset"

	"github.com/wasmvm-go/wasmvm/wasm/code"
	"github.com/wasmvm-go/wasmvm/wasm/leb128"
)

// Section ids understood by this decoder. Custom (0) is always skipped;
// any other id is DecodeError.UnknownSectionCode.
const (
	sectionCustom   = 0
	sectionType     = 1
	sectionImport   = 2
	sectionFunction = 3
	sectionMemory   = 5
	sectionExport   = 7
	sectionCode     = 10
	sectionData     = 11
)

// DecodeModule decodes a Wasm v1 binary module from r. See wasm/module.go
// and spec §4.2 for the supported section and instruction subset.
func DecodeModule(r io.Reader) (*Module, error) {
	var magic, version uint32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, newDecodeError(Malformed, "reading magic: %v", err)
	}
	if magic != Magic {
		return nil, newDecodeError(BadPreamble, "got %#x", magic)
	}
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, newDecodeError(Malformed, "reading version: %v", err)
	}
	if version != Version {
		return nil, newDecodeError(BadPreamble, "unsupported version %d", version)
	}

	m := &Module{Version: version}
	seen := bitset.New(12)

	br := bufio.NewReader(r)
	for {
		idByte, err := br.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, newDecodeError(Malformed, "reading section id: %v", err)
		}

		size, err := leb128.ReadVarUint32(br)
		if err != nil {
			return nil, newDecodeError(Malformed, "reading section size: %v", err)
		}

		body := make([]byte, size)
		if _, err := io.ReadFull(br, body); err != nil {
			return nil, newDecodeError(Malformed, "reading section body: %v", err)
		}

		id := uint(idByte)
		switch id {
		case sectionCustom:
			continue // skipped; never participates in duplicate tracking
		case sectionType, sectionImport, sectionFunction, sectionMemory, sectionExport, sectionCode, sectionData:
			if seen.Test(id) {
				return nil, newDecodeError(DuplicateSection, "section %d repeated", id)
			}
			seen.Set(id)
		default:
			return nil, newDecodeError(UnknownSectionCode, "%d", id)
		}

		sec := bytes.NewReader(body)
		switch id {
		case sectionType:
			m.Types, err = decodeTypeSection(sec)
		case sectionImport:
			m.Imports, err = decodeImportSection(sec)
		case sectionFunction:
			m.FuncTypes, err = decodeFunctionSection(sec)
		case sectionMemory:
			m.Memory, err = decodeMemorySection(sec)
		case sectionExport:
			m.Exports, err = decodeExportSection(sec)
		case sectionCode:
			m.Code, err = decodeCodeSection(sec)
		case sectionData:
			m.Data, err = decodeDataSection(sec)
		}
		if err != nil {
			return nil, err
		}
	}

	return m, nil
}

func readName(r io.ByteReader) (string, error) {
	n, err := leb128.ReadVarUint32(r)
	if err != nil {
		return "", newDecodeError(Malformed, "reading name length: %v", err)
	}
	buf := make([]byte, n)
	for i := range buf {
		b, err := r.ReadByte()
		if err != nil {
			return "", newDecodeError(Malformed, "reading name bytes: %v", err)
		}
		buf[i] = b
	}
	if !utf8.Valid(buf) {
		return "", newDecodeError(Malformed, "name is not valid utf-8")
	}
	return string(buf), nil
}

func decodeValueType(b byte) (ValueType, error) {
	switch ValueType(b) {
	case ValueTypeI32, ValueTypeI64:
		return ValueType(b), nil
	default:
		return 0, newDecodeError(Malformed, "invalid value type %#x", b)
	}
}

func decodeTypeSection(r *bytes.Reader) ([]FuncType, error) {
	count, err := leb128.ReadVarUint32(r)
	if err != nil {
		return nil, newDecodeError(Malformed, "type count: %v", err)
	}

	types := make([]FuncType, count)
	for i := range types {
		form, err := r.ReadByte()
		if err != nil {
			return nil, newDecodeError(Malformed, "type form: %v", err)
		}
		if form != 0x60 {
			return nil, newDecodeError(Malformed, "expected func type form 0x60, got %#x", form)
		}

		params, err := decodeValueTypeVec(r)
		if err != nil {
			return nil, err
		}
		results, err := decodeValueTypeVec(r)
		if err != nil {
			return nil, err
		}
		types[i] = FuncType{Params: params, Results: results}
	}
	return types, nil
}

func decodeValueTypeVec(r *bytes.Reader) ([]ValueType, error) {
	n, err := leb128.ReadVarUint32(r)
	if err != nil {
		return nil, newDecodeError(Malformed, "value type count: %v", err)
	}
	vs := make([]ValueType, n)
	for i := range vs {
		b, err := r.ReadByte()
		if err != nil {
			return nil, newDecodeError(Malformed, "value type: %v", err)
		}
		vt, err := decodeValueType(b)
		if err != nil {
			return nil, err
		}
		vs[i] = vt
	}
	return vs, nil
}

func decodeImportSection(r *bytes.Reader) ([]Import, error) {
	count, err := leb128.ReadVarUint32(r)
	if err != nil {
		return nil, newDecodeError(Malformed, "import count: %v", err)
	}

	imports := make([]Import, count)
	for i := range imports {
		module, err := readName(r)
		if err != nil {
			return nil, err
		}
		field, err := readName(r)
		if err != nil {
			return nil, err
		}
		kind, err := r.ReadByte()
		if err != nil {
			return nil, newDecodeError(Malformed, "import kind: %v", err)
		}
		if ImportKind(kind) != ImportKindFunc {
			return nil, newDecodeError(Unsupported, "non-function import kind %#x", kind)
		}
		typeIndex, err := leb128.ReadVarUint32(r)
		if err != nil {
			return nil, newDecodeError(Malformed, "import type index: %v", err)
		}
		imports[i] = Import{Module: module, Field: field, TypeIndex: typeIndex}
	}
	return imports, nil
}

func decodeFunctionSection(r *bytes.Reader) ([]uint32, error) {
	count, err := leb128.ReadVarUint32(r)
	if err != nil {
		return nil, newDecodeError(Malformed, "function count: %v", err)
	}
	out := make([]uint32, count)
	for i := range out {
		idx, err := leb128.ReadVarUint32(r)
		if err != nil {
			return nil, newDecodeError(Malformed, "function type index: %v", err)
		}
		out[i] = idx
	}
	return out, nil
}

func decodeLimits(r *bytes.Reader) (Limits, error) {
	flags, err := r.ReadByte()
	if err != nil {
		return Limits{}, newDecodeError(Malformed, "limits flags: %v", err)
	}
	min, err := leb128.ReadVarUint32(r)
	if err != nil {
		return Limits{}, newDecodeError(Malformed, "limits min: %v", err)
	}
	l := Limits{Min: min}
	if flags == 1 {
		max, err := leb128.ReadVarUint32(r)
		if err != nil {
			return Limits{}, newDecodeError(Malformed, "limits max: %v", err)
		}
		l.Max, l.HasMax = max, true
	}
	return l, nil
}

func decodeMemorySection(r *bytes.Reader) (*Limits, error) {
	count, err := leb128.ReadVarUint32(r)
	if err != nil {
		return nil, newDecodeError(Malformed, "memory count: %v", err)
	}
	if count != 1 {
		return nil, newDecodeError(Unsupported, "expected exactly one memory, got %d", count)
	}
	l, err := decodeLimits(r)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func decodeExportSection(r *bytes.Reader) ([]Export, error) {
	count, err := leb128.ReadVarUint32(r)
	if err != nil {
		return nil, newDecodeError(Malformed, "export count: %v", err)
	}
	exports := make([]Export, count)
	for i := range exports {
		name, err := readName(r)
		if err != nil {
			return nil, err
		}
		kind, err := r.ReadByte()
		if err != nil {
			return nil, newDecodeError(Malformed, "export kind: %v", err)
		}
		idx, err := leb128.ReadVarUint32(r)
		if err != nil {
			return nil, newDecodeError(Malformed, "export index: %v", err)
		}
		if ExportKind(kind) != ExportKindFunc {
			return nil, newDecodeError(Unsupported, "non-function export kind %#x", kind)
		}
		exports[i] = Export{Name: name, Kind: ExportKind(kind), FuncIndex: idx}
	}
	return exports, nil
}

func decodeCodeSection(r *bytes.Reader) ([]FunctionBody, error) {
	count, err := leb128.ReadVarUint32(r)
	if err != nil {
		return nil, newDecodeError(Malformed, "code count: %v", err)
	}

	bodies := make([]FunctionBody, count)
	for i := range bodies {
		size, err := leb128.ReadVarUint32(r)
		if err != nil {
			return nil, newDecodeError(Malformed, "body size: %v", err)
		}
		raw := make([]byte, size)
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, newDecodeError(Malformed, "body bytes: %v", err)
		}

		body, err := decodeFunctionBody(raw)
		if err != nil {
			return nil, err
		}
		bodies[i] = body
	}
	return bodies, nil
}

func decodeFunctionBody(raw []byte) (FunctionBody, error) {
	br := bytes.NewReader(raw)

	groupCount, err := leb128.ReadVarUint32(br)
	if err != nil {
		return FunctionBody{}, newDecodeError(Malformed, "local group count: %v", err)
	}
	locals := make([]LocalGroup, groupCount)
	for i := range locals {
		n, err := leb128.ReadVarUint32(br)
		if err != nil {
			return FunctionBody{}, newDecodeError(Malformed, "local group count: %v", err)
		}
		b, err := br.ReadByte()
		if err != nil {
			return FunctionBody{}, newDecodeError(Malformed, "local group type: %v", err)
		}
		vt, err := decodeValueType(b)
		if err != nil {
			return FunctionBody{}, err
		}
		locals[i] = LocalGroup{Count: n, Type: vt}
	}

	var insts []Instruction
	for br.Len() > 0 {
		inst, err := decodeInstruction(br)
		if err != nil {
			return FunctionBody{}, err
		}
		insts = append(insts, inst)
	}
	if len(insts) == 0 || insts[len(insts)-1].Op != code.OpEnd {
		return FunctionBody{}, newDecodeError(Malformed, "function body must end with end")
	}

	return FunctionBody{Locals: locals, Code: insts}, nil
}

func decodeInstruction(r *bytes.Reader) (Instruction, error) {
	opByte, err := r.ReadByte()
	if err != nil {
		return Instruction{}, newDecodeError(Malformed, "reading opcode: %v", err)
	}
	op := code.Op(opByte)

	switch op {
	case code.OpIf:
		btByte, err := r.ReadByte()
		if err != nil {
			return Instruction{}, newDecodeError(Malformed, "reading block type: %v", err)
		}
		if btByte == 0x40 {
			return Instruction{Op: op, Block: code.BlockType{Void: true}}, nil
		}
		vt, err := decodeValueType(btByte)
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Op: op, Block: code.BlockType{Result: vt}}, nil

	case code.OpEnd, code.OpReturn:
		return Instruction{Op: op}, nil

	case code.OpCall, code.OpLocalGet, code.OpLocalSet:
		idx, err := leb128.ReadVarUint32(r)
		if err != nil {
			return Instruction{}, newDecodeError(Malformed, "reading %s index: %v", op, err)
		}
		return Instruction{Op: op, Imm: int64(idx)}, nil

	case code.OpI32Store:
		align, err := leb128.ReadVarUint32(r)
		if err != nil {
			return Instruction{}, newDecodeError(Malformed, "i32.store align: %v", err)
		}
		offset, err := leb128.ReadVarUint32(r)
		if err != nil {
			return Instruction{}, newDecodeError(Malformed, "i32.store offset: %v", err)
		}
		return Instruction{Op: op, Imm: int64(uint64(offset) | uint64(align)<<32)}, nil

	case code.OpI32Const:
		v, err := leb128.ReadVarint32(r)
		if err != nil {
			return Instruction{}, newDecodeError(Malformed, "i32.const: %v", err)
		}
		return Instruction{Op: op, Imm: int64(v)}, nil

	case code.OpI32LtS, code.OpI32Add, code.OpI32Sub:
		return Instruction{Op: op}, nil

	default:
		return Instruction{}, newDecodeError(UnknownOpcode, "%#x", opByte)
	}
}

func decodeDataSection(r *bytes.Reader) ([]DataSegment, error) {
	count, err := leb128.ReadVarUint32(r)
	if err != nil {
		return nil, newDecodeError(Malformed, "data count: %v", err)
	}

	segs := make([]DataSegment, count)
	for i := range segs {
		memIdx, err := leb128.ReadVarUint32(r)
		if err != nil {
			return nil, newDecodeError(Malformed, "data memory index: %v", err)
		}

		offset, err := decodeConstI32Offset(r)
		if err != nil {
			return nil, err
		}

		n, err := leb128.ReadVarUint32(r)
		if err != nil {
			return nil, newDecodeError(Malformed, "data init length: %v", err)
		}
		init := make([]byte, n)
		if _, err := io.ReadFull(r, init); err != nil {
			return nil, newDecodeError(Malformed, "data init bytes: %v", err)
		}

		segs[i] = DataSegment{MemoryIndex: memIdx, Offset: offset, Init: init}
	}
	return segs, nil
}

// decodeConstI32Offset decodes a data segment's offset expression. Only
// the literal form [i32.const n, end] is accepted; spec §9 leaves a
// general constant-expression evaluator out of scope.
func decodeConstI32Offset(r *bytes.Reader) (int32, error) {
	inst, err := decodeInstruction(r)
	if de, ok := err.(*DecodeError); ok && de.Kind == UnknownOpcode {
		return 0, newDecodeError(Unsupported, "data offset expression must be i32.const")
	}
	if err != nil {
		return 0, err
	}
	if inst.Op != code.OpI32Const {
		return 0, newDecodeError(Unsupported, "data offset expression must be i32.const")
	}
	end, err := decodeInstruction(r)
	if de, ok := err.(*DecodeError); ok && de.Kind == UnknownOpcode {
		return 0, newDecodeError(Unsupported, "data offset expression must be terminated by end")
	}
	if err != nil {
		return 0, err
	}
	if end.Op != code.OpEnd {
		return 0, newDecodeError(Unsupported, "data offset expression must be terminated by end")
	}
	return inst.I32Const(), nil
}

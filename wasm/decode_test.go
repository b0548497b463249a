// Copyright 2020 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wasm_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wasmvm-go/wasmvm/internal/wasmtest"
	"github.com/wasmvm-go/wasmvm/wasm"
)

func TestDecodeModule_Add(t *testing.T) {
	m := &wasmtest.Module{
		Funcs: []wasmtest.Func{
			{
				Type: wasmtest.FuncType{Params: []wasm.ValueType{wasmtest.I32, wasmtest.I32}, Results: []wasm.ValueType{wasmtest.I32}},
				Body: []wasm.Instruction{wasmtest.LocalGet(0), wasmtest.LocalGet(1), wasmtest.I32Add(), wasmtest.End()},
			},
		},
		Exports: []wasmtest.Export{{Name: "add", FuncIndex: 0}},
	}

	decoded, err := wasm.DecodeModule(bytes.NewReader(m.Encode()))
	assert.NoError(t, err)
	assert.Equal(t, wasm.Version, decoded.Version)
	assert.Len(t, decoded.Types, 1)
	assert.Equal(t, []wasm.ValueType{wasm.ValueTypeI32, wasm.ValueTypeI32}, decoded.Types[0].Params)
	assert.Equal(t, []wasm.ValueType{wasm.ValueTypeI32}, decoded.Types[0].Results)
	assert.Len(t, decoded.Code, 1)
	assert.Equal(t, "add", decoded.Exports[0].Name)
}

func TestDecodeModule_EmptyFunctionBody(t *testing.T) {
	m := &wasmtest.Module{
		Funcs: []wasmtest.Func{
			{Body: []wasm.Instruction{wasmtest.End()}},
		},
	}

	decoded, err := wasm.DecodeModule(bytes.NewReader(m.Encode()))
	assert.NoError(t, err)
	assert.Equal(t, []wasm.Instruction{wasmtest.End()}, decoded.Code[0].Code)
}

func TestDecodeModule_BadPreamble(t *testing.T) {
	_, err := wasm.DecodeModule(bytes.NewReader([]byte{0x00, 0x61, 0x73, 0x6d, 2, 0, 0, 0}))
	var decErr *wasm.DecodeError
	assert.ErrorAs(t, err, &decErr)
	assert.Equal(t, wasm.BadPreamble, decErr.Kind)
}

func TestDecodeModule_BadMagic(t *testing.T) {
	_, err := wasm.DecodeModule(bytes.NewReader([]byte{0x7f, 0x45, 0x4c, 0x46, 1, 0, 0, 0}))
	var decErr *wasm.DecodeError
	assert.ErrorAs(t, err, &decErr)
	assert.Equal(t, wasm.BadPreamble, decErr.Kind)
}

func TestDecodeModule_UnknownOpcode(t *testing.T) {
	m := &wasmtest.Module{
		Funcs: []wasmtest.Func{
			{Body: []wasm.Instruction{wasmtest.End()}},
		},
	}
	raw := m.Encode()

	// Corrupt the code section's sole instruction byte (End, 0x0b) into an
	// opcode outside the bounded subset.
	idx := bytes.LastIndexByte(raw, 0x0b)
	raw[idx] = 0x02 // block, not in scope

	_, err := wasm.DecodeModule(bytes.NewReader(raw))
	var decErr *wasm.DecodeError
	assert.ErrorAs(t, err, &decErr)
	assert.Equal(t, wasm.UnknownOpcode, decErr.Kind)
}

func TestDecodeModule_DuplicateSection(t *testing.T) {
	raw := (&wasmtest.Module{
		Funcs: []wasmtest.Func{{Body: []wasm.Instruction{wasmtest.End()}}},
	}).Encode()

	// Splice in a second copy of the type section (id 1, size 4, payload
	// "\x01\x60\x00\x00": one func type, no params, no results).
	typeSection := []byte{1, 4, 1, 0x60, 0, 0}
	corrupted := append(append(append([]byte{}, raw[:8]...), typeSection...), raw[8:]...)

	_, err := wasm.DecodeModule(bytes.NewReader(corrupted))
	var decErr *wasm.DecodeError
	assert.ErrorAs(t, err, &decErr)
	assert.Equal(t, wasm.DuplicateSection, decErr.Kind)
}

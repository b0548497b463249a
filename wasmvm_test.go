package wasmvm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	wasmvm "github.com/wasmvm-go/wasmvm"
	"github.com/wasmvm-go/wasmvm/exec"
	"github.com/wasmvm-go/wasmvm/internal/wasmtest"
	"github.com/wasmvm-go/wasmvm/wasm"
)

func TestInstantiateAndCall_Add(t *testing.T) {
	raw := (&wasmtest.Module{
		Funcs: []wasmtest.Func{
			{
				Type: wasmtest.FuncType{Params: []wasm.ValueType{wasmtest.I32, wasmtest.I32}, Results: []wasm.ValueType{wasmtest.I32}},
				Body: []wasm.Instruction{wasmtest.LocalGet(0), wasmtest.LocalGet(1), wasmtest.I32Add(), wasmtest.End()},
			},
		},
		Exports: []wasmtest.Export{{Name: "add", FuncIndex: 0}},
	}).Encode()

	rt, err := wasmvm.Instantiate(raw)
	assert.NoError(t, err)

	result, err := rt.Call("add", []wasmvm.Value{wasmvm.I32(2), wasmvm.I32(3)})
	assert.NoError(t, err)
	assert.Equal(t, int32(5), result.AsI32())
}

func TestInstantiate_AddImportAndCall(t *testing.T) {
	raw := (&wasmtest.Module{
		Imports: []wasmtest.Import{{Module: "env", Field: "add", Type: wasmtest.FuncType{
			Params: []wasm.ValueType{wasmtest.I32}, Results: []wasm.ValueType{wasmtest.I32},
		}}},
		Funcs: []wasmtest.Func{
			{
				Type: wasmtest.FuncType{Params: []wasm.ValueType{wasmtest.I32}, Results: []wasm.ValueType{wasmtest.I32}},
				Body: []wasm.Instruction{wasmtest.LocalGet(0), wasmtest.Call(0), wasmtest.End()},
			},
		},
		Exports: []wasmtest.Export{{Name: "call_add", FuncIndex: 1}},
	}).Encode()

	rt, err := wasmvm.Instantiate(raw)
	assert.NoError(t, err)

	rt.AddImport("env", "add", func(store *exec.Store, args []wasmvm.Value) (*wasmvm.Value, error) {
		v := wasmvm.I32(args[0].AsI32() * 2)
		return &v, nil
	})

	result, err := rt.Call("call_add", []wasmvm.Value{wasmvm.I32(10)})
	assert.NoError(t, err)
	assert.Equal(t, int32(20), result.AsI32())
}

func TestInstantiate_DecodeError(t *testing.T) {
	_, err := wasmvm.Instantiate([]byte{0, 0, 0, 0})
	assert.Error(t, err)
}

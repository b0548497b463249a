package exec_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wasmvm-go/wasmvm/exec"
	"github.com/wasmvm-go/wasmvm/internal/wasmtest"
	"github.com/wasmvm-go/wasmvm/wasm"
)

func decode(t *testing.T, m *wasmtest.Module) *wasm.Module {
	t.Helper()
	decoded, err := wasm.DecodeModule(bytes.NewReader(m.Encode()))
	assert.NoError(t, err)
	return decoded
}

func TestInstantiate_MemoryInit(t *testing.T) {
	limits := wasm.Limits{Min: 1}
	decoded := decode(t, &wasmtest.Module{
		Memory: &limits,
		Data: []wasmtest.Data{
			{Offset: 0, Init: []byte("hello")},
			{Offset: 5, Init: []byte("world")},
		},
	})

	store, err := exec.Instantiate(decoded)
	assert.NoError(t, err)
	assert.Equal(t, "helloworld", string(store.Memory.Slice(0, 10)))
	assert.Equal(t, []byte{0, 0, 0}, store.Memory.Slice(10, 3))
	assert.Equal(t, exec.PageSize, store.Memory.Len())
}

func TestInstantiate_DataSegmentOutOfBounds(t *testing.T) {
	limits := wasm.Limits{Min: 1}
	decoded := decode(t, &wasmtest.Module{
		Memory: &limits,
		Data:   []wasmtest.Data{{Offset: int32(exec.PageSize - 2), Init: []byte("abcd")}},
	})

	_, err := exec.Instantiate(decoded)
	assert.Error(t, err)
}

func TestInstantiate_ImportedFunctionTypeIndex(t *testing.T) {
	decoded := decode(t, &wasmtest.Module{
		Imports: []wasmtest.Import{
			{Module: "env", Field: "add", Type: wasmtest.FuncType{Params: []wasm.ValueType{wasmtest.I32}, Results: []wasm.ValueType{wasmtest.I32}}},
		},
		Funcs: []wasmtest.Func{
			{
				Type: wasmtest.FuncType{Params: []wasm.ValueType{wasmtest.I32}, Results: []wasm.ValueType{wasmtest.I32}},
				Body: []wasm.Instruction{wasmtest.LocalGet(0), wasmtest.Call(0), wasmtest.End()},
			},
		},
		Exports: []wasmtest.Export{{Name: "call_add", FuncIndex: 1}},
	})

	store, err := exec.Instantiate(decoded)
	assert.NoError(t, err)
	assert.Len(t, store.Functions, 2)

	ext, ok := store.Functions[0].(*exec.ExternalFunction)
	assert.True(t, ok)
	assert.Equal(t, "env", ext.ModuleName)
	assert.Equal(t, "add", ext.FieldName)

	idx, ok := store.ExportedFuncIndex("call_add")
	assert.True(t, ok)
	assert.Equal(t, uint32(1), idx)
}

package wasi_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wasmvm-go/wasmvm/exec"
	"github.com/wasmvm-go/wasmvm/interpreter"
	"github.com/wasmvm-go/wasmvm/wasi"
	"github.com/wasmvm-go/wasmvm/wasm"
)

func newMemoryStore(t *testing.T, pages uint32) *exec.Store {
	t.Helper()
	return &exec.Store{Memory: exec.NewMemory(pages, 0, false)}
}

func TestHandler_FdWrite(t *testing.T) {
	store := newMemoryStore(t, 1)
	msg := []byte("hi there")
	store.Memory.WriteAt(0, msg)
	store.Memory.PutUint32(100, 0)               // iov ptr
	store.Memory.PutUint32(104, uint32(len(msg))) // iov len

	var out bytes.Buffer
	h := wasi.NewHandler()
	h.SetFile(3, &out)

	v, err := h.Call(store, "fd_write", []wasm.Value{wasm.I32(3), wasm.I32(100), wasm.I32(1), wasm.I32(200)})
	assert.NoError(t, err)
	assert.Equal(t, int32(0), v.AsI32())
	assert.Equal(t, "hi there", out.String())
	assert.Equal(t, uint32(len(msg)), store.Memory.Uint32(200))
}

func TestHandler_FdWriteZeroIovs(t *testing.T) {
	store := newMemoryStore(t, 1)
	var out bytes.Buffer
	h := wasi.NewHandler()
	h.SetFile(3, &out)

	v, err := h.Call(store, "fd_write", []wasm.Value{wasm.I32(3), wasm.I32(100), wasm.I32(0), wasm.I32(200)})
	assert.NoError(t, err)
	assert.Equal(t, int32(0), v.AsI32())
	assert.Equal(t, uint32(0), store.Memory.Uint32(200))
}

func TestHandler_UnknownFd(t *testing.T) {
	store := newMemoryStore(t, 1)
	h := wasi.NewHandler()

	_, err := h.Call(store, "fd_write", []wasm.Value{wasm.I32(99), wasm.I32(0), wasm.I32(0), wasm.I32(200)})
	assert.Error(t, err)
	var execErr *interpreter.ExecutionError
	assert.ErrorAs(t, err, &execErr)
	assert.Equal(t, interpreter.HostError, execErr.Kind)
}

func TestHandler_UnimplementedFunction(t *testing.T) {
	store := newMemoryStore(t, 1)
	h := wasi.NewHandler()

	_, err := h.Call(store, "fd_read", nil)
	assert.Error(t, err)
	var execErr *interpreter.ExecutionError
	assert.ErrorAs(t, err, &execErr)
	assert.Equal(t, interpreter.Unimplemented, execErr.Kind)
}

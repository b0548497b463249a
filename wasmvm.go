// Package wasmvm is the public façade described in spec §4.6: decode and
// instantiate a Wasm v1 binary module, optionally attach a WASI handler,
// register host imports, and call its exports.
package wasmvm

import (
	"bytes"
	"io"

	"github.com/wasmvm-go/wasmvm/exec"
	"github.com/wasmvm-go/wasmvm/interpreter"
	"github.com/wasmvm-go/wasmvm/wasm"
)

// Re-exported for callers who only need the public surface of this
// module, without reaching into its subpackages.
type (
	Value       = wasm.Value
	ValueType   = wasm.ValueType
	Runtime     = interpreter.Runtime
	HostFunc    = interpreter.HostFunc
	WasiHandler = interpreter.WasiHandler
)

var (
	I32 = wasm.I32
	I64 = wasm.I64
)

const (
	ValueTypeI32 = wasm.ValueTypeI32
	ValueTypeI64 = wasm.ValueTypeI64
)

// Instantiate decodes raw as a Wasm v1 module, builds its store, and
// returns a Runtime with no WASI handler attached (spec §4.6).
func Instantiate(raw []byte) (*Runtime, error) {
	return instantiate(bytes.NewReader(raw), nil)
}

// InstantiateWithWasi is Instantiate plus attaching handler as the
// Runtime's WASI dispatch target.
func InstantiateWithWasi(raw []byte, handler WasiHandler) (*Runtime, error) {
	return instantiate(bytes.NewReader(raw), handler)
}

func instantiate(r io.Reader, handler WasiHandler) (*Runtime, error) {
	m, err := wasm.DecodeModule(r)
	if err != nil {
		return nil, err
	}
	store, err := exec.Instantiate(m)
	if err != nil {
		return nil, err
	}
	rt := interpreter.NewRuntime(store)
	if handler != nil {
		rt.SetWasiHandler(handler)
	}
	return rt, nil
}

package exec

import "github.com/wasmvm-go/wasmvm/wasm"

// Function is the flat function-index-space entry the store builds for
// every import and every locally defined function (spec §3, "Function
// instance"). It is realized as an interface with two concrete variants
// rather than an inheritance hierarchy, per the "sum types over
// inheritance" design note: a type switch on the concrete type stands in
// for pattern matching on the variant.
type Function interface {
	Signature() wasm.FuncType
	isFunction()
}

// InternalFunction is a function defined in the module's own Code
// section: its signature, its expanded local-variable layout, and its
// instruction stream.
type InternalFunction struct {
	Sig    wasm.FuncType
	Locals []wasm.ValueType // expanded declared locals, excluding params
	Code   []wasm.Instruction
}

func (f *InternalFunction) Signature() wasm.FuncType { return f.Sig }
func (*InternalFunction) isFunction()                {}

// ExternalFunction is a function imported from another module: a host
// callback (registered via AddImport) or, when ModuleName is
// wasi_snapshot_preview1, a call dispatched to the attached WASI handler.
type ExternalFunction struct {
	ModuleName string
	FieldName  string
	Sig        wasm.FuncType
}

func (f *ExternalFunction) Signature() wasm.FuncType { return f.Sig }
func (*ExternalFunction) isFunction()                {}

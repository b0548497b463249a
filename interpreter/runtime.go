// Package interpreter implements the stack-machine execution engine: the
// operand stack, the call stack of frames, the execute loop, and the host
// and WASI call-dispatch paths described in spec §4.4.
package interpreter

import "github.com/wasmvm-go/wasmvm/wasm"
import "github.com/wasmvm-go/wasmvm/exec"

// HostFunc is a registered host callback: given mutable access to the
// store (so it can read/write linear memory) and the popped argument
// vector, it returns an optional result value.
type HostFunc func(store *exec.Store, args []wasm.Value) (*wasm.Value, error)

// WasiHandler is the port the interpreter calls into when a module
// imports from wasi_snapshot_preview1 and a handler has been attached
// (spec §4.5). The wasi package's Handler type implements this.
type WasiHandler interface {
	Call(store *exec.Store, name string, args []wasm.Value) (*wasm.Value, error)
}

const wasiModuleName = "wasi_snapshot_preview1"

// Runtime is the single owner of a store, the operand and call stacks,
// the host import registry, and an optional WASI handler (spec §3,
// "Ownership"). It is not safe for concurrent use, and host callbacks
// must not re-enter Call on the same Runtime (spec §5).
type Runtime struct {
	store   *exec.Store
	imports map[string]map[string]HostFunc
	wasi    WasiHandler

	operand []wasm.Value
	frames  []*frame
}

// NewRuntime creates a Runtime over an already-instantiated store, with
// no registered imports and no WASI handler.
func NewRuntime(store *exec.Store) *Runtime {
	return &Runtime{store: store, imports: map[string]map[string]HostFunc{}}
}

// SetWasiHandler attaches a WASI handler. When present, External function
// instances whose ModuleName is wasi_snapshot_preview1 are dispatched to
// it instead of through the generic host import registry.
func (r *Runtime) SetWasiHandler(h WasiHandler) { r.wasi = h }

// Store exposes the runtime's store, e.g. so a caller can inspect
// memory after a call.
func (r *Runtime) Store() *exec.Store { return r.store }

// AddImport registers a host callback under (moduleName, fieldName). A
// later registration for the same pair replaces the earlier one.
func (r *Runtime) AddImport(moduleName, fieldName string, fn HostFunc) {
	m, ok := r.imports[moduleName]
	if !ok {
		m = map[string]HostFunc{}
		r.imports[moduleName] = m
	}
	m[fieldName] = fn
}

// Call looks up name in the store's export index, invokes it with args,
// and returns its single result, if its signature has one (spec §4.4.1).
func (r *Runtime) Call(name string, args []wasm.Value) (result *wasm.Value, err error) {
	defer func() {
		if x := recover(); x != nil {
			r.operand = r.operand[:0]
			r.frames = r.frames[:0]
			err = toExecutionError(x)
		}
	}()

	idx, ok := r.store.ExportedFuncIndex(name)
	if !ok {
		return nil, errNotExported(name)
	}
	fn, ok := r.store.Function(idx)
	if !ok {
		return nil, errMissingFunction(idx)
	}

	r.operand = append(r.operand, args...)

	switch f := fn.(type) {
	case *exec.InternalFunction:
		if err := r.invokeInternal(f); err != nil {
			r.operand = r.operand[:0]
			r.frames = r.frames[:0]
			return nil, err
		}
		if err := r.run(); err != nil {
			r.operand = r.operand[:0]
			r.frames = r.frames[:0]
			return nil, err
		}
	case *exec.ExternalFunction:
		ret, err := r.dispatchExternal(f)
		if err != nil {
			r.operand = r.operand[:0]
			r.frames = r.frames[:0]
			return nil, err
		}
		if ret != nil {
			r.operand = append(r.operand, *ret)
		}
	default:
		panic("unreachable: unknown Function variant")
	}

	if len(fn.Signature().Results) == 0 {
		return nil, nil
	}
	v := r.pop()
	return &v, nil
}

// toExecutionError converts a recovered panic value — either an
// *ExecutionError raised deliberately, or a Go runtime.Error from an
// out-of-bounds memory access — into the error Call returns. Any other
// panic value is re-raised; it indicates a bug in this package rather
// than a well-formed execution failure.
func toExecutionError(x interface{}) error {
	switch e := x.(type) {
	case *ExecutionError:
		return e
	case error:
		if isBoundsError(e) {
			return execErr(BadMemoryAccess, "%v", e)
		}
		panic(x)
	default:
		panic(x)
	}
}

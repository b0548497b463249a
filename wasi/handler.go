// Package wasi implements the fd_write-only subset of wasi_snapshot_preview1
// described in spec §4.5: a file table mapping small integer descriptors to
// writable host streams, and the fd_write algorithm that drains iovecs out
// of a module's linear memory into one of them.
package wasi

import (
	"fmt"
	"io"
	"os"

	"github.com/willf/bitset"

	"github.com/wasmvm-go/wasmvm/exec"
	"github.com/wasmvm-go/wasmvm/interpreter"
	"github.com/wasmvm-go/wasmvm/wasm"
)

const fdWriteName = "fd_write"

// Handler is a interpreter.WasiHandler. Its file table holds one writable
// stream per descriptor; present tracks which descriptors have been
// assigned one, the way wasm.DecodeModule tracks which sections it has
// already seen.
type Handler struct {
	files   []io.Writer
	present *bitset.BitSet
}

// NewHandler builds a Handler with the host's stdin, stdout, and stderr
// installed at fd 0, 1, and 2 (spec §4.6, WasiHandler::new).
func NewHandler() *Handler {
	h := &Handler{present: bitset.New(8)}
	h.SetFile(0, os.Stdin)
	h.SetFile(1, newRawFile(os.Stdout))
	h.SetFile(2, newRawFile(os.Stderr))
	return h
}

// SetFile installs w as the writable stream at fd, growing the table if
// needed. Callers substitute a capturing writer here to observe a
// module's output.
func (h *Handler) SetFile(fd uint32, w io.Writer) {
	for uint32(len(h.files)) <= fd {
		h.files = append(h.files, nil)
	}
	h.files[fd] = w
	h.present.Set(uint(fd))
}

// Call dispatches one wasi_snapshot_preview1 import by field name (spec
// §4.5). Only fd_write is implemented.
func (h *Handler) Call(store *exec.Store, name string, args []wasm.Value) (*wasm.Value, error) {
	if name != fdWriteName {
		return nil, &interpreter.ExecutionError{
			Kind:   interpreter.Unimplemented,
			Detail: fmt.Sprintf("wasi function %q", name),
		}
	}
	return h.fdWrite(store, args)
}

// fdWrite implements the algorithm in spec §4.5: read iovs_len (ptr,
// length) pairs from memory starting at iovs, write each range to
// file_table[fd], sum the bytes actually written, store the sum at rp,
// and return I32(0).
func (h *Handler) fdWrite(store *exec.Store, args []wasm.Value) (result *wasm.Value, err error) {
	if len(args) != 4 {
		return nil, &interpreter.ExecutionError{Kind: interpreter.TypeMismatch, Detail: "fd_write takes 4 i32 arguments"}
	}

	defer func() {
		if x := recover(); x != nil {
			result = nil
			err = &interpreter.ExecutionError{Kind: interpreter.HostError, Cause: fmt.Errorf("%v", x)}
		}
	}()

	fd := uint32(args[0].AsI32())
	iovsPtr := uint32(args[1].AsI32())
	iovsLen := uint32(args[2].AsI32())
	rp := uint32(args[3].AsI32())

	if fd >= uint32(len(h.files)) || !h.present.Test(uint(fd)) || h.files[fd] == nil {
		return nil, &interpreter.ExecutionError{Kind: interpreter.HostError, Detail: fmt.Sprintf("unknown fd %d", fd)}
	}
	w := h.files[fd]

	var total uint32
	for i := uint32(0); i < iovsLen; i++ {
		entry := iovsPtr + i*8
		ptr := store.Memory.Uint32(entry)
		length := store.Memory.Uint32(entry + 4)

		n, werr := writeFull(w, store.Memory.Slice(ptr, length))
		total += uint32(n)
		if werr != nil {
			return nil, &interpreter.ExecutionError{Kind: interpreter.HostError, Cause: werr}
		}
	}

	store.Memory.PutUint32(rp, total)
	v := wasm.I32(0)
	return &v, nil
}

// writeFull writes data to w in full, looping on short writes the way a
// raw file descriptor can produce them (spec §4.5, "writes may be
// partial; loop until each iov is fully consumed").
func writeFull(w io.Writer, data []byte) (int, error) {
	total := 0
	for total < len(data) {
		n, werr := w.Write(data[total:])
		total += n
		if werr != nil {
			return total, werr
		}
		if n == 0 {
			return total, io.ErrShortWrite
		}
	}
	return total, nil
}

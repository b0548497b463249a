// Package exec builds a runtime image — function instances, linear
// memory, and an export index — out of a decoded wasm.Module. This is the
// "store" of spec §4.3: it resolves cross-section references once, at
// instantiation time, and hands the interpreter a flat, indexable image.
package exec

import "encoding/binary"

// PageSize is the fixed granularity of linear memory, in bytes.
const PageSize = 65536

// Memory is a Wasm v1 linear memory: a single, non-growable byte buffer.
// Unlike the teacher's exec.Memory, this type never reallocates — the
// spec's bounded subset has no memory.grow — so it is a plain []byte
// rather than an mmap-backed reservation.
type Memory struct {
	bytes []byte
	max   uint32
	hasMax bool
}

// NewMemory allocates a zeroed linear memory of min pages, remembering an
// optional max for informational purposes (memory.grow is out of scope,
// so max is never consulted to reject a write).
func NewMemory(min uint32, max uint32, hasMax bool) *Memory {
	return &Memory{bytes: make([]byte, uint64(min)*PageSize), max: max, hasMax: hasMax}
}

// Len returns the memory's current size in bytes.
func (m *Memory) Len() int { return len(m.bytes) }

// Bytes returns the memory's backing buffer.
func (m *Memory) Bytes() []byte { return m.bytes }

// PutUint32 writes v as little-endian at byte offset off. It panics with a
// Go runtime slice-bounds error if the write runs past the end of memory;
// the interpreter converts that into ExecutionError.BadMemoryAccess (see
// SPEC_FULL.md §13.3).
func (m *Memory) PutUint32(off uint32, v uint32) {
	binary.LittleEndian.PutUint32(m.bytes[off:off+4], v)
}

// Uint32 reads a little-endian uint32 at byte offset off.
func (m *Memory) Uint32(off uint32) uint32 {
	return binary.LittleEndian.Uint32(m.bytes[off : off+4])
}

// WriteAt copies data into memory starting at byte offset off. It panics
// on an out-of-bounds range, same as PutUint32.
func (m *Memory) WriteAt(off uint32, data []byte) {
	copy(m.bytes[off:int(off)+len(data)], data)
}

// Slice returns the len bytes starting at off, for reading; callers must
// not retain it past the next memory write.
func (m *Memory) Slice(off, len uint32) []byte {
	return m.bytes[off : off+len]
}

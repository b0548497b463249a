// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wasm

import "fmt"

// DecodeError is returned by DecodeModule. Every decode failure carries one
// of these kinds, mirroring the taxonomy the teacher's wast/section
// decoders raise as distinct sentinel errors.
type DecodeErrorKind int

const (
	// BadPreamble indicates the input does not begin with "\0asm" followed
	// by little-endian u32 version 1.
	BadPreamble DecodeErrorKind = iota
	// UnknownSectionCode indicates a section id outside the supported set
	// (0, 1, 2, 3, 5, 7, 10, 11).
	UnknownSectionCode
	// DuplicateSection indicates a non-Custom section id appearing more
	// than once.
	DuplicateSection
	// UnknownOpcode indicates a byte outside the bounded instruction
	// subset encountered while decoding a function body.
	UnknownOpcode
	// Malformed indicates truncated input, an over-long LEB128 value, or
	// invalid UTF-8 in a name.
	Malformed
	// Unsupported indicates a structurally valid but out-of-scope
	// construct: a non-function import/export kind, more than one memory,
	// or a data-segment offset expression other than [i32.const, end].
	Unsupported
)

func (k DecodeErrorKind) String() string {
	switch k {
	case BadPreamble:
		return "bad preamble"
	case UnknownSectionCode:
		return "unknown section code"
	case DuplicateSection:
		return "duplicate section"
	case UnknownOpcode:
		return "unknown opcode"
	case Malformed:
		return "malformed"
	case Unsupported:
		return "unsupported"
	default:
		return "decode error"
	}
}

// DecodeError is the error type returned by DecodeModule and everything it
// calls. Detail carries the offending byte/index/name where one is
// available.
type DecodeError struct {
	Kind   DecodeErrorKind
	Detail string
}

func (e *DecodeError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("wasm: %s", e.Kind)
	}
	return fmt.Sprintf("wasm: %s: %s", e.Kind, e.Detail)
}

func newDecodeError(kind DecodeErrorKind, format string, args ...interface{}) *DecodeError {
	return &DecodeError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

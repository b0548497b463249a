// Copyright 2018 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package leb128 reads and writes the LEB128 variable-length integer
// encoding used throughout the WASM binary format.
package leb128

import (
	"errors"
	"io"
)

// ErrOverflow is returned when an encoded value does not fit in the
// requested width after five (32-bit) or ten (64-bit) continuation bytes.
var ErrOverflow = errors.New("leb128: integer overflow")

// ReadVarUint32 reads an unsigned LEB128 value of at most 32 bits.
func ReadVarUint32(r io.ByteReader) (uint32, error) {
	var result uint32
	var shift uint
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		if shift == 35 {
			return 0, ErrOverflow
		}
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}
}

// ReadVarint32 reads a signed LEB128 value of at most 32 bits.
func ReadVarint32(r io.ByteReader) (int32, error) {
	v, err := readVarintN(r, 32, 35)
	return int32(v), err
}

// ReadVarint64 reads a signed LEB128 value of at most 64 bits.
func ReadVarint64(r io.ByteReader) (int64, error) {
	return readVarintN(r, 64, 70)
}

func readVarintN(r io.ByteReader, size, maxShift uint) (int64, error) {
	var result int64
	var shift uint
	var b byte
	var err error
	for {
		b, err = r.ReadByte()
		if err != nil {
			return 0, err
		}
		if shift >= maxShift {
			return 0, ErrOverflow
		}
		result |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
	}
	if shift < size && b&0x40 != 0 {
		result |= -1 << shift
	}
	return result, nil
}

// WriteVarUint32 writes v as an unsigned LEB128 value.
func WriteVarUint32(w io.Writer, v uint32) (int, error) {
	n := 0
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		if _, err := w.Write([]byte{b}); err != nil {
			return n, err
		}
		n++
		if v == 0 {
			return n, nil
		}
	}
}

// WriteVarint32 writes v as a signed LEB128 value.
func WriteVarint32(w io.Writer, v int32) (int, error) {
	return WriteVarint64(w, int64(v))
}

// WriteVarint64 writes v as a signed LEB128 value.
func WriteVarint64(w io.Writer, v int64) (int, error) {
	n := 0
	for {
		b := byte(v & 0x7f)
		v >>= 7
		signBitSet := b&0x40 != 0
		done := (v == 0 && !signBitSet) || (v == -1 && signBitSet)
		if !done {
			b |= 0x80
		}
		if _, err := w.Write([]byte{b}); err != nil {
			return n, err
		}
		n++
		if done {
			return n, nil
		}
	}
}

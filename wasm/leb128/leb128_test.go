// Copyright 2018 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package leb128

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadWriteVarUint32Boundaries(t *testing.T) {
	cases := []uint32{0, 127, 128, 16383, 16384, 2097151, 2097152, math.MaxUint32}
	for _, v := range cases {
		var buf bytes.Buffer
		_, err := WriteVarUint32(&buf, v)
		assert.NoError(t, err)

		got, err := ReadVarUint32(&buf)
		assert.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestReadWriteVarint32Boundaries(t *testing.T) {
	cases := []int32{0, 127, -127, 128, -128, 16383, -16383, 16384, -16384, math.MinInt32, math.MaxInt32}
	for _, v := range cases {
		var buf bytes.Buffer
		_, err := WriteVarint32(&buf, v)
		assert.NoError(t, err)

		got, err := ReadVarint32(&buf)
		assert.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestReadVarUint32Overflow(t *testing.T) {
	buf := bytes.NewReader([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80})
	_, err := ReadVarUint32(buf)
	assert.Equal(t, ErrOverflow, err)
}

func TestReadVarUint32Truncated(t *testing.T) {
	buf := bytes.NewReader([]byte{0x80, 0x80})
	_, err := ReadVarUint32(buf)
	assert.Error(t, err)
}

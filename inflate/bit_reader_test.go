// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package inflate

import (
	"bytes"
	"io"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsnet/inflate/internal/testutil"
)

func TestBitReader(t *testing.T) {
	input := testutil.MustDecodeBitGen(`<<<
		< 1 011 D5:17 H13:1abc # Mixed widths
		< 0*2                  # Padding
		X:ff
	`)
	br := NewBitReader(bytes.NewReader(input))

	var err error
	func() {
		defer errRecover(&err)
		assert.EqualValues(t, 1, br.ReadBits(1))
		assert.EqualValues(t, 3, br.ReadBits(3))
		assert.EqualValues(t, 17, br.ReadBits(5))
		assert.EqualValues(t, 0x1abc, br.ReadBits(13))
		assert.EqualValues(t, 0, br.ReadPads())
		assert.EqualValues(t, 0, br.BitsBuffered())
		assert.EqualValues(t, 0xff, br.ReadBits(8))
		br.ReadBits(1)
	}()
	assert.Equal(t, UnexpectedEOF, CodeOf(err))
	assert.EqualValues(t, len(input), br.Offset())
}

func TestBitReaderUnreadBytes(t *testing.T) {
	input := []byte{0xa5, 0x01, 0x02, 0x03, 0x04}
	for name, r := range map[string]func() io.Reader{
		"whole":   func() io.Reader { return bytes.NewReader(input) },
		"onebyte": func() io.Reader { return iotest.OneByteReader(bytes.NewReader(input)) },
	} {
		t.Run(name, func(t *testing.T) {
			br := NewBitReader(r())
			br.ReadBits(4)
			br.NeedBits(28) // Feeds four bytes
			br.ConsumeBits(4)
			assert.EqualValues(t, 24, br.BitsBuffered())
			assert.EqualValues(t, 4, br.Offset())

			br.UnreadBytes()
			assert.EqualValues(t, 0, br.BitsBuffered())
			assert.EqualValues(t, 1, br.Offset())

			rest, err := io.ReadAll(br)
			require.NoError(t, err)
			assert.Equal(t, input[1:], rest)
		})
	}
}

func TestBitReaderReadByte(t *testing.T) {
	br := NewBitReader(bytes.NewReader([]byte{0x0f, 0x34, 0x12, 0x56}))
	br.ReadBits(4)
	_, err := br.ReadByte()
	assert.Equal(t, CorruptStream, CodeOf(err), "unaligned read")

	br.ReadPads()
	assert.EqualValues(t, 0x1234, br.ReadBits(16))
	c, err := br.PeekByte()
	require.NoError(t, err)
	assert.EqualValues(t, 0x56, c)
	c, err = br.ReadByte()
	require.NoError(t, err)
	assert.EqualValues(t, 0x56, c)
	_, err = br.ReadByte()
	assert.Equal(t, io.EOF, err)
}

func TestBitReaderReset(t *testing.T) {
	br := NewBitReader(bytes.NewReader([]byte{0xff}))
	br.ReadBits(3)
	br.Reset(bytes.NewReader([]byte{0x80}))
	assert.EqualValues(t, 0, br.Offset())
	assert.EqualValues(t, 0, br.BitsBuffered())
	assert.EqualValues(t, 0x80, br.ReadBits(8))
}

// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package inflate

import (
	"bytes"
	"compress/flate"
	"fmt"
	"hash/crc32"
	"io"
	"testing"

	kpflate "github.com/klauspost/compress/flate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsnet/inflate/internal/testutil"
)

func mustCompress(tb testing.TB, data []byte, level int) []byte {
	var buf bytes.Buffer
	zw, err := flate.NewWriter(&buf, level)
	require.NoError(tb, err)
	_, err = zw.Write(data)
	require.NoError(tb, err)
	require.NoError(tb, zw.Close())
	return buf.Bytes()
}

func mustCompressKP(tb testing.TB, data []byte, level int) []byte {
	var buf bytes.Buffer
	zw, err := kpflate.NewWriter(&buf, level)
	require.NoError(tb, err)
	_, err = zw.Write(data)
	require.NoError(tb, err)
	require.NoError(tb, zw.Close())
	return buf.Bytes()
}

func TestRoundTrip(t *testing.T) {
	encoders := map[string]func(testing.TB, []byte, int) []byte{
		"std": mustCompress,
		"kp":  mustCompressKP,
	}
	levels := []int{flate.HuffmanOnly, flate.NoCompression, flate.BestSpeed, flate.DefaultCompression, flate.BestCompression}
	sizes := []int{0, 1, 1e3, 1e5}

	for _, name := range testutil.CorpusNames() {
		for _, n := range sizes {
			data := testutil.Corpora[name](n)
			for enc, compress := range encoders {
				for _, level := range levels {
					t.Run(fmt.Sprintf("%s/%d/%s/%d", name, n, enc, level), func(t *testing.T) {
						input := compress(t, data, level)
						input = append(input, testutil.Trailer(data)...)

						var out bytes.Buffer
						st, err := Inflate(&out, bytes.NewReader(input), &Config{Trailer: true})
						require.NoError(t, err)
						assert.True(t, bytes.Equal(data, out.Bytes()), "output mismatch")
						assert.EqualValues(t, len(input), st.BytesIn)
						assert.EqualValues(t, len(data), st.BytesOut)
						assert.Equal(t, crc32.ChecksumIEEE(data), st.CRC32)
						assert.Equal(t, st.Blocks, st.StoredBlocks+st.FixedBlocks+st.DynamicBlocks)
					})
				}
			}
		}
	}
}

func TestRoundTripTableWidths(t *testing.T) {
	// Narrow primary tables push most codes into sub-tables.
	data := testutil.Text(1 << 16)
	input := mustCompress(t, data, flate.BestCompression)
	for _, bits := range [][2]uint{{1, 1}, {4, 3}, {9, 6}, {12, 10}, {15, 15}} {
		var out bytes.Buffer
		_, err := Inflate(&out, bytes.NewReader(input), &Config{LitBits: bits[0], DistBits: bits[1]})
		require.NoError(t, err, "bits=%v", bits)
		assert.True(t, bytes.Equal(data, out.Bytes()), "bits=%v: output mismatch", bits)
	}
}

func TestRoundTripSyncFlush(t *testing.T) {
	// Output is delivered at every block boundary, so a flushed prefix is
	// readable before the rest of the stream exists.
	pr, pw := io.Pipe()
	zw, err := flate.NewWriter(pw, flate.DefaultCompression)
	require.NoError(t, err)

	zr := NewReader(pr, nil)
	defer zr.Close()

	flushed := make(chan struct{})
	go func() {
		defer close(flushed)
		zw.Write([]byte("hello, "))
		zw.Flush()
	}()
	buf := make([]byte, 7)
	_, err = io.ReadFull(zr, buf)
	require.NoError(t, err)
	assert.Equal(t, "hello, ", string(buf))
	<-flushed

	go func() {
		zw.Write([]byte("world"))
		zw.Close()
		pw.Close()
	}()
	rest, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, "world", string(rest))
}

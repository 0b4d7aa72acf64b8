// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package inflate

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsnet/inflate/internal/testutil"
)

// bitWriter packs bits LSB-first, the same order BitReader consumes them.
type bitWriter struct {
	buf  []byte
	bits uint
}

// WriteCode writes a prefix code of length n starting from its most
// significant bit, as RFC section 3.1.1 requires.
func (bw *bitWriter) WriteCode(code uint32, n uint) {
	for i := int(n) - 1; i >= 0; i-- {
		if bw.bits%8 == 0 {
			bw.buf = append(bw.buf, 0)
		}
		bw.buf[len(bw.buf)-1] |= byte(code>>uint(i)&1) << (bw.bits % 8)
		bw.bits++
	}
}

// canonicalCodes assigns codes to lens following RFC section 3.2.2.
func canonicalCodes(lens []uint8) []uint32 {
	var count, next [maxCodeBits + 1]uint32
	for _, l := range lens {
		count[l]++
	}
	count[0] = 0
	var code uint32
	for l := 1; l <= maxCodeBits; l++ {
		code = (code + count[l-1]) << 1
		next[l] = code
	}
	codes := make([]uint32, len(lens))
	for sym, l := range lens {
		if l > 0 {
			codes[sym] = next[l]
			next[l]++
		}
	}
	return codes
}

// decodeAll decodes n symbols from the packed input.
func decodeAll(t *testing.T, ht *huffTable, input []byte, n int) []int {
	br := NewBitReader(bytes.NewReader(input))
	var syms []int
	var err error
	func() {
		defer errRecover(&err)
		for i := 0; i < n; i++ {
			e := br.readSymbol(ht)
			if e.op != opLiteral {
				t.Fatalf("symbol %d: unexpected entry %+v", i, e)
			}
			syms = append(syms, int(e.val))
		}
	}()
	require.NoError(t, err)
	return syms
}

func TestHuffmanRFCExample(t *testing.T) {
	// RFC section 3.2.2: lengths (3, 3, 3, 3, 3, 2, 4, 4) for symbols A..H
	// produce the codes 010, 011, 100, 101, 110, 00, 1110, 1111.
	lens := []uint8{3, 3, 3, 3, 3, 2, 4, 4}
	want := []uint32{2, 3, 4, 5, 6, 0, 14, 15}
	assert.Equal(t, want, canonicalCodes(lens))

	msg := []int{7, 0, 5, 5, 6, 1, 2, 3, 4, 7}
	var bw bitWriter
	for _, sym := range msg {
		bw.WriteCode(want[sym], uint(lens[sym]))
	}
	for nb := uint(1); nb <= 5; nb++ {
		var ht huffTable
		require.Equal(t, OK, ht.build(lens, len(lens), nil, nil, nb, -1))
		assert.Equal(t, msg, decodeAll(t, &ht, bw.buf, len(msg)), "rootBits=%d", nb)
	}
}

// randomCompleteLens returns code lengths for a complete prefix code over n
// symbols, with up to maxLen bits per code, built by repeatedly splitting a
// random leaf of a full binary tree.
func randomCompleteLens(r *testutil.Rand, n, numCodes int, maxLen uint8) []uint8 {
	if numCodes > 1<<maxLen {
		numCodes = 1 << maxLen
	}
	depths := []uint8{1, 1}
	for len(depths) < numCodes {
		i := r.Intn(len(depths))
		if depths[i] >= maxLen {
			continue
		}
		depths[i]++
		depths = append(depths, depths[i])
	}
	lens := make([]uint8, n)
	for i, sym := range r.Perm(n)[:len(depths)] {
		lens[sym] = depths[i]
	}
	return lens
}

func TestHuffmanCanonical(t *testing.T) {
	r := testutil.NewRand(0)
	for i := 0; i < 200; i++ {
		n := 2 + r.Intn(255)
		lens := randomCompleteLens(r, n, 2+r.Intn(n-1), uint8(1+r.Intn(maxCodeBits-1))+1)
		codes := canonicalCodes(lens)

		var syms []int
		for sym, l := range lens {
			if l > 0 {
				syms = append(syms, sym)
			}
		}
		var msg []int
		var bw bitWriter
		for j := 0; j < 500; j++ {
			sym := syms[r.Intn(len(syms))]
			msg = append(msg, sym)
			bw.WriteCode(codes[sym], uint(lens[sym]))
		}

		var ht huffTable
		nb := uint(1 + r.Intn(10))
		require.Equal(t, OK, ht.build(lens, n, nil, nil, nb, -1), "lens=%v", lens)
		require.Equal(t, len(syms), ht.numCodes)
		assert.Equal(t, msg, decodeAll(t, &ht, bw.buf, len(msg)), "lens=%v rootBits=%d", lens, nb)
	}
}

func TestHuffmanOversubscribed(t *testing.T) {
	var ht huffTable
	assert.Equal(t, OversubscribedCodes, ht.build([]uint8{1, 1, 1}, 3, nil, nil, 9, -1))
	assert.Zero(t, ht.size())

	// Shortening any code of a complete set makes it oversubscribed.
	r := testutil.NewRand(1)
	for i := 0; i < 200; i++ {
		n := 3 + r.Intn(254)
		lens := randomCompleteLens(r, n, 3+r.Intn(n-2), maxCodeBits)
		for {
			sym := r.Intn(n)
			if lens[sym] > 1 {
				lens[sym]--
				break
			}
		}
		assert.Equal(t, OversubscribedCodes, ht.build(lens, n, nil, nil, 9, -1), "lens=%v", lens)
		assert.Zero(t, ht.size())
	}
}

func TestHuffmanEmpty(t *testing.T) {
	var ht huffTable
	assert.Equal(t, OK, ht.build(make([]uint8, maxDistSyms), 0, distBase[:], distExtra[:], 6, -1))
	assert.Zero(t, ht.size())
	assert.Zero(t, ht.numCodes)

	var err error
	func() {
		defer errRecover(&err)
		NewBitReader(bytes.NewReader([]byte{0xff})).readSymbol(&ht)
	}()
	assert.Equal(t, CorruptStream, CodeOf(err))
}

func TestHuffmanIncomplete(t *testing.T) {
	var ht huffTable
	assert.Equal(t, OK, ht.build([]uint8{1}, 1, nil, nil, 9, -1), "single code of length 1")
	assert.Equal(t, 2, ht.size())
	assert.True(t, ht.nodes[1].isInvalid())

	assert.Equal(t, IncompleteCodes, ht.build([]uint8{2, 2, 2}, 3, nil, nil, 9, -1))
	assert.Equal(t, 4, ht.size())
	assert.True(t, ht.nodes[3].isInvalid(), "pattern 11 is unused")

	assert.Equal(t, IncompleteCodes, ht.build([]uint8{0, 0, 3}, 3, nil, nil, 9, -1))
	assert.Equal(t, 1, ht.numCodes)

	assert.Equal(t, CorruptStream, ht.build([]uint8{17}, 1, nil, nil, 9, -1))
}

func TestHuffmanSubTables(t *testing.T) {
	// One 1-bit code and fifteen codes sharing the prefix 1 are decoded
	// through sub-tables when the root is narrower than the longest code.
	lens := []uint8{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 15}
	for nb := uint(1); nb <= maxCodeBits; nb++ {
		var ht huffTable
		require.Equal(t, OK, ht.build(lens, len(lens), nil, nil, nb, -1))
		if want := nb; want < 15 {
			assert.Equal(t, want, ht.rootBits)
		} else {
			assert.EqualValues(t, 15, ht.rootBits, "clamped to the longest code")
		}
		codes := canonicalCodes(lens)
		var bw bitWriter
		var msg []int
		for sym := len(lens) - 1; sym >= 0; sym-- {
			msg = append(msg, sym)
			bw.WriteCode(codes[sym], uint(lens[sym]))
		}
		assert.Equal(t, msg, decodeAll(t, &ht, bw.buf, len(msg)), "rootBits=%d", nb)
	}
}

func TestHuffmanBudget(t *testing.T) {
	lens := make([]uint8, 256)
	for i := range lens {
		lens[i] = 8
	}
	var ht huffTable
	assert.Equal(t, OutOfMemory, ht.build(lens, 256, nil, nil, 9, 255))
	assert.Zero(t, ht.size())
	assert.Equal(t, OK, ht.build(lens, 256, nil, nil, 9, 256))
	assert.Equal(t, 256, ht.size())

	// Sub-tables count towards the budget.
	lens = []uint8{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 15}
	assert.Equal(t, OK, ht.build(lens, len(lens), nil, nil, 4, -1))
	need := ht.size()
	assert.Greater(t, need, 16)
	assert.Equal(t, OutOfMemory, ht.build(lens, len(lens), nil, nil, 4, need-1))
	assert.Equal(t, OK, ht.build(lens, len(lens), nil, nil, 4, need))
}

func TestFixedTables(t *testing.T) {
	assert.EqualValues(t, 9, fixedLitTable.rootBits)
	assert.Equal(t, numFixedLits, fixedLitTable.numCodes)
	assert.EqualValues(t, 5, fixedDistTable.rootBits)
	assert.Equal(t, numFixedDist, fixedDistTable.numCodes)
	assert.Equal(t, 512, fixedLitTable.size())

	// Length symbol 285 has code 11000101 and means 258 with no extra bits.
	var bw bitWriter
	bw.WriteCode(0xc5, 8)
	br := NewBitReader(bytes.NewReader(bw.buf))
	e := br.readSymbol(&fixedLitTable)
	assert.Equal(t, entry{op: 0, bits: 8, val: 258}, e)

	// Distance symbol 29 has 13 extra bits added to 24577.
	bw = bitWriter{}
	bw.WriteCode(29, 5)
	br = NewBitReader(bytes.NewReader(bw.buf))
	e = br.readSymbol(&fixedDistTable)
	assert.Equal(t, entry{op: 13, bits: 5, val: 24577}, e)
}

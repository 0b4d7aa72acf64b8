// Copyright 2016, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package inflate

import (
	"bytes"
	"compress/flate"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dsnet/inflate/internal/testutil"
)

func seeds(tb testing.TB) [][]byte {
	var out [][]byte
	for _, name := range testutil.CorpusNames() {
		data := testutil.Corpora[name](1 << 12)
		for _, lvl := range []int{flate.NoCompression, flate.BestSpeed, flate.BestCompression} {
			var bb bytes.Buffer
			zw, err := flate.NewWriter(&bb, lvl)
			if err != nil {
				tb.Fatal(err)
			}
			zw.Write(data)
			if err := zw.Close(); err != nil {
				tb.Fatal(err)
			}
			out = append(out, bb.Bytes())
		}
	}
	return out
}

func TestFuzz(t *testing.T) {
	for i, seed := range seeds(t) {
		assert.Equal(t, 1, Fuzz(seed), "seed %d", i)
		assert.NotPanics(t, func() { Fuzz(seed[:len(seed)/2]) }, "seed %d", i)
	}
	assert.Equal(t, 0, Fuzz(nil))
	assert.Equal(t, 0, Fuzz([]byte{0x07}))
}

func FuzzInflate(f *testing.F) {
	for _, seed := range seeds(f) {
		f.Add(seed)
	}
	f.Add(testutil.MustDecodeHex("4b4c4a0600"))
	f.Fuzz(func(t *testing.T, data []byte) {
		Fuzz(data)
	})
}

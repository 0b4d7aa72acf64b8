// Copyright 2016, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package inflate is a differential fuzz harness that checks the inflate
// engine against the standard library's compress/flate.
package inflate

import (
	"bytes"
	"compress/flate"
	"fmt"
	"io"

	ginflate "github.com/dsnet/inflate/inflate"
)

// Fuzz decodes data with both decoders and panics if they disagree.
func Fuzz(data []byte) int {
	want, ok := testDecoders(data)
	if !ok {
		return 0
	}
	testConfigs(data, want)
	testReader(data, want)
	for _, lvl := range []int{flate.HuffmanOnly, flate.BestSpeed, flate.BestCompression} {
		testStdEncoder(want, lvl)
	}
	return 1 // Favor valid inputs
}

// testDecoders tests that the input is handled alike by both decoders.
// This test does not panic if both decoders run into an error, since it
// means that they both agree that the input is bad. The inflate engine
// accepts a few incomplete distance codes that compress/flate rejects,
// so only a failure where compress/flate succeeds is fatal.
func testDecoders(data []byte) ([]byte, bool) {
	var gb bytes.Buffer
	st, gerr := ginflate.Inflate(&gb, bytes.NewReader(data), nil)
	sb, serr := io.ReadAll(flate.NewReader(bytes.NewReader(data)))

	switch {
	case gerr == nil && serr == nil:
		if !bytes.Equal(gb.Bytes(), sb) {
			panic("mismatching bytes")
		}
		if st.BytesOut != int64(len(sb)) {
			panic(fmt.Sprintf("mismatching count: got %d, want %d", st.BytesOut, len(sb)))
		}
		if st.BytesIn > int64(len(data)) {
			panic(fmt.Sprintf("consumed %d bytes of a %d byte input", st.BytesIn, len(data)))
		}
		return sb, true
	case gerr != nil && serr == nil:
		panic(gerr)
	case gerr == nil && serr != nil:
		if st.DynamicBlocks == 0 {
			panic(serr) // Only dynamic blocks may carry the lenient codes
		}
		return nil, false
	default:
		if ginflate.CodeOf(gerr) == ginflate.OK {
			panic("error without a code")
		}
		return nil, false
	}
}

// testConfigs checks that every table width yields the same output.
func testConfigs(data, want []byte) {
	for _, conf := range []ginflate.Config{
		{LitBits: 1, DistBits: 1},
		{LitBits: 16, DistBits: 16},
		{LitBits: 7, DistBits: 4, PKZIPWorkaround: true},
	} {
		var bb bytes.Buffer
		if _, err := ginflate.Inflate(&bb, bytes.NewReader(data), &conf); err != nil {
			panic(fmt.Sprintf("config %+v: %v", conf, err))
		}
		if !bytes.Equal(bb.Bytes(), want) {
			panic(fmt.Sprintf("config %+v: mismatching bytes", conf))
		}
	}
}

// testReader checks the streaming Reader against the engine output.
func testReader(data, want []byte) {
	zr := ginflate.NewReader(bytes.NewReader(data), nil)
	got, err := io.ReadAll(zr)
	if err != nil {
		panic(err)
	}
	if err := zr.Close(); err != nil {
		panic(err)
	}
	if !bytes.Equal(got, want) {
		panic("mismatching bytes from Reader")
	}
}

// testStdEncoder compresses the decoded data with compress/flate and checks
// that the inflate engine can decompress the result.
func testStdEncoder(data []byte, level int) {
	bb := new(bytes.Buffer)
	zw, err := flate.NewWriter(bb, level)
	if err != nil {
		panic(err)
	}
	if _, err := zw.Write(data); err != nil {
		panic(err)
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}

	var out bytes.Buffer
	if _, err := ginflate.Inflate(&out, bb, nil); err != nil {
		panic(fmt.Sprintf("level %d: %v", level, err))
	}
	if !bytes.Equal(out.Bytes(), data) {
		panic(fmt.Sprintf("level %d: mismatching bytes", level))
	}
}

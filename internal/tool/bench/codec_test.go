// Copyright 2016, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bench

import (
	"bytes"
	"fmt"
	"io"
	"testing"

	"github.com/dsnet/inflate/internal/testutil"
)

// TestCodecs tests that the output of each registered encoder is a valid input
// for each registered decoder. This test runs in O(n^2) where n is the number
// of registered codecs.
func TestCodecs(t *testing.T) {
	for _, name := range testutil.CorpusNames() {
		dd := testutil.Corpora[name](1 << 18)
		t.Run(fmt.Sprintf("Input:%v", name), func(t *testing.T) { testFormats(t, dd) })
	}
}

func testFormats(t *testing.T, dd []byte) {
	t.Parallel()
	for _, ft := range []Format{FormatFlate, FormatGzip, FormatXZ} {
		ft := ft
		if len(Encoders[ft]) == 0 || len(Decoders[ft]) == 0 {
			continue
		}
		t.Run(fmt.Sprintf("Format:%v", ft), func(t *testing.T) { testEncoders(t, ft, dd) })
	}
}

func testEncoders(t *testing.T, ft Format, dd []byte) {
	t.Parallel()
	const level = 6 // Default compression on all encoders
	for encName := range Encoders[ft] {
		encName := encName
		t.Run(fmt.Sprintf("Encoder:%v", encName), func(t *testing.T) {
			de, err := encode(Encoders[ft][encName], dd, level)
			if err != nil {
				t.Fatalf("unexpected encode error: %v", err)
			}
			testDecoders(t, ft, dd, de)
		})
	}
}

func testDecoders(t *testing.T, ft Format, dd, de []byte) {
	t.Parallel()
	for decName := range Decoders[ft] {
		decName := decName
		t.Run(fmt.Sprintf("Decoder:%v", decName), func(t *testing.T) {
			bd := new(bytes.Buffer)
			zr := Decoders[ft][decName](bytes.NewReader(de))
			if _, err := io.Copy(bd, zr); err != nil {
				t.Fatalf("unexpected Read error: %v", err)
			}
			if err := zr.Close(); err != nil {
				t.Fatalf("unexpected Close error: %v", err)
			}
			if !bytes.Equal(bd.Bytes(), dd) {
				t.Error("data mismatch")
			}
		})
	}
}

// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

//go:build !no_xz_lib

package bench

import (
	"io"

	"github.com/ulikunitz/xz"
)

// The xz codec has no notion of levels; it is registered as a ratio and
// speed baseline for the DEFLATE formats.
func init() {
	RegisterEncoder(FormatXZ, "uk",
		func(w io.Writer, _ int) io.WriteCloser {
			zw, err := xz.NewWriter(w)
			if err != nil {
				panic(err)
			}
			return zw
		})
	RegisterDecoder(FormatXZ, "uk",
		func(r io.Reader) io.ReadCloser {
			zr, err := xz.NewReader(r)
			if err != nil {
				return errReadCloser{err}
			}
			return io.NopCloser(zr)
		})
}

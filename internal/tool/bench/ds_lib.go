// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

//go:build !no_ds_lib

package bench

import (
	"io"

	"github.com/dsnet/inflate/gzip"
	"github.com/dsnet/inflate/inflate"
)

func init() {
	RegisterDecoder(FormatFlate, "ds",
		func(r io.Reader) io.ReadCloser {
			return inflate.NewReader(r, nil)
		})
	RegisterDecoder(FormatGzip, "ds",
		func(r io.Reader) io.ReadCloser {
			pr, pw := io.Pipe()
			go func() {
				_, err := gzip.Decompress(pw, r)
				pw.CloseWithError(err)
			}()
			return pr
		})
}

// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package gzip

import (
	"hash/crc32"
	"io"

	hashutil "github.com/dsnet/golib/hashmerge"
	"github.com/pkg/errors"

	"github.com/dsnet/inflate/inflate"
)

// Config configures a Reader. A nil *Config decodes every member.
type Config struct {
	// Multistream decodes concatenated members until the input ends.
	// Otherwise decoding stops after the first member.
	Multistream bool

	// Inflate configures the engine of each member. Its Trailer field is
	// ignored since every member carries a trailer.
	Inflate inflate.Config
}

// Result summarizes the members decoded by Reader.Decompress.
type Result struct {
	Members  int
	Headers  []Header
	BytesIn  int64  // Input bytes of all members, headers and trailers included
	BytesOut int64  // Decompressed bytes of all members
	CRC32    uint32 // CRC-32 of the concatenated output of all members

	// TrailingGarbage is set if bytes that do not start a gzip member
	// follow the last member. Such bytes are ignored.
	TrailingGarbage bool
}

// Reader decompresses gzip files.
type Reader struct {
	br   *inflate.BitReader
	eng  *inflate.Engine
	conf Config
}

// NewReader returns a Reader reading gzip data from r.
func NewReader(r io.Reader, conf *Config) *Reader {
	zr := &Reader{conf: Config{Multistream: true}}
	if conf != nil {
		zr.conf = *conf
	}
	zr.conf.Inflate.Trailer = true
	zr.br = inflate.NewBitReader(r)
	zr.eng = inflate.NewEngine(zr.br, &zr.conf.Inflate)
	return zr
}

// Decompress writes the decompressed contents of every member to w.
//
// Errors from a member are wrapped with the member index; the underlying
// error stays reachable through errors.Cause and errors.Is.
func (zr *Reader) Decompress(w io.Writer) (Result, error) {
	var res Result
	start := zr.br.Offset()
	for {
		hdr, err := ReadHeader(zr.br)
		if err != nil {
			switch {
			case res.Members > 0 && err == io.EOF:
				return res, nil
			case res.Members > 0 && (err == ErrHeader || err == io.ErrUnexpectedEOF):
				res.TrailingGarbage = true
				return res, nil
			case err == io.EOF:
				return res, errors.Wrap(io.ErrUnexpectedEOF, "missing gzip header")
			}
			return res, errors.Wrapf(err, "member %d", res.Members)
		}
		res.Headers = append(res.Headers, hdr)

		zr.eng.Reset(zr.br)
		err = zr.eng.Inflate(w)
		st := zr.eng.Stats()
		res.CRC32 = hashutil.CombineCRC32(crc32.IEEE, res.CRC32, st.CRC32, st.BytesOut)
		res.BytesOut += st.BytesOut
		res.BytesIn = zr.br.Offset() - start
		if err != nil {
			return res, errors.Wrapf(err, "member %d", res.Members)
		}
		res.Members++

		if !zr.conf.Multistream {
			return res, nil
		}
	}
}

// Decompress decompresses every member of the gzip data in r into w.
func Decompress(w io.Writer, r io.Reader) (Result, error) {
	return NewReader(r, nil).Decompress(w)
}

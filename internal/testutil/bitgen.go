// Copyright 2016, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package testutil

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"

	"github.com/dsnet/inflate/internal"
)

// DecodeBitGen decodes a BitGen script into the bit-stream it describes.
//
// BitGen lets a test spell out a DEFLATE stream field by field. Bits are
// packed least-significant first into each byte, as RFC 1951 requires, and a
// script must open with the "<<<" marker naming that packing. Text following
// a '#' on a line is a comment. The remaining tokens are separated by white
// space:
//
//	<  >        Set the parsing mode for the following value tokens. In "<"
//	            mode (the default) the low-order bit of a value is written
//	            first; that is how header fields and extra bits are stored.
//	            In ">" mode the high-order bit goes first, which is how
//	            Huffman codes are stored.
//	0110        A bit-string, written as a value of its own length.
//	D5:17       A decimal value with an explicit bit-length (at most 64).
//	H16:fffb    A hexadecimal value with an explicit bit-length.
//	X:deadcafe  Literal bytes. The stream must be byte-aligned.
//	P           Zero bits up to the next byte boundary.
//
// A value token may carry a leading "<" or ">" that overrides the mode for
// that token alone. Any token may end with "*N" to repeat it N times.
// The stream is zero-padded to a whole number of bytes.
//
// For example, a stored block holding "hi" followed by an empty last fixed
// block:
//
//	<<<
//	< 0 00 P           # Non-last, stored block, align
//	< H16:0002 H16:fffd # Size: 2
//	X:6869             # Data
//	< 1 01 > 0000000   # Last, fixed block, EOB
func DecodeBitGen(str string) ([]byte, error) {
	var toks []string
	for _, line := range strings.Split(str, "\n") {
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		toks = append(toks, strings.Fields(line)...)
	}
	if len(toks) == 0 || toks[0] != "<<<" {
		return nil, errors.New("testutil: BitGen script must begin with <<<")
	}

	var g bitGen
	for _, t := range toks[1:] {
		if err := g.apply(t); err != nil {
			return nil, err
		}
	}
	return g.buf, nil
}

type bitGen struct {
	buf  []byte
	nb   uint // Number of bits used in the last byte of buf, 0 if aligned
	msbf bool // Global parsing mode: true if ">" is in effect
}

func (g *bitGen) apply(t string) error {
	msbf := g.msbf
	if t[0] == '<' || t[0] == '>' {
		msbf = t[0] == '>'
		if t = t[1:]; t == "" {
			g.msbf = msbf
			return nil
		}
	}

	rep := 1
	if i := strings.LastIndexByte(t, '*'); i >= 0 {
		n, err := strconv.Atoi(t[i+1:])
		if err != nil || n < 0 {
			return errors.New("testutil: invalid repeat count: " + t)
		}
		t, rep = t[:i], n
	}

	switch {
	case t == "P":
		if g.nb > 0 {
			g.writeBits(0, 8-g.nb)
		}
	case strings.HasPrefix(t, "X:"):
		b, err := hex.DecodeString(t[2:])
		if err != nil || len(b) == 0 {
			return errors.New("testutil: invalid raw bytes token: " + t)
		}
		if g.nb > 0 {
			return errors.New("testutil: unaligned raw bytes token: " + t)
		}
		g.buf = append(g.buf, bytes.Repeat(b, rep)...)
	default:
		v, n, err := parseValue(t)
		if err != nil {
			return err
		}
		if msbf {
			v = internal.ReverseUint64N(v, n)
		}
		for i := 0; i < rep; i++ {
			g.writeBits(v, n)
		}
	}
	return nil
}

// parseValue parses a bit-string, decimal, or hexadecimal token.
func parseValue(t string) (v uint64, n uint, err error) {
	bad := errors.New("testutil: invalid token: " + t)
	if i := strings.IndexByte(t, ':'); i > 0 && (t[0] == 'D' || t[0] == 'H') {
		base := 10
		if t[0] == 'H' {
			base = 16
		}
		nb, err1 := strconv.ParseUint(t[1:i], 10, 7)
		val, err2 := strconv.ParseUint(t[i+1:], base, 64)
		if err1 != nil || err2 != nil || nb > 64 {
			return 0, 0, bad
		}
		if nb < 64 && val>>nb != 0 {
			return 0, 0, errors.New("testutil: value overflows bit-length: " + t)
		}
		return val, uint(nb), nil
	}

	if len(t) == 0 || len(t) > 64 {
		return 0, 0, bad
	}
	for _, c := range t {
		if c != '0' && c != '1' {
			return 0, 0, bad
		}
		v = v<<1 | uint64(c-'0')
	}
	return v, uint(len(t)), nil
}

func (g *bitGen) writeBits(v uint64, n uint) {
	for i := uint(0); i < n; i++ {
		if g.nb == 0 {
			g.buf = append(g.buf, 0)
		}
		g.buf[len(g.buf)-1] |= byte(v>>i&1) << g.nb
		g.nb = (g.nb + 1) % 8
	}
}

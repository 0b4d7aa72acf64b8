// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package gzip reads the gzip file format, described in RFC 1952, on top of
// the inflate engine.
//
// Each member header is parsed here, then the compressed data and the member
// trailer are handed to an inflate.Engine, which verifies the CRC-32 and size
// of the member. Concatenated members are decoded in sequence.
package gzip

import (
	"runtime"
	"time"
)

const (
	gzipID1     = 0x1f
	gzipID2     = 0x8b
	gzipDeflate = 8

	flagText     = 1 << 0
	flagHdrCRC   = 1 << 1
	flagExtra    = 1 << 2
	flagName     = 1 << 3
	flagComment  = 1 << 4
	flagReserved = 0xe0
)

// Error is the wrapper type for errors specific to this library.
type Error string

func (e Error) Error() string { return "gzip: " + string(e) }

var (
	ErrHeader   error = Error("invalid header")
	ErrChecksum error = Error("invalid header checksum")
)

// Header is the metadata carried by a gzip member header.
type Header struct {
	Text    bool      // FTEXT: the data is probably text
	ModTime time.Time // MTIME, or the zero time if absent
	XFL     byte      // Extra flags set by the compressor
	OS      byte      // Operating system of the compressor
	Extra   []byte    // FEXTRA payload
	Name    string    // FNAME, converted from Latin-1
	Comment string    // FCOMMENT, converted from Latin-1
	HasCRC  bool      // FHCRC was present and verified
}

func errRecover(err *error) {
	switch ex := recover().(type) {
	case nil:
		// Do nothing.
	case runtime.Error:
		panic(ex)
	case error:
		*err = ex
	default:
		panic(ex)
	}
}

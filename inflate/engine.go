// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package inflate

import (
	"encoding/binary"
	"io"
)

const (
	defaultLitBits  = 9 // Primary lookup width of literal/length tables
	defaultDistBits = 6 // Primary lookup width of distance tables
)

// Config configures an Engine. A nil *Config is equivalent to the zero value,
// which selects the defaults documented on each field.
type Config struct {
	// LitBits and DistBits are the widths of the primary lookup tables.
	// Codes longer than the width are decoded through sub-tables.
	// Zero selects 9 and 6 respectively.
	LitBits  uint
	DistBits uint

	// Trailer causes the engine to read the 8-byte gzip trailer that follows
	// the compressed data and to verify it against the output.
	Trailer bool

	// PKZIPWorkaround accepts any incomplete distance code. Otherwise only
	// a distance code with exactly one symbol may be incomplete.
	PKZIPWorkaround bool

	// MaxTableEntries limits the number of prefix table entries that a single
	// block may allocate. Exceeding it fails with OutOfMemory.
	// Zero means no limit.
	MaxTableEntries int
}

func (c *Config) resolve() Config {
	var conf Config
	if c != nil {
		conf = *c
	}
	if conf.LitBits == 0 {
		conf.LitBits = defaultLitBits
	}
	if conf.DistBits == 0 {
		conf.DistBits = defaultDistBits
	}
	if conf.LitBits > maxCodeBits {
		conf.LitBits = maxCodeBits
	}
	if conf.DistBits > maxCodeBits {
		conf.DistBits = maxCodeBits
	}
	return conf
}

// Trailer is the gzip member trailer: the CRC-32 and the size modulo 2^32 of
// the uncompressed data.
type Trailer struct {
	CRC32 uint32
	Size  uint32
}

// Stats holds the counters accumulated by a single call to Engine.Inflate.
type Stats struct {
	BytesIn  int64  // Compressed bytes consumed, including any trailer
	BytesOut int64  // Decompressed bytes written
	CRC32    uint32 // CRC-32 (IEEE) of the decompressed bytes

	Blocks        int // Total number of blocks
	StoredBlocks  int
	FixedBlocks   int
	DynamicBlocks int

	// MaxTableEntries is the largest number of prefix table entries in use by
	// any dynamic block.
	MaxTableEntries int

	// Trailer is the trailer read from the input, if any.
	Trailer *Trailer
}

// Engine decompresses a single DEFLATE stream.
//
// An Engine is not safe for concurrent use, but independent Engines share no
// mutable state.
type Engine struct {
	br    *BitReader
	ownBR BitReader // Used when the input is not already a *BitReader
	ww    windowWriter
	conf  Config
	stats Stats

	clenTable huffTable
	litTable  huffTable
	distTable huffTable
	lens      [maxLitSyms + maxDistSyms]uint8
}

// NewEngine returns an Engine reading compressed data from r.
//
// If r is a *BitReader, it is used directly, and once Inflate returns
// successfully r is positioned at the first byte after the DEFLATE stream
// (or after the trailer, if one was read).
func NewEngine(r io.Reader, conf *Config) *Engine {
	e := &Engine{conf: conf.resolve()}
	e.Reset(r)
	return e
}

// Reset discards the engine state and reads from r instead, keeping the
// configuration and allocated buffers.
func (e *Engine) Reset(r io.Reader) {
	if br, ok := r.(*BitReader); ok {
		e.br = br
	} else {
		e.ownBR.Reset(r)
		e.br = &e.ownBR
	}
	e.stats = Stats{}
}

// Stats reports the counters of the most recent call to Inflate.
func (e *Engine) Stats() Stats { return e.stats }

// Inflate decodes blocks until the final block, writing the output to w.
//
// The output is flushed to w at the end of every block and whenever the
// window fills, so w never receives more than 32 KiB in one call. If the
// trailer does not match the output, the whole output has already been
// written and the returned error satisfies IsValidation.
func (e *Engine) Inflate(w io.Writer) (err error) {
	e.ww.Init(w)
	e.stats = Stats{}
	start := e.br.Offset()
	defer func() {
		e.stats.BytesIn = e.br.Offset() - start
		e.stats.BytesOut, e.stats.CRC32 = e.ww.count, e.ww.crc
	}()
	defer errRecover(&err)

	for last := false; !last; {
		last = e.decodeBlock()
		e.ww.Flush()
	}
	e.br.UnreadBytes()
	if e.conf.Trailer {
		e.checkTrailer()
	}
	return nil
}

// checkTrailer reads the byte-aligned trailer and compares it against the
// accumulated output counters. The CRC is checked before the length.
func (e *Engine) checkTrailer() {
	var buf [8]byte
	e.br.readFull(buf[:])
	t := &Trailer{
		CRC32: binary.LittleEndian.Uint32(buf[0:]),
		Size:  binary.LittleEndian.Uint32(buf[4:]),
	}
	e.stats.Trailer = t
	if t.CRC32 != e.ww.crc {
		panic(errorf(CrcMismatch, "crc32 mismatch: got %08x, want %08x", e.ww.crc, t.CRC32))
	}
	if size := uint32(e.ww.count); t.Size != size {
		panic(errorf(LengthMismatch, "length mismatch: got %d, want %d", size, t.Size))
	}
}

// Inflate decompresses a single DEFLATE stream from r into w.
func Inflate(w io.Writer, r io.Reader, conf *Config) (Stats, error) {
	e := NewEngine(r, conf)
	err := e.Inflate(w)
	return e.Stats(), err
}

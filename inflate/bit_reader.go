// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package inflate

import "io"

const (
	inputSize     = 1 << 15 // Chunk size of reads from the underlying io.Reader
	lookbackSize  = 8       // Bytes kept before the chunk for UnreadBytes
	maxEmptyReads = 100     // Consecutive (0, nil) reads tolerated
)

// BitReader supplies bits from a byte stream in LSB-first order.
//
// Input is pulled from the underlying io.Reader in large chunks, but bits are
// moved into the bit buffer only one byte at a time and only when a request
// cannot otherwise be satisfied. Thus, once decoding finishes, whole bytes that
// were fed but not consumed can be pushed back with UnreadBytes and the bytes
// following the compressed data can be read with ReadByte or Read.
type BitReader struct {
	rd  io.Reader
	buf []byte // Input chunk, preceded by lookbackSize bytes of history
	pos int    // Read position within buf
	end int    // End of valid data within buf
	err error  // Persistent error from rd

	bufBits uint64 // Buffer to hold some bits
	numBits uint   // Number of valid bits in bufBits
	offset  int64  // Number of bytes moved out of buf
}

// NewBitReader returns a BitReader reading from r.
func NewBitReader(r io.Reader) *BitReader {
	br := new(BitReader)
	br.Reset(r)
	return br
}

// Reset discards all buffered state and reads from r instead.
func (br *BitReader) Reset(r io.Reader) {
	*br = BitReader{rd: r, buf: br.buf}
	if br.buf == nil {
		br.buf = make([]byte, lookbackSize+inputSize)
	}
	br.pos, br.end = lookbackSize, lookbackSize
}

// Offset reports the number of input bytes consumed so far.
// Whole bytes still held in the bit buffer count as consumed.
func (br *BitReader) Offset() int64 { return br.offset }

// BitsBuffered reports the number of bits held in the bit buffer.
func (br *BitReader) BitsBuffered() uint { return br.numBits }

// fill reads the next chunk from the underlying reader.
// It reports the persistent error only once no more data is available.
func (br *BitReader) fill() error {
	if br.err != nil {
		return br.err
	}

	// Keep the tail of the previous chunk so that UnreadBytes may step back
	// across a chunk boundary.
	copy(br.buf[:lookbackSize], br.buf[br.end-lookbackSize:br.end])
	br.pos, br.end = lookbackSize, lookbackSize

	for i := 0; i < maxEmptyReads; i++ {
		n, err := br.rd.Read(br.buf[lookbackSize:])
		if n < 0 || n > inputSize {
			n = 0
		}
		br.end += n
		if err != nil {
			br.err = err
		}
		if n > 0 {
			return nil
		}
		if err != nil {
			return err
		}
	}
	br.err = io.ErrNoProgress
	return br.err
}

// nextByte moves the next input byte out of the chunk buffer.
func (br *BitReader) nextByte() byte {
	if br.pos == br.end {
		if err := br.fill(); err != nil {
			if err == io.EOF {
				panic(ErrUnexpectedEOF)
			}
			panic(err)
		}
	}
	c := br.buf[br.pos]
	br.pos++
	br.offset++
	return c
}

// NeedBits ensures that at least nb bits exist in the bit buffer.
// It panics with ErrUnexpectedEOF if the input ends first.
func (br *BitReader) NeedBits(nb uint) {
	for br.numBits < nb {
		br.bufBits |= uint64(br.nextByte()) << br.numBits
		br.numBits += 8
	}
}

// PeekBits returns the low nb bits of the bit buffer without consuming them.
// The caller must have called NeedBits(nb) beforehand.
func (br *BitReader) PeekBits(nb uint) uint32 {
	return uint32(br.bufBits & (1<<nb - 1))
}

// ConsumeBits discards nb bits from the bit buffer.
func (br *BitReader) ConsumeBits(nb uint) {
	br.bufBits >>= nb
	br.numBits -= nb
}

// ReadBits reads nb bits in LSB order from the underlying reader.
func (br *BitReader) ReadBits(nb uint) uint32 {
	br.NeedBits(nb)
	val := br.PeekBits(nb)
	br.ConsumeBits(nb)
	return val
}

// ReadPads reads 0-7 bits from the bit buffer to achieve byte-alignment.
func (br *BitReader) ReadPads() uint32 {
	nb := br.numBits % 8
	val := br.PeekBits(nb)
	br.ConsumeBits(nb)
	return val
}

// UnreadBytes drops any fractional byte left in the bit buffer and returns
// the remaining whole bytes to the input, so that the next ReadByte returns
// the first byte after the DEFLATE stream.
func (br *BitReader) UnreadBytes() {
	br.ReadPads()
	n := int(br.numBits / 8)
	br.pos -= n
	br.offset -= int64(n)
	br.bufBits, br.numBits = 0, 0
}

// ReadByte reads a single byte. The bit buffer must be byte-aligned.
// It returns io.EOF if no more input is available.
func (br *BitReader) ReadByte() (byte, error) {
	if br.numBits%8 != 0 {
		return 0, errorf(CorruptStream, "non-aligned bit buffer")
	}
	if br.numBits > 0 {
		c := byte(br.bufBits)
		br.ConsumeBits(8)
		return c, nil
	}
	if br.pos == br.end {
		if err := br.fill(); err != nil {
			return 0, err
		}
	}
	c := br.buf[br.pos]
	br.pos++
	br.offset++
	return c, nil
}

// PeekByte returns the next byte without consuming it.
// The bit buffer must be empty.
func (br *BitReader) PeekByte() (byte, error) {
	if br.numBits > 0 {
		return byte(br.bufBits), nil
	}
	if br.pos == br.end {
		if err := br.fill(); err != nil {
			return 0, err
		}
	}
	return br.buf[br.pos], nil
}

// Read reads up to len(buf) bytes into buf. The bit buffer must be
// byte-aligned.
func (br *BitReader) Read(buf []byte) (cnt int, err error) {
	if br.numBits%8 != 0 {
		return 0, errorf(CorruptStream, "non-aligned bit buffer")
	}
	for cnt < len(buf) && br.numBits > 0 {
		buf[cnt] = byte(br.bufBits)
		br.ConsumeBits(8)
		cnt++
	}
	if cnt == len(buf) {
		return cnt, nil
	}
	if br.pos == br.end {
		if cnt > 0 {
			return cnt, nil
		}
		if err := br.fill(); err != nil {
			return 0, err
		}
	}
	n := copy(buf[cnt:], br.buf[br.pos:br.end])
	br.pos += n
	br.offset += int64(n)
	return cnt + n, nil
}

// readFull fills buf with byte-aligned input, panicking on a short read.
func (br *BitReader) readFull(buf []byte) {
	for len(buf) > 0 {
		n, err := br.Read(buf)
		buf = buf[n:]
		if err != nil {
			if err == io.EOF {
				panic(ErrUnexpectedEOF)
			}
			panic(err)
		}
	}
}

// readSymbol decodes the next prefix code using t.
//
// Only as many bytes as needed are fed into the bit buffer. Entries whose bit
// count exceeds the bits held are retried after feeding another byte, so that
// a short code at the very end of the input is decoded without reading past
// it.
func (br *BitReader) readSymbol(t *huffTable) entry {
	if len(t.nodes) == 0 {
		panic(errorf(CorruptStream, "decode with empty prefix table"))
	}
	br.NeedBits(t.minBits)
	off, width := 0, t.rootBits
	for {
		e := t.nodes[off+int(uint32(br.bufBits)&(1<<width-1))]
		if uint(e.bits) > br.numBits {
			br.NeedBits(br.numBits + 1)
			continue
		}
		br.ConsumeBits(uint(e.bits))
		if !e.isLink() {
			return e
		}
		off, width = int(e.val), e.linkBits()
	}
}

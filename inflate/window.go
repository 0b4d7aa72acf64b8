// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package inflate

import (
	"hash/crc32"
	"io"
)

// The windowWriter implements the LZ77 sliding window as a circular buffer.
// Output is flushed to the underlying io.Writer whenever the write cursor
// reaches the end of the buffer, and at any explicit flush. Every flushed byte
// is accounted for in the running CRC-32 and byte count.
type windowWriter struct {
	wr   io.Writer
	hist []byte // Sliding window history

	// Invariant: 0 <= rdPos <= wrPos < len(hist)
	wrPos int  // Current output position in buffer
	rdPos int  // Have flushed hist[:rdPos] already
	full  bool // Has a full window length been written yet?

	crc   uint32 // CRC-32 (IEEE) of all flushed bytes
	count int64  // Total number of flushed bytes
}

func (ww *windowWriter) Init(wr io.Writer) {
	*ww = windowWriter{wr: wr, hist: ww.hist}
	if ww.hist == nil {
		ww.hist = make([]byte, windowSize)
	}
}

// HistSize reports the total amount of historical data in the window.
func (ww *windowWriter) HistSize() int {
	if ww.full {
		return len(ww.hist)
	}
	return ww.wrPos
}

// AvailSize reports the space left before the window must be flushed.
func (ww *windowWriter) AvailSize() int {
	return len(ww.hist) - ww.wrPos
}

// WriteSlice returns a slice of the available buffer to write data to.
// It must be followed by a call to WriteMark.
func (ww *windowWriter) WriteSlice() []byte {
	return ww.hist[ww.wrPos:]
}

// WriteMark advances the write cursor over cnt bytes from WriteSlice.
func (ww *windowWriter) WriteMark(cnt int) {
	ww.wrPos += cnt
	if ww.wrPos == len(ww.hist) {
		ww.Flush()
	}
}

// WriteByte appends a single literal byte.
func (ww *windowWriter) WriteByte(c byte) {
	ww.hist[ww.wrPos] = c
	ww.wrPos++
	if ww.wrPos == len(ww.hist) {
		ww.Flush()
	}
}

// WriteCopy appends length bytes copied from dist bytes back. The copy may
// cross the end of the window and may overlap the bytes it produces, in which
// case the most recent dist bytes are repeated.
func (ww *windowWriter) WriteCopy(dist, length int) {
	if dist <= 0 || dist > ww.HistSize() {
		panic(errorf(CorruptStream, "invalid distance %d with %d bytes of history", dist, ww.HistSize()))
	}
	for length > 0 {
		srcPos := ww.wrPos - dist
		if srcPos < 0 {
			srcPos += len(ww.hist)
		}

		// Copy up to whichever cursor reaches the window end first.
		cnt := len(ww.hist) - srcPos
		if n := len(ww.hist) - ww.wrPos; cnt > n {
			cnt = n
		}
		if cnt > length {
			cnt = length
		}

		dst := ww.hist[ww.wrPos : ww.wrPos+cnt]
		if srcPos < ww.wrPos && ww.wrPos-srcPos < cnt {
			for i := range dst {
				dst[i] = ww.hist[srcPos+i]
			}
		} else {
			copy(dst, ww.hist[srcPos:srcPos+cnt])
		}

		length -= cnt
		ww.wrPos += cnt
		if ww.wrPos == len(ww.hist) {
			ww.Flush()
		}
	}
}

// Flush writes all pending bytes to the underlying io.Writer.
// At most len(hist) bytes are written by a single call.
func (ww *windowWriter) Flush() {
	if buf := ww.hist[ww.rdPos:ww.wrPos]; len(buf) > 0 {
		n, err := ww.wr.Write(buf)
		if n < 0 || n > len(buf) {
			n = 0
		}
		ww.crc = crc32.Update(ww.crc, crc32.IEEETable, buf[:n])
		ww.count += int64(n)
		if err == nil && n < len(buf) {
			err = io.ErrShortWrite
		}
		if err != nil {
			panic(err)
		}
	}
	ww.rdPos = ww.wrPos
	if ww.wrPos == len(ww.hist) {
		ww.wrPos, ww.rdPos = 0, 0
		ww.full = true
	}
}

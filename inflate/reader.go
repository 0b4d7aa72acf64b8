// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package inflate

import "io"

// Reader is an io.ReadCloser that decompresses a DEFLATE stream.
//
// The engine runs in its own goroutine and hands output over through an
// io.Pipe. Close must be called to release the goroutine if the stream is not
// read to completion.
type Reader struct {
	pr   *io.PipeReader
	done chan struct{}

	// Set by the engine goroutine before done is closed.
	stats Stats
	err   error
}

// NewReader returns a Reader that decompresses data read from r.
func NewReader(r io.Reader, conf *Config) *Reader {
	pr, pw := io.Pipe()
	zr := &Reader{pr: pr, done: make(chan struct{})}
	go func() {
		defer close(zr.done)
		e := NewEngine(r, conf)
		zr.err = e.Inflate(pw)
		zr.stats = e.Stats()
		pw.CloseWithError(zr.err)
	}()
	return zr
}

// Read reads decompressed data. Errors from the engine are returned as is
// once all output preceding them has been read.
func (zr *Reader) Read(buf []byte) (int, error) {
	return zr.pr.Read(buf)
}

// Close stops decompression and waits for the engine to exit.
// It does not close the underlying io.Reader.
func (zr *Reader) Close() error {
	zr.pr.Close()
	<-zr.done
	if zr.err == io.ErrClosedPipe {
		return nil
	}
	return zr.err
}

// Stats waits for the engine to finish and reports its counters along with
// the error that ended decompression, if any.
func (zr *Reader) Stats() (Stats, error) {
	<-zr.done
	return zr.stats, zr.err
}

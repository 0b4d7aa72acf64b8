// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package inflate implements a decompressor for the DEFLATE compressed data
// format, described in RFC 1951.
//
// The Engine decodes a raw DEFLATE stream from an io.Reader into an io.Writer
// through a 32 KiB sliding window, accumulating the CRC-32 and length of the
// output. When configured to do so, it then reads the 8-byte gzip trailer that
// immediately follows the compressed data and verifies it against the output.
package inflate

import (
	"errors"
	"fmt"
	"io"
	"runtime"
)

const (
	windowSize  = 1 << 15 // WSIZE
	endBlockSym = 256

	maxCodeBits = 16 // BMAX
	maxLitSyms  = 286
	maxDistSyms = 30
	maxCLenSyms = 19
)

// Code identifies the kind of failure reported by an Error.
type Code int

const (
	Unknown Code = iota - 1 // Error did not originate from the decoder
	OK
	CorruptStream
	OversubscribedCodes
	IncompleteCodes
	UnexpectedEOF
	CrcMismatch
	LengthMismatch
	OutOfMemory
)

var codeNames = [...]string{
	OK:                  "ok",
	CorruptStream:       "corrupt stream",
	OversubscribedCodes: "oversubscribed codes",
	IncompleteCodes:     "incomplete codes",
	UnexpectedEOF:       "unexpected EOF",
	CrcMismatch:         "crc mismatch",
	LengthMismatch:      "length mismatch",
	OutOfMemory:         "out of memory",
}

func (c Code) String() string {
	if c >= 0 && int(c) < len(codeNames) {
		return codeNames[c]
	}
	if c == Unknown {
		return "unknown"
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// Error is the wrapper type for errors specific to this library.
// Errors from the underlying io.Reader or io.Writer are never wrapped.
type Error struct {
	Code Code
	Msg  string
}

func (e *Error) Error() string { return "inflate: " + e.Msg }

// Is reports whether target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Unwrap exposes io.ErrUnexpectedEOF for truncated streams.
func (e *Error) Unwrap() error {
	if e.Code == UnexpectedEOF {
		return io.ErrUnexpectedEOF
	}
	return nil
}

var (
	ErrCorrupt        error = &Error{CorruptStream, "stream is corrupted"}
	ErrOversubscribed error = &Error{OversubscribedCodes, "oversubscribed prefix codes"}
	ErrIncomplete     error = &Error{IncompleteCodes, "incomplete prefix codes"}
	ErrUnexpectedEOF  error = &Error{UnexpectedEOF, "unexpected EOF"}
	ErrChecksum       error = &Error{CrcMismatch, "crc32 mismatch"}
	ErrLength         error = &Error{LengthMismatch, "length mismatch"}
	ErrOutOfMemory    error = &Error{OutOfMemory, "prefix table budget exceeded"}
)

func errorf(c Code, f string, args ...interface{}) error {
	return &Error{Code: c, Msg: fmt.Sprintf(f, args...)}
}

// CodeOf reports the Code carried by err. It returns OK for a nil error and
// Unknown for errors from the underlying reader or writer.
func CodeOf(err error) Code {
	var e *Error
	switch {
	case err == nil:
		return OK
	case errors.As(err, &e):
		return e.Code
	case errors.Is(err, io.ErrUnexpectedEOF):
		return UnexpectedEOF
	}
	return Unknown
}

// IsValidation reports whether err is a trailer mismatch detected after all
// of the output was produced, as opposed to a mid-stream failure.
func IsValidation(err error) bool {
	c := CodeOf(err)
	return c == CrcMismatch || c == LengthMismatch
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

// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package gzip

import (
	"encoding/binary"
	"hash/crc32"
	"io"
	"time"
)

// headerReader tracks the CRC-32 of every header byte read, for FHCRC.
type headerReader struct {
	rd  io.ByteReader
	crc uint32
	n   int
}

func (hr *headerReader) ReadByte() byte {
	c, err := hr.rd.ReadByte()
	if err != nil {
		if err == io.EOF && hr.n > 0 {
			err = io.ErrUnexpectedEOF
		}
		panic(err)
	}
	hr.crc = crc32.Update(hr.crc, crc32.IEEETable, []byte{c})
	hr.n++
	return c
}

func (hr *headerReader) ReadFull(buf []byte) {
	for i := range buf {
		buf[i] = hr.ReadByte()
	}
}

// ReadString reads a zero-terminated Latin-1 string.
func (hr *headerReader) ReadString() string {
	var s []rune
	for {
		c := hr.ReadByte()
		if c == 0 {
			return string(s)
		}
		s = append(s, rune(c))
	}
}

// ReadHeader reads a gzip member header from r.
//
// It returns io.EOF if r is exhausted before the first byte, ErrHeader if the
// bytes are not a valid header, and ErrChecksum if the FHCRC field does not
// match the header.
func ReadHeader(r io.ByteReader) (hdr Header, err error) {
	defer errRecover(&err)
	hr := &headerReader{rd: r}

	var buf [10]byte
	hr.ReadFull(buf[:])
	if buf[0] != gzipID1 || buf[1] != gzipID2 || buf[2] != gzipDeflate {
		return hdr, ErrHeader
	}
	flg := buf[3]
	if flg&flagReserved != 0 {
		return hdr, ErrHeader
	}
	if t := int64(binary.LittleEndian.Uint32(buf[4:8])); t > 0 {
		hdr.ModTime = time.Unix(t, 0)
	}
	hdr.Text = flg&flagText != 0
	hdr.XFL, hdr.OS = buf[8], buf[9]

	if flg&flagExtra != 0 {
		hr.ReadFull(buf[:2])
		hdr.Extra = make([]byte, binary.LittleEndian.Uint16(buf[:2]))
		hr.ReadFull(hdr.Extra)
	}
	if flg&flagName != 0 {
		hdr.Name = hr.ReadString()
	}
	if flg&flagComment != 0 {
		hdr.Comment = hr.ReadString()
	}
	if flg&flagHdrCRC != 0 {
		want := uint16(hr.crc)
		hr.ReadFull(buf[:2])
		if binary.LittleEndian.Uint16(buf[:2]) != want {
			return hdr, ErrChecksum
		}
		hdr.HasCRC = true
	}
	return hdr, nil
}

// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package inflate

import "github.com/dsnet/inflate/internal"

// The decoding tables follow the layout used by gzip and zlib. A primary table
// is indexed by the next rootBits bits of input. Codes no longer than rootBits
// are replicated across every slot that shares their low bits. Longer codes
// live in sub-tables, which the primary table reaches through link entries:
//
//	e := nodes[bits & (1<<rootBits - 1)]
//	if e.isLink() {
//		bits >>= e.bits
//		e = nodes[e.val + bits&(1<<e.linkBits()-1)]
//	}
//
// All tables share a single arena of entries so that a table set is released
// as a unit by truncating the arena.

// Values of entry.op. Values 0..13 are the number of extra bits that follow a
// length or distance code.
const (
	opEndBlock = 15 // End-of-block marker
	opLiteral  = 16 // Literal value; opLiteral+n links to an n-bit sub-table
	opInvalid  = 99 // Unused code
)

type entry struct {
	op   uint8  // Extra bits or operation (see above)
	bits uint8  // Number of bits consumed by this entry
	val  uint16 // Literal value, base value, or arena offset of a sub-table
}

func (e entry) isLink() bool    { return e.op > opLiteral && e.op < opInvalid }
func (e entry) linkBits() uint  { return uint(e.op - opLiteral) }
func (e entry) isInvalid() bool { return e.op == opInvalid }

type huffTable struct {
	nodes    []entry  // Primary table followed by all sub-tables
	work     []uint16 // Symbols sorted by code length, then by symbol
	rootBits uint     // Bit-width of the primary table
	minBits  uint     // Length of the shortest code
	numCodes int      // Number of symbols with a non-zero length
}

// release discards the table contents but retains the arena for reuse.
func (t *huffTable) release() {
	t.nodes = t.nodes[:0]
	t.rootBits, t.minBits, t.numCodes = 0, 0, 0
}

// size reports the number of entries allocated in the arena.
func (t *huffTable) size() int { return len(t.nodes) }

// alloc appends a table of 1<<nb invalid entries to the arena and returns its
// offset. It returns -1 if doing so would exceed budget entries.
// A negative budget means no limit.
func (t *huffTable) alloc(nb uint, budget int) int {
	off, n := len(t.nodes), 1<<nb
	if budget >= 0 && off+n > budget {
		return -1
	}
	if cap(t.nodes)-off < n {
		nodes := make([]entry, off, (off+n)*3/2)
		copy(nodes, t.nodes)
		t.nodes = nodes
	}
	t.nodes = t.nodes[:off+n]
	for i := range t.nodes[off:] {
		t.nodes[off+i] = entry{op: opInvalid, bits: uint8(nb)}
	}
	return off
}

// build constructs a decoding table from per-symbol code lengths according to
// RFC section 3.2.2.
//
// Symbols below simple are emitted directly as literals (or as the
// end-of-block marker for symbol 256). Any other symbol s is emitted with
// extra[s-simple] extra bits added to base[s-simple].
//
// The primary table width is reqBits clamped to the range of code lengths in
// use. A non-negative budget limits the number of entries allocated.
//
// The returned Code is OK for a complete code, IncompleteCodes if some bit
// patterns are unused (the table is still built and unused slots decode as
// invalid), or OversubscribedCodes or OutOfMemory if no table was built.
// A set of all-zero lengths produces an empty table and OK.
func (t *huffTable) build(lens []uint8, simple int, base []uint16, extra []uint8, reqBits uint, budget int) Code {
	t.release()

	// Count the number of codes of each length.
	var count [maxCodeBits + 1]int
	for _, l := range lens {
		if l > maxCodeBits {
			return CorruptStream
		}
		count[l]++
	}
	if count[0] == len(lens) {
		return OK
	}
	t.numCodes = len(lens) - count[0]

	var minBits, maxBits uint
	for l := uint(1); l <= maxCodeBits; l++ {
		if count[l] > 0 {
			if minBits == 0 {
				minBits = l
			}
			maxBits = l
		}
	}
	rootBits := reqBits
	if rootBits < minBits {
		rootBits = minBits
	}
	if rootBits > maxBits {
		rootBits = maxBits
	}

	// Check that no length demands more bit patterns than are available.
	left := 1
	for l := 1; l <= maxCodeBits; l++ {
		left <<= 1
		left -= count[l]
		if left < 0 {
			return OversubscribedCodes
		}
	}

	// Compute the first canonical code of each length and sort the symbols
	// by length, then by symbol value.
	var nextCode [maxCodeBits + 1]uint32
	var offs [maxCodeBits + 1]int
	var code uint32
	for l := 1; l <= maxCodeBits; l++ {
		if l > 1 {
			code = (code + uint32(count[l-1])) << 1
		}
		nextCode[l] = code
		if l < maxCodeBits {
			offs[l+1] = offs[l] + count[l]
		}
	}
	if cap(t.work) < len(lens) {
		t.work = make([]uint16, len(lens))
	}
	work := t.work[:t.numCodes]
	for sym, l := range lens {
		if l > 0 {
			work[offs[l]] = uint16(sym)
			offs[l]++
		}
	}

	if t.alloc(rootBits, budget) < 0 {
		t.release()
		return OutOfMemory
	}
	t.rootBits, t.minBits = rootBits, minBits

	remain := count
	rootMask := uint32(1)<<rootBits - 1
	subOff, subBits, subPrefix := -1, uint(0), uint32(0)
	for _, sym := range work {
		l := uint(lens[sym])
		rev := internal.ReverseUint32N(nextCode[l], l)
		nextCode[l]++

		e := leafEntry(int(sym), simple, base, extra)
		if l <= rootBits {
			e.bits = uint8(l)
			for i := rev; i < 1<<rootBits; i += 1 << l {
				t.nodes[i] = e
			}
			remain[l]--
			continue
		}

		// Open a new sub-table when the low rootBits of the code change.
		// It is made large enough to hold every remaining code that shares
		// this prefix.
		if prefix := rev & rootMask; subOff < 0 || prefix != subPrefix {
			nb := l - rootBits
			avail := 1 << nb
			for nb+rootBits < maxBits {
				avail -= remain[nb+rootBits]
				if avail <= 0 {
					break
				}
				nb++
				avail <<= 1
			}
			if subOff = t.alloc(nb, budget); subOff < 0 {
				t.release()
				return OutOfMemory
			}
			subBits, subPrefix = nb, prefix
			t.nodes[prefix] = entry{op: opLiteral + uint8(nb), bits: uint8(rootBits), val: uint16(subOff)}
		}
		e.bits = uint8(l - rootBits)
		for i := rev >> rootBits; i < 1<<subBits; i += 1 << (l - rootBits) {
			t.nodes[subOff+int(i)] = e
		}
		remain[l]--
	}

	if left > 0 && maxBits != 1 {
		return IncompleteCodes
	}
	return OK
}

func leafEntry(sym, simple int, base []uint16, extra []uint8) entry {
	switch {
	case sym < simple && sym < endBlockSym:
		return entry{op: opLiteral, val: uint16(sym)}
	case sym < simple:
		return entry{op: opEndBlock, val: uint16(sym)}
	case sym-simple < len(extra):
		return entry{op: extra[sym-simple], val: base[sym-simple]}
	default:
		return entry{op: opInvalid}
	}
}

// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package inflate

// Block types in the BTYPE field of a block header.
const (
	blockStored  = 0
	blockFixed   = 1
	blockDynamic = 2
)

// decodeBlock decodes a single DEFLATE block into the window and reports
// whether it carried the final-block flag.
func (e *Engine) decodeBlock() (last bool) {
	last = e.br.ReadBits(1) == 1
	e.stats.Blocks++
	switch typ := e.br.ReadBits(2); typ {
	case blockStored:
		e.stats.StoredBlocks++
		e.decodeStored()
	case blockFixed:
		e.stats.FixedBlocks++
		e.decodeCodes(&fixedLitTable, &fixedDistTable)
	case blockDynamic:
		e.stats.DynamicBlocks++
		defer e.litTable.release()
		defer e.distTable.release()
		e.readPrefixTables()
		if n := e.litTable.size() + e.distTable.size(); n > e.stats.MaxTableEntries {
			e.stats.MaxTableEntries = n
		}
		e.decodeCodes(&e.litTable, &e.distTable)
	default:
		panic(errorf(CorruptStream, "invalid block type: %d", typ))
	}
	return last
}

// decodeStored copies the raw contents of a stored block into the window.
// RFC section 3.2.4.
func (e *Engine) decodeStored() {
	e.br.ReadPads()
	n := e.br.ReadBits(16)
	nn := e.br.ReadBits(16)
	if uint16(n) != ^uint16(nn) {
		panic(errorf(CorruptStream, "stored block size mismatch: %04x != ^%04x", n, nn))
	}
	for cnt := int(n); cnt > 0; {
		buf := e.ww.WriteSlice()
		if len(buf) > cnt {
			buf = buf[:cnt]
		}
		e.br.readFull(buf)
		e.ww.WriteMark(len(buf))
		cnt -= len(buf)
	}
}

// readPrefixTables reads the dynamic block header and builds the literal and
// distance tables from it. RFC section 3.2.7.
func (e *Engine) readPrefixTables() {
	nlit := int(e.br.ReadBits(5)) + numLitSimple
	ndist := int(e.br.ReadBits(5)) + 1
	nclen := int(e.br.ReadBits(4)) + 4
	if nlit > maxLitSyms || ndist > maxDistSyms {
		panic(errorf(CorruptStream, "too many symbols: %d literals, %d distances", nlit, ndist))
	}

	var clens [maxCLenSyms]uint8
	for _, sym := range clenOrder[:nclen] {
		clens[sym] = uint8(e.br.ReadBits(3))
	}
	defer e.clenTable.release()
	if c := e.clenTable.build(clens[:], maxCLenSyms, nil, nil, 7, e.tableBudget(0)); c != OK {
		panic(errorf(c, "code length table has %v", c))
	}

	lens := e.lens[:nlit+ndist]
	for i := 0; i < len(lens); {
		ent := e.br.readSymbol(&e.clenTable)
		if ent.isInvalid() {
			panic(errorf(CorruptStream, "invalid code length symbol"))
		}
		if ent.val < 16 {
			lens[i] = uint8(ent.val)
			i++
			continue
		}

		var rep int
		var val uint8
		switch ent.val {
		case 16:
			if i == 0 {
				panic(errorf(CorruptStream, "repeat with no previous code length"))
			}
			rep, val = 3+int(e.br.ReadBits(2)), lens[i-1]
		case 17:
			rep = 3 + int(e.br.ReadBits(3))
		default:
			rep = 11 + int(e.br.ReadBits(7))
		}
		if i+rep > len(lens) {
			panic(errorf(CorruptStream, "code length repeat overruns %d symbols", len(lens)))
		}
		for ; rep > 0; rep-- {
			lens[i] = val
			i++
		}
	}
	litLens, distLens := lens[:nlit], lens[nlit:]
	if litLens[endBlockSym] == 0 {
		panic(errorf(CorruptStream, "missing end-of-block code"))
	}

	c := e.litTable.build(litLens, numLitSimple, lenBase[:], lenExtra[:], e.conf.LitBits, e.tableBudget(0))
	if c != OK {
		panic(errorf(c, "literal/length table has %v", c))
	}
	c = e.distTable.build(distLens, 0, distBase[:], distExtra[:], e.conf.DistBits, e.tableBudget(e.litTable.size()))
	if c == IncompleteCodes && (e.distTable.numCodes == 1 || e.conf.PKZIPWorkaround) {
		c = OK
	}
	if c != OK {
		panic(errorf(c, "distance table has %v", c))
	}
}

// tableBudget returns the number of table entries still available to the
// current block after used entries were allocated, or -1 if unlimited.
func (e *Engine) tableBudget(used int) int {
	if e.conf.MaxTableEntries <= 0 {
		return -1
	}
	if n := e.conf.MaxTableEntries - used; n > 0 {
		return n
	}
	return 0
}

// decodeCodes decodes literal and length/distance symbols until the
// end-of-block marker. RFC section 3.2.5.
func (e *Engine) decodeCodes(lt, dt *huffTable) {
	for {
		ent := e.br.readSymbol(lt)
		switch {
		case ent.op == opLiteral:
			e.ww.WriteByte(byte(ent.val))
		case ent.op == opEndBlock:
			return
		case ent.op < opEndBlock:
			length := int(ent.val) + int(e.br.ReadBits(uint(ent.op)))
			dent := e.br.readSymbol(dt)
			if dent.op >= opEndBlock {
				panic(errorf(CorruptStream, "invalid distance symbol"))
			}
			dist := int(dent.val) + int(e.br.ReadBits(uint(dent.op)))
			e.ww.WriteCopy(dist, length)
		default:
			panic(errorf(CorruptStream, "invalid literal/length symbol"))
		}
	}
}

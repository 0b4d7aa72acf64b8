// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package inflate

const (
	numLitSimple = 257 // Literals 0..255 and the end-of-block marker
	numFixedLits = 288
	numFixedDist = 30
)

var (
	// RFC section 3.2.5. Symbols 286 and 287 are marked invalid.
	lenBase  [maxLitSyms - numLitSimple + 2]uint16
	lenExtra [maxLitSyms - numLitSimple + 2]uint8

	// RFC section 3.2.5.
	distBase  [maxDistSyms]uint16
	distExtra [maxDistSyms]uint8

	// RFC section 3.2.7.
	// Order in which the code length code lengths are transmitted.
	clenOrder = [maxCLenSyms]uint8{
		16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15,
	}

	// RFC section 3.2.6.
	fixedLitTable  huffTable
	fixedDistTable huffTable
)

func init() {
	initTables()
}

func initTables() {
	// These come from the RFC section 3.2.5.
	for i, base := 0, 3; i < 28; i++ {
		nb := uint(i/4 - 1)
		if i < 4 {
			nb = 0
		}
		lenBase[i], lenExtra[i] = uint16(base), uint8(nb)
		base += 1 << nb
	}
	lenBase[28], lenExtra[28] = 258, 0
	for i := 29; i < len(lenExtra); i++ {
		lenBase[i], lenExtra[i] = 0, opInvalid
	}

	// These come from the RFC section 3.2.5.
	for i, base := 0, 1; i < len(distBase); i++ {
		nb := uint(i/2 - 1)
		if i < 2 {
			nb = 0
		}
		distBase[i], distExtra[i] = uint16(base), uint8(nb)
		base += 1 << nb
	}

	// These come from the RFC section 3.2.6. The fixed distance code has 30
	// symbols of length 5, so it is incomplete by design.
	var lens [numFixedLits]uint8
	for i := range lens {
		switch {
		case i < 144:
			lens[i] = 8
		case i < 256:
			lens[i] = 9
		case i < 280:
			lens[i] = 7
		default:
			lens[i] = 8
		}
	}
	if c := fixedLitTable.build(lens[:], numLitSimple, lenBase[:], lenExtra[:], defaultLitBits, -1); c != OK {
		panic("inflate: invalid fixed literal table: " + c.String())
	}
	for i := range lens[:numFixedDist] {
		lens[i] = 5
	}
	if c := fixedDistTable.build(lens[:numFixedDist], 0, distBase[:], distExtra[:], defaultDistBits, -1); c != IncompleteCodes {
		panic("inflate: invalid fixed distance table: " + c.String())
	}
}

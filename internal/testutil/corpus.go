// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package testutil

import (
	"sort"
	"strconv"
)

// Corpora maps the name of each synthetic corpus to its generator.
// Every generator is deterministic and returns exactly n bytes.
var Corpora = map[string]func(n int) []byte{
	"repeats": Repeats,
	"random":  Random,
	"digits":  Digits,
	"text":    Text,
	"zeros":   Zeros,
}

// CorpusNames returns the names in Corpora in sorted order.
func CorpusNames() []string {
	var names []string
	for name := range Corpora {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Random returns n bytes of incompressible data.
func Random(n int) []byte {
	return NewRand(0).Bytes(n)
}

// Zeros returns n zero bytes.
func Zeros(n int) []byte {
	return make([]byte, n)
}

// Digits returns the decimal digits of successive squares. The output has a
// small alphabet but few long matches, so it favors prefix coding over LZ77.
func Digits(n int) []byte {
	b := make([]byte, 0, n+32)
	for i := 1; len(b) < n; i++ {
		b = strconv.AppendInt(b, int64(i)*int64(i), 10)
	}
	return b[:n]
}

var textWords = []string{
	"the", "of", "and", "to", "in", "a", "is", "that", "for", "it", "as",
	"was", "with", "be", "by", "on", "not", "he", "this", "are", "or", "his",
	"from", "at", "which", "but", "have", "an", "had", "they", "you", "were",
	"window", "stream", "block", "symbol", "length", "distance", "literal",
	"table", "prefix", "code", "output", "input", "history", "copy",
}

// Text returns n bytes of English-like text drawn from a small vocabulary
// with skewed word frequencies.
func Text(n int) []byte {
	r := NewRand(1)
	b := make([]byte, 0, n+16)
	for col := 0; len(b) < n; {
		// Squaring a uniform value skews selection towards the common words.
		p := r.Float32()
		w := textWords[int(p*p*float32(len(textWords)))]
		if col+len(w) > 72 {
			b = append(b, '\n')
			col = 0
		} else if col > 0 {
			b = append(b, ' ')
			col++
		}
		b = append(b, w...)
		col += len(w)
	}
	return b[:n]
}

// Repeats returns n bytes that heavily favor LZ77 based compression, since
// most of the data is a copy from some distance ago. The source data is
// mostly random, so prefix coding does not benefit as much.
func Repeats(n int) []byte {
	r := NewRand(0)
	b := make([]byte, 0, n+512)

	// Lengths and distances are drawn from power-of-two buckets.
	randLen := func() int {
		p := r.Float32()
		for i, lo := 0, 4; ; i, lo = i+1, lo*2 {
			if p <= 0.15*float32(i+1) || lo == 256 {
				return lo + r.Intn(lo)
			}
		}
	}
	distCDF := []float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.55, 0.6, 0.65, 0.7, 0.75, 0.8, 0.85, 0.9, 0.95, 1.0}
	randDist := func() (d int) {
		for d == 0 || d > len(b) {
			p := r.Float32()
			lo := 1
			for _, c := range distCDF {
				if p <= c {
					break
				}
				lo *= 2
			}
			d = lo + r.Intn(lo)
		}
		return d
	}
	writeRand := func(l int) {
		b = append(b, r.Bytes(l)...)
	}
	writeCopy := func(d, l int) {
		for i := 0; i < l; i++ {
			b = append(b, b[len(b)-d])
		}
	}

	writeRand(randLen())
	for len(b) < n {
		switch p := r.Float32(); {
		case p <= 0.1:
			writeRand(randLen())
		case p <= 0.9:
			d, l := randDist(), randLen()
			for d <= l {
				d, l = randDist(), randLen()
			}
			writeCopy(d, l)
		default:
			writeCopy(randDist(), randLen())
		}
	}
	return b[:n]
}

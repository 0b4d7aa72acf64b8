// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package testutil

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"math"
)

// Rand is a deterministic pseudo-random source built on AES in counter mode.
// Unlike math/rand, its output is the same on every Go release, so generated
// corpora and test vectors never drift.
type Rand struct {
	ctr cipher.Stream
	buf [8]byte
}

func NewRand(seed int) *Rand {
	var key [aes.BlockSize]byte
	binary.LittleEndian.PutUint64(key[:], uint64(seed))
	blk, _ := aes.NewCipher(key[:])
	return &Rand{ctr: cipher.NewCTR(blk, make([]byte, aes.BlockSize))}
}

func (r *Rand) Uint64() uint64 {
	r.buf = [8]byte{}
	r.ctr.XORKeyStream(r.buf[:], r.buf[:])
	return binary.LittleEndian.Uint64(r.buf[:])
}

// Int returns a non-negative value.
func (r *Rand) Int() int {
	return int(r.Uint64() & math.MaxInt)
}

func (r *Rand) Intn(n int) int {
	return int(r.Uint64() % uint64(n))
}

// Float32 returns a value in [0.0, 1.0).
func (r *Rand) Float32() float32 {
	return float32(r.Uint64()>>40) / (1 << 24)
}

// Bytes returns n bytes of key stream.
func (r *Rand) Bytes(n int) []byte {
	b := make([]byte, n)
	r.ctr.XORKeyStream(b, b)
	return b
}

// Perm returns a random permutation of [0, n).
func (r *Rand) Perm(n int) []int {
	m := make([]int, n)
	for i := range m {
		m[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		m[i], m[j] = m[j], m[i]
	}
	return m
}

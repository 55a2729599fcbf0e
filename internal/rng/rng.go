// Package rng provides the deterministic seeded byte stream used to
// generate test key corpora. The same seed always yields the same bytes,
// independent of platform and word order.
package rng

import (
	"encoding/binary"
	"math/rand/v2"
)

// pcgIncrement separates the two PCG state words so that nearby seeds do
// not produce overlapping streams.
const pcgIncrement = 0xda942042e4dd58b5

// Stream is a deterministic pseudo-random byte source.
type Stream struct {
	src *rand.PCG
}

// New returns a stream seeded with the given value.
func New(seed uint64) *Stream {
	return &Stream{src: rand.NewPCG(seed, seed*pcgIncrement+1)}
}

// Uint64 returns the next 64 bits of the stream.
func (s *Stream) Uint64() uint64 {
	return s.src.Uint64()
}

// Fill overwrites p with pseudo-random bytes, 8 at a time in little-endian
// order. A short tail consumes one extra word.
func (s *Stream) Fill(p []byte) {
	for len(p) >= 8 {
		binary.LittleEndian.PutUint64(p, s.src.Uint64())
		p = p[8:]
	}

	if len(p) > 0 {
		var tail [8]byte

		binary.LittleEndian.PutUint64(tail[:], s.src.Uint64())
		copy(p, tail[:])
	}
}

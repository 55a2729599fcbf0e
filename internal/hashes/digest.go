package hashes

import "math/bits"

// Digest is a fixed-width hash output, stored as little-endian 64-bit words.
// Bit i lives at word i/64, position i%64. The test engine only ever XORs
// digests and scatters their set bits into count rows, so that is the whole
// surface.
type Digest []uint64

// NewDigest returns a zeroed digest wide enough for the given bit count.
func NewDigest(hashBits int) Digest {
	return make(Digest, (hashBits+63)/64)
}

// Words returns the number of 64-bit words backing a digest of hashBits.
func Words(hashBits int) int {
	return (hashBits + 63) / 64
}

// Bit returns bit i (0 or 1).
func (d Digest) Bit(i int) uint64 {
	return (d[i>>6] >> (uint(i) & 63)) & 1
}

// XOR sets d = a ^ b. All three must have the same length.
func (d Digest) XOR(a, b Digest) {
	for w := range d {
		d[w] = a[w] ^ b[w]
	}
}

// Zero clears the digest.
func (d Digest) Zero() {
	for w := range d {
		d[w] = 0
	}
}

// OnesCount returns the number of set bits.
func (d Digest) OnesCount() int {
	n := 0
	for _, w := range d {
		n += bits.OnesCount64(w)
	}

	return n
}

// Histogram increments counts[i] for every set bit i of the digest.
// counts must cover the digest's declared width.
func (d Digest) Histogram(counts []uint32) {
	for wi, w := range d {
		base := wi << 6
		for w != 0 {
			counts[base+bits.TrailingZeros64(w)]++
			w &= w - 1
		}
	}
}

// HistogramFrom increments counts[i-from] for every set bit i >= from.
// This is the scatter step of the pair accumulator: counts is the slice of
// pair cells rooted at bit from-1, so cell 0 corresponds to bit from.
func (d Digest) HistogramFrom(counts []uint32, from int) {
	wi := from >> 6
	// Mask off bits below from in the first word.
	w := d[wi] &^ (1<<(uint(from)&63) - 1)

	for {
		base := wi << 6
		for w != 0 {
			counts[base+bits.TrailingZeros64(w)-from]++
			w &= w - 1
		}

		wi++
		if wi >= len(d) {
			return
		}

		w = d[wi]
	}
}

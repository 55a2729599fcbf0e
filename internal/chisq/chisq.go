// Package chisq evaluates pairwise output-bit independence from the count
// tables the accumulator produces.
//
// The accumulator stores one number per (key bit, output-bit pair) — how
// often both bits changed together — plus one per (key bit, output bit) —
// how often that bit changed. For any pair (x, y) those two vectors and the
// known repetition count reconstruct the full 2x2 contingency table:
//
//	box11 = andcount[x,y]             both changed
//	box10 = popcount[x] - box11       only x changed
//	box01 = popcount[y] - box11       only y changed
//	box00 = reps - box11 - box10 - box01
//
// Each table gets a chi-square test of independence (expectations from the
// marginals, one degree of freedom). The verdict is a worst-case search:
// the single tuple with the maximal statistic decides, after a Bonferroni
// correction for the size of the tuple space.
package chisq

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultAlpha is the family-wise significance level. Under the null the
// corrected false-positive rate stays below this, so an unbiased hash
// passes the vast majority of seeds.
const DefaultAlpha = 0.05

var (
	errHashBitsTooFew = errors.New("need at least 2 hash bits")
	errRepsZero       = errors.New("repetition count cannot be zero")
	errKeyBitsZero    = errors.New("key bit count cannot be zero")
	errTableSize      = errors.New("count table has wrong size")
)

// Tuple identifies the worst (key bit, output-bit pair) deviation.
type Tuple struct {
	KeyBit int
	Out1   int
	Out2   int

	// Stat is the chi-square statistic of the tuple's table (1 dof).
	Stat float64

	// P is the uncorrected p-value of Stat.
	P float64
}

// PairCells returns the andcount row stride for a hash width: one cell per
// unordered pair (out1 < out2).
func PairCells(hashBits int) int {
	return hashBits / 2 * (hashBits - 1)
}

// Worst reconstructs every contingency table and returns the tuple with
// the maximal deviation. popcount has keyBits*hashBits cells, andcount
// keyBits*PairCells(hashBits).
func Worst(popcount, andcount []uint32, keyBits, hashBits, reps int) (Tuple, error) {
	if hashBits < 2 {
		return Tuple{}, fmt.Errorf("%w, have %d", errHashBitsTooFew, hashBits)
	}

	if reps <= 0 {
		return Tuple{}, errRepsZero
	}

	if keyBits <= 0 {
		return Tuple{}, errKeyBitsZero
	}

	pairs := PairCells(hashBits)
	if len(popcount) != keyBits*hashBits || len(andcount) != keyBits*pairs {
		return Tuple{}, fmt.Errorf("%w: popcount %d/%d, andcount %d/%d",
			errTableSize, len(popcount), keyBits*hashBits, len(andcount), keyBits*pairs)
	}

	worst := Tuple{KeyBit: 0, Out1: 0, Out2: 1, Stat: -1}

	for keyBit := range keyBits {
		popRow := popcount[keyBit*hashBits : (keyBit+1)*hashBits]
		andRow := andcount[keyBit*pairs : (keyBit+1)*pairs]

		cell := 0

		for out1 := 0; out1 < hashBits-1; out1++ {
			popX := int64(popRow[out1])

			for out2 := out1 + 1; out2 < hashBits; out2++ {
				popY := int64(popRow[out2])
				box11 := int64(andRow[cell])
				cell++

				stat := indep2x2(box11, popX-box11, popY-box11, int64(reps))
				if stat > worst.Stat {
					worst = Tuple{KeyBit: keyBit, Out1: out1, Out2: out2, Stat: stat}
				}
			}
		}
	}

	worst.P = distuv.ChiSquared{K: 1}.Survival(worst.Stat)

	return worst, nil
}

// Tuples returns the size of the searched tuple space.
func Tuples(keyBits, hashBits int) int {
	return keyBits * PairCells(hashBits)
}

// Significant reports whether the worst tuple's deviation is significant
// at level alpha after Bonferroni correction across tuples tables. True
// means the hash fails the independence criterion.
func Significant(worst Tuple, tuples int, alpha float64) bool {
	return worst.P*float64(tuples) < alpha
}

// indep2x2 computes the chi-square statistic of independence for the table
//
//	box11 box01
//	box10 box00
//
// using the closed form N*(ad-bc)^2 / (r1*r0*c1*c0). A degenerate marginal
// (a bit that always or never changed) explains its row or column exactly,
// so the statistic is zero there.
func indep2x2(box11, box10, box01 int64, reps int64) float64 {
	box00 := reps - box11 - box10 - box01

	r1 := box11 + box10 // x changed
	r0 := box01 + box00
	c1 := box11 + box01 // y changed
	c0 := box10 + box00

	den := float64(r1) * float64(r0) * float64(c1) * float64(c0)
	if den == 0 {
		return 0
	}

	diff := float64(box11*box00 - box10*box01)

	return float64(reps) * diff * diff / den
}

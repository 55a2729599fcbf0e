package rng

import (
	"bytes"
	"testing"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

func TestStreamDeterministic(t *testing.T) {
	t.Parallel()

	a := make([]byte, 1024)
	b := make([]byte, 1024)

	New(42).Fill(a)
	New(42).Fill(b)

	if !bytes.Equal(a, b) {
		t.Error("same seed produced different streams")
	}

	New(43).Fill(b)

	if bytes.Equal(a, b) {
		t.Error("different seeds produced identical streams")
	}
}

func TestFillShortTail(t *testing.T) {
	t.Parallel()

	// Lengths that are not multiples of 8 must still be fully overwritten
	// and must share a prefix with the longer fill of the same seed.
	long := make([]byte, 64)
	New(7).Fill(long)

	for _, n := range []int{1, 3, 7, 9, 15, 63} {
		short := make([]byte, n)
		New(7).Fill(short)

		if !bytes.Equal(short[:n/8*8], long[:n/8*8]) {
			t.Errorf("Fill(%d) diverges from the stream prefix", n)
		}
	}
}

func TestFillEmpty(t *testing.T) {
	t.Parallel()

	New(1).Fill(nil)
	New(1).Fill([]byte{})
}

// TestStreamUniform checks byte-value uniformity with a chi-square test
// against the uniform distribution over 256 categories.
func TestStreamUniform(t *testing.T) {
	t.Parallel()

	const sample = 1 << 16

	buf := make([]byte, sample)
	New(99).Fill(buf)

	observed := make([]float64, 256)
	for _, b := range buf {
		observed[b]++
	}

	expected := make([]float64, 256)
	for i := range expected {
		expected[i] = sample / 256.0
	}

	chi2 := stat.ChiSquare(observed, expected)
	threshold := distuv.ChiSquared{K: 255}.Quantile(0.9999)

	if chi2 > threshold {
		t.Errorf("byte distribution not uniform: chi2 %.2f > threshold %.2f", chi2, threshold)
	}
}

func TestUint64AdvancesStream(t *testing.T) {
	t.Parallel()

	s := New(5)

	if s.Uint64() == s.Uint64() {
		t.Error("consecutive Uint64 values identical")
	}
}

// Package bic implements the Bit Independence Criterion test.
//
// For every input-bit position the test hashes a fresh random key, flips
// that single bit, hashes again, and XORs the two digests into a
// change-mask. Repeated many times per key bit, the masks yield two count
// tables: how often each output bit changed (popcount) and how often each
// unordered pair of output bits changed together (andcount). A chi-square
// test of independence over the reconstructed contingency tables then
// finds the (key bit, output-bit pair) tuple with the worst deviation; a
// good hash shows no pair whose changes are correlated beyond chance.
package bic

import (
	"errors"
	"fmt"

	"hashtk/internal/chisq"
	"hashtk/internal/hashes"
	"hashtk/internal/vcode"
)

var (
	errNilHash       = errors.New("hash cannot be nil")
	errHashTooNarrow = errors.New("hash must produce at least 2 bits")
	errKeyBytesZero  = errors.New("key length cannot be zero")
	errRepsZero      = errors.New("repetition count cannot be zero")
	errThreads       = errors.New("thread count must be at least 1")
	errAlpha         = errors.New("significance level must be in (0, 1)")
)

// Config holds the immutable inputs for one test invocation.
type Config struct {
	// Hash is the function under test.
	Hash *hashes.Info

	// Seed is the hash seed, already derived for this test category.
	Seed uint64

	// KeyBytes is the key length; KeyBytes*8 key bits are tested.
	KeyBytes int

	// Reps is the repetition count per key bit.
	Reps int

	// Threads sizes the worker pool. 1 runs inline with no pooling.
	Threads int

	// Alpha is the family-wise significance level for the verdict.
	Alpha float64

	// Progress, if set, is called as key bits complete, roughly once per
	// 10% of the range. May be called from worker goroutines.
	Progress func(done, total int)

	// VCode, if set, receives the generated corpus bytes.
	VCode *vcode.Accumulator
}

func (c Config) validate() error {
	if c.Hash == nil {
		return errNilHash
	}

	if c.Hash.Bits < 2 {
		return fmt.Errorf("%w: %s has %d", errHashTooNarrow, c.Hash.Name, c.Hash.Bits)
	}

	if c.KeyBytes <= 0 {
		return fmt.Errorf("%w: %d", errKeyBytesZero, c.KeyBytes)
	}

	if c.Reps <= 0 {
		return fmt.Errorf("%w: %d", errRepsZero, c.Reps)
	}

	if c.Threads < 1 {
		return fmt.Errorf("%w: %d", errThreads, c.Threads)
	}

	if c.Alpha <= 0 || c.Alpha >= 1 {
		return fmt.Errorf("%w: %g", errAlpha, c.Alpha)
	}

	return nil
}

// Result is the outcome of one test invocation. A statistical failure is
// a normal Result with Pass=false, never an error.
type Result struct {
	Hash    string
	KeyBits int
	Reps    int
	Pass    bool
	Worst   chisq.Tuple
	Tuples  int
}

// Repetition policy constants, shared by the whole battery: a fixed hash
// budget divided by the digest width, with a floor that keeps narrow and
// slow configurations statistically meaningful.
const (
	repsBudget = 64000000
	minReps    = 100000
)

// Repetitions picks the repetition count for a hash: wider digests cost
// more per pair, slow hashes cost more per call, both get fewer reps.
func Repetitions(h *hashes.Info) int {
	if h.Bits > 128 || h.VerySlow {
		return minReps
	}

	reps := repsBudget / h.Bits
	if reps < minReps {
		reps = minReps
	}

	return reps
}

// Run executes the full pipeline: generate the corpus, accumulate the
// count tables across workers, evaluate the worst-case deviation.
func Run(cfg Config) (Result, error) {
	tables, err := Accumulate(cfg)
	if err != nil {
		return Result{}, err
	}

	worst, err := chisq.Worst(tables.Popcount, tables.Andcount, tables.KeyBits, tables.HashBits, tables.Reps)
	if err != nil {
		return Result{}, err
	}

	tuples := chisq.Tuples(tables.KeyBits, tables.HashBits)

	return Result{
		Hash:    cfg.Hash.Name,
		KeyBits: tables.KeyBits,
		Reps:    tables.Reps,
		Pass:    !chisq.Significant(worst, tuples, cfg.Alpha),
		Worst:   worst,
		Tuples:  tuples,
	}, nil
}

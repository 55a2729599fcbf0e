// Package vcode accumulates a verification code: a checksum over every
// generated test input, used to confirm that two runs (possibly on
// different platforms) tested exactly the same data. It is purely
// observational and never influences test outcomes.
package vcode

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Accumulator folds registered inputs into a running checksum.
// A nil *Accumulator is valid and ignores all registrations, so callers
// can pass one through unconditionally.
type Accumulator struct {
	mu sync.Mutex
	d  *xxhash.Digest
	n  uint64
}

// New returns an empty accumulator.
func New() *Accumulator {
	return &Accumulator{d: xxhash.New()}
}

// AddInput registers generated input bytes. Order matters: runs must
// register the same bytes in the same order to produce the same code.
func (a *Accumulator) AddInput(p []byte) {
	if a == nil {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	_, _ = a.d.Write(p)
	a.n += uint64(len(p))
}

// Sum returns the current verification code.
func (a *Accumulator) Sum() uint64 {
	if a == nil {
		return 0
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	return a.d.Sum64()
}

// Inputs returns the number of bytes registered so far.
func (a *Accumulator) Inputs() uint64 {
	if a == nil {
		return 0
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	return a.n
}

package battery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/natefinch/atomic"
)

// Entry is one recorded test outcome.
type Entry struct {
	Test    string `json:"test"`
	Hash    string `json:"hash"`
	KeyBits int    `json:"key_bits"`
	Pass    bool   `json:"pass"`
}

// Ledger is the append-only record of test outcomes for a run. Safe for
// concurrent Record calls; entries keep arrival order.
type Ledger struct {
	mu      sync.Mutex
	entries []Entry
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Record appends one outcome.
func (l *Ledger) Record(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, e)
}

// Entries returns a copy of all recorded outcomes.
func (l *Ledger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)

	return out
}

// Summary returns the pass/fail counts.
func (l *Ledger) Summary() (passed, failed int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, e := range l.entries {
		if e.Pass {
			passed++
		} else {
			failed++
		}
	}

	return passed, failed
}

// WriteFile writes the ledger as indented JSON, atomically and guarded by
// an advisory lock so concurrent runs sharing a report path cannot
// interleave.
func (l *Ledger) WriteFile(path string) error {
	data, err := json.MarshalIndent(l.Entries(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding ledger: %w", err)
	}

	data = append(data, '\n')

	return withLock(path, func() error {
		if writeErr := atomic.WriteFile(path, bytes.NewReader(data)); writeErr != nil {
			return fmt.Errorf("writing ledger: %w", writeErr)
		}

		return nil
	})
}

// Package partition hands out disjoint key-bit ranges to workers.
//
// The only shared state in the parallel dispatch phase is a claim cursor
// over [0, keyBits). Workers repeatedly claim the next batch until the
// cursor passes the limit; every index is claimed exactly once and claims
// are served in increasing order. Completion order across workers is
// unspecified.
package partition

import "sync/atomic"

// Claimer is the exclusive-claim counter abstraction. Callers must not
// depend on which implementation is behind it.
type Claimer interface {
	// Next claims the next batch and returns its [start, stop) range.
	// ok is false once the range is exhausted.
	Next() (start, stop int, ok bool)
}

// Atomic is the multi-worker Claimer, backed by a hardware fetch-and-add.
type Atomic struct {
	cursor atomic.Int64
	limit  int64
	batch  int64
}

// NewAtomic returns a Claimer over [0, limit) with the given batch size.
func NewAtomic(limit, batch int) *Atomic {
	return &Atomic{limit: int64(limit), batch: int64(batch)}
}

func (c *Atomic) Next() (int, int, bool) {
	start := c.cursor.Add(c.batch) - c.batch
	if start >= c.limit {
		return 0, 0, false
	}

	stop := start + c.batch
	if stop > c.limit {
		stop = c.limit
	}

	return int(start), int(stop), true
}

// Serial is the single-worker Claimer: a plain counter, no atomics.
// Behavior is identical to Atomic.
type Serial struct {
	cursor int
	limit  int
	batch  int
}

// NewSerial returns a single-worker Claimer over [0, limit).
func NewSerial(limit, batch int) *Serial {
	return &Serial{limit: limit, batch: batch}
}

func (c *Serial) Next() (int, int, bool) {
	start := c.cursor
	if start >= c.limit {
		return 0, 0, false
	}

	c.cursor += c.batch

	stop := start + c.batch
	if stop > c.limit {
		stop = c.limit
	}

	return start, stop, true
}

// cacheLine is the assumed cache line size in bytes.
const cacheLine = 64

// minBatch is the smallest claim worth handing out; at common hash
// widths two popcount rows already fill a cache line.
const minBatch = 2

// BatchSize picks the claim batch for a hash width: the smallest batch
// whose per-key-bit popcount rows (hashBits uint32 counters each) span at
// least one cache line, so neighboring workers never write to the same
// line. Andcount rows are wider than popcount rows and need no extra
// padding.
func BatchSize(hashBits int) int {
	batch := minBatch
	for batch*hashBits*4 < cacheLine {
		batch *= 2
	}

	return batch
}

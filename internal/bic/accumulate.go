package bic

import (
	"sync"
	"sync/atomic"

	"hashtk/internal/corpus"
	"hashtk/internal/hashes"
	"hashtk/internal/partition"
)

// Tables holds the accumulated counts for one invocation. Rows are indexed
// by key bit: Popcount has HashBits cells per row, Andcount one cell per
// unordered output-bit pair (out1 < out2) in row-major pair order. Workers
// write whole rows, so distinct key-bit ranges touch disjoint memory.
type Tables struct {
	KeyBits  int
	HashBits int
	Reps     int
	Popcount []uint32
	Andcount []uint32
}

// Accumulate generates the key corpus and fills the count tables, fanning
// key-bit batches out to cfg.Threads workers. The result is bit-for-bit
// identical for any thread count given the same configuration.
func Accumulate(cfg Config) (*Tables, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	keyBits := cfg.KeyBytes * 8
	hashBits := cfg.Hash.Bits
	pairs := hashBits / 2 * (hashBits - 1)

	keys, err := corpus.Generate(corpus.Seed, cfg.KeyBytes, cfg.Reps, cfg.VCode)
	if err != nil {
		return nil, err
	}

	tables := &Tables{
		KeyBits:  keyBits,
		HashBits: hashBits,
		Reps:     cfg.Reps,
		Popcount: make([]uint32, keyBits*hashBits),
		Andcount: make([]uint32, keyBits*pairs),
	}

	var done atomic.Int64

	if cfg.Threads == 1 {
		// Degenerate single-worker path: plain counter, whole range in
		// one claim.
		accumulateBatches(cfg, partition.NewSerial(keyBits, keyBits), keys, tables, &done)

		return tables, nil
	}

	claimer := partition.NewAtomic(keyBits, partition.BatchSize(hashBits))

	var wg sync.WaitGroup

	for range cfg.Threads {
		wg.Add(1)

		go func() {
			defer wg.Done()
			accumulateBatches(cfg, claimer, keys, tables, &done)
		}()
	}

	wg.Wait()

	return tables, nil
}

// accumulateBatches is the worker loop: claim a key-bit batch, walk its
// slice of the corpus, and scatter each change-mask into that key bit's
// count rows.
func accumulateBatches(cfg Config, claimer partition.Claimer, keys []byte, t *Tables, done *atomic.Int64) {
	hashBits := t.HashBits
	pairs := hashBits / 2 * (hashBits - 1)

	h1 := hashes.NewDigest(hashBits)
	h2 := hashes.NewDigest(hashBits)
	mask := hashes.NewDigest(hashBits)

	for {
		start, stop, ok := claimer.Next()
		if !ok {
			return
		}

		cursor := keys[start*cfg.KeyBytes*cfg.Reps:]

		for keyBit := start; keyBit < stop; keyBit++ {
			popRow := t.Popcount[keyBit*hashBits : (keyBit+1)*hashBits]
			andRow := t.Andcount[keyBit*pairs : (keyBit+1)*pairs]

			for range cfg.Reps {
				key := cursor[:cfg.KeyBytes]
				cursor = cursor[cfg.KeyBytes:]

				cfg.Hash.Fn(key, cfg.Seed, h1)
				corpus.FlipBit(key, keyBit)
				cfg.Hash.Fn(key, cfg.Seed, h2)

				mask.XOR(h1, h2)

				// Count how often each output bit changed.
				mask.Histogram(popRow)

				// Count how often each pair changed together. When out1
				// did not change, none of its pairs did either: skip the
				// whole block by advancing the cell cursor.
				cell := 0

				for out1 := 0; out1 < hashBits-1; out1++ {
					if mask.Bit(out1) == 0 {
						cell += hashBits - 1 - out1

						continue
					}

					mask.HistogramFrom(andRow[cell:], out1+1)
					cell += hashBits - 1 - out1
				}
			}

			markDone(done, t.KeyBits, cfg.Progress)
		}
	}
}

// markDone advances the shared completion counter and fires the progress
// callback when a ~10% boundary of the key-bit range is crossed.
func markDone(done *atomic.Int64, total int, progress func(done, total int)) {
	n := int(done.Add(1))

	if progress == nil {
		return
	}

	if n*10/total != (n-1)*10/total {
		progress(n, total)
	}
}

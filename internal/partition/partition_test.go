package partition

import (
	"sort"
	"sync"
	"testing"
)

type claim struct{ start, stop int }

func drain(c Claimer) []claim {
	var claims []claim

	for {
		start, stop, ok := c.Next()
		if !ok {
			return claims
		}

		claims = append(claims, claim{start, stop})
	}
}

// checkCoverage verifies that claims cover [0, limit) exactly once.
func checkCoverage(t *testing.T, claims []claim, limit int) {
	t.Helper()

	seen := make([]int, limit)

	for _, c := range claims {
		if c.start < 0 || c.stop > limit || c.start >= c.stop {
			t.Fatalf("bad claim [%d, %d) for limit %d", c.start, c.stop, limit)
		}

		for i := c.start; i < c.stop; i++ {
			seen[i]++
		}
	}

	for i, n := range seen {
		if n != 1 {
			t.Errorf("index %d claimed %d times, want 1", i, n)
		}
	}
}

func TestSerialCoverage(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct{ limit, batch int }{
		{88, 2}, {88, 3}, {128, 2}, {1, 1}, {7, 16}, {64, 64},
	} {
		checkCoverage(t, drain(NewSerial(tc.limit, tc.batch)), tc.limit)
	}
}

func TestSerialIncreasingOrder(t *testing.T) {
	t.Parallel()

	claims := drain(NewSerial(100, 7))

	for i := 1; i < len(claims); i++ {
		if claims[i].start != claims[i-1].stop {
			t.Errorf("claim %d starts at %d, previous stopped at %d", i, claims[i].start, claims[i-1].stop)
		}
	}
}

func TestAtomicMatchesSerial(t *testing.T) {
	t.Parallel()

	serial := drain(NewSerial(88, 2))
	atomic := drain(NewAtomic(88, 2))

	if len(serial) != len(atomic) {
		t.Fatalf("claim counts differ: serial %d, atomic %d", len(serial), len(atomic))
	}

	for i := range serial {
		if serial[i] != atomic[i] {
			t.Errorf("claim %d: serial %v, atomic %v", i, serial[i], atomic[i])
		}
	}
}

func TestAtomicConcurrentCoverage(t *testing.T) {
	t.Parallel()

	for _, workers := range []int{2, 4, 16} {
		claimer := NewAtomic(128, 2)

		var (
			mu     sync.Mutex
			claims []claim
			wg     sync.WaitGroup
		)

		for range workers {
			wg.Add(1)

			go func() {
				defer wg.Done()

				for {
					start, stop, ok := claimer.Next()
					if !ok {
						return
					}

					mu.Lock()
					claims = append(claims, claim{start, stop})
					mu.Unlock()
				}
			}()
		}

		wg.Wait()

		sort.Slice(claims, func(i, j int) bool { return claims[i].start < claims[j].start })
		checkCoverage(t, claims, 128)
	}
}

func TestAtomicExhaustionStaysExhausted(t *testing.T) {
	t.Parallel()

	claimer := NewAtomic(4, 2)
	drain(claimer)

	for range 10 {
		if _, _, ok := claimer.Next(); ok {
			t.Fatal("claimer handed out a range after exhaustion")
		}
	}
}

func TestBatchSize(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct{ hashBits, want int }{
		{8, 2},
		{16, 2},
		{32, 2},
		{64, 2},
		{128, 2},
		{4, 4},
		{2, 8},
	} {
		if got := BatchSize(tc.hashBits); got != tc.want {
			t.Errorf("BatchSize(%d) = %d, want %d", tc.hashBits, got, tc.want)
		}

		// The invariant behind the numbers: a batch of popcount rows
		// spans at least one cache line.
		if got := BatchSize(tc.hashBits); got*tc.hashBits*4 < 64 {
			t.Errorf("BatchSize(%d) = %d leaves rows sharing a cache line", tc.hashBits, got)
		}
	}
}

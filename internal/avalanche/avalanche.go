// Package avalanche implements the strict avalanche test: flipping any
// single input bit should flip every output bit with probability 1/2.
//
// It shares the BIC pipeline — same corpus layout, same partitioning, same
// flip-and-XOR inner loop — but only accumulates per-output-bit change
// counts. Each count is Binomial(reps, 1/2) under the null, so the verdict
// is a worst-case normal deviation search with a Bonferroni correction
// over all (key bit, output bit) cells. This is the test that catches an
// input bit copied straight into an output bit, which the independence
// test cannot see (its marginals degenerate to zero tables).
package avalanche

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"hashtk/internal/corpus"
	"hashtk/internal/hashes"
	"hashtk/internal/partition"
	"hashtk/internal/vcode"
)

var (
	errNilHash      = errors.New("hash cannot be nil")
	errNoHashBits   = errors.New("hash must produce at least 1 bit")
	errKeyBytesZero = errors.New("key length cannot be zero")
	errRepsZero     = errors.New("repetition count cannot be zero")
	errThreads      = errors.New("thread count must be at least 1")
	errAlpha        = errors.New("significance level must be in (0, 1)")
)

// Config holds the immutable inputs for one test invocation.
type Config struct {
	Hash     *hashes.Info
	Seed     uint64
	KeyBytes int
	Reps     int
	Threads  int
	Alpha    float64
	Progress func(done, total int)
	VCode    *vcode.Accumulator
}

func (c Config) validate() error {
	if c.Hash == nil {
		return errNilHash
	}

	if c.Hash.Bits < 1 {
		return fmt.Errorf("%w: %s has %d", errNoHashBits, c.Hash.Name, c.Hash.Bits)
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

// Cell identifies the worst (key bit, output bit) deviation.
type Cell struct {
	KeyBit int
	OutBit int

	// Count is how often the output bit changed across Reps flips.
	Count uint32

	// Z is the normal deviation of Count from Reps/2.
	Z float64

	// P is the uncorrected two-sided p-value of Z.
	P float64
}

// Result is the outcome of one invocation. Pass=false is a normal,
// reportable outcome, not an error.
type Result struct {
	Hash    string
	KeyBits int
	Reps    int
	Pass    bool
	Worst   Cell
	Cells   int

	// MeanBias and MaxBias summarize |2p-1| over all cells, for verbose
	// reporting.
	MeanBias float64
	MaxBias  float64
}

// Accumulate generates the corpus and fills the popcount table
// (KeyBits*HashBits cells, row per key bit).
func Accumulate(cfg Config) ([]uint32, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	keyBits := cfg.KeyBytes * 8
	hashBits := cfg.Hash.Bits

	keys, err := corpus.Generate(corpus.Seed, cfg.KeyBytes, cfg.Reps, cfg.VCode)
	if err != nil {
		return nil, err
	}

	popcount := make([]uint32, keyBits*hashBits)

	var done atomic.Int64

	if cfg.Threads == 1 {
		countBatches(cfg, partition.NewSerial(keyBits, keyBits), keys, popcount, &done)

		return popcount, nil
	}

	claimer := partition.NewAtomic(keyBits, partition.BatchSize(hashBits))

	var wg sync.WaitGroup

	for range cfg.Threads {
		wg.Add(1)

		go func() {
			defer wg.Done()
			countBatches(cfg, claimer, keys, popcount, &done)
		}()
	}

	wg.Wait()

	return popcount, nil
}

func countBatches(cfg Config, claimer partition.Claimer, keys []byte, popcount []uint32, done *atomic.Int64) {
	keyBits := cfg.KeyBytes * 8
	hashBits := cfg.Hash.Bits

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
			popRow := popcount[keyBit*hashBits : (keyBit+1)*hashBits]

			for range cfg.Reps {
				key := cursor[:cfg.KeyBytes]
				cursor = cursor[cfg.KeyBytes:]

				cfg.Hash.Fn(key, cfg.Seed, h1)
				corpus.FlipBit(key, keyBit)
				cfg.Hash.Fn(key, cfg.Seed, h2)

				mask.XOR(h1, h2)
				mask.Histogram(popRow)
			}

			n := int(done.Add(1))
			if cfg.Progress != nil && n*10/keyBits != (n-1)*10/keyBits {
				cfg.Progress(n, keyBits)
			}
		}
	}
}

// Run executes the full pipeline and evaluates the worst deviation.
func Run(cfg Config) (Result, error) {
	popcount, err := Accumulate(cfg)
	if err != nil {
		return Result{}, err
	}

	keyBits := cfg.KeyBytes * 8
	hashBits := cfg.Hash.Bits
	half := float64(cfg.Reps) / 2
	sigma := math.Sqrt(float64(cfg.Reps) / 4)

	worst := Cell{Z: -1}
	biases := make([]float64, len(popcount))

	for i, count := range popcount {
		z := math.Abs(float64(count)-half) / sigma
		biases[i] = math.Abs(2*float64(count)/float64(cfg.Reps) - 1)

		if z > worst.Z {
			worst = Cell{KeyBit: i / hashBits, OutBit: i % hashBits, Count: count, Z: z}
		}
	}

	worst.P = 2 * distuv.Normal{Mu: 0, Sigma: 1}.Survival(worst.Z)

	cells := keyBits * hashBits
	meanBias, _ := stats.Mean(biases)
	maxBias, _ := stats.Max(biases)

	return Result{
		Hash:     cfg.Hash.Name,
		KeyBits:  keyBits,
		Reps:     cfg.Reps,
		Pass:     worst.P*float64(cells) >= cfg.Alpha,
		Worst:    worst,
		Cells:    cells,
		MeanBias: meanBias,
		MaxBias:  maxBias,
	}, nil
}

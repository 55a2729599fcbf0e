// Package battery orchestrates the statistical test battery: it builds
// the immutable run context, drives each test across the key-length
// presets, and aggregates outcomes into the result ledger.
package battery

import (
	"hashtk/internal/avalanche"
	"hashtk/internal/bic"
	"hashtk/internal/hashes"
	"hashtk/internal/vcode"
)

// Seed-stream discriminators, one per test category, so every test sees
// an independent but reproducible hash seed for the same global seed.
const (
	discAvalanche = 2
	discBIC       = 3
)

// KeyBytePresets are the key lengths every test runs across: 88-bit and
// 128-bit keys.
var KeyBytePresets = []int{11, 16}

// Context carries the immutable per-run environment. It replaces ambient
// globals (CPU count, global seed) with explicit state constructed once
// and passed into every test.
type Context struct {
	Seed    uint64
	Threads int
	Alpha   float64

	// RepsOverride forces a repetition count; 0 applies the width/cost
	// policy (bic.Repetitions).
	RepsOverride int

	// KeyBytes overrides the key-length presets; nil uses KeyBytePresets.
	KeyBytes []int

	VCode    *vcode.Accumulator
	Ledger   *Ledger
	Progress func(done, total int)
}

// NewContext builds a run context from a validated config.
func NewContext(cfg Config) *Context {
	return &Context{
		Seed:    cfg.Seed,
		Threads: cfg.Threads,
		Alpha:   cfg.Alpha,
		VCode:   vcode.New(),
		Ledger:  NewLedger(),
	}
}

func (ctx *Context) keyBytes() []int {
	if len(ctx.KeyBytes) > 0 {
		return ctx.KeyBytes
	}

	return KeyBytePresets
}

func (ctx *Context) reps(h *hashes.Info) int {
	if ctx.RepsOverride > 0 {
		return ctx.RepsOverride
	}

	return bic.Repetitions(h)
}

// RunBIC runs the bit independence test across the key-length presets.
// Every per-configuration outcome lands in the ledger; the return value
// is the logical AND. Engine errors abort; statistical failures do not.
func RunBIC(ctx *Context, h *hashes.Info) (bool, []bic.Result, error) {
	seed := h.Seed(ctx.Seed, discBIC)
	reps := ctx.reps(h)
	pass := true

	var results []bic.Result

	for _, keyBytes := range ctx.keyBytes() {
		res, err := bic.Run(bic.Config{
			Hash:     h,
			Seed:     seed,
			KeyBytes: keyBytes,
			Reps:     reps,
			Threads:  ctx.Threads,
			Alpha:    ctx.Alpha,
			Progress: ctx.Progress,
			VCode:    ctx.VCode,
		})
		if err != nil {
			return false, nil, err
		}

		ctx.Ledger.Record(Entry{Test: "bic", Hash: h.Name, KeyBits: res.KeyBits, Pass: res.Pass})

		pass = pass && res.Pass
		results = append(results, res)
	}

	return pass, results, nil
}

// RunAvalanche runs the avalanche test across the key-length presets.
func RunAvalanche(ctx *Context, h *hashes.Info) (bool, []avalanche.Result, error) {
	seed := h.Seed(ctx.Seed, discAvalanche)
	reps := ctx.reps(h)
	pass := true

	var results []avalanche.Result

	for _, keyBytes := range ctx.keyBytes() {
		res, err := avalanche.Run(avalanche.Config{
			Hash:     h,
			Seed:     seed,
			KeyBytes: keyBytes,
			Reps:     reps,
			Threads:  ctx.Threads,
			Alpha:    ctx.Alpha,
			Progress: ctx.Progress,
			VCode:    ctx.VCode,
		})
		if err != nil {
			return false, nil, err
		}

		ctx.Ledger.Record(Entry{Test: "avalanche", Hash: h.Name, KeyBits: res.KeyBits, Pass: res.Pass})

		pass = pass && res.Pass
		results = append(results, res)
	}

	return pass, results, nil
}

// RunAll runs the full battery for one hash and aggregates with logical
// AND.
func RunAll(ctx *Context, h *hashes.Info) (bool, error) {
	avPass, _, err := RunAvalanche(ctx, h)
	if err != nil {
		return false, err
	}

	bicPass, _, err := RunBIC(ctx, h)
	if err != nil {
		return false, err
	}

	return avPass && bicPass, nil
}

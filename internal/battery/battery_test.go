package battery

import (
	"testing"

	"hashtk/internal/chisq"
	"hashtk/internal/hashes"
)

func fastContext() *Context {
	ctx := NewContext(Config{Threads: 2, Seed: 7, Alpha: chisq.DefaultAlpha})
	ctx.KeyBytes = []int{1}
	ctx.RepsOverride = 2000

	return ctx
}

func TestNewContext(t *testing.T) {
	t.Parallel()

	ctx := NewContext(Config{Threads: 4, Seed: 9, Alpha: 0.01})

	if ctx.Threads != 4 || ctx.Seed != 9 || ctx.Alpha != 0.01 {
		t.Errorf("Context = %d/%d/%g, want 4/9/0.01", ctx.Threads, ctx.Seed, ctx.Alpha)
	}

	if ctx.VCode == nil || ctx.Ledger == nil {
		t.Error("Context missing vcode or ledger")
	}
}

func TestContextKeyBytes(t *testing.T) {
	t.Parallel()

	ctx := NewContext(Config{Threads: 1, Alpha: chisq.DefaultAlpha})

	if got := ctx.keyBytes(); len(got) != 2 || got[0] != 11 || got[1] != 16 {
		t.Errorf("default keyBytes = %v, want [11 16]", got)
	}

	ctx.KeyBytes = []int{1, 2}

	if got := ctx.keyBytes(); len(got) != 2 || got[0] != 1 {
		t.Errorf("override keyBytes = %v, want [1 2]", got)
	}
}

func TestContextReps(t *testing.T) {
	t.Parallel()

	ctx := NewContext(Config{Threads: 1, Alpha: chisq.DefaultAlpha})
	h := &hashes.Info{Bits: 64}

	if got := ctx.reps(h); got != 1000000 {
		t.Errorf("policy reps = %d, want 1000000", got)
	}

	ctx.RepsOverride = 123

	if got := ctx.reps(h); got != 123 {
		t.Errorf("override reps = %d, want 123", got)
	}
}

func TestRunBICRecordsEveryPreset(t *testing.T) {
	t.Parallel()

	h, err := hashes.Lookup("randomizer")
	if err != nil {
		t.Fatal(err)
	}

	ctx := fastContext()
	ctx.KeyBytes = []int{1, 2}

	_, results, err := RunBIC(ctx, h)
	if err != nil {
		t.Fatal(err)
	}

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	entries := ctx.Ledger.Entries()
	if len(entries) != 2 {
		t.Fatalf("ledger has %d entries, want 2", len(entries))
	}

	for i, keyBits := range []int{8, 16} {
		e := entries[i]
		if e.Test != "bic" || e.Hash != "randomizer" || e.KeyBits != keyBits {
			t.Errorf("entry %d = %+v, want bic/randomizer/%d", i, e, keyBits)
		}

		if results[i].KeyBits != keyBits {
			t.Errorf("result %d KeyBits = %d, want %d", i, results[i].KeyBits, keyBits)
		}
	}

	if ctx.VCode.Inputs() == 0 {
		t.Error("run registered no corpus bytes in the verification code")
	}
}

func TestRunBICAggregatesWithAND(t *testing.T) {
	t.Parallel()

	h, err := hashes.Lookup("twinbit")
	if err != nil {
		t.Fatal(err)
	}

	ctx := fastContext()
	ctx.RepsOverride = 10000

	pass, results, err := RunBIC(ctx, h)
	if err != nil {
		t.Fatal(err)
	}

	if pass {
		t.Error("battery passed a hash with mirrored output bits")
	}

	failed := false

	for _, res := range results {
		if !res.Pass {
			failed = true
		}
	}

	if !failed {
		t.Error("aggregate failed but no per-configuration result did")
	}
}

func TestRunAvalancheRecords(t *testing.T) {
	t.Parallel()

	h, err := hashes.Lookup("randomizer")
	if err != nil {
		t.Fatal(err)
	}

	ctx := fastContext()

	_, results, err := RunAvalanche(ctx, h)
	if err != nil {
		t.Fatal(err)
	}

	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}

	entries := ctx.Ledger.Entries()
	if len(entries) != 1 || entries[0].Test != "avalanche" {
		t.Errorf("ledger = %+v, want one avalanche entry", entries)
	}
}

func TestRunAllCoversBothTests(t *testing.T) {
	t.Parallel()

	h, err := hashes.Lookup("randomizer")
	if err != nil {
		t.Fatal(err)
	}

	ctx := fastContext()

	if _, err := RunAll(ctx, h); err != nil {
		t.Fatal(err)
	}

	entries := ctx.Ledger.Entries()
	if len(entries) != 2 {
		t.Fatalf("ledger has %d entries, want 2", len(entries))
	}

	if entries[0].Test != "avalanche" || entries[1].Test != "bic" {
		t.Errorf("entry order = %s, %s, want avalanche then bic", entries[0].Test, entries[1].Test)
	}
}

func TestCategorySeedsDiffer(t *testing.T) {
	t.Parallel()

	h := &hashes.Info{Name: "seed-probe"}

	if h.Seed(1, discAvalanche) == h.Seed(1, discBIC) {
		t.Error("avalanche and independence tests share a hash seed")
	}
}

func TestRunBICPropagatesEngineErrors(t *testing.T) {
	t.Parallel()

	h, err := hashes.Lookup("randomizer")
	if err != nil {
		t.Fatal(err)
	}

	ctx := fastContext()
	ctx.Threads = 0 // invalid, must surface as an error

	if _, _, err := RunBIC(ctx, h); err == nil {
		t.Error("invalid thread count did not surface")
	}
}

package cli

import (
	"errors"
	"io"

	flag "github.com/spf13/pflag"

	"hashtk/internal/battery"
	"hashtk/internal/bic"
	"hashtk/internal/hashes"
)

var errHashRequired = errors.New("hash name is required")

// testOptions are the per-test-command flags shared by bic, avalanche and
// all.
type testOptions struct {
	keyBytes []int
	reps     int
	out      string
}

func newTestFlagSet(name string, errOut io.Writer, usage func(w io.Writer)) (*flag.FlagSet, *testOptions) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() { usage(fs.Output()) }

	opts := &testOptions{}
	fs.IntSliceVar(&opts.keyBytes, "keybytes", nil, "Key lengths in bytes (repeatable)")
	fs.IntVar(&opts.reps, "reps", 0, "Repetitions per key bit (0 = policy)")
	fs.StringVar(&opts.out, "out", "", "Write the result ledger to this file")

	return fs, opts
}

// resolveHash parses the positional hash argument.
func resolveHash(fs *flag.FlagSet, errOut io.Writer) (*hashes.Info, bool) {
	if fs.NArg() == 0 {
		fprintln(errOut, "error:", errHashRequired)

		return nil, false
	}

	h, err := hashes.Lookup(fs.Arg(0))
	if err != nil {
		fprintln(errOut, "error:", err)

		return nil, false
	}

	return h, true
}

func newContext(cfg battery.Config, errOut io.Writer, verbose bool, opts *testOptions) *battery.Context {
	ctx := battery.NewContext(cfg)
	ctx.KeyBytes = opts.keyBytes
	ctx.RepsOverride = opts.reps

	if verbose {
		ctx.Progress = progressDots(errOut)
	}

	return ctx
}

// finish writes the optional ledger file and the verbose trailer, and
// maps the aggregate outcome to an exit code.
func finish(out, errOut io.Writer, ctx *battery.Context, opts *testOptions, verbose, pass bool) int {
	if opts.out != "" {
		if err := ctx.Ledger.WriteFile(opts.out); err != nil {
			fprintln(errOut, "error:", err)

			return 1
		}
	}

	if verbose {
		fprintf(out, "verification code: %016x over %d bytes\n", ctx.VCode.Sum(), ctx.VCode.Inputs())
	}

	if !pass {
		fprintln(out, "FAIL")

		return 1
	}

	return 0
}

func cmdBic(out, errOut io.Writer, cfg battery.Config, verbose bool, args []string) int {
	fs, opts := newTestFlagSet("bic", errOut, func(w io.Writer) {
		fprintf(w, "Usage: hashtk bic <hash> [options]\n\n")
		fprintf(w, "Run the bit independence test for one hash.\n\n")
		fprintf(w, "Options:\n")
	})

	if hasHelpFlag(args) {
		fs.SetOutput(out)
		fs.Usage()
		fs.PrintDefaults()

		return 0
	}

	if err := fs.Parse(args); err != nil {
		fprintf(errOut, "error: %v\n", err)

		return 1
	}

	h, ok := resolveHash(fs, errOut)
	if !ok {
		return 1
	}

	ctx := newContext(cfg, errOut, verbose, opts)

	fprintf(out, "[[[ BIC 'Bit Independence Criteria' Tests ]]]\n\n")

	pass, results, err := battery.RunBIC(ctx, h)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	for _, res := range results {
		printBicResult(out, res, verbose)
	}

	return finish(out, errOut, ctx, opts, verbose, pass)
}

func printBicResult(out io.Writer, res bic.Result, verbose bool) {
	fprintf(out, "%-12s %3d-bit keys, %8d reps ... %s\n", res.Hash, res.KeyBits, res.Reps, passString(res.Pass))

	if verbose {
		fprintf(out, "  worst tuple: keybit %d, output bits (%d, %d), chi2 %.4f, p %.6g over %d tuples\n",
			res.Worst.KeyBit, res.Worst.Out1, res.Worst.Out2, res.Worst.Stat, res.Worst.P, res.Tuples)
	}
}

func passString(pass bool) string {
	if pass {
		return "pass"
	}

	return "FAIL"
}

func hasHelpFlag(args []string) bool {
	for _, a := range args {
		if a == helpFlag || a == "-h" {
			return true
		}
	}

	return false
}

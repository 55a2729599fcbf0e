package cli

import (
	"io"

	"hashtk/internal/avalanche"
	"hashtk/internal/battery"
)

func cmdAvalanche(out, errOut io.Writer, cfg battery.Config, verbose bool, args []string) int {
	fs, opts := newTestFlagSet("avalanche", errOut, func(w io.Writer) {
		fprintf(w, "Usage: hashtk avalanche <hash> [options]\n\n")
		fprintf(w, "Run the avalanche test for one hash.\n\n")
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

	fprintf(out, "[[[ Avalanche Tests ]]]\n\n")

	pass, results, err := battery.RunAvalanche(ctx, h)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	for _, res := range results {
		printAvalancheResult(out, res, verbose)
	}

	return finish(out, errOut, ctx, opts, verbose, pass)
}

func printAvalancheResult(out io.Writer, res avalanche.Result, verbose bool) {
	fprintf(out, "%-12s %3d-bit keys, %8d reps ... %s\n", res.Hash, res.KeyBits, res.Reps, passString(res.Pass))

	if verbose {
		fprintf(out, "  worst cell: keybit %d, output bit %d, count %d, z %.4f, p %.6g over %d cells\n",
			res.Worst.KeyBit, res.Worst.OutBit, res.Worst.Count, res.Worst.Z, res.Worst.P, res.Cells)
		fprintf(out, "  bias: mean %.6f, max %.6f\n", res.MeanBias, res.MaxBias)
	}
}

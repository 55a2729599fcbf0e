package cli

import (
	"io"

	"hashtk/internal/battery"
)

func cmdAll(out, errOut io.Writer, cfg battery.Config, verbose bool, args []string) int {
	fs, opts := newTestFlagSet("all", errOut, func(w io.Writer) {
		fprintf(w, "Usage: hashtk all <hash> [options]\n\n")
		fprintf(w, "Run the full test battery for one hash.\n\n")
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

	avPass, avResults, err := battery.RunAvalanche(ctx, h)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	for _, res := range avResults {
		printAvalancheResult(out, res, verbose)
	}

	fprintf(out, "\n[[[ BIC 'Bit Independence Criteria' Tests ]]]\n\n")

	bicPass, bicResults, err := battery.RunBIC(ctx, h)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	for _, res := range bicResults {
		printBicResult(out, res, verbose)
	}

	passed, failed := ctx.Ledger.Summary()

	fprintf(out, "\n%d passed, %d failed\n", passed, failed)

	return finish(out, errOut, ctx, opts, verbose, avPass && bicPass)
}

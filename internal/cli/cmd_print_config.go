package cli

import (
	"io"

	"hashtk/internal/battery"
)

func cmdPrintConfig(out, _ io.Writer, cfg battery.Config) int {
	fprintf(out, "threads: %d\n", cfg.Threads)
	fprintf(out, "seed:    %d\n", cfg.Seed)
	fprintf(out, "alpha:   %g\n", cfg.Alpha)

	return 0
}

package cli

import (
	"io"

	"hashtk/internal/hashes"
)

func cmdLs(out, errOut io.Writer, args []string) int {
	if len(args) > 0 && !hasHelpFlag(args) {
		fprintln(errOut, "error: ls takes no arguments")

		return 1
	}

	for _, name := range hashes.Names() {
		h, err := hashes.Lookup(name)
		if err != nil {
			fprintln(errOut, "error:", err)

			return 1
		}

		slow := ""
		if h.VerySlow {
			slow = " [very slow]"
		}

		fprintf(out, "%-12s %3d bits%s\n", h.Name, h.Bits, slow)
	}

	return 0
}

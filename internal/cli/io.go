package cli

import (
	"fmt"
	"io"
	"sync"
)

// fprintln writes a line, ignoring write errors (output is best-effort).
func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

// fprintf writes formatted output, ignoring write errors.
func fprintf(w io.Writer, format string, a ...any) {
	_, _ = fmt.Fprintf(w, format, a...)
}

// progressDots returns a progress callback that prints one dot per ~10%
// of the key-bit range to w. The engine may fire it from several worker
// goroutines at once.
func progressDots(w io.Writer) func(done, total int) {
	var mu sync.Mutex

	return func(done, total int) {
		mu.Lock()
		defer mu.Unlock()

		fprintf(w, ".")

		if done == total {
			fprintf(w, "\n")
		}
	}
}

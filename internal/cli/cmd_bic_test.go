package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hashtk/internal/battery"
)

// Pass-expecting runs pin a single seed, so they use a key space large
// relative to reps and a tight alpha to keep the verdict deterministic.
var bicFastArgs = []string{"--keybytes", "4", "--reps", "2000"}

func TestBicRequiresHash(t *testing.T) {
	t.Parallel()

	res := runCLI(t, "bic")
	if res.code != 1 || !strings.Contains(res.err, "hash name is required") {
		t.Errorf("code %d, stderr:\n%s", res.code, res.err)
	}
}

func TestBicUnknownHash(t *testing.T) {
	t.Parallel()

	res := runCLI(t, "bic", "no-such-hash")
	if res.code != 1 || !strings.Contains(res.err, "error:") {
		t.Errorf("code %d, stderr:\n%s", res.code, res.err)
	}
}

func TestBicHelp(t *testing.T) {
	t.Parallel()

	res := runCLI(t, "bic", "--help")
	if res.code != 0 || !strings.Contains(res.out, "Usage: hashtk bic") {
		t.Errorf("code %d, out:\n%s", res.code, res.out)
	}

	if !strings.Contains(res.out, "--keybytes") {
		t.Errorf("help missing option defaults:\n%s", res.out)
	}
}

func TestBicPassingHash(t *testing.T) {
	t.Parallel()

	args := append([]string{"--threads", "2", "--alpha", "0.001", "bic", "randomizer"}, bicFastArgs...)

	res := runCLI(t, args...)
	if res.code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s\nout:\n%s", res.code, res.err, res.out)
	}

	if !strings.Contains(res.out, "[[[ BIC 'Bit Independence Criteria' Tests ]]]") {
		t.Errorf("missing banner:\n%s", res.out)
	}

	if !strings.Contains(res.out, "randomizer") || !strings.Contains(res.out, "... pass") {
		t.Errorf("missing result line:\n%s", res.out)
	}
}

func TestBicFailingHash(t *testing.T) {
	t.Parallel()

	res := runCLI(t, "--threads", "2", "bic", "twinbit", "--keybytes", "4", "--reps", "5000")
	if res.code != 1 {
		t.Fatalf("exit code = %d, want 1; out:\n%s", res.code, res.out)
	}

	if !strings.Contains(res.out, "... FAIL") || !strings.Contains(res.out, "\nFAIL\n") {
		t.Errorf("missing failure report:\n%s", res.out)
	}
}

func TestBicVerbose(t *testing.T) {
	t.Parallel()

	args := append([]string{"--threads", "2", "--alpha", "0.001", "-v", "bic", "randomizer"}, bicFastArgs...)

	res := runCLI(t, args...)
	if res.code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", res.code, res.err)
	}

	if !strings.Contains(res.out, "worst tuple:") {
		t.Errorf("verbose output missing worst tuple:\n%s", res.out)
	}

	if !strings.Contains(res.out, "verification code:") {
		t.Errorf("verbose output missing verification code:\n%s", res.out)
	}

	// Progress dots land on stderr.
	if !strings.Contains(res.err, ".") {
		t.Errorf("no progress dots on stderr:\n%s", res.err)
	}
}

func TestBicWritesLedger(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	report := filepath.Join(dir, "report.json")

	args := append([]string{"--threads", "2", "--alpha", "0.001", "bic", "randomizer"}, bicFastArgs...)

	res := runIn(t, dir, append(args, "--out", report)...)
	if res.code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", res.code, res.err)
	}

	data, err := os.ReadFile(report)
	if err != nil {
		t.Fatal(err)
	}

	var entries []battery.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}

	if len(entries) != 1 || entries[0].Test != "bic" || entries[0].Hash != "randomizer" {
		t.Errorf("unexpected ledger entries: %+v", entries)
	}
}

func TestBicVCodeStableAcrossThreads(t *testing.T) {
	t.Parallel()

	run := func(threads string) cliResult {
		args := append([]string{"--threads", threads, "--alpha", "0.001", "-v", "bic", "randomizer"}, bicFastArgs...)

		return runCLI(t, args...)
	}

	one := run("1")
	four := run("4")

	if one.code != 0 || four.code != 0 {
		t.Fatalf("exit codes = %d/%d, want 0/0", one.code, four.code)
	}

	vcodeLine := func(out string) string {
		for _, line := range strings.Split(out, "\n") {
			if strings.HasPrefix(line, "verification code:") {
				return line
			}
		}

		return ""
	}

	if a, b := vcodeLine(one.out), vcodeLine(four.out); a == "" || a != b {
		t.Errorf("verification codes differ across thread counts: %q vs %q", a, b)
	}
}

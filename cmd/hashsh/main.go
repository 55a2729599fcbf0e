// Package main provides hashsh, an interactive shell around the hashtk
// test battery. Useful when calibrating thresholds or poking at a new
// hash adapter without re-running the whole CLI per attempt.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"hashtk/internal/battery"
	"hashtk/internal/hashes"
)

func main() {
	cfg := battery.DefaultConfig()

	r := &repl{cfg: cfg}
	if err := r.run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// repl is the interactive command loop.
type repl struct {
	cfg   battery.Config
	liner *liner.State
}

// historyFile returns the path to the history file.
func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".hashsh_history")
}

var replCommands = []string{
	"help", "ls", "bic", "avalanche", "all", "seed", "threads", "alpha", "quit",
}

func (r *repl) completer(line string) []string {
	var out []string

	for _, c := range replCommands {
		if strings.HasPrefix(c, strings.ToLower(line)) {
			out = append(out, c)
		}
	}

	for _, name := range hashes.Names() {
		for _, c := range []string{"bic ", "avalanche ", "all "} {
			if strings.HasPrefix(c+name, line) {
				out = append(out, c+name)
			}
		}
	}

	return out
}

func (r *repl) run() error {
	r.liner = liner.NewLiner()
	defer r.liner.Close()

	r.liner.SetCtrlCAborts(true)
	r.liner.SetCompleter(r.completer)

	if f, err := os.Open(historyFile()); err == nil {
		_, _ = r.liner.ReadHistory(f)
		f.Close()
	}

	fmt.Printf("hashsh - hashtk shell (threads=%d, seed=%d, alpha=%g)\n", r.cfg.Threads, r.cfg.Seed, r.cfg.Alpha)
	fmt.Println("Type 'help' for available commands.")
	fmt.Println()

	for {
		line, err := r.liner.Prompt("hashsh> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Println("\nBye!")

				break
			}

			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		r.liner.AppendHistory(line)

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "exit", "quit", "q":
			fmt.Println("Bye!")

			r.saveHistory()

			return nil

		case "help", "?":
			r.printHelp()

		case "ls":
			r.cmdLs()

		case "bic":
			r.cmdTest("bic", args)

		case "avalanche":
			r.cmdTest("avalanche", args)

		case "all":
			r.cmdTest("all", args)

		case "seed":
			r.cmdSeed(args)

		case "threads":
			r.cmdThreads(args)

		case "alpha":
			r.cmdAlpha(args)

		default:
			fmt.Printf("Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}

	r.saveHistory()

	return nil
}

func (r *repl) saveHistory() {
	path := historyFile()
	if path == "" {
		return
	}

	f, err := os.Create(path)
	if err != nil {
		return
	}

	_, _ = r.liner.WriteHistory(f)
	f.Close()
}

func (r *repl) printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  ls                 List registered hashes")
	fmt.Println("  bic <hash>         Run the bit independence test")
	fmt.Println("  avalanche <hash>   Run the avalanche test")
	fmt.Println("  all <hash>         Run the full battery")
	fmt.Println("  seed [n]           Show or set the global seed")
	fmt.Println("  threads [n]        Show or set the worker count")
	fmt.Println("  alpha [p]          Show or set the significance level")
	fmt.Println("  quit               Exit")
}

func (r *repl) cmdLs() {
	for _, name := range hashes.Names() {
		h, err := hashes.Lookup(name)
		if err != nil {
			continue
		}

		fmt.Printf("  %-12s %3d bits\n", h.Name, h.Bits)
	}
}

func (r *repl) cmdTest(test string, args []string) {
	if len(args) != 1 {
		fmt.Printf("usage: %s <hash>\n", test)

		return
	}

	h, err := hashes.Lookup(args[0])
	if err != nil {
		fmt.Println("error:", err)

		return
	}

	ctx := battery.NewContext(r.cfg)
	ctx.Progress = func(done, total int) {
		fmt.Print(".")

		if done == total {
			fmt.Println()
		}
	}

	var pass bool

	switch test {
	case "bic":
		pass, _, err = battery.RunBIC(ctx, h)
	case "avalanche":
		pass, _, err = battery.RunAvalanche(ctx, h)
	default:
		pass, err = battery.RunAll(ctx, h)
	}

	if err != nil {
		fmt.Println("error:", err)

		return
	}

	for _, e := range ctx.Ledger.Entries() {
		status := "pass"
		if !e.Pass {
			status = "FAIL"
		}

		fmt.Printf("  %-10s %-12s %3d-bit keys ... %s\n", e.Test, e.Hash, e.KeyBits, status)
	}

	if pass {
		fmt.Println("PASS")
	} else {
		fmt.Println("FAIL")
	}
}

func (r *repl) cmdSeed(args []string) {
	if len(args) == 0 {
		fmt.Printf("seed = %d\n", r.cfg.Seed)

		return
	}

	v, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		fmt.Println("error:", err)

		return
	}

	r.cfg.Seed = v
}

func (r *repl) cmdThreads(args []string) {
	if len(args) == 0 {
		fmt.Printf("threads = %d\n", r.cfg.Threads)

		return
	}

	v, err := strconv.Atoi(args[0])
	if err != nil || v < 1 {
		fmt.Println("error: threads must be a positive integer")

		return
	}

	r.cfg.Threads = v
}

func (r *repl) cmdAlpha(args []string) {
	if len(args) == 0 {
		fmt.Printf("alpha = %g\n", r.cfg.Alpha)

		return
	}

	v, err := strconv.ParseFloat(args[0], 64)
	if err != nil || v <= 0 || v >= 1 {
		fmt.Println("error: alpha must be in (0, 1)")

		return
	}

	r.cfg.Alpha = v
}

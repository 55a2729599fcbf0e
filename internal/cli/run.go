// Package cli implements the hashtk command-line surface: global flag and
// config handling plus one file per subcommand.
package cli

import (
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	"hashtk/internal/battery"
)

const helpFlag = "--help"

// globalFlags holds the parsed global flag values.
type globalFlags struct {
	workDir    string
	configPath string
	threads    int
	seed       uint64
	seedSet    bool
	alpha      float64
	verbose    bool
	remaining  []string
}

// Run is the main entry point. Returns the process exit code.
func Run(_ io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string) int {
	if len(args) < 2 {
		printUsage(out)

		return 0
	}

	flags, err := parseGlobalFlags(args[1:])
	if err != nil {
		if err == flag.ErrHelp {
			printUsage(out)

			return 0
		}

		fprintln(errOut, "error:", err)

		return 1
	}

	if len(flags.remaining) == 0 {
		printUsage(out)

		return 0
	}

	cfg, err := battery.LoadConfig(battery.LoadConfigInput{
		WorkDir:         flags.workDir,
		ConfigPath:      flags.configPath,
		Env:             env,
		ThreadsOverride: flags.threads,
		AlphaOverride:   flags.alpha,
		SeedOverride:    flags.seed,
		SeedSet:         flags.seedSet,
	})
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	cmd := flags.remaining[0]
	cmdArgs := flags.remaining[1:]

	if cmd == "-h" || cmd == helpFlag {
		printUsage(out)

		return 0
	}

	switch cmd {
	case "ls":
		return cmdLs(out, errOut, cmdArgs)
	case "bic":
		return cmdBic(out, errOut, cfg, flags.verbose, cmdArgs)
	case "avalanche":
		return cmdAvalanche(out, errOut, cfg, flags.verbose, cmdArgs)
	case "all":
		return cmdAll(out, errOut, cfg, flags.verbose, cmdArgs)
	case "print-config":
		return cmdPrintConfig(out, errOut, cfg)
	default:
		fprintln(errOut, "error: unknown command:", cmd)
		printUsage(errOut)

		return 1
	}
}

func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	fs := flag.NewFlagSet("hashtk", flag.ContinueOnError)
	fs.SetOutput(&strings.Builder{}) // discard pflag output
	fs.SetInterspersed(false)

	fs.StringVarP(&flags.workDir, "cwd", "C", "", "working directory")
	fs.StringVarP(&flags.configPath, "config", "c", "", "config file path")
	fs.IntVar(&flags.threads, "threads", 0, "worker thread count")
	fs.Uint64Var(&flags.seed, "seed", 0, "global seed")
	fs.Float64Var(&flags.alpha, "alpha", 0, "significance level")
	fs.BoolVarP(&flags.verbose, "verbose", "v", false, "verbose output")

	if err := fs.Parse(args); err != nil {
		return globalFlags{}, err
	}

	flags.seedSet = fs.Changed("seed")
	flags.remaining = fs.Args()

	return flags, nil
}

func printUsage(w io.Writer) {
	fprintln(w, "hashtk - statistical test battery for hash functions")
	fprintln(w)
	fprintln(w, "Usage: hashtk [global flags] <command> [args]")
	fprintln(w)
	fprintln(w, "Commands:")
	fprintln(w, "  ls                     List registered hashes")
	fprintln(w, "  bic <hash>             Run the bit independence test")
	fprintln(w, "  avalanche <hash>       Run the avalanche test")
	fprintln(w, "  all <hash>             Run the full battery")
	fprintln(w, "  print-config           Print the effective configuration")
	fprintln(w)
	fprintln(w, "Global flags:")
	fprintln(w, "  -C, --cwd <dir>        Working directory")
	fprintln(w, "  -c, --config <file>    Config file path")
	fprintln(w, "      --threads <n>      Worker thread count [default: CPU count]")
	fprintln(w, "      --seed <n>         Global seed [default: 0]")
	fprintln(w, "      --alpha <p>        Significance level [default: 0.05]")
	fprintln(w, "  -v, --verbose          Verbose output")
}

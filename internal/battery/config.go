package battery

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/tailscale/hujson"

	"hashtk/internal/chisq"
)

// Config holds the file-backed configuration options.
type Config struct {
	// Threads sizes the worker pool. Defaults to the detected CPU count.
	Threads int `json:"threads,omitempty"`

	// Seed is the global seed all per-category hash seeds derive from.
	Seed uint64 `json:"seed,omitempty"`

	// Alpha is the family-wise significance level for test verdicts.
	Alpha float64 `json:"alpha,omitempty"`
}

// ConfigFileName is the default project config file name.
const ConfigFileName = ".hashtk.json"

var (
	errConfigFileNotFound = errors.New("config file not found")
	errConfigInvalid      = errors.New("invalid config file")
	errThreadsInvalid     = errors.New("threads must be at least 1")
	errAlphaInvalid       = errors.New("alpha must be in (0, 1)")
)

// DefaultConfig returns the default configuration. The CPU count is
// queried exactly once here; everything downstream reads the config.
func DefaultConfig() Config {
	return Config{
		Threads: runtime.NumCPU(),
		Alpha:   chisq.DefaultAlpha,
	}
}

// LoadConfigInput holds the inputs for LoadConfig.
type LoadConfigInput struct {
	WorkDir    string            // working directory; "" means os.Getwd()
	ConfigPath string            // explicit -c/--config path
	Env        map[string]string // environment variables

	// CLI overrides. Zero values mean "not set" except Seed, which
	// carries its own set flag because 0 is a valid seed.
	ThreadsOverride int
	AlphaOverride   float64
	SeedOverride    uint64
	SeedSet         bool
}

// LoadConfig loads configuration with the following precedence (highest
// wins): defaults, global user config, project config (.hashtk.json),
// explicit config file, CLI overrides.
func LoadConfig(input LoadConfigInput) (Config, error) {
	workDir := input.WorkDir
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := DefaultConfig()

	if globalPath := globalConfigPath(input.Env); globalPath != "" {
		globalCfg, loaded, err := loadConfigFile(globalPath, false)
		if err != nil {
			return Config{}, err
		}

		if loaded {
			cfg = mergeConfig(cfg, globalCfg)
		}
	}

	projectPath := filepath.Join(workDir, ConfigFileName)
	mustExist := false

	if input.ConfigPath != "" {
		projectPath = input.ConfigPath
		if !filepath.IsAbs(projectPath) {
			projectPath = filepath.Join(workDir, projectPath)
		}

		mustExist = true
	}

	projectCfg, loaded, err := loadConfigFile(projectPath, mustExist)
	if err != nil {
		return Config{}, err
	}

	if loaded {
		cfg = mergeConfig(cfg, projectCfg)
	}

	if input.ThreadsOverride != 0 {
		cfg.Threads = input.ThreadsOverride
	}

	if input.AlphaOverride != 0 {
		cfg.Alpha = input.AlphaOverride
	}

	if input.SeedSet {
		cfg.Seed = input.SeedOverride
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// globalConfigPath returns $XDG_CONFIG_HOME/hashtk/config.json, falling
// back to ~/.config/hashtk/config.json. Empty when neither resolves.
func globalConfigPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "hashtk", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "hashtk", "config.json")
	}

	return ""
}

// loadConfigFile loads one config file. Missing files are an error only
// when mustExist is set; otherwise they report loaded=false.
func loadConfigFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if mustExist {
			return Config{}, false, fmt.Errorf("%w: %s", errConfigFileNotFound, path)
		}

		return Config{}, false, nil
	}

	cfg, parseErr := parseConfig(data)
	if parseErr != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", errConfigInvalid, path, parseErr)
	}

	return cfg, true, nil
}

func parseConfig(data []byte) (Config, error) {
	// Standardize JSONC to JSON so config files may carry comments.
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	if unmarshalErr := json.Unmarshal(standardized, &cfg); unmarshalErr != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", unmarshalErr)
	}

	return cfg, nil
}

func mergeConfig(base, overlay Config) Config {
	if overlay.Threads != 0 {
		base.Threads = overlay.Threads
	}

	if overlay.Alpha != 0 {
		base.Alpha = overlay.Alpha
	}

	if overlay.Seed != 0 {
		base.Seed = overlay.Seed
	}

	return base
}

func validateConfig(cfg Config) error {
	if cfg.Threads < 1 {
		return fmt.Errorf("%w: %d", errThreadsInvalid, cfg.Threads)
	}

	if cfg.Alpha <= 0 || cfg.Alpha >= 1 {
		return fmt.Errorf("%w: %g", errAlphaInvalid, cfg.Alpha)
	}

	return nil
}

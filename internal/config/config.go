// Package config loads tracehash settings from .tracehash.yaml and the environment.
//
// Precedence, lowest first: built-in defaults, the config file, TRACEHASH_*
// environment variables, then command-line flags (applied by the caller).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/steveyegge/tracehash/internal/fingerprint"
	"github.com/steveyegge/tracehash/internal/tracehash"
)

// FileName is the config file looked up in the working directory.
const FileName = ".tracehash.yaml"

// Synthetic predicate names accepted in configuration.
const (
	SyntheticNone = "none"
	SyntheticGo   = "go"
)

// Output formats accepted in configuration.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Config holds everything the CLI needs to build fingerprints
type Config struct {
	// MaxFragmentLength bounds the recursion cycle search
	// Default: 255, Range: 1-4096
	MaxFragmentLength int `yaml:"max_fragment_length"`

	// MinFragmentCount is the minimum cycle repetitions to accept a cover
	// Default: 2, Range: 1-1000
	MinFragmentCount int `yaml:"min_fragment_count"`

	// NonOverflowWindowSize is how many leading frames identify ordinary failures
	// Accepts a non-negative integer or "unbounded"
	// Default: 5
	NonOverflowWindowSize WindowSize `yaml:"non_overflow_window_size"`

	// FilterSyntheticFrames skips compiler-generated frames when encoding
	// Default: false
	FilterSyntheticFrames bool `yaml:"filter_synthetic_frames"`

	// Synthetic selects the compiler-generated frame predicate: "none" or "go"
	// Default: "none"
	Synthetic string `yaml:"synthetic"`

	// Output is the report format: "text", "json" or "yaml"
	// Default: "text"
	Output string `yaml:"output"`

	// Jobs is the number of occurrence files hashed concurrently
	// Default: 4, Range: 1-256
	Jobs int `yaml:"jobs"`
}

// WindowSize is a frame count that may be spelled "unbounded" in YAML.
type WindowSize int

// UnmarshalYAML accepts integers and the string "unbounded".
func (w *WindowSize) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: window size must be a scalar", value.Line)
	}
	n, err := tracehash.ParseWindowSize(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*w = WindowSize(n)
	return nil
}

// MarshalYAML writes Unbounded as "unbounded".
func (w WindowSize) MarshalYAML() (interface{}, error) {
	if int(w) == tracehash.Unbounded {
		return "unbounded", nil
	}
	return int(w), nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	p := tracehash.DefaultParameters()
	return Config{
		MaxFragmentLength:     p.MaxFragmentLength,
		MinFragmentCount:      p.MinFragmentCount,
		NonOverflowWindowSize: WindowSize(p.NonOverflowWindowSize),
		FilterSyntheticFrames: p.FilterSyntheticFrames,
		Synthetic:             SyntheticNone,
		Output:                OutputText,
		Jobs:                  4,
	}
}

// Parameters returns the fingerprint parameters described by the config.
func (c Config) Parameters() tracehash.Parameters {
	return tracehash.Parameters{
		MaxFragmentLength:     c.MaxFragmentLength,
		MinFragmentCount:      c.MinFragmentCount,
		NonOverflowWindowSize: int(c.NonOverflowWindowSize),
		FilterSyntheticFrames: c.FilterSyntheticFrames,
	}
}

// SyntheticFunc returns the predicate named by Synthetic.
func (c Config) SyntheticFunc() fingerprint.SyntheticFunc {
	if c.Synthetic == SyntheticGo {
		return fingerprint.GoSynthetic
	}
	return fingerprint.NoSynthetic
}

// Validate checks if the configuration has valid values
func (c Config) Validate() error {
	if err := c.Parameters().Validate(); err != nil {
		return err
	}
	if c.MaxFragmentLength > 4096 {
		return fmt.Errorf("max_fragment_length too large (got %d, max 4096)", c.MaxFragmentLength)
	}
	if c.MinFragmentCount > 1000 {
		return fmt.Errorf("min_fragment_count too large (got %d, max 1000)", c.MinFragmentCount)
	}
	if c.Synthetic != SyntheticNone && c.Synthetic != SyntheticGo {
		return fmt.Errorf("synthetic must be 'none' or 'go' (got %q)", c.Synthetic)
	}
	switch c.Output {
	case OutputText, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("output must be 'text', 'json' or 'yaml' (got %q)", c.Output)
	}
	if c.Jobs < 1 || c.Jobs > 256 {
		return fmt.Errorf("jobs must be between 1 and 256 (got %d)", c.Jobs)
	}
	return nil
}

// String returns a human-readable representation of the config
func (c Config) String() string {
	return fmt.Sprintf(
		"Config{MaxFragment: %d, MinCount: %d, Window: %s, NoSynthetic: %t, "+
			"Synthetic: %s, Output: %s, Jobs: %d}",
		c.MaxFragmentLength, c.MinFragmentCount,
		tracehash.FormatWindowSize(int(c.NonOverflowWindowSize)), c.FilterSyntheticFrames,
		c.Synthetic, c.Output, c.Jobs,
	)
}

// LoadFile reads a YAML config file over the defaults. Fields missing from the
// file keep their default values.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing YAML: %w", err)
	}
	return cfg, nil
}

// Load resolves the effective configuration. An explicit path must exist; with
// an empty path, FileName in dir is used when present.
func Load(path, dir string) (Config, error) {
	cfg := DefaultConfig()

	switch {
	case path != "":
		loaded, err := LoadFile(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	default:
		candidate := filepath.Join(dir, FileName)
		loaded, err := LoadFile(candidate)
		switch {
		case err == nil:
			cfg = loaded
		case !errors.Is(err, os.ErrNotExist):
			return cfg, fmt.Errorf("%s: %w", candidate, err)
		}
	}

	cfg, err := ApplyEnv(cfg)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with environment variables
//
// Environment variables:
//   - TRACEHASH_MAX_FRAGMENT_LENGTH, TRACEHASH_MIN_FRAGMENT_COUNT,
//     TRACEHASH_WINDOW_SIZE, TRACEHASH_NO_SYNTHETIC: see tracehash.ParametersFromEnv
//   - TRACEHASH_SYNTHETIC: predicate name, "none" or "go"
//   - TRACEHASH_OUTPUT: report format (text/json/yaml)
//   - TRACEHASH_JOBS: concurrent files (default: 4)
func ApplyEnv(cfg Config) (Config, error) {
	p, err := tracehash.ParametersFromEnv(cfg.Parameters())
	if err != nil {
		return cfg, err
	}
	cfg.MaxFragmentLength = p.MaxFragmentLength
	cfg.MinFragmentCount = p.MinFragmentCount
	cfg.NonOverflowWindowSize = WindowSize(p.NonOverflowWindowSize)
	cfg.FilterSyntheticFrames = p.FilterSyntheticFrames

	if v := os.Getenv("TRACEHASH_SYNTHETIC"); v != "" {
		cfg.Synthetic = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("TRACEHASH_OUTPUT"); v != "" {
		cfg.Output = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("TRACEHASH_JOBS"); v != "" {
		jobs, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid value for TRACEHASH_JOBS: %w", err)
		}
		cfg.Jobs = jobs
	}
	return cfg, nil
}

// Write saves cfg as YAML to path.
func Write(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

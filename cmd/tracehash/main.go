package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/steveyegge/tracehash/internal/config"
	"github.com/steveyegge/tracehash/internal/fingerprint"
	"github.com/steveyegge/tracehash/internal/tracehash"
)

var (
	configPath string
	verbose    bool

	// cfg is resolved in PersistentPreRunE before any subcommand runs
	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tracehash",
	Short: "Stable fingerprints for failure stack traces",
	Long: `tracehash computes a short identifier for a failure from its resolved stack frames.

Occurrences of the same failure share a fingerprint even when recursion depth
varies: for stack overflows the repeating fragment at the tail of the trace is
found and one canonical rotation of it is hashed.

Input is one or more occurrence documents (YAML or JSON):

  type: java.lang.StackOverflowError
  stack_overflow: true
  frames:
    - {class: app.Tree, method: walk, file: Tree.java, line: 41}

Configuration is read from .tracehash.yaml, then TRACEHASH_* environment
variables, then flags.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		loaded, err := config.Load(configPath, ".")
		if err != nil {
			return err
		}
		if err := applyFlags(cmd, &loaded); err != nil {
			return err
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		cfg = loaded
		logger.Debug("configuration resolved", "config", cfg.String())
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (default: ./"+config.FileName+" if present)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
	addConfigFlags(rootCmd)
}

// addConfigFlags registers the flags that override configuration values.
func addConfigFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.Int("max-fragment-length", 0, "longest recursion cycle to search for")
	flags.Int("min-fragment-count", 0, "minimum cycle repetitions to accept a cover")
	flags.String("window", "", "frames hashed for non-overflow failures, or 'unbounded'")
	flags.Bool("no-synthetic", false, "skip compiler-generated frames")
	flags.String("synthetic", "", "compiler-generated frame predicate: none or go")
	flags.StringP("output", "o", "", "output format: text, json or yaml")
	flags.IntP("jobs", "j", 0, "occurrence files processed concurrently")
}

// applyFlags overrides c with every flag the user set explicitly.
func applyFlags(cmd *cobra.Command, c *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("max-fragment-length") {
		c.MaxFragmentLength, _ = flags.GetInt("max-fragment-length")
	}
	if flags.Changed("min-fragment-count") {
		c.MinFragmentCount, _ = flags.GetInt("min-fragment-count")
	}
	if flags.Changed("window") {
		s, _ := flags.GetString("window")
		n, err := tracehash.ParseWindowSize(s)
		if err != nil {
			return fmt.Errorf("--window: %w", err)
		}
		c.NonOverflowWindowSize = config.WindowSize(n)
	}
	if flags.Changed("no-synthetic") {
		c.FilterSyntheticFrames, _ = flags.GetBool("no-synthetic")
	}
	if flags.Changed("synthetic") {
		c.Synthetic, _ = flags.GetString("synthetic")
	}
	if flags.Changed("output") {
		c.Output, _ = flags.GetString("output")
	}
	if flags.Changed("jobs") {
		c.Jobs, _ = flags.GetInt("jobs")
	}
	return nil
}

// newBuilder creates a fingerprint builder from the resolved configuration.
func newBuilder() (*fingerprint.Builder, error) {
	return fingerprint.New(fingerprint.Config{
		Parameters: cfg.Parameters(),
		Synthetic:  cfg.SyntheticFunc(),
		Logger:     logger,
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

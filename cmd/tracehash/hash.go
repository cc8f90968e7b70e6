package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steveyegge/tracehash/internal/traceio"
)

var principalAsOccurrences bool

var hashCmd = &cobra.Command{
	Use:   "hash [files...]",
	Short: "Print the fingerprint of each occurrence",
	Long: `Print one fingerprint per occurrence document.

Files may hold several documents separated by "---". With no files, or "-",
occurrences are read from stdin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd, args, detailFingerprint)
	},
}

var principalCmd = &cobra.Command{
	Use:   "principal [files...]",
	Short: "Print the frames that identify each occurrence",
	Long: `Print the principal frames of each occurrence: the frames that are encoded
into its fingerprint, after windowing and synthetic frame filtering.

With --occurrences the principal frames are written as occurrence documents
that the other commands accept as input.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !principalAsOccurrences {
			return runReport(cmd, args, detailPrincipal)
		}
		reports, err := collect(cmd, args)
		if err != nil {
			return err
		}
		return traceio.Write(cmd.OutOrStdout(), principalOccurrences(reports))
	},
}

var coverCmd = &cobra.Command{
	Use:   "cover [files...]",
	Short: "Explain how each fingerprint was derived",
	Long: `Print the selected window, the recursion cover found at the tail of the
trace and the exact text that was hashed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd, args, detailCover)
	},
}

func init() {
	principalCmd.Flags().BoolVar(&principalAsOccurrences, "occurrences", false,
		"write principal frames as occurrence documents")
	rootCmd.AddCommand(hashCmd)
	rootCmd.AddCommand(principalCmd)
	rootCmd.AddCommand(coverCmd)
}

func runReport(cmd *cobra.Command, args []string, d detail) error {
	reports, err := collect(cmd, args)
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), cfg.Output, reports, d)
}

// collect fingerprints every occurrence in args, which default to stdin.
func collect(cmd *cobra.Command, args []string) ([]Report, error) {
	if len(args) == 0 {
		args = []string{"-"}
	}
	if err := checkInputs(args); err != nil {
		return nil, err
	}
	b, err := newBuilder()
	if err != nil {
		return nil, err
	}
	reports, err := processFiles(cmd.Context(), b, args, cfg.Jobs)
	if err != nil {
		return nil, err
	}
	logger.Debug("occurrences hashed", "files", len(args), "occurrences", len(reports))
	return reports, nil
}

// checkInputs rejects reading standard input more than once; concurrent
// readers would split its documents between them.
func checkInputs(args []string) error {
	stdin := 0
	for _, a := range args {
		if a == "-" {
			stdin++
		}
	}
	if stdin > 1 {
		return fmt.Errorf("standard input (-) given %d times; it can be read only once", stdin)
	}
	return nil
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/steveyegge/tracehash/internal/config"
	"github.com/steveyegge/tracehash/internal/fingerprint"
	"github.com/steveyegge/tracehash/internal/tracehash"
	"github.com/steveyegge/tracehash/internal/traceio"
	"github.com/steveyegge/tracehash/internal/types"
)

// Report is the outcome for one occurrence document
type Report struct {
	// ID correlates this report line with logs; it is not part of the fingerprint
	ID string `json:"id" yaml:"id"`

	// Source is "<file>#<document>" (1-based)
	Source string `json:"source" yaml:"source"`

	Type        string `json:"type" yaml:"type"`
	Fingerprint string `json:"fingerprint" yaml:"fingerprint"`

	StackOverflow bool                   `json:"stack_overflow" yaml:"stack_overflow"`
	Selection     tracehash.KeySelection `json:"selection" yaml:"selection"`
	Encoding      string                 `json:"encoding,omitempty" yaml:"encoding,omitempty"`
	Frames        []types.Frame          `json:"frames,omitempty" yaml:"frames,omitempty"`

	occ *types.Occurrence
}

// processFiles reads every file and fingerprints its occurrences, at most jobs
// files at a time. Reports keep input order.
func processFiles(ctx context.Context, b *fingerprint.Builder, files []string, jobs int) ([]Report, error) {
	perFile := make([][]Report, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			occs, err := traceio.ReadFile(file)
			if err != nil {
				return err
			}
			reports := make([]Report, 0, len(occs))
			for j, occ := range occs {
				res, err := b.Describe(occ)
				if err != nil {
					return fmt.Errorf("%s#%d: %w", file, j+1, err)
				}
				reports = append(reports, Report{
					ID:            uuid.New().String(),
					Source:        fmt.Sprintf("%s#%d", file, j+1),
					Type:          occ.TypeName,
					Fingerprint:   res.Fingerprint,
					StackOverflow: occ.StackOverflow,
					Selection:     res.Selection,
					Encoding:      res.Encoding,
					Frames:        res.Frames,
					occ:           occ,
				})
			}
			perFile[i] = reports
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Report
	for _, reports := range perFile {
		out = append(out, reports...)
	}
	return out, nil
}

// principalOccurrences returns one occurrence document per report, carrying
// only the principal frames. Hashing them again gives the same fingerprint for
// ordinary failures and for single-frame recursion.
func principalOccurrences(reports []Report) []*types.Occurrence {
	out := make([]*types.Occurrence, 0, len(reports))
	for _, r := range reports {
		out = append(out, &types.Occurrence{
			TypeName:      r.occ.TypeName,
			DisplayName:   r.occ.DisplayName,
			StackOverflow: r.occ.StackOverflow,
			Frames:        r.Frames,
		})
	}
	return out
}

// detail selects what a report shows beyond the fingerprint.
type detail int

const (
	detailFingerprint detail = iota
	detailPrincipal
	detailCover
)

// render writes reports in the given output format.
func render(w io.Writer, format string, reports []Report, d detail) error {
	switch format {
	case config.OutputJSON:
		enc := json.NewEncoder(w)
		for _, r := range reports {
			if err := enc.Encode(trim(r, d)); err != nil {
				return fmt.Errorf("encoding report: %w", err)
			}
		}
		return nil
	case config.OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		for _, r := range reports {
			if err := enc.Encode(trim(r, d)); err != nil {
				return fmt.Errorf("encoding report: %w", err)
			}
		}
		return enc.Close()
	}

	green := color.New(color.FgGreen).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	for _, r := range reports {
		mark := green("✓")
		if r.StackOverflow && !r.Selection.Resolved {
			// Overflow without a trusted cycle: the fingerprint depends on depth.
			mark = yellow("!")
		}
		fmt.Fprintf(w, "%s %s  %s\n", mark, cyan(r.Fingerprint), r.Source)

		switch d {
		case detailPrincipal:
			for _, f := range r.Frames {
				fmt.Fprintf(w, "    at %s\n", f)
			}
		case detailCover:
			fmt.Fprintf(w, "    selection: start=%d length=%d resolved=%t\n",
				r.Selection.Start, r.Selection.Length, r.Selection.Resolved)
			fmt.Fprintf(w, "    %s\n", r.Selection.Cover)
			fmt.Fprintf(w, "    encoding: %s\n", r.Encoding)
		}
	}
	return nil
}

// trim drops the fields a command does not report.
func trim(r Report, d detail) Report {
	switch d {
	case detailFingerprint:
		r.Encoding = ""
		r.Frames = nil
	case detailPrincipal:
		r.Encoding = ""
	case detailCover:
		r.Frames = nil
	}
	return r
}

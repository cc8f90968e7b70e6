// Package fingerprint turns a failure occurrence into a stable identifier.
//
// The frames to hash come from tracehash.SelectKey. The builder windows them
// (synthetic-frame filtering, non-overflow truncation), renders the canonical
// text, digests it with SHA-1 and prefixes the digest with the uppercase
// letters of the failure's type name:
//
//	java.lang.StackOverflowError -> SOE-<40 hex chars>
package fingerprint

import (
	"crypto"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/steveyegge/tracehash/internal/tracehash"
	"github.com/steveyegge/tracehash/internal/types"
)

// ErrUnsupportedEnvironment is returned by New when the digest algorithm is not
// linked into the binary. It cannot be recovered from at call time.
var ErrUnsupportedEnvironment = errors.New("unsupported environment")

// Config holds builder configuration
type Config struct {
	// Parameters are the search and window parameters. The all-zero value means
	// tracehash.DefaultParameters(); any other value must pass Validate, so a
	// zero MaxFragmentLength next to non-zero fields is rejected.
	Parameters tracehash.Parameters
	Synthetic  SyntheticFunc        // Compiler-generated frame predicate (default: NoSynthetic)
	Logger     *slog.Logger         // Debug logging (default: discard)
}

// Builder computes fingerprints. It holds no per-call state and is safe for
// concurrent use.
type Builder struct {
	params    tracehash.Parameters
	synthetic SyntheticFunc
	logger    *slog.Logger
}

// Result is everything computed for one occurrence.
type Result struct {
	Selection   tracehash.KeySelection `json:"selection" yaml:"selection"`
	Frames      []types.Frame          `json:"frames" yaml:"frames"`
	Encoding    string                 `json:"encoding" yaml:"encoding"`
	Digest      string                 `json:"digest" yaml:"digest"`
	Fingerprint string                 `json:"fingerprint" yaml:"fingerprint"`
}

var hashAvailable = crypto.SHA1.Available

// New creates a builder. It fails with ErrUnsupportedEnvironment if SHA-1 is not
// available, and with tracehash.ErrInvalidArgument for invalid parameters.
func New(cfg Config) (*Builder, error) {
	if !hashAvailable() {
		return nil, fmt.Errorf("%w: SHA-1 digest is not available", ErrUnsupportedEnvironment)
	}

	params := cfg.Parameters
	if params == (tracehash.Parameters{}) {
		params = tracehash.DefaultParameters()
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	synthetic := cfg.Synthetic
	if synthetic == nil {
		synthetic = NoSynthetic
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Builder{
		params:    params,
		synthetic: synthetic,
		logger:    logger,
	}, nil
}

// Parameters returns the parameters the builder was created with.
func (b *Builder) Parameters() tracehash.Parameters {
	return b.params
}

// Hash returns the fingerprint of occ.
func (b *Builder) Hash(occ *types.Occurrence) (string, error) {
	res, err := b.Describe(occ)
	if err != nil {
		return "", err
	}
	return res.Fingerprint, nil
}

// Principal returns the frames that identify occ, after windowing and filtering.
// These are the frames Hash digests; callers can show them to users.
func (b *Builder) Principal(occ *types.Occurrence) ([]types.Frame, error) {
	if occ == nil {
		return nil, fmt.Errorf("%w: occurrence is required", tracehash.ErrInvalidArgument)
	}
	sel, err := tracehash.SelectKey(occ.Frames, occ.StackOverflow, b.params)
	if err != nil {
		return nil, err
	}
	return b.window(occ, sel), nil
}

// Describe computes the selection, principal frames, encoding, digest and fingerprint of occ.
func (b *Builder) Describe(occ *types.Occurrence) (*Result, error) {
	if occ == nil {
		return nil, fmt.Errorf("%w: occurrence is required", tracehash.ErrInvalidArgument)
	}
	if err := occ.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", tracehash.ErrInvalidArgument, err)
	}

	sel, err := tracehash.SelectKey(occ.Frames, occ.StackOverflow, b.params)
	if err != nil {
		return nil, err
	}

	frames := b.window(occ, sel)
	encoding := Encode(occ.TypeName, frames)
	digest := Digest(encoding)

	b.logger.Debug("fingerprint computed",
		"type", occ.TypeName,
		"stack_overflow", occ.StackOverflow,
		"trace_frames", len(occ.Frames),
		"selection_start", sel.Start,
		"selection_length", sel.Length,
		"resolved", sel.Resolved,
		"cover", sel.Cover.String(),
		"hashed_frames", len(frames))

	return &Result{
		Selection:   sel,
		Frames:      frames,
		Encoding:    encoding,
		Digest:      digest,
		Fingerprint: Format(occ.Display(), digest),
	}, nil
}

// window walks the selected frames, skipping synthetic ones when configured, and
// stops after the non-overflow window is full. Overflows are never truncated.
func (b *Builder) window(occ *types.Occurrence, sel tracehash.KeySelection) []types.Frame {
	limit := b.params.WindowLimit(occ.StackOverflow)
	selected := sel.Window(occ.Frames)

	capHint := len(selected)
	if limit >= 0 && limit < capHint {
		capHint = limit
	}
	out := make([]types.Frame, 0, capHint)

	skipped := 0
	for _, f := range selected {
		if limit >= 0 && len(out) >= limit {
			break
		}
		if b.params.FilterSyntheticFrames && isSynthetic(b.synthetic, f) {
			skipped++
			continue
		}
		out = append(out, f)
	}
	if skipped > 0 {
		b.logger.Debug("skipped synthetic frames", "count", skipped)
	}
	return out
}

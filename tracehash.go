// Package tracehash fingerprints failures of the running Go program.
//
// A fingerprint identifies a failure by its type and the frames it was raised
// from. Errors raised by unbounded recursion keep the same fingerprint no
// matter how deep the stack grew:
//
//	fp, err := tracehash.HashError(err, false)
//
// Frames are captured from the caller's goroutine. Go method values, closures
// and defer/go wrappers are left out, so refactoring a call into a closure does
// not change the id.
package tracehash

import (
	"sync"

	"github.com/steveyegge/tracehash/internal/capture"
	"github.com/steveyegge/tracehash/internal/fingerprint"
	core "github.com/steveyegge/tracehash/internal/tracehash"
	"github.com/steveyegge/tracehash/internal/types"
)

type (
	// Parameters tune recursion detection and the frames hashed for ordinary failures.
	Parameters = core.Parameters
	// Frame is one resolved stack frame.
	Frame = types.Frame
	// Occurrence is a failure together with its frames.
	Occurrence = types.Occurrence
)

// Unbounded disables the window for ordinary failures.
const Unbounded = core.Unbounded

// ErrInvalidArgument is returned for invalid parameters and nil errors.
var ErrInvalidArgument = core.ErrInvalidArgument

// DefaultParameters returns the default parameters with Go wrapper frames filtered.
func DefaultParameters() Parameters {
	p := core.DefaultParameters()
	p.FilterSyntheticFrames = true
	return p
}

// Hasher fingerprints errors and occurrences. It is safe for concurrent use.
type Hasher struct {
	b *fingerprint.Builder
}

// NewHasher creates a hasher. Go compiler-generated frames are recognised and
// skipped when params.FilterSyntheticFrames is set.
func NewHasher(params Parameters) (*Hasher, error) {
	b, err := fingerprint.New(fingerprint.Config{
		Parameters: params,
		Synthetic:  fingerprint.GoSynthetic,
	})
	if err != nil {
		return nil, err
	}
	return &Hasher{b: b}, nil
}

// Hash returns the fingerprint of an already captured occurrence.
func (h *Hasher) Hash(occ *Occurrence) (string, error) {
	return h.b.Hash(occ)
}

// HashError fingerprints err as raised from the caller's stack. Set
// stackOverflow when err reports runaway recursion; the repeating part of the
// stack is then hashed instead of its leading frames.
func (h *Hasher) HashError(err error, stackOverflow bool) (string, error) {
	return h.hashError(err, stackOverflow, 2)
}

// hashError captures the stack skip frames above itself: 2 is the caller of
// the exported function that called hashError.
func (h *Hasher) hashError(err error, stackOverflow bool, skip int) (string, error) {
	occ, err := capture.Occurrence(err, skip, stackOverflow)
	if err != nil {
		return "", err
	}
	return h.b.Hash(occ)
}

var defaultHasher = sync.OnceValues(func() (*Hasher, error) {
	return NewHasher(DefaultParameters())
})

// HashError fingerprints err with DefaultParameters.
func HashError(err error, stackOverflow bool) (string, error) {
	h, herr := defaultHasher()
	if herr != nil {
		return "", herr
	}
	return h.hashError(err, stackOverflow, 2)
}

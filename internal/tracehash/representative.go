package tracehash

import (
	"fmt"

	"github.com/steveyegge/tracehash/internal/types"
)

// FindRepresentativeFragment returns the start index of the canonical occurrence of a
// fragment of the given length at the tail of seq.
//
// Candidates are the windows starting at len(seq)-fragmentLength-i for i in
// [0, fragmentLength); every other rotation is a whole period away and therefore equal
// to one of them. The lexicographically smallest window wins, the rightmost on ties,
// so the choice does not depend on how many repetitions the trace happened to contain.
func FindRepresentativeFragment(seq []types.Frame, fragmentLength int) (int, error) {
	if fragmentLength <= 0 {
		return 0, fmt.Errorf("%w: fragmentLength must be positive (got %d)", ErrInvalidArgument, fragmentLength)
	}
	if 2*fragmentLength > len(seq) {
		return 0, fmt.Errorf("%w: two fragments of length %d do not fit into %d frames",
			ErrInvalidArgument, fragmentLength, len(seq))
	}

	best := len(seq) - fragmentLength
	for i := 1; i < fragmentLength; i++ {
		candidate := len(seq) - fragmentLength - i
		if compareRange(seq, candidate, best, fragmentLength) < 0 {
			best = candidate
		}
	}
	return best, nil
}

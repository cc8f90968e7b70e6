package tracehash

import (
	"fmt"

	"github.com/steveyegge/tracehash/internal/types"
)

// Cover describes a periodic region at the tail (oldest calls) of a stack trace:
// CoverLength frames made of a SuffixLength-long tail preceded by repetitions
// of a FragmentLength-long block whose own tail equals the suffix.
// The zero Cover means no periodic region was found.
type Cover struct {
	SuffixLength   int `json:"suffix_length" yaml:"suffix_length"`
	FragmentLength int `json:"fragment_length" yaml:"fragment_length"`
	CoverLength    int `json:"cover_length" yaml:"cover_length"`
}

// IsZero reports whether no cover was found.
func (c Cover) IsZero() bool {
	return c.CoverLength == 0
}

// Repeats reports whether at least two full fragments fit in the cover.
func (c Cover) Repeats() bool {
	return !c.IsZero() && c.CoverLength >= 2*c.FragmentLength
}

// String returns a compact representation of the cover
func (c Cover) String() string {
	return fmt.Sprintf("Cover{suffix: %d, fragment: %d, cover: %d}",
		c.SuffixLength, c.FragmentLength, c.CoverLength)
}

// SolveCover finds the best "suffix + repeated fragment" description of the tail of seq.
//
// For every suffix length s and fragment length f (s <= f <= maxFragmentLength) the
// candidate fragment is the f frames just before the last s frames. It qualifies when
// its last s frames equal the suffix. Earlier f-length windows are then matched
// backwards against it; the candidate is dropped if fewer than minFragmentCount
// fragments (including itself) are found.
//
// The winner has the largest coverage, then the shortest fragment, then the shortest
// suffix. Cost is O(S*F^2) for S frames and F = maxFragmentLength.
func SolveCover(seq []types.Frame, maxFragmentLength, minFragmentCount int) (Cover, error) {
	if maxFragmentLength <= 0 {
		return Cover{}, fmt.Errorf("%w: maxFragmentLength must be positive (got %d)", ErrInvalidArgument, maxFragmentLength)
	}
	if minFragmentCount <= 0 {
		return Cover{}, fmt.Errorf("%w: minFragmentCount must be positive (got %d)", ErrInvalidArgument, minFragmentCount)
	}

	n := len(seq)
	var best Cover

	for suffix := 1; suffix <= maxFragmentLength && 2*suffix <= n; suffix++ {
		suffixStart := n - suffix

		bestCoverage := 0
		bestFragment := 0

		for fragment := suffix; fragment <= maxFragmentLength && fragment+suffix <= n; fragment++ {
			fragmentStart := suffixStart - fragment
			if !equalRange(seq, suffixStart, fragmentStart, suffix) {
				continue
			}

			coverage := suffix + fragment
			count := 1
			for coverage+fragment <= n {
				if !equalRange(seq, fragmentStart, n-coverage-fragment, fragment) {
					break
				}
				coverage += fragment
				count++
			}

			if count < minFragmentCount {
				continue
			}
			if coverage > bestCoverage {
				bestCoverage = coverage
				bestFragment = fragment
			}
		}

		if bestCoverage == 0 {
			continue
		}
		// Suffixes are scanned in ascending order, so an equal cover with an
		// equal fragment never displaces the earlier, shorter suffix.
		if bestCoverage > best.CoverLength ||
			(bestCoverage == best.CoverLength && bestFragment < best.FragmentLength) {
			best = Cover{SuffixLength: suffix, FragmentLength: bestFragment, CoverLength: bestCoverage}
		}
	}

	return best, nil
}

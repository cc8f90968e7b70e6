package tracehash

import (
	"errors"
	"fmt"

	"github.com/steveyegge/tracehash/internal/types"
)

// ErrInvalidArgument is returned when a caller passes input that can never be valid:
// non-positive search bounds, windows outside the sequence, missing type names.
var ErrInvalidArgument = errors.New("invalid argument")

func checkWindows(seq []types.Frame, start1, start2, length int) error {
	if start1 < 0 {
		return fmt.Errorf("%w: start1 must be non-negative (got %d)", ErrInvalidArgument, start1)
	}
	if start2 < 0 {
		return fmt.Errorf("%w: start2 must be non-negative (got %d)", ErrInvalidArgument, start2)
	}
	if length < 0 {
		return fmt.Errorf("%w: length must be non-negative (got %d)", ErrInvalidArgument, length)
	}
	if start1+length > len(seq) || start2+length > len(seq) {
		return fmt.Errorf("%w: window of length %d at %d/%d exceeds sequence of %d frames",
			ErrInvalidArgument, length, start1, start2, len(seq))
	}
	return nil
}

// EqualRange reports whether seq[start1:start1+length] and seq[start2:start2+length]
// are element-wise equal. It does not allocate.
func EqualRange(seq []types.Frame, start1, start2, length int) (bool, error) {
	if err := checkWindows(seq, start1, start2, length); err != nil {
		return false, err
	}
	return equalRange(seq, start1, start2, length), nil
}

// CompareRange compares two windows of seq lexicographically using types.CompareFrames.
// The result is -1, 0 or 1.
func CompareRange(seq []types.Frame, start1, start2, length int) (int, error) {
	if err := checkWindows(seq, start1, start2, length); err != nil {
		return 0, err
	}
	return compareRange(seq, start1, start2, length), nil
}

// equalRange and compareRange skip bounds checks; the solver only calls them
// with windows it has already proven to fit.
func equalRange(seq []types.Frame, start1, start2, length int) bool {
	for i := 0; i < length; i++ {
		if !seq[start1+i].Equal(seq[start2+i]) {
			return false
		}
	}
	return true
}

func compareRange(seq []types.Frame, start1, start2, length int) int {
	for i := 0; i < length; i++ {
		if r := types.CompareFrames(seq[start1+i], seq[start2+i]); r != 0 {
			return r
		}
	}
	return 0
}

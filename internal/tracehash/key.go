package tracehash

import (
	"fmt"

	"github.com/steveyegge/tracehash/internal/types"
)

// KeySelection is the half-open window [Start, Start+Length) of a trace that gets hashed.
type KeySelection struct {
	Start  int `json:"start" yaml:"start"`
	Length int `json:"length" yaml:"length"`

	// Resolved is true when the window is a representative recursion fragment.
	Resolved bool  `json:"resolved" yaml:"resolved"`
	Cover    Cover `json:"cover" yaml:"cover"`
}

// Window returns the selected frames. The result aliases seq.
func (k KeySelection) Window(seq []types.Frame) []types.Frame {
	return seq[k.Start : k.Start+k.Length]
}

// SelectKey picks the frames that identify a failure.
//
// Ordinary failures select the whole trace; truncation happens when encoding.
// Stack overflows select the representative fragment of the tail cover, but only
// when at least two full fragments are covered. Otherwise they fall back to the
// whole trace as well.
func SelectKey(seq []types.Frame, stackOverflow bool, params Parameters) (KeySelection, error) {
	if err := params.Validate(); err != nil {
		return KeySelection{}, err
	}

	whole := KeySelection{Start: 0, Length: len(seq)}
	if !stackOverflow {
		return whole, nil
	}

	cover, err := SolveCover(seq, params.MaxFragmentLength, params.MinFragmentCount)
	if err != nil {
		return KeySelection{}, fmt.Errorf("solving cover: %w", err)
	}
	whole.Cover = cover
	if !cover.Repeats() {
		return whole, nil
	}

	start, err := FindRepresentativeFragment(seq, cover.FragmentLength)
	if err != nil {
		return KeySelection{}, fmt.Errorf("selecting representative fragment: %w", err)
	}
	return KeySelection{
		Start:    start,
		Length:   cover.FragmentLength,
		Resolved: true,
		Cover:    cover,
	}, nil
}

package tracehash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolveCover(t *testing.T) {
	tests := []struct {
		name     string
		trace    string
		maxFrag  int
		minCount int
		want     Cover
	}{
		{
			name:     "identical frames",
			trace:    "aaaaa",
			maxFrag:  2,
			minCount: 2,
			want:     Cover{SuffixLength: 1, FragmentLength: 1, CoverLength: 5},
		},
		{
			name:     "three frame cycle after prefix",
			trace:    "xyzabcabcabc",
			maxFrag:  5,
			minCount: 2,
			want:     Cover{SuffixLength: 3, FragmentLength: 3, CoverLength: 9},
		},
		{
			name:     "cycle longer than search bound",
			trace:    "xyzabcabcabc",
			maxFrag:  2,
			minCount: 2,
			want:     Cover{},
		},
		{
			name:     "two copies are not enough for two repetitions",
			trace:    "xyzabcabc",
			maxFrag:  5,
			minCount: 2,
			want:     Cover{},
		},
		{
			name:     "single repetition accepted when allowed",
			trace:    "abcab",
			maxFrag:  3,
			minCount: 1,
			want:     Cover{SuffixLength: 2, FragmentLength: 3, CoverLength: 5},
		},
		{
			name:     "no repetition",
			trace:    "abcdef",
			maxFrag:  10,
			minCount: 2,
			want:     Cover{},
		},
		{
			name:     "empty trace",
			trace:    "",
			maxFrag:  3,
			minCount: 2,
			want:     Cover{},
		},
		{
			name:     "single frame",
			trace:    "a",
			maxFrag:  3,
			minCount: 1,
			want:     Cover{},
		},
		{
			name:     "unknown frames repeat like any other",
			trace:    "x?a?a?a",
			maxFrag:  4,
			minCount: 2,
			want:     Cover{SuffixLength: 2, FragmentLength: 2, CoverLength: 6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SolveCover(frames(tt.trace), tt.maxFrag, tt.minCount)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSolveCover_PrefersShorterFragmentOnEqualCoverage(t *testing.T) {
	// Fragments of length 2 and 4 both cover the whole trace; the shorter one wins.
	got, err := SolveCover(frames("abababab"), 8, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, got.FragmentLength)
	assert.Equal(t, 8, got.CoverLength)
	assert.Equal(t, 2, got.SuffixLength)
}

func TestSolveCover_RejectsInvalidBounds(t *testing.T) {
	_, err := SolveCover(frames("aaaa"), 0, 2)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = SolveCover(frames("aaaa"), 2, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = SolveCover(frames("aaaa"), -3, 2)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCoverRepeats(t *testing.T) {
	assert.False(t, Cover{}.Repeats())
	assert.True(t, Cover{SuffixLength: 1, FragmentLength: 1, CoverLength: 2}.Repeats())
	assert.False(t, Cover{SuffixLength: 2, FragmentLength: 3, CoverLength: 5}.Repeats())
	assert.True(t, Cover{SuffixLength: 3, FragmentLength: 3, CoverLength: 6}.Repeats())
}

func TestFindRepresentativeFragment(t *testing.T) {
	tests := []struct {
		name     string
		trace    string
		fragment int
		want     int
	}{
		{"single frame fragment", "aaaaa", 1, 4},
		{"smallest rotation wins", "qcabcab", 3, 2},
		{"last window already smallest", "xyzabcabc", 3, 6},
		{"ties keep the rightmost window", "aaaa", 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindRepresentativeFragment(frames(tt.trace), tt.fragment)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindRepresentativeFragment_RequiresTwoFragments(t *testing.T) {
	_, err := FindRepresentativeFragment(frames("abc"), 2)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = FindRepresentativeFragment(frames("abc"), 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

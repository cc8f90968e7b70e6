package tracehash

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Unbounded disables the non-overflow window: every selected frame is hashed.
const Unbounded = -1

// Parameters bounds the periodic search and the non-overflow fallback window
type Parameters struct {
	// MaxFragmentLength is the longest repeating block the cover search considers
	// Larger values find longer recursion cycles but cost O(S*F^2)
	// Default: 255
	MaxFragmentLength int `yaml:"max_fragment_length" json:"max_fragment_length"`

	// MinFragmentCount is the minimum number of fragment repetitions to accept a cover
	// Default: 2
	MinFragmentCount int `yaml:"min_fragment_count" json:"min_fragment_count"`

	// NonOverflowWindowSize is how many leading frames are hashed for ordinary failures
	// Set to Unbounded (-1) to hash the whole trace
	// Default: 5
	NonOverflowWindowSize int `yaml:"non_overflow_window_size" json:"non_overflow_window_size"`

	// FilterSyntheticFrames skips compiler-generated frames when encoding
	// Cover detection always runs on the unfiltered trace
	// Default: false
	FilterSyntheticFrames bool `yaml:"filter_synthetic_frames" json:"filter_synthetic_frames"`
}

// DefaultParameters returns the parameters used when nothing is configured
func DefaultParameters() Parameters {
	return Parameters{
		MaxFragmentLength:     255,
		MinFragmentCount:      2,
		NonOverflowWindowSize: 5,
		FilterSyntheticFrames: false,
	}
}

// Validate checks that the parameters describe a searchable space
func (p Parameters) Validate() error {
	if p.MaxFragmentLength <= 0 {
		return fmt.Errorf("%w: max_fragment_length must be positive (got %d)", ErrInvalidArgument, p.MaxFragmentLength)
	}
	if p.MinFragmentCount <= 0 {
		return fmt.Errorf("%w: min_fragment_count must be positive (got %d)", ErrInvalidArgument, p.MinFragmentCount)
	}
	if p.NonOverflowWindowSize < Unbounded {
		return fmt.Errorf("%w: non_overflow_window_size must be non-negative or unbounded (got %d)",
			ErrInvalidArgument, p.NonOverflowWindowSize)
	}
	return nil
}

// WindowLimit returns the number of frames to emit for a non-overflow failure,
// or -1 when there is no limit.
func (p Parameters) WindowLimit(stackOverflow bool) int {
	if stackOverflow || p.NonOverflowWindowSize == Unbounded {
		return -1
	}
	return p.NonOverflowWindowSize
}

// String returns a human-readable representation of the parameters
func (p Parameters) String() string {
	return fmt.Sprintf("Parameters{MaxFragment: %d, MinCount: %d, Window: %s, NoSynthetic: %t}",
		p.MaxFragmentLength, p.MinFragmentCount, FormatWindowSize(p.NonOverflowWindowSize), p.FilterSyntheticFrames)
}

// FormatWindowSize renders a window size, spelling out Unbounded.
func FormatWindowSize(n int) string {
	if n == Unbounded {
		return "unbounded"
	}
	return strconv.Itoa(n)
}

// ParseWindowSize parses a window size: a non-negative integer or "unbounded".
func ParseWindowSize(s string) (int, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "unbounded") {
		return Unbounded, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid window size %q: %w", s, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: window size must be non-negative (got %d)", ErrInvalidArgument, n)
	}
	return n, nil
}

// ParametersFromEnv applies environment overrides on top of base
//
// Environment variables:
//   - TRACEHASH_MAX_FRAGMENT_LENGTH: longest repeating block to search for (default: 255)
//   - TRACEHASH_MIN_FRAGMENT_COUNT: minimum repetitions to accept a cover (default: 2)
//   - TRACEHASH_WINDOW_SIZE: frames hashed for non-overflow failures, or "unbounded" (default: 5)
//   - TRACEHASH_NO_SYNTHETIC: skip compiler-generated frames (default: false)
//
// Returns an error if any environment variable has an invalid value.
func ParametersFromEnv(base Parameters) (Parameters, error) {
	p := base

	if err := parseEnvInt("TRACEHASH_MAX_FRAGMENT_LENGTH", &p.MaxFragmentLength); err != nil {
		return p, err
	}
	if err := parseEnvInt("TRACEHASH_MIN_FRAGMENT_COUNT", &p.MinFragmentCount); err != nil {
		return p, err
	}
	if value := os.Getenv("TRACEHASH_WINDOW_SIZE"); value != "" {
		n, err := ParseWindowSize(value)
		if err != nil {
			return p, fmt.Errorf("invalid value for TRACEHASH_WINDOW_SIZE: %w", err)
		}
		p.NonOverflowWindowSize = n
	}
	if err := parseEnvBool("TRACEHASH_NO_SYNTHETIC", &p.FilterSyntheticFrames); err != nil {
		return p, err
	}

	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("invalid parameters from environment: %w", err)
	}
	return p, nil
}

// parseEnvInt parses an int from an environment variable
func parseEnvInt(key string, dest *int) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

// parseEnvBool parses a bool from an environment variable
func parseEnvBool(key string, dest *bool) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

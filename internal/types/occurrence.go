package types

import (
	"fmt"
	"strings"
)

// Occurrence is one observed failure: its type and the frames it was raised from.
// Frames[0] is the innermost (most recent) call.
type Occurrence struct {
	// TypeName is the fully-qualified type of the failure, e.g. java.lang.StackOverflowError
	TypeName string `json:"type" yaml:"type"`

	// DisplayName is the runtime type name the fingerprint prefix is taken from,
	// e.g. a.Outer$Inner where TypeName is a.Outer.Inner; defaults to TypeName
	DisplayName string `json:"display_name,omitempty" yaml:"display_name,omitempty"`

	// StackOverflow marks failures caused by unbounded recursion
	StackOverflow bool `json:"stack_overflow" yaml:"stack_overflow"`

	Frames []Frame `json:"frames" yaml:"frames"`
}

// Validate checks that the occurrence can be fingerprinted
func (o *Occurrence) Validate() error {
	if strings.TrimSpace(o.TypeName) == "" {
		return fmt.Errorf("type is required")
	}
	return nil
}

// Display returns DisplayName, falling back to TypeName.
func (o *Occurrence) Display() string {
	if o.DisplayName != "" {
		return o.DisplayName
	}
	return o.TypeName
}

package types

import (
	"fmt"
	"strings"
)

// UnknownLine is the line number recorded when a frame has no line information.
const UnknownLine = -1

// Frame is one resolved call-stack entry.
// Nil name fields mean the value is unknown; they are valid data, not errors.
type Frame struct {
	ClassName  *string `json:"class,omitempty" yaml:"class,omitempty"`
	MethodName *string `json:"method,omitempty" yaml:"method,omitempty"`
	FileName   *string `json:"file,omitempty" yaml:"file,omitempty"`
	LineNumber int     `json:"line" yaml:"line"`
}

// NewFrame builds a frame with every name known.
func NewFrame(class, method, file string, line int) Frame {
	return Frame{
		ClassName:  Str(class),
		MethodName: Str(method),
		FileName:   Str(file),
		LineNumber: line,
	}
}

// Str returns a pointer to s.
func Str(s string) *string {
	return &s
}

// Equal reports whether all four fields of f and o are equal (nil-aware).
func (f Frame) Equal(o Frame) bool {
	return equalStrings(f.ClassName, o.ClassName) &&
		equalStrings(f.MethodName, o.MethodName) &&
		equalStrings(f.FileName, o.FileName) &&
		f.LineNumber == o.LineNumber
}

// String renders the frame the way stack dumps usually print it.
func (f Frame) String() string {
	var b strings.Builder
	b.WriteString(deref(f.ClassName, "<unknown>"))
	b.WriteByte('.')
	b.WriteString(deref(f.MethodName, "<unknown>"))
	b.WriteByte('(')
	b.WriteString(deref(f.FileName, "Unknown Source"))
	if f.LineNumber >= 0 {
		fmt.Fprintf(&b, ":%d", f.LineNumber)
	}
	b.WriteByte(')')
	return b.String()
}

// CompareFrames orders frames by class, method, file and line.
// Nil names sort before any string. The result is always -1, 0 or 1.
func CompareFrames(a, b Frame) int {
	if r := compareStrings(a.ClassName, b.ClassName); r != 0 {
		return r
	}
	if r := compareStrings(a.MethodName, b.MethodName); r != 0 {
		return r
	}
	if r := compareStrings(a.FileName, b.FileName); r != 0 {
		return r
	}
	switch {
	case a.LineNumber < b.LineNumber:
		return -1
	case a.LineNumber > b.LineNumber:
		return 1
	}
	return 0
}

func compareStrings(a, b *string) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return strings.Compare(*a, *b)
}

func equalStrings(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func deref(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

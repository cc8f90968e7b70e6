package fingerprint

import (
	"regexp"
	"strings"

	"github.com/steveyegge/tracehash/internal/types"
)

// SyntheticFunc reports whether the method on the class was generated by the
// compiler rather than written by hand. Frames it accepts are left out of the
// fingerprint when Parameters.FilterSyntheticFrames is set.
type SyntheticFunc func(className, methodName string) bool

// NoSynthetic treats every frame as hand-written.
func NoSynthetic(string, string) bool { return false }

var (
	// closures and wrappers: pkg.F.func1, pkg.F.deferwrap2, pkg.F.gowrap1, glob..func3
	goGeneratedSuffix = regexp.MustCompile(`(^|\.)(func|deferwrap|gowrap)\d+(\.\d+)*$`)
)

// GoSynthetic recognises frames the Go toolchain generates: method value
// wrappers (-fm), deferred and go statement wrappers and numbered closures.
func GoSynthetic(className, methodName string) bool {
	switch {
	case strings.HasSuffix(methodName, "-fm"):
		return true
	case goGeneratedSuffix.MatchString(methodName):
		return true
	}
	return false
}

// isSynthetic never calls the predicate for frames with unknown names.
func isSynthetic(pred SyntheticFunc, f types.Frame) bool {
	if f.ClassName == nil || f.MethodName == nil {
		return false
	}
	return pred(*f.ClassName, *f.MethodName)
}

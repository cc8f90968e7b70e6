// Package capture records Go call stacks as tracehash frames.
//
// Go symbols are split into a "class" (import path plus receiver, if any) and a
// "method" (the rest), so Go traces get the same treatment as JVM traces:
//
//	github.com/a/pkg.(*Server).handle.func1 -> class github.com/a/pkg.(*Server), method handle.func1
//	github.com/a/pkg.Run                   -> class github.com/a/pkg,           method Run
package capture

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"github.com/steveyegge/tracehash/internal/tracehash"
	"github.com/steveyegge/tracehash/internal/types"
)

// DefaultMaxDepth bounds captured stacks. Deep recursion beyond it is still
// periodic at the tail, which is all cover detection needs.
const DefaultMaxDepth = 1024

// autogeneratedFile is the file runtime reports for compiler-generated wrappers.
const autogeneratedFile = "<autogenerated>"

// Callers captures up to maxDepth frames of the calling goroutine, skipping
// skip frames above the caller of Callers (0 = the caller itself).
func Callers(skip, maxDepth int) []types.Frame {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	// +2 skips runtime.Callers and Callers.
	pc := make([]uintptr, maxDepth)
	n := runtime.Callers(skip+2, pc)
	if n == 0 {
		return nil
	}
	return FromPCs(pc[:n])
}

// FromPCs resolves program counters, expanding inlined calls.
func FromPCs(pc []uintptr) []types.Frame {
	if len(pc) == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pc)
	out := make([]types.Frame, 0, len(pc))
	for {
		fr, more := frames.Next()
		if fr.Function != "" || fr.File != "" {
			out = append(out, FromRuntime(fr))
		}
		if !more {
			break
		}
	}
	return out
}

// FromRuntime converts one runtime frame.
func FromRuntime(fr runtime.Frame) types.Frame {
	f := types.Frame{LineNumber: types.UnknownLine}
	if fr.Function != "" {
		class, method := SplitFunction(fr.Function)
		f.ClassName = types.Str(class)
		f.MethodName = types.Str(method)
	}
	if fr.File != "" && fr.File != autogeneratedFile {
		f.FileName = types.Str(fr.File)
	}
	if fr.Line > 0 {
		f.LineNumber = fr.Line
	}
	return f
}

// SplitFunction splits a fully-qualified Go function name into its package
// (with receiver, for methods) and the function name.
func SplitFunction(fn string) (class, method string) {
	// The package path ends at the first dot after the last slash.
	slash := strings.LastIndexByte(fn, '/')
	dot := strings.IndexByte(fn[slash+1:], '.')
	if dot < 0 {
		return "", fn
	}
	dot += slash + 1
	pkg, rest := fn[:dot], fn[dot+1:]

	// Methods: (*T).M or T.M. Receivers in parentheses are unambiguous.
	if strings.HasPrefix(rest, "(") {
		if end := strings.Index(rest, ")."); end >= 0 {
			return pkg + "." + rest[:end+1], rest[end+2:]
		}
	}
	return pkg, rest
}

// Occurrence describes err as a failure raised from the caller's stack.
// The type name is err's dynamic type, e.g. *io/fs.PathError.
func Occurrence(err error, skip int, stackOverflow bool) (*types.Occurrence, error) {
	if err == nil {
		return nil, fmt.Errorf("%w: error is required", tracehash.ErrInvalidArgument)
	}
	return &types.Occurrence{
		TypeName:      TypeName(err),
		StackOverflow: stackOverflow,
		Frames:        Callers(skip+1, DefaultMaxDepth),
	}, nil
}

// TypeName returns the package-qualified name of v's dynamic type.
func TypeName(v any) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return "nil"
	}
	prefix := ""
	for t.Kind() == reflect.Pointer {
		prefix += "*"
		t = t.Elem()
	}
	if t.PkgPath() == "" || t.Name() == "" {
		return prefix + t.String()
	}
	return prefix + t.PkgPath() + "." + t.Name()
}

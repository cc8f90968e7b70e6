package fingerprint

import (
	"crypto/sha1" //nolint:gosec // SHA-1 is part of the fingerprint format, not a security boundary
	"encoding/hex"
	"strings"

	"github.com/steveyegge/tracehash/internal/types"
)

// NullToken replaces unknown class or method names in the canonical encoding.
const NullToken = "{null}"

// Encode renders the canonical text that is digested:
//
//	<typeName>:<class>/<method>|<class>/<method>|...
//
// Every frame, including the last, is followed by '|'.
func Encode(typeName string, frames []types.Frame) string {
	var b strings.Builder
	b.Grow(len(typeName) + 1 + len(frames)*32)
	b.WriteString(typeName)
	b.WriteByte(':')
	for _, f := range frames {
		writeName(&b, f.ClassName)
		b.WriteByte('/')
		writeName(&b, f.MethodName)
		b.WriteByte('|')
	}
	return b.String()
}

func writeName(b *strings.Builder, name *string) {
	if name == nil {
		b.WriteString(NullToken)
		return
	}
	b.WriteString(*name)
}

// Digest returns the lowercase hex SHA-1 of the UTF-8 bytes of text.
func Digest(text string) string {
	sum := sha1.Sum([]byte(text)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// Abbreviate keeps the uppercase ASCII letters of a type name, in order:
// java.lang.StackOverflowError becomes SOE.
func Abbreviate(typeName string) string {
	var b strings.Builder
	for i := 0; i < len(typeName); i++ {
		if c := typeName[i]; c >= 'A' && c <= 'Z' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Format joins the abbreviated type name and the digest.
func Format(typeName, digest string) string {
	return Abbreviate(typeName) + "-" + digest
}

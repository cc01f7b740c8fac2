// Package textproc holds the text helpers shared by the archive store and
// the request router: payload sanitization, phase auto-detection and the
// deterministic conversation summarizer.
package textproc

import "strings"

// Sanitize strips characters that are unsafe to embed in a transport text
// payload or a stored value: double quotes become single quotes, line
// breaks and tabs collapse to single spaces, backslashes become forward
// slashes, and C0/C1 control characters are dropped. The result is trimmed.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		switch {
		case r == '"':
			b.WriteByte('\'')
		case r == '\r' || r == '\n' || r == '\t':
			b.WriteByte(' ')
		case r == '\\':
			b.WriteByte('/')
		case r < 0x20 || r == 0x7f || (r >= 0x80 && r <= 0x9f):
			// control character, drop
		default:
			b.WriteRune(r)
		}
	}

	return strings.TrimSpace(b.String())
}

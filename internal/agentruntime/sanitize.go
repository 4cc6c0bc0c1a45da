package agentruntime

import "strings"

// sanitizePathComponent replaces every character unsafe for a filesystem
// path segment with an underscore, keeping letters, digits, hyphens, and
// underscores as-is.
func sanitizePathComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

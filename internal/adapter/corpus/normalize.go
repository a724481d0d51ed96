package corpus

import "strings"

// NormalizeText collapses every run of whitespace (including newlines)
// into a single space and trims the ends. Chunk offsets are always
// relative to this normalized form, so it must be applied exactly once,
// at ingest time.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

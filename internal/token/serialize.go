package token

import "strings"

// Serialize renders tokens one per line, each line ending in a newline.
// An empty sequence renders as the empty string.
func Serialize(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(Format(t))
		b.WriteByte('\n')
	}
	return b.String()
}

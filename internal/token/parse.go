package token

import (
	"strings"
)

// CommentPrefix starts a comment line.
const CommentPrefix = "#"

// Parse converts file text into tokens using vocabulary v.
//
// Blank lines and comment lines are skipped. Every other line is split at
// the first run of whitespace into key and value. Tokens are returned in file
// order with duplicates kept. The first line that fails to convert aborts the
// parse with a *ParseError.
func Parse(text string, v *Vocabulary) ([]Token, error) {
	var tokens []Token
	for i, line := range strings.Split(text, "\n") {
		tok, ok, err := ParseLine(line, v)
		if err != nil {
			return nil, &ParseError{Line: i + 1, Text: strings.TrimSpace(line), Err: err}
		}
		if ok {
			tokens = append(tokens, tok)
		}
	}
	return tokens, nil
}

// ParseLine converts one physical line. ok is false for blank and comment lines.
func ParseLine(line string, v *Vocabulary) (tok Token, ok bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, CommentPrefix) {
		return nil, false, nil
	}
	key, value := splitKeyValue(line)
	tok, err = New(v, key, value)
	if err != nil {
		return nil, false, err
	}
	return tok, true, nil
}

// splitKeyValue splits a trimmed line at the first run of whitespace.
func splitKeyValue(line string) (key, value string) {
	i := strings.IndexAny(line, " \t")
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimLeft(line[i:], " \t")
}

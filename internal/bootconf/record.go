// Package bootconf provides typed records over systemd-boot configuration
// files: Config for loader.conf and Entry for one file under entries/.
//
// Records are built from token sequences (scalar directives: last one wins;
// list directives: accumulate in file order; unknown directives: kept in
// Extra) and turn back into tokens in a fixed canonical order followed by the
// unknown directives in their original relative order.
package bootconf

import (
	"fmt"
	"strings"

	"sdbootconf/internal/token"
)

// validKey reports whether key can be written as the first field of a line.
func validKey(key string) bool {
	return key != "" &&
		!strings.HasPrefix(key, token.CommentPrefix) &&
		!strings.ContainsAny(key, " \t\r\n")
}

// validValue reports whether value survives being written on one line.
func validValue(value string) bool {
	return !strings.ContainsAny(value, "\r\n") && value == strings.TrimSpace(value)
}

// newToken validates key and value and converts them through vocab.
func newToken(vocab *token.Vocabulary, key, value string) (token.Token, error) {
	if !validKey(key) {
		return nil, &ValidationError{Field: "key", Value: key, Err: ErrInvalidValue}
	}
	if !validValue(value) {
		return nil, &ValidationError{Field: key, Value: value, Err: ErrInvalidValue}
	}
	t, err := token.New(vocab, key, value)
	if err != nil {
		return nil, &ValidationError{Field: key, Value: value, Err: fmt.Errorf("%w: %w", ErrInvalidValue, err)}
	}
	return t, nil
}

// lastExtra returns the value of the last unknown directive named key.
func lastExtra(extra []token.Token, key string) (string, bool) {
	for i := len(extra) - 1; i >= 0; i-- {
		if extra[i].Key() == key {
			return extra[i].Encode(), true
		}
	}
	return "", false
}

// replaceExtra puts t in place of the first directive with the same key and
// drops any later ones. If there is none, t is appended.
func replaceExtra(extra []token.Token, t token.Token) []token.Token {
	out := make([]token.Token, 0, len(extra)+1)
	placed := false
	for _, x := range extra {
		if x.Key() != t.Key() {
			out = append(out, x)
			continue
		}
		if !placed {
			out = append(out, t)
			placed = true
		}
	}
	if !placed {
		out = append(out, t)
	}
	return out
}

// removeExtra drops every directive named key.
func removeExtra(extra []token.Token, key string) ([]token.Token, bool) {
	var out []token.Token
	removed := false
	for _, x := range extra {
		if x.Key() == key {
			removed = true
			continue
		}
		out = append(out, x)
	}
	return out, removed
}

func cloneTokens(ts []token.Token) []token.Token {
	if len(ts) == 0 {
		return nil
	}
	out := make([]token.Token, len(ts))
	for i, t := range ts {
		if l, ok := t.(token.List); ok {
			l.Values = cloneStrings(l.Values)
			t = l
		}
		out[i] = t
	}
	return out
}

func cloneStrings(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return append([]string(nil), s...)
}

// Package token models single directives of systemd-boot configuration files.
//
// A Token is one "key value" line. Known directives carry a typed value
// (Text, Uint, Bool, List); anything the vocabulary does not recognise is kept
// as Raw so it survives a load/save cycle unchanged.
package token

import (
	"slices"
	"strconv"
	"strings"
)

// Token is one configuration directive.
type Token interface {
	// Key returns the directive name as written in the file.
	Key() string
	// Encode returns the value text as written after the key.
	Encode() string

	isToken()
}

// Text is a directive with a free-form string value.
type Text struct {
	Name  string
	Value string
}

func (t Text) Key() string    { return t.Name }
func (t Text) Encode() string { return t.Value }
func (Text) isToken()         {}

// Uint is a directive with a non-negative integer value.
type Uint struct {
	Name  string
	Value uint64
}

func (t Uint) Key() string    { return t.Name }
func (t Uint) Encode() string { return strconv.FormatUint(t.Value, 10) }
func (Uint) isToken()         {}

// Bool is an on/off directive. It is always written as 1 or 0.
type Bool struct {
	Name  string
	Value bool
}

func (t Bool) Key() string { return t.Name }

func (t Bool) Encode() string {
	if t.Value {
		return "1"
	}
	return "0"
}

func (Bool) isToken() {}

// List is a directive whose value is an ordered list of whitespace-free items.
type List struct {
	Name   string
	Values []string
}

func (t List) Key() string    { return t.Name }
func (t List) Encode() string { return strings.Join(t.Values, " ") }
func (List) isToken()         {}

// Raw is a directive the vocabulary does not know. Key and value are the
// exact text found in the file.
type Raw struct {
	Name  string
	Value string
}

func (t Raw) Key() string    { return t.Name }
func (t Raw) Encode() string { return t.Value }
func (Raw) isToken()         {}

// Equal reports whether a and b are the same variant with the same key and value.
func Equal(a, b Token) bool {
	switch x := a.(type) {
	case Text:
		y, ok := b.(Text)
		return ok && x == y
	case Uint:
		y, ok := b.(Uint)
		return ok && x == y
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	case List:
		y, ok := b.(List)
		return ok && x.Name == y.Name && slices.Equal(x.Values, y.Values)
	case Raw:
		y, ok := b.(Raw)
		return ok && x == y
	}
	return false
}

// EqualAll reports whether two token sequences are pairwise Equal.
func EqualAll(a, b []Token) bool {
	return slices.EqualFunc(a, b, Equal)
}

// Format renders t as a single line without the trailing newline.
func Format(t Token) string {
	v := t.Encode()
	if v == "" {
		return t.Key()
	}
	return t.Key() + " " + v
}

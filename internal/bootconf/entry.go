package bootconf

import (
	"slices"
	"strings"
	"unicode"

	"sdbootconf/internal/token"
)

// EntryExt is the file extension of entry files.
const EntryExt = ".conf"

// Entry is one boot menu item, stored as entries/<ID>.conf.
type Entry struct {
	// ID is the file name without EntryExt. It is also what loader.conf's
	// default directive refers to.
	ID string

	Title     string
	Version   string
	MachineID string
	SortKey   string
	Linux     string
	Efi       string
	Initrd    []string
	// Options is the kernel command line. Repeated options lines are joined
	// with a single space.
	Options           string
	Devicetree        string
	DevicetreeOverlay []string
	Architecture      string

	// Extra holds directives not in token.Entry, in file order.
	Extra []token.Token
}

// ValidateID checks that id can be used as an entry file name.
func ValidateID(id string) error {
	if id == "" {
		return &ValidationError{Field: "id", Err: ErrEmptyID}
	}
	if id == "." || id == ".." || strings.ContainsAny(id, `/\`) ||
		strings.IndexFunc(id, unicode.IsControl) >= 0 {
		return &ValidationError{Field: "id", Value: id, Err: ErrInvalidID}
	}
	return nil
}

// IDFromFileName returns the entry id for an entry file name, or false if
// name does not end in EntryExt.
func IDFromFileName(name string) (string, bool) {
	id, ok := strings.CutSuffix(name, EntryExt)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// NewEntry builds an Entry from a token sequence.
func NewEntry(id string, tokens []token.Token) (Entry, error) {
	if err := ValidateID(id); err != nil {
		return Entry{}, err
	}
	e := Entry{ID: id}
	for _, t := range tokens {
		e.apply(t)
	}
	return e, nil
}

// ParseEntry parses the text of an entry file.
func ParseEntry(id, text string) (Entry, error) {
	if err := ValidateID(id); err != nil {
		return Entry{}, err
	}
	tokens, err := token.Parse(text, token.Entry)
	if err != nil {
		return Entry{}, err
	}
	return NewEntry(id, tokens)
}

// FileName returns the entry's file name inside entries/.
func (e Entry) FileName() string {
	return e.ID + EntryExt
}

func (e *Entry) text(key string) *string {
	switch key {
	case token.KeyTitle:
		return &e.Title
	case token.KeyVersion:
		return &e.Version
	case token.KeyMachineID:
		return &e.MachineID
	case token.KeySortKey:
		return &e.SortKey
	case token.KeyLinux:
		return &e.Linux
	case token.KeyEfi:
		return &e.Efi
	case token.KeyOptions:
		return &e.Options
	case token.KeyDevicetree:
		return &e.Devicetree
	case token.KeyArchitecture:
		return &e.Architecture
	}
	return nil
}

func (e *Entry) list(key string) *[]string {
	switch key {
	case token.KeyInitrd:
		return &e.Initrd
	case token.KeyDevicetreeOverlay:
		return &e.DevicetreeOverlay
	}
	return nil
}

func (e *Entry) apply(t token.Token) {
	switch v := t.(type) {
	case token.Text:
		if p := e.text(v.Name); p != nil {
			if v.Name == token.KeyOptions && *p != "" {
				*p += " " + v.Value
			} else {
				*p = v.Value
			}
			return
		}
	case token.List:
		if p := e.list(v.Name); p != nil {
			*p = append(*p, v.Values...)
			return
		}
	}
	e.Extra = append(e.Extra, t)
}

func (e *Entry) known(key string) (token.Token, bool) {
	if p := e.text(key); p != nil {
		return token.Text{Name: key, Value: *p}, *p != ""
	}
	if p := e.list(key); p != nil {
		return token.List{Name: key, Values: slices.Clone(*p)}, len(*p) > 0
	}
	return nil, false
}

// Tokens returns the known fields in canonical order followed by Extra.
func (e Entry) Tokens() []token.Token {
	var ts []token.Token
	for _, key := range token.Entry.Keys() {
		if t, ok := e.known(key); ok {
			ts = append(ts, t)
		}
	}
	return append(ts, e.Extra...)
}

// String returns the entry file text for e.
func (e Entry) String() string {
	return token.Serialize(e.Tokens())
}

// Equal reports whether e and o have the same id and serialize to the same tokens.
func (e Entry) Equal(o Entry) bool {
	return e.ID == o.ID && token.EqualAll(e.Tokens(), o.Tokens())
}

// Clone returns a deep copy of e.
func (e Entry) Clone() Entry {
	out := e
	out.Initrd = cloneStrings(e.Initrd)
	out.DevicetreeOverlay = cloneStrings(e.DevicetreeOverlay)
	out.Extra = cloneTokens(e.Extra)
	return out
}

// Get returns the value text of key.
func (e Entry) Get(key string) (string, bool) {
	if _, ok := token.Entry.Lookup(key); ok {
		t, set := e.known(key)
		if !set {
			return "", false
		}
		return t.Encode(), true
	}
	return lastExtra(e.Extra, key)
}

// Set stores t, replacing any earlier value for the same key.
func (e *Entry) Set(t token.Token) error {
	return e.SetString(t.Key(), t.Encode())
}

// SetString converts value for key and stores it, replacing any earlier
// value. For list keys value is split on whitespace.
func (e *Entry) SetString(key, value string) error {
	t, err := newToken(token.Entry, key, value)
	if err != nil {
		return err
	}
	if _, ok := t.(token.Raw); ok {
		e.Extra = replaceExtra(e.Extra, t)
		return nil
	}
	e.Unset(key)
	e.apply(t)
	return nil
}

// Unset clears key. It reports whether anything was removed.
func (e *Entry) Unset(key string) bool {
	if p := e.text(key); p != nil {
		was := *p != ""
		*p = ""
		return was
	}
	if p := e.list(key); p != nil {
		was := len(*p) > 0
		*p = nil
		return was
	}
	var removed bool
	e.Extra, removed = removeExtra(e.Extra, key)
	return removed
}

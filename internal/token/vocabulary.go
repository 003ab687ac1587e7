package token

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Type is the value shape of a known directive.
type Type int

const (
	TypeText Type = iota
	TypeUint
	TypeBool
	TypeList
)

func (t Type) String() string {
	switch t {
	case TypeText:
		return "text"
	case TypeUint:
		return "unsigned integer"
	case TypeBool:
		return "boolean"
	case TypeList:
		return "list"
	}
	return "unknown"
}

// Directive describes one recognised key.
// An empty Allowed means any non-empty value of the right type is accepted.
type Directive struct {
	Key     string
	Type    Type
	Allowed []string
}

// Vocabulary is the ordered set of directives recognised in one kind of file.
// Its order is the canonical order used when records are written back.
type Vocabulary struct {
	name       string
	directives []Directive
	index      map[string]int
}

// NewVocabulary builds a vocabulary. Keys are matched case-sensitively.
func NewVocabulary(name string, directives ...Directive) *Vocabulary {
	v := &Vocabulary{
		name:       name,
		directives: directives,
		index:      make(map[string]int, len(directives)),
	}
	for i, d := range directives {
		v.index[d.Key] = i
	}
	return v
}

// Name identifies the file kind, e.g. "loader" or "entry".
func (v *Vocabulary) Name() string { return v.name }

// Lookup returns the directive for key.
func (v *Vocabulary) Lookup(key string) (Directive, bool) {
	i, ok := v.index[key]
	if !ok {
		return Directive{}, false
	}
	return v.directives[i], true
}

// Directives returns the directives in canonical order.
func (v *Vocabulary) Directives() []Directive {
	return slices.Clone(v.directives)
}

// Keys returns the directive keys in canonical order.
func (v *Vocabulary) Keys() []string {
	keys := make([]string, len(v.directives))
	for i, d := range v.directives {
		keys[i] = d.Key
	}
	return keys
}

// Directive keys of loader.conf.
const (
	KeyDefault            = "default"
	KeyTimeout            = "timeout"
	KeyConsoleMode        = "console-mode"
	KeyEditor             = "editor"
	KeyAutoEntries        = "auto-entries"
	KeyAutoFirmware       = "auto-firmware"
	KeyBeep               = "beep"
	KeyRebootForBitlocker = "reboot-for-bitlocker"
	KeySecureBootEnroll   = "secure-boot-enroll"
)

// Directive keys of entry files.
const (
	KeyTitle             = "title"
	KeyVersion           = "version"
	KeyMachineID         = "machine-id"
	KeySortKey           = "sort-key"
	KeyLinux             = "linux"
	KeyEfi               = "efi"
	KeyInitrd            = "initrd"
	KeyOptions           = "options"
	KeyDevicetree        = "devicetree"
	KeyDevicetreeOverlay = "devicetree-overlay"
	KeyArchitecture      = "architecture"
)

// Loader is the vocabulary of loader.conf.
var Loader = NewVocabulary("loader",
	Directive{Key: KeyDefault, Type: TypeText},
	Directive{Key: KeyTimeout, Type: TypeUint},
	Directive{Key: KeyConsoleMode, Type: TypeText, Allowed: []string{"max", "keep", "auto", "0", "1", "2"}},
	Directive{Key: KeyEditor, Type: TypeBool},
	Directive{Key: KeyAutoEntries, Type: TypeBool},
	Directive{Key: KeyAutoFirmware, Type: TypeBool},
	Directive{Key: KeyBeep, Type: TypeBool},
	Directive{Key: KeyRebootForBitlocker, Type: TypeBool},
	Directive{Key: KeySecureBootEnroll, Type: TypeText, Allowed: []string{"off", "manual", "if-safe", "force"}},
)

// Entry is the vocabulary of boot entry files.
var Entry = NewVocabulary("entry",
	Directive{Key: KeyTitle, Type: TypeText},
	Directive{Key: KeyVersion, Type: TypeText},
	Directive{Key: KeyMachineID, Type: TypeText},
	Directive{Key: KeySortKey, Type: TypeText},
	Directive{Key: KeyLinux, Type: TypeText},
	Directive{Key: KeyEfi, Type: TypeText},
	Directive{Key: KeyInitrd, Type: TypeList},
	Directive{Key: KeyOptions, Type: TypeText},
	Directive{Key: KeyDevicetree, Type: TypeText},
	Directive{Key: KeyDevicetreeOverlay, Type: TypeList},
	Directive{Key: KeyArchitecture, Type: TypeText},
)

// New converts a key and its raw value text into a Token using vocabulary v.
// Unknown keys yield Raw. A known key with an empty value returns
// ErrMissingValue; a value that does not convert returns ErrInvalidValue.
func New(v *Vocabulary, key, value string) (Token, error) {
	d, ok := v.Lookup(key)
	if !ok {
		return Raw{Name: key, Value: value}, nil
	}
	if value == "" {
		return nil, fmt.Errorf("%s: %w", key, ErrMissingValue)
	}

	switch d.Type {
	case TypeUint:
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not a non-negative integer: %w", key, value, ErrInvalidValue)
		}
		return Uint{Name: key, Value: n}, nil
	case TypeBool:
		b, err := ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		return Bool{Name: key, Value: b}, nil
	case TypeList:
		return List{Name: key, Values: strings.Fields(value)}, nil
	default:
		if len(d.Allowed) > 0 && !slices.Contains(d.Allowed, value) {
			return nil, fmt.Errorf("%s: %q (allowed: %s): %w",
				key, value, strings.Join(d.Allowed, ", "), ErrInvalidValue)
		}
		return Text{Name: key, Value: value}, nil
	}
}

// ParseBool accepts the boolean spellings systemd-boot understands.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "yes", "y", "true", "t", "on":
		return true, nil
	case "0", "no", "n", "false", "f", "off":
		return false, nil
	}
	return false, fmt.Errorf("%q is not a boolean: %w", s, ErrInvalidValue)
}

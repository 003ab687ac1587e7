package bootconf

import (
	"sdbootconf/internal/token"
)

// ConsoleMode is the value of the console-mode directive.
type ConsoleMode string

const (
	ConsoleModeMax              ConsoleMode = "max"
	ConsoleModeKeep             ConsoleMode = "keep"
	ConsoleModeAuto             ConsoleMode = "auto"
	ConsoleMode80x25            ConsoleMode = "0"
	ConsoleMode80x50            ConsoleMode = "1"
	ConsoleModeFirstNonStandard ConsoleMode = "2"
)

// SecureBootEnroll is the value of the secure-boot-enroll directive.
type SecureBootEnroll string

const (
	SecureBootEnrollOff    SecureBootEnroll = "off"
	SecureBootEnrollManual SecureBootEnroll = "manual"
	SecureBootEnrollIfSafe SecureBootEnroll = "if-safe"
	SecureBootEnrollForce  SecureBootEnroll = "force"
)

// Config is the content of loader.conf. Zero values mean "not set" and are
// left out when the file is written.
type Config struct {
	// Default selects the default entry; may be a glob pattern.
	Default string
	// Timeout is how long the menu is shown, in seconds.
	Timeout            *uint64
	ConsoleMode        ConsoleMode
	Editor             *bool
	AutoEntries        *bool
	AutoFirmware       *bool
	Beep               *bool
	RebootForBitlocker *bool
	SecureBootEnroll   SecureBootEnroll

	// Extra holds directives not in token.Loader, in file order.
	Extra []token.Token
}

// ConfigFromTokens builds a Config from a token sequence.
func ConfigFromTokens(tokens []token.Token) Config {
	var c Config
	for _, t := range tokens {
		c.apply(t)
	}
	return c
}

// ParseConfig parses the text of a loader.conf file.
func ParseConfig(text string) (Config, error) {
	tokens, err := token.Parse(text, token.Loader)
	if err != nil {
		return Config{}, err
	}
	return ConfigFromTokens(tokens), nil
}

// apply folds one token into c: known scalars overwrite, the rest is kept in Extra.
func (c *Config) apply(t token.Token) {
	switch v := t.(type) {
	case token.Text:
		switch v.Name {
		case token.KeyDefault:
			c.Default = v.Value
			return
		case token.KeyConsoleMode:
			c.ConsoleMode = ConsoleMode(v.Value)
			return
		case token.KeySecureBootEnroll:
			c.SecureBootEnroll = SecureBootEnroll(v.Value)
			return
		}
	case token.Uint:
		if v.Name == token.KeyTimeout {
			n := v.Value
			c.Timeout = &n
			return
		}
	case token.Bool:
		if p := c.flag(v.Name); p != nil {
			b := v.Value
			*p = &b
			return
		}
	}
	c.Extra = append(c.Extra, t)
}

func (c *Config) flag(key string) **bool {
	switch key {
	case token.KeyEditor:
		return &c.Editor
	case token.KeyAutoEntries:
		return &c.AutoEntries
	case token.KeyAutoFirmware:
		return &c.AutoFirmware
	case token.KeyBeep:
		return &c.Beep
	case token.KeyRebootForBitlocker:
		return &c.RebootForBitlocker
	}
	return nil
}

// known returns the token for a vocabulary key, or false if the field is unset.
func (c *Config) known(key string) (token.Token, bool) {
	switch key {
	case token.KeyDefault:
		return token.Text{Name: key, Value: c.Default}, c.Default != ""
	case token.KeyTimeout:
		if c.Timeout == nil {
			return nil, false
		}
		return token.Uint{Name: key, Value: *c.Timeout}, true
	case token.KeyConsoleMode:
		return token.Text{Name: key, Value: string(c.ConsoleMode)}, c.ConsoleMode != ""
	case token.KeySecureBootEnroll:
		return token.Text{Name: key, Value: string(c.SecureBootEnroll)}, c.SecureBootEnroll != ""
	}
	if p := c.flag(key); p != nil && *p != nil {
		return token.Bool{Name: key, Value: **p}, true
	}
	return nil, false
}

// Tokens returns the known fields in canonical order followed by Extra.
func (c Config) Tokens() []token.Token {
	var ts []token.Token
	for _, key := range token.Loader.Keys() {
		if t, ok := c.known(key); ok {
			ts = append(ts, t)
		}
	}
	return append(ts, c.Extra...)
}

// String returns the loader.conf text for c.
func (c Config) String() string {
	return token.Serialize(c.Tokens())
}

// Equal reports whether c and o serialize to the same tokens.
func (c Config) Equal(o Config) bool {
	return token.EqualAll(c.Tokens(), o.Tokens())
}

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	out := c
	out.Timeout = clonePtr(c.Timeout)
	out.Editor = clonePtr(c.Editor)
	out.AutoEntries = clonePtr(c.AutoEntries)
	out.AutoFirmware = clonePtr(c.AutoFirmware)
	out.Beep = clonePtr(c.Beep)
	out.RebootForBitlocker = clonePtr(c.RebootForBitlocker)
	out.Extra = cloneTokens(c.Extra)
	return out
}

// Get returns the value text of key. For unknown directives that appear
// more than once, the last occurrence is returned.
func (c Config) Get(key string) (string, bool) {
	if _, ok := token.Loader.Lookup(key); ok {
		t, set := c.known(key)
		if !set {
			return "", false
		}
		return t.Encode(), true
	}
	return lastExtra(c.Extra, key)
}

// Set stores t, replacing any earlier value for the same key. Known keys are
// converted through the loader vocabulary so a mistyped token is rejected.
func (c *Config) Set(t token.Token) error {
	return c.SetString(t.Key(), t.Encode())
}

// SetString converts value for key and stores it, replacing any earlier value.
func (c *Config) SetString(key, value string) error {
	t, err := newToken(token.Loader, key, value)
	if err != nil {
		return err
	}
	if _, ok := t.(token.Raw); ok {
		c.Extra = replaceExtra(c.Extra, t)
		return nil
	}
	c.Unset(key)
	c.apply(t)
	return nil
}

// Unset clears key. It reports whether anything was removed.
func (c *Config) Unset(key string) bool {
	if _, ok := token.Loader.Lookup(key); !ok {
		var removed bool
		c.Extra, removed = removeExtra(c.Extra, key)
		return removed
	}
	_, was := c.known(key)
	switch key {
	case token.KeyDefault:
		c.Default = ""
	case token.KeyTimeout:
		c.Timeout = nil
	case token.KeyConsoleMode:
		c.ConsoleMode = ""
	case token.KeySecureBootEnroll:
		c.SecureBootEnroll = ""
	default:
		if p := c.flag(key); p != nil {
			*p = nil
		}
	}
	return was
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

package bootconf

import (
	"strings"

	"sdbootconf/internal/token"
)

// ConfigBuilder assembles a Config. Setters record the first invalid value,
// which Build returns.
type ConfigBuilder struct {
	cfg Config
	err error
}

// NewConfigBuilder returns a builder for an empty Config.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{}
}

func (b *ConfigBuilder) set(key, value string) *ConfigBuilder {
	if value == "" {
		b.cfg.Unset(key)
		return b
	}
	if err := b.cfg.SetString(key, value); err != nil && b.err == nil {
		b.err = err
	}
	return b
}

// Default sets the default entry id or glob pattern.
func (b *ConfigBuilder) Default(id string) *ConfigBuilder {
	return b.set(token.KeyDefault, id)
}

// Timeout sets the menu timeout in seconds.
func (b *ConfigBuilder) Timeout(seconds uint64) *ConfigBuilder {
	b.cfg.Timeout = &seconds
	return b
}

func (b *ConfigBuilder) ConsoleMode(mode ConsoleMode) *ConfigBuilder {
	return b.set(token.KeyConsoleMode, string(mode))
}

func (b *ConfigBuilder) Editor(on bool) *ConfigBuilder {
	b.cfg.Editor = &on
	return b
}

func (b *ConfigBuilder) AutoEntries(on bool) *ConfigBuilder {
	b.cfg.AutoEntries = &on
	return b
}

func (b *ConfigBuilder) AutoFirmware(on bool) *ConfigBuilder {
	b.cfg.AutoFirmware = &on
	return b
}

func (b *ConfigBuilder) Beep(on bool) *ConfigBuilder {
	b.cfg.Beep = &on
	return b
}

func (b *ConfigBuilder) RebootForBitlocker(on bool) *ConfigBuilder {
	b.cfg.RebootForBitlocker = &on
	return b
}

func (b *ConfigBuilder) SecureBootEnroll(mode SecureBootEnroll) *ConfigBuilder {
	return b.set(token.KeySecureBootEnroll, string(mode))
}

// Directive sets any directive by key. Known keys are converted through the
// loader vocabulary, unknown keys are kept as written.
func (b *ConfigBuilder) Directive(key, value string) *ConfigBuilder {
	if _, known := token.Loader.Lookup(key); known {
		return b.set(key, value)
	}
	if err := b.cfg.SetString(key, value); err != nil && b.err == nil {
		b.err = err
	}
	return b
}

// Append folds one directive into the Config the way a line of loader.conf
// is read: scalars take the latest value and unknown directives are added
// after any earlier ones with the same key.
func (b *ConfigBuilder) Append(key, value string) *ConfigBuilder {
	t, err := newToken(token.Loader, key, value)
	if err != nil {
		if b.err == nil {
			b.err = err
		}
		return b
	}
	b.cfg.apply(t)
	return b
}

// Build returns the Config and resets the builder.
func (b *ConfigBuilder) Build() (Config, error) {
	cfg, err := b.cfg, b.err
	*b = ConfigBuilder{}
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// EntryBuilder assembles an Entry. The id is checked when the builder is
// created since it also names the entry file.
type EntryBuilder struct {
	entry Entry
	err   error
}

// NewEntryBuilder returns a builder for an entry with the given id.
func NewEntryBuilder(id string) (*EntryBuilder, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	return &EntryBuilder{entry: Entry{ID: id}}, nil
}

func (b *EntryBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *EntryBuilder) set(key, value string) *EntryBuilder {
	if value == "" {
		b.entry.Unset(key)
		return b
	}
	if err := b.entry.SetString(key, value); err != nil {
		b.fail(err)
	}
	return b
}

func (b *EntryBuilder) appendList(key string, items []string) *EntryBuilder {
	for _, item := range items {
		if item == "" || strings.ContainsAny(item, " \t\r\n") {
			b.fail(&ValidationError{Field: key, Value: item, Err: ErrInvalidValue})
			return b
		}
	}
	b.entry.apply(token.List{Name: key, Values: items})
	return b
}

func (b *EntryBuilder) Title(s string) *EntryBuilder     { return b.set(token.KeyTitle, s) }
func (b *EntryBuilder) Version(s string) *EntryBuilder   { return b.set(token.KeyVersion, s) }
func (b *EntryBuilder) MachineID(s string) *EntryBuilder { return b.set(token.KeyMachineID, s) }
func (b *EntryBuilder) SortKey(s string) *EntryBuilder   { return b.set(token.KeySortKey, s) }
func (b *EntryBuilder) Linux(path string) *EntryBuilder  { return b.set(token.KeyLinux, path) }
func (b *EntryBuilder) Efi(path string) *EntryBuilder    { return b.set(token.KeyEfi, path) }

// Options sets the kernel command line, replacing any earlier value.
func (b *EntryBuilder) Options(s string) *EntryBuilder { return b.set(token.KeyOptions, s) }

func (b *EntryBuilder) Devicetree(path string) *EntryBuilder { return b.set(token.KeyDevicetree, path) }
func (b *EntryBuilder) Architecture(s string) *EntryBuilder  { return b.set(token.KeyArchitecture, s) }

// Initrd appends initrd paths in order.
func (b *EntryBuilder) Initrd(paths ...string) *EntryBuilder {
	return b.appendList(token.KeyInitrd, paths)
}

// DevicetreeOverlay appends overlay paths in order.
func (b *EntryBuilder) DevicetreeOverlay(paths ...string) *EntryBuilder {
	return b.appendList(token.KeyDevicetreeOverlay, paths)
}

// Directive sets any directive by key. List keys append, like Initrd.
func (b *EntryBuilder) Directive(key, value string) *EntryBuilder {
	if d, known := token.Entry.Lookup(key); known && d.Type == token.TypeList {
		return b.appendList(key, strings.Fields(value))
	}
	if _, known := token.Entry.Lookup(key); known {
		return b.set(key, value)
	}
	if err := b.entry.SetString(key, value); err != nil {
		b.fail(err)
	}
	return b
}

// Append folds one directive into the Entry the way a line of an entry file
// is read. Unlike Directive, a repeated unknown key is kept twice.
func (b *EntryBuilder) Append(key, value string) *EntryBuilder {
	t, err := newToken(token.Entry, key, value)
	if err != nil {
		b.fail(err)
		return b
	}
	b.entry.apply(t)
	return b
}

// Build returns the Entry and resets the builder to an empty entry with the
// same id.
func (b *EntryBuilder) Build() (Entry, error) {
	e, err := b.entry, b.err
	*b = EntryBuilder{entry: Entry{ID: e.ID}}
	if err != nil {
		return Entry{}, err
	}
	return e, nil
}

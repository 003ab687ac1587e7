package bootstore

import "sdbootconf/internal/bootconf"

// StoreBuilder assembles a Store in memory, for example for a fresh install.
type StoreBuilder struct {
	root    string
	opts    []Option
	config  bootconf.Config
	entries []bootconf.Entry
}

// NewStoreBuilder returns a builder for a store rooted at root.
func NewStoreBuilder(root string, opts ...Option) *StoreBuilder {
	return &StoreBuilder{root: root, opts: opts}
}

// Config sets the loader configuration.
func (b *StoreBuilder) Config(c bootconf.Config) *StoreBuilder {
	b.config = c
	return b
}

// Entry appends one entry.
func (b *StoreBuilder) Entry(e bootconf.Entry) *StoreBuilder {
	b.entries = append(b.entries, e)
	return b
}

// Entries appends entries in order.
func (b *StoreBuilder) Entries(es ...bootconf.Entry) *StoreBuilder {
	b.entries = append(b.entries, es...)
	return b
}

// Build returns the Store. It fails on an invalid or duplicate entry id.
func (b *StoreBuilder) Build() (*Store, error) {
	s := New(b.root, b.opts...)
	s.SetConfig(b.config)
	for _, e := range b.entries {
		if err := s.AddEntry(e); err != nil {
			return nil, err
		}
	}
	*b = StoreBuilder{}
	return s, nil
}

package bootstore

import (
	"fmt"

	"sdbootconf/internal/bootconf"
	"sdbootconf/internal/token"
)

// Directive is one key/value pair in a Snapshot.
type Directive struct {
	Key   string `json:"key" yaml:"key" toml:"key"`
	Value string `json:"value" yaml:"value" toml:"value"`
}

// EntrySnapshot is one entry in a Snapshot.
type EntrySnapshot struct {
	ID         string      `json:"id" yaml:"id" toml:"id"`
	File       string      `json:"file" yaml:"file" toml:"file"`
	Directives []Directive `json:"directives" yaml:"directives" toml:"directives"`
}

// Snapshot is a plain view of a Store for JSON, YAML or TOML output.
// Directives appear in the order they would be written.
type Snapshot struct {
	Root         string          `json:"root" yaml:"root" toml:"root"`
	DefaultEntry string          `json:"default_entry,omitempty" yaml:"default_entry,omitempty" toml:"default_entry,omitempty"`
	Loader       []Directive     `json:"loader" yaml:"loader" toml:"loader"`
	Entries      []EntrySnapshot `json:"entries" yaml:"entries" toml:"entries"`
}

func directives(ts []token.Token) []Directive {
	out := make([]Directive, len(ts))
	for i, t := range ts {
		out[i] = Directive{Key: t.Key(), Value: t.Encode()}
	}
	return out
}

// SnapshotEntry returns the snapshot form of one entry.
func (s *Store) SnapshotEntry(e bootconf.Entry) EntrySnapshot {
	return EntrySnapshot{
		ID:         e.ID,
		File:       s.EntryPath(e.ID),
		Directives: directives(e.Tokens()),
	}
}

// Snapshot returns the current state of the store.
func (s *Store) Snapshot() Snapshot {
	snap := Snapshot{
		Root:    s.root,
		Loader:  directives(s.config.Tokens()),
		Entries: make([]EntrySnapshot, len(s.entries)),
	}
	if e, ok := s.DefaultEntry(); ok {
		snap.DefaultEntry = e.ID
	}
	for i, e := range s.entries {
		snap.Entries[i] = s.SnapshotEntry(e)
	}
	return snap
}

// Restore builds a Store from a snapshot, as read back from JSON, YAML or
// TOML. Entries keep their snapshot order. An empty root means snap.Root.
// File and DefaultEntry are derived values and are ignored. Directives are
// folded in order as if read from files, so repeated unknown keys survive.
func (snap Snapshot) Restore(root string, opts ...Option) (*Store, error) {
	if root == "" {
		root = snap.Root
	}

	cb := bootconf.NewConfigBuilder()
	for _, d := range snap.Loader {
		cb.Append(d.Key, d.Value)
	}
	cfg, err := cb.Build()
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}

	sb := NewStoreBuilder(root, opts...).Config(cfg)
	for _, es := range snap.Entries {
		eb, err := bootconf.NewEntryBuilder(es.ID)
		if err != nil {
			return nil, err
		}
		for _, d := range es.Directives {
			eb.Append(d.Key, d.Value)
		}
		e, err := eb.Build()
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", es.ID, err)
		}
		sb.Entry(e)
	}
	return sb.Build()
}

// Package bootstore loads and writes a whole systemd-boot configuration
// directory: <root>/loader.conf plus one <root>/entries/<id>.conf per entry.
//
// A Store is an in-memory aggregate. Nothing is written until WriteConfig,
// WriteEntries or WriteAll is called. A Store is not safe for concurrent use.
package bootstore

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"

	"sdbootconf/internal/bootconf"
)

const (
	// LoaderFile is the name of the global configuration file inside root.
	LoaderFile = "loader.conf"
	// EntriesDir is the name of the entry directory inside root.
	EntriesDir = "entries"

	// DefaultFileMode is the permission used for files the store creates.
	DefaultFileMode fs.FileMode = 0644
)

// Store owns one Config and an ordered list of entries with unique ids.
type Store struct {
	root    string
	fs      FS
	log     *slog.Logger
	atomic  bool
	perm    fs.FileMode
	config  bootconf.Config
	entries []bootconf.Entry
}

// Option configures a Store.
type Option func(*Store)

// WithFS makes the store use fsys instead of the os package.
func WithFS(fsys FS) Option {
	return func(s *Store) {
		s.fs = fsys
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithAtomicWrites controls whether files are written to a temporary file and
// renamed into place (the default) or written directly.
func WithAtomicWrites(on bool) Option {
	return func(s *Store) {
		s.atomic = on
	}
}

// WithFileMode sets the permission of written files.
func WithFileMode(perm fs.FileMode) Option {
	return func(s *Store) {
		s.perm = perm
	}
}

// New returns an empty Store rooted at root. Nothing is read.
func New(root string, opts ...Option) *Store {
	s := &Store{
		root:   root,
		fs:     osFS{},
		log:    slog.New(slog.DiscardHandler),
		atomic: true,
		perm:   DefaultFileMode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the directory the store reads from and writes to.
func (s *Store) Root() string { return s.root }

// ConfigPath returns the path of loader.conf.
func (s *Store) ConfigPath() string {
	return filepath.Join(s.root, LoaderFile)
}

// EntriesPath returns the path of the entries directory.
func (s *Store) EntriesPath() string {
	return filepath.Join(s.root, EntriesDir)
}

// EntryPath returns the file path for the entry with the given id.
func (s *Store) EntryPath(id string) string {
	return filepath.Join(s.root, EntriesDir, id+bootconf.EntryExt)
}

// Config returns a copy of the loader configuration.
func (s *Store) Config() bootconf.Config {
	return s.config.Clone()
}

// SetConfig replaces the loader configuration.
func (s *Store) SetConfig(c bootconf.Config) {
	s.config = c.Clone()
}

// UpdateConfig applies fn to a copy of the configuration and keeps the result
// if fn returns nil.
func (s *Store) UpdateConfig(fn func(*bootconf.Config) error) error {
	c := s.config.Clone()
	if err := fn(&c); err != nil {
		return err
	}
	s.config = c
	return nil
}

// Len returns the number of entries.
func (s *Store) Len() int { return len(s.entries) }

// Entries returns copies of all entries in store order.
func (s *Store) Entries() []bootconf.Entry {
	out := make([]bootconf.Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Clone()
	}
	return out
}

// IDs returns the entry ids in store order.
func (s *Store) IDs() []string {
	ids := make([]string, len(s.entries))
	for i, e := range s.entries {
		ids[i] = e.ID
	}
	return ids
}

func (s *Store) indexOf(id string) int {
	for i, e := range s.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Entry returns a copy of the entry with the given id.
func (s *Store) Entry(id string) (bootconf.Entry, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return bootconf.Entry{}, false
	}
	return s.entries[i].Clone(), true
}

// AddEntry appends e. It fails if e's id is invalid or already present.
func (s *Store) AddEntry(e bootconf.Entry) error {
	if err := bootconf.ValidateID(e.ID); err != nil {
		return err
	}
	if s.indexOf(e.ID) >= 0 {
		return &bootconf.ValidationError{Field: "id", Value: e.ID, Err: ErrDuplicateID}
	}
	s.entries = append(s.entries, e.Clone())
	return nil
}

// RemoveEntry deletes the entry with the given id from memory.
func (s *Store) RemoveEntry(id string) error {
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("entry %q: %w", id, ErrNotFound)
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	return nil
}

// UpdateEntry applies fn to a copy of the entry and stores the result if fn
// returns nil. fn may change the id as long as the new one is valid and unused.
func (s *Store) UpdateEntry(id string, fn func(*bootconf.Entry) error) error {
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("entry %q: %w", id, ErrNotFound)
	}
	e := s.entries[i].Clone()
	if err := fn(&e); err != nil {
		return err
	}
	if e.ID != id {
		if err := bootconf.ValidateID(e.ID); err != nil {
			return err
		}
		if s.indexOf(e.ID) >= 0 {
			return &bootconf.ValidationError{Field: "id", Value: e.ID, Err: ErrDuplicateID}
		}
	}
	s.entries[i] = e
	return nil
}

// DefaultEntry returns the entry the loader's default directive selects.
// Like systemd-boot, the directive may be a glob pattern and may name the
// entry with or without its .conf suffix; when several entries match, the
// first in MenuOrder wins.
func (s *Store) DefaultEntry() (bootconf.Entry, bool) {
	pattern := s.config.Default
	if pattern == "" {
		return bootconf.Entry{}, false
	}
	for _, e := range s.MenuOrder() {
		if matchDefault(pattern, e) {
			return e, true
		}
	}
	return bootconf.Entry{}, false
}

func matchDefault(pattern string, e bootconf.Entry) bool {
	for _, name := range []string{e.ID, e.FileName()} {
		if ok, err := path.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

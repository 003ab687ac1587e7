package bootstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"sdbootconf/internal/bootconf"
	"sdbootconf/internal/token"
)

// Load reads the configuration directory at root.
//
// A missing loader.conf yields an empty Config and a missing entries/
// directory yields no entries. Every regular *.conf file in entries/ is
// loaded in file name order; its id is the file name without .conf. Files
// whose name does not make a valid id are skipped (Doctor reports them).
// Malformed content returns a *token.ParseError naming the file and line.
func Load(ctx context.Context, root string, opts ...Option) (*Store, error) {
	s := New(root, opts...)
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload replaces the in-memory state with what is on disk. On error the
// store is left unchanged.
func (s *Store) Reload(ctx context.Context) error {
	info, err := s.fs.Stat(s.root)
	if err != nil {
		return &IOError{Op: "stat", Path: s.root, Err: err}
	}
	if !info.IsDir() {
		return &IOError{Op: "stat", Path: s.root, Err: ErrNotDirectory}
	}

	cfg, err := s.loadConfig()
	if err != nil {
		return err
	}
	entries, err := s.loadEntries(ctx)
	if err != nil {
		return err
	}

	s.config = cfg
	s.entries = entries
	s.log.Debug("loaded boot configuration", "root", s.root, "entries", len(entries))
	return nil
}

func (s *Store) loadConfig() (bootconf.Config, error) {
	p := s.ConfigPath()
	data, err := s.fs.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Debug("no loader configuration, using defaults", "path", p)
		return bootconf.Config{}, nil
	}
	if err != nil {
		return bootconf.Config{}, &IOError{Op: "read", Path: p, Err: err}
	}
	cfg, err := bootconf.ParseConfig(string(data))
	if err != nil {
		return bootconf.Config{}, withFile(err, p)
	}
	return cfg, nil
}

func (s *Store) loadEntries(ctx context.Context) ([]bootconf.Entry, error) {
	dir := s.EntriesPath()
	dirents, err := s.fs.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &IOError{Op: "readdir", Path: dir, Err: err}
	}
	dirents = slices.Clone(dirents)
	slices.SortFunc(dirents, func(a, b fs.DirEntry) int {
		return strings.Compare(a.Name(), b.Name())
	})

	var entries []bootconf.Entry
	for _, de := range dirents {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if de.IsDir() {
			continue
		}
		id, ok := bootconf.IDFromFileName(de.Name())
		if !ok {
			continue
		}
		if err := bootconf.ValidateID(id); err != nil {
			s.log.Debug("skipping entry file with invalid id", "name", de.Name(), "error", err)
			continue
		}

		p := filepath.Join(dir, de.Name())
		data, err := s.fs.ReadFile(p)
		if err != nil {
			return nil, &IOError{Op: "read", Path: p, Err: err}
		}
		e, err := bootconf.ParseEntry(id, string(data))
		if err != nil {
			return nil, withFile(err, p)
		}
		s.log.Debug("loaded entry", "id", id, "path", p)
		entries = append(entries, e)
	}
	return entries, nil
}

// withFile records the file name in a parse error, or prefixes other errors with it.
func withFile(err error, path string) error {
	var pe *token.ParseError
	if errors.As(err, &pe) {
		pe.File = path
		return pe
	}
	return fmt.Errorf("%s: %w", path, err)
}

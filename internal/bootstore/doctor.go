package bootstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"sdbootconf/internal/bootconf"
)

// Doctor checks the in-memory configuration against itself and the root
// directory for problems the boot loader would trip over. With fix, orphaned
// temporary files left by interrupted writes are removed. Problems are
// returned as human-readable lines.
func (s *Store) Doctor(ctx context.Context, fix bool) ([]string, error) {
	var problems []string

	for _, dir := range []string{s.root, s.EntriesPath()} {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dirents, err := s.fs.ReadDir(dir)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, &IOError{Op: "readdir", Path: dir, Err: err}
		}
		rel := s.rel(dir)
		for _, de := range dirents {
			name := de.Name()
			if de.IsDir() {
				continue
			}
			if IsTempFile(name) {
				problems = append(problems, fmt.Sprintf("orphaned temp file: %s", filepath.Join(rel, name)))
				if fix {
					s.fs.Remove(filepath.Join(dir, name))
				}
				continue
			}
			if dir == s.EntriesPath() {
				id, ok := bootconf.IDFromFileName(name)
				if !ok {
					problems = append(problems, fmt.Sprintf("ignored file (not *.conf): %s", filepath.Join(rel, name)))
				} else if err := bootconf.ValidateID(id); err != nil {
					problems = append(problems, fmt.Sprintf("ignored file (invalid entry id): %s", filepath.Join(rel, name)))
				}
			}
		}
	}

	if d := s.config.Default; d != "" {
		if _, ok := s.DefaultEntry(); !ok {
			problems = append(problems, fmt.Sprintf("default %q matches no entry", d))
		}
	}

	for _, e := range s.entries {
		if e.Linux == "" && e.Efi == "" {
			problems = append(problems, fmt.Sprintf("entry %s: neither linux nor efi is set", e.ID))
		}
		if len(e.Initrd) > 0 && e.Linux == "" {
			problems = append(problems, fmt.Sprintf("entry %s: initrd without linux", e.ID))
		}
		if e.Title == "" {
			problems = append(problems, fmt.Sprintf("entry %s: no title, the menu will show the file name", e.ID))
		}
	}

	return problems, nil
}

// rel returns dir relative to the root, or dir itself if that fails.
func (s *Store) rel(dir string) string {
	r, err := filepath.Rel(s.root, dir)
	if err != nil {
		return dir
	}
	return r
}

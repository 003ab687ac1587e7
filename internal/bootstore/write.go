package bootstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"sdbootconf/internal/bootconf"
)

// WriteOptions controls WriteEntries and WriteAll.
type WriteOptions struct {
	// Prune removes *.conf files in entries/ whose id is not in the store.
	Prune bool
}

// FileError is one file that could not be written or removed.
type FileError struct {
	Path string
	Err  error
}

// WriteReport lists what a write did, file by file.
type WriteReport struct {
	Written []string
	Removed []string
	Failed  []FileError
}

// OK reports whether every file was handled.
func (r *WriteReport) OK() bool { return len(r.Failed) == 0 }

// Err joins the failures, or returns nil if there were none.
func (r *WriteReport) Err() error {
	if r.OK() {
		return nil
	}
	errs := make([]error, len(r.Failed))
	for i, f := range r.Failed {
		errs[i] = f.Err
	}
	return errors.Join(errs...)
}

func (r *WriteReport) fail(path string, err error) {
	r.Failed = append(r.Failed, FileError{Path: path, Err: err})
}

func (r *WriteReport) merge(o *WriteReport) {
	r.Written = append(r.Written, o.Written...)
	r.Removed = append(r.Removed, o.Removed...)
	r.Failed = append(r.Failed, o.Failed...)
}

// WriteConfig writes loader.conf.
func (s *Store) WriteConfig(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p := s.ConfigPath()
	if err := s.writeFile(p, s.config.String()); err != nil {
		return err
	}
	s.log.Debug("wrote loader configuration", "path", p)
	return nil
}

// WriteEntries writes every entry to entries/<id>.conf, creating the
// directory if needed. A failed file does not stop the others.
func (s *Store) WriteEntries(ctx context.Context, opts WriteOptions) *WriteReport {
	report := &WriteReport{}
	dir := s.EntriesPath()

	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		mkErr := &IOError{Op: "mkdir", Path: dir, Err: err}
		for _, e := range s.entries {
			report.fail(s.EntryPath(e.ID), mkErr)
		}
		return report
	}

	for _, e := range s.entries {
		p := s.EntryPath(e.ID)
		if err := ctx.Err(); err != nil {
			report.fail(p, err)
			continue
		}
		if err := s.writeFile(p, e.String()); err != nil {
			s.log.Debug("entry write failed", "id", e.ID, "error", err)
			report.fail(p, err)
			continue
		}
		s.log.Debug("wrote entry", "id", e.ID, "path", p)
		report.Written = append(report.Written, p)
	}

	if opts.Prune && ctx.Err() == nil {
		report.merge(s.prune())
	}
	return report
}

// WriteEntry writes the single entry with the given id, creating entries/
// if needed.
func (s *Store) WriteEntry(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("entry %q: %w", id, ErrNotFound)
	}
	dir := s.EntriesPath()
	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		return &IOError{Op: "mkdir", Path: dir, Err: err}
	}
	p := s.EntryPath(id)
	if err := s.writeFile(p, s.entries[i].String()); err != nil {
		return err
	}
	s.log.Debug("wrote entry", "id", id, "path", p)
	return nil
}

// RemoveEntryFile deletes entries/<id>.conf. The entry must already be gone
// from the store; a missing file is not an error.
func (s *Store) RemoveEntryFile(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := bootconf.ValidateID(id); err != nil {
		return err
	}
	if s.indexOf(id) >= 0 {
		return fmt.Errorf("entry %q is still in the store", id)
	}
	p := s.EntryPath(id)
	if err := s.fs.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &IOError{Op: "remove", Path: p, Err: err}
	}
	s.log.Debug("removed entry file", "id", id, "path", p)
	return nil
}

// WriteAll writes loader.conf and every entry. The returned error is
// report.Err(); the report is never nil.
func (s *Store) WriteAll(ctx context.Context, opts WriteOptions) (*WriteReport, error) {
	report := &WriteReport{}
	if err := s.WriteConfig(ctx); err != nil {
		report.fail(s.ConfigPath(), err)
	} else {
		report.Written = append(report.Written, s.ConfigPath())
	}
	report.merge(s.WriteEntries(ctx, opts))
	return report, report.Err()
}

// stale returns the paths of *.conf files in entries/ with no entry in the store.
func (s *Store) stale() ([]string, error) {
	dir := s.EntriesPath()
	dirents, err := s.fs.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &IOError{Op: "readdir", Path: dir, Err: err}
	}
	var paths []string
	for _, de := range dirents {
		if de.IsDir() {
			continue
		}
		id, ok := bootconf.IDFromFileName(de.Name())
		if !ok || s.indexOf(id) >= 0 {
			continue
		}
		paths = append(paths, filepath.Join(dir, de.Name()))
	}
	return paths, nil
}

func (s *Store) prune() *WriteReport {
	report := &WriteReport{}
	paths, err := s.stale()
	if err != nil {
		report.fail(s.EntriesPath(), err)
		return report
	}
	for _, p := range paths {
		if err := s.fs.Remove(p); err != nil {
			report.fail(p, &IOError{Op: "remove", Path: p, Err: err})
			continue
		}
		s.log.Debug("removed stale entry", "path", p)
		report.Removed = append(report.Removed, p)
	}
	return report
}

// tempPrefix and tempMarker make up the name of in-flight temporary files:
// .<name>.tmp.<uuid>
const (
	tempPrefix = "."
	tempMarker = ".tmp."
)

// IsTempFile reports whether name is an in-flight file left by
// WriteFileAtomic.
func IsTempFile(name string) bool {
	return strings.HasPrefix(name, tempPrefix) && strings.Contains(name, tempMarker)
}

func tempName(path string) string {
	return filepath.Join(filepath.Dir(path),
		fmt.Sprintf("%s%s%s%s", tempPrefix, filepath.Base(path), tempMarker, uuid.NewString()))
}

// WriteFileAtomic writes data to a temporary file next to path and renames
// it over path. A nil fsys means the local filesystem. The temporary file is
// removed on failure; Doctor reports any that survive a crash.
func WriteFileAtomic(fsys FS, path string, data []byte, perm fs.FileMode) error {
	if fsys == nil {
		fsys = osFS{}
	}
	tmp := tempName(path)
	if err := fsys.WriteFile(tmp, data, perm); err != nil {
		fsys.Remove(tmp) // best effort cleanup
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := fsys.Rename(tmp, path); err != nil {
		fsys.Remove(tmp) // best effort cleanup
		return &IOError{Op: "rename", Path: path, Err: err}
	}
	return nil
}

// writeFile writes text to path, atomically unless disabled.
func (s *Store) writeFile(path, text string) error {
	data := []byte(text)
	if !s.atomic {
		if err := s.fs.WriteFile(path, data, s.perm); err != nil {
			return &IOError{Op: "write", Path: path, Err: err}
		}
		return nil
	}
	return WriteFileAtomic(s.fs, path, data, s.perm)
}

package bootstore

import (
	"context"
	"errors"
	"io/fs"
)

// FileDiff pairs a file's current content with what the store would write.
type FileDiff struct {
	Path    string
	Exists  bool
	Current string
	Desired string
	// Remove is set for stale entry files that a pruning write would delete.
	Remove bool
}

// Changed reports whether writing would alter the file.
func (d FileDiff) Changed() bool {
	return d.Remove || !d.Exists || d.Current != d.Desired
}

// Diff compares every file the store would write (and, with opts.Prune,
// delete) against the disk. Files are listed in write order.
func (s *Store) Diff(ctx context.Context, opts WriteOptions) ([]FileDiff, error) {
	var diffs []FileDiff

	d, err := s.diffFile(s.ConfigPath(), s.config.String())
	if err != nil {
		return nil, err
	}
	diffs = append(diffs, d)

	for _, e := range s.entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d, err := s.diffFile(s.EntryPath(e.ID), e.String())
		if err != nil {
			return nil, err
		}
		diffs = append(diffs, d)
	}

	if opts.Prune {
		paths, err := s.stale()
		if err != nil {
			return nil, err
		}
		for _, p := range paths {
			data, err := s.fs.ReadFile(p)
			if err != nil {
				return nil, &IOError{Op: "read", Path: p, Err: err}
			}
			diffs = append(diffs, FileDiff{Path: p, Exists: true, Current: string(data), Remove: true})
		}
	}
	return diffs, nil
}

func (s *Store) diffFile(path, desired string) (FileDiff, error) {
	d := FileDiff{Path: path, Desired: desired}
	data, err := s.fs.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return d, nil
	case err != nil:
		return FileDiff{}, &IOError{Op: "read", Path: path, Err: err}
	}
	d.Exists = true
	d.Current = string(data)
	return d, nil
}

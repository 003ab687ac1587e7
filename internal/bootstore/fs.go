package bootstore

import (
	"io/fs"
	"os"
)

// FS is what a Store needs from the filesystem. Paths are absolute or
// relative to the process, never to the store root.
//
// Load and Doctor only read; writes go through WriteFile on a temp name
// followed by Rename unless atomic writes are off.
type FS interface {
	// ReadFile returns fs.ErrNotExist for a missing loader.conf or entry.
	ReadFile(path string) ([]byte, error)
	// ReadDir lists entries/. Order does not matter; Load sorts by name.
	ReadDir(path string) ([]fs.DirEntry, error)
	// Stat checks that the root exists and is a directory.
	Stat(path string) (fs.FileInfo, error)

	// MkdirAll creates entries/ on the first entry write.
	MkdirAll(path string, perm fs.FileMode) error
	WriteFile(path string, data []byte, perm fs.FileMode) error
	// Rename must replace newpath if it exists.
	Rename(oldpath, newpath string) error
	// Remove deletes entry files, temp files and pruned files.
	Remove(path string) error
}

// osFS is the FS backed by the os package.
type osFS struct{}

func (osFS) ReadFile(path string) ([]byte, error)       { return os.ReadFile(path) }
func (osFS) ReadDir(path string) ([]fs.DirEntry, error) { return os.ReadDir(path) }
func (osFS) Stat(path string) (fs.FileInfo, error)      { return os.Stat(path) }

func (osFS) MkdirAll(path string, perm fs.FileMode) error { return os.MkdirAll(path, perm) }

func (osFS) WriteFile(path string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(path, data, perm)
}

func (osFS) Rename(oldpath, newpath string) error { return os.Rename(oldpath, newpath) }
func (osFS) Remove(path string) error             { return os.Remove(path) }

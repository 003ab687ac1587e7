// Package yamlstore implements settings.Store backed by a flat YAML file.
//
// The file holds flat key-value pairs; dotted keys such as "write.prune"
// are literal strings, not nested paths. yaml.Marshal sorts map keys, so the
// output is deterministic.
package yamlstore

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"syscall"

	"gopkg.in/yaml.v3"

	"sdbootconf/internal/bootstore"
	"sdbootconf/internal/settings"
)

// YAMLStore implements settings.Store using a YAML file on disk.
// Values set with SetInMemory are overlaid on what is read from disk and are
// never written back.
type YAMLStore struct {
	path    string
	data    map[string]string
	overlay map[string]string
}

// New creates a YAMLStore that reads from and writes to path.
// A missing file means an empty store; the file is created on the first Set.
func New(path string) (*YAMLStore, error) {
	s := &YAMLStore{
		path:    path,
		data:    make(map[string]string),
		overlay: make(map[string]string),
	}
	if err := s.readFromDisk(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the settings file path.
func (s *YAMLStore) Path() string { return s.path }

// Get returns the value for key and whether it was found.
func (s *YAMLStore) Get(key string) (string, bool) {
	if v, ok := s.overlay[key]; ok {
		return v, true
	}
	v, ok := s.data[key]
	return v, ok
}

// Set writes key=value and persists to disk. It also drops any in-memory
// override of key.
func (s *YAMLStore) Set(key, value string) error {
	delete(s.overlay, key)
	return s.withLock(func() {
		s.data[key] = value
	})
}

// SetInMemory writes key=value without persisting.
func (s *YAMLStore) SetInMemory(key, value string) {
	s.overlay[key] = value
}

// Unset removes key and persists to disk.
func (s *YAMLStore) Unset(key string) error {
	delete(s.overlay, key)
	return s.withLock(func() {
		delete(s.data, key)
	})
}

// All returns a copy of all key-value pairs, overrides included.
func (s *YAMLStore) All() map[string]string {
	out := make(map[string]string, len(s.data)+len(s.overlay))
	maps.Copy(out, s.data)
	maps.Copy(out, s.overlay)
	return out
}

// Persisted returns a copy of only what is stored in the file.
func (s *YAMLStore) Persisted() map[string]string {
	return maps.Clone(s.data)
}

// lockPath returns the path to the lock file used for flock-based coordination.
func (s *YAMLStore) lockPath() string {
	return s.path + ".lock"
}

// withLock acquires an exclusive file lock, re-reads the file (picking up
// writes from other processes), calls fn to mutate s.data, then atomically
// writes s.data back.
func (s *YAMLStore) withLock(fn func()) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}

	f, err := os.OpenFile(s.lockPath(), os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("opening settings lock: %w", err)
	}
	defer f.Close()

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("acquiring settings lock: %w", err)
	}
	defer syscall.Flock(int(f.Fd()), syscall.LOCK_UN)

	if err := s.readFromDisk(); err != nil {
		return err
	}

	fn()

	raw, err := yaml.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	return bootstore.WriteFileAtomic(nil, s.path, raw, 0644)
}

// readFromDisk reloads s.data from the settings file.
func (s *YAMLStore) readFromDisk() error {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.data = make(map[string]string)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading settings file: %w", err)
	}

	fresh := make(map[string]string)
	if err := yaml.Unmarshal(raw, &fresh); err != nil {
		return fmt.Errorf("parsing settings file %s: %w", s.path, err)
	}
	if fresh == nil {
		fresh = make(map[string]string)
	}
	s.data = fresh
	return nil
}

// Compile-time check that YAMLStore implements settings.Store.
var _ settings.Store = (*YAMLStore)(nil)

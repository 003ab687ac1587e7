package yamlstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"sdbootconf/internal/bootstore"
)

func TestNewEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	s, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := s.All(); len(got) != 0 {
		t.Errorf("empty store All() = %v, want empty map", got)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("New should not create the file, stat err = %v", err)
	}
}

func TestNewLoadsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := "root: /boot/loader\nwrite.prune: \"true\"\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if v, ok := s.Get("root"); !ok || v != "/boot/loader" {
		t.Errorf("Get(root) = %q, %v; want %q, true", v, ok, "/boot/loader")
	}
	if v, ok := s.Get("write.prune"); !ok || v != "true" {
		t.Errorf("Get(write.prune) = %q, %v; want %q, true", v, ok, "true")
	}
}

func TestNewEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	s, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := s.All(); len(got) != 0 {
		t.Errorf("empty file All() = %v, want empty map", got)
	}
}

func TestSetUnset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Set("log.level", "info"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set("log.level", "debug"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, ok := s.Get("log.level"); !ok || v != "debug" {
		t.Errorf("Get(log.level) = %q, %v; want %q, true", v, ok, "debug")
	}

	if err := s.Unset("log.level"); err != nil {
		t.Fatalf("Unset: %v", err)
	}
	if _, ok := s.Get("log.level"); ok {
		t.Error("Get(log.level) ok = true after Unset, want false")
	}
	if err := s.Unset("nonexistent"); err != nil {
		t.Errorf("Unset(nonexistent) = %v, want nil", err)
	}
}

func TestInMemoryOverridesAreNotPersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}

	s.SetInMemory("root", "/from/env")
	if err := s.Set("write.prune", "true"); err != nil {
		t.Fatal(err)
	}

	if v, _ := s.Get("root"); v != "/from/env" {
		t.Errorf("Get(root) = %q, want override", v)
	}
	if got := s.All(); got["root"] != "/from/env" || got["write.prune"] != "true" {
		t.Errorf("All() = %v", got)
	}
	if _, ok := s.Persisted()["root"]; ok {
		t.Error("override leaked into Persisted()")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "/from/env") {
		t.Errorf("override written to disk: %q", raw)
	}

	// Set replaces the override.
	if err := s.Set("root", "/boot/loader"); err != nil {
		t.Fatal(err)
	}
	if v, _ := s.Get("root"); v != "/boot/loader" {
		t.Errorf("Get(root) = %q after Set, want /boot/loader", v)
	}
}

func TestAllReturnsCopy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set("root", "/efi/loader"); err != nil {
		t.Fatal(err)
	}

	all := s.All()
	all["root"] = "changed"
	if v, _ := s.Get("root"); v != "/efi/loader" {
		t.Errorf("mutating All() changed the store: %q", v)
	}
}

func TestAlphabeticalOrdering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set("write.prune", "true"); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("log.level", "info"); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "log.level: info\nwrite.prune: \"true\"\n"
	if string(raw) != want {
		t.Errorf("file contents = %q, want %q", string(raw), want)
	}
}

func TestSetCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "settings.yaml")
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set("key", "value"); err != nil {
		t.Fatalf("Set with nested path: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("settings file not created: %v", err)
	}
}

func TestConcurrentSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	const n = 20
	var wg sync.WaitGroup
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := New(path)
			if err != nil {
				errs[i] = err
				return
			}
			errs[i] = s.Set(fmt.Sprintf("key%d", i), fmt.Sprintf("val%d", i))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("goroutine %d: %v", i, err)
		}
	}

	s, err := New(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	for i := 0; i < n; i++ {
		key := fmt.Sprintf("key%d", i)
		if val, ok := s.Get(key); !ok || val != fmt.Sprintf("val%d", i) {
			t.Errorf("key %q = %q, %v after concurrent writes", key, val, ok)
		}
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if bootstore.IsTempFile(e.Name()) {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}

func TestNewInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("- a\n- b\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(path); err == nil {
		t.Error("New with a YAML list should return error")
	}
}

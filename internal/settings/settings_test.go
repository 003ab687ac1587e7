package settings

import (
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"sdbootconf/internal/logging"
)

// memStore is a simple in-memory Store for testing.
type memStore struct {
	data map[string]string
}

func newMemStore(kv map[string]string) *memStore {
	if kv == nil {
		kv = map[string]string{}
	}
	return &memStore{data: kv}
}

func (m *memStore) Get(key string) (string, bool) {
	v, ok := m.data[key]
	return v, ok
}

func (m *memStore) Set(key, value string) error {
	m.data[key] = value
	return nil
}

func (m *memStore) SetInMemory(key, value string) {
	m.data[key] = value
}

func (m *memStore) Unset(key string) error {
	delete(m.data, key)
	return nil
}

func (m *memStore) All() map[string]string {
	out := make(map[string]string, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out
}

func TestDefaultValues(t *testing.T) {
	defaults := DefaultValues()
	expected := map[string]string{
		"root":            "/efi/loader",
		"write.atomic":    "true",
		"write.prune":     "false",
		"write.file-mode": "0644",
		"log.level":       "warn",
		"templates.dir":   "",
	}

	if len(defaults) != len(expected) {
		t.Fatalf("DefaultValues() has %d entries, want %d", len(defaults), len(expected))
	}
	for k, want := range expected {
		got, ok := defaults[k]
		if !ok {
			t.Errorf("DefaultValues() missing key %q", k)
			continue
		}
		if got != want {
			t.Errorf("DefaultValues()[%q] = %q, want %q", k, got, want)
		}
	}
	for k := range defaults {
		if !Known(k) {
			t.Errorf("default key %q is not a known setting", k)
		}
	}
}

func TestApplyDefaults(t *testing.T) {
	s := newMemStore(map[string]string{"root": "/boot/loader"})
	ApplyDefaults(s)

	if v, _ := s.Get("root"); v != "/boot/loader" {
		t.Errorf("root = %q, want %q (should not be overwritten)", v, "/boot/loader")
	}
	if v, ok := s.Get("write.atomic"); !ok || v != "true" {
		t.Errorf("write.atomic = %q, %v; want %q, true", v, ok, "true")
	}
	if v, ok := s.Get("log.level"); !ok || v != "warn" {
		t.Errorf("log.level = %q, %v; want %q, true", v, ok, "warn")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv(EnvRoot, "/mnt/efi/loader")
	t.Setenv(EnvLogLevel, "debug")

	s := newMemStore(map[string]string{"root": "/efi/loader", "write.prune": "true"})
	ApplyEnvOverrides(s)

	if v, _ := s.Get("root"); v != "/mnt/efi/loader" {
		t.Errorf("root = %q, want %q", v, "/mnt/efi/loader")
	}
	if v, _ := s.Get("log.level"); v != "debug" {
		t.Errorf("log.level = %q, want %q", v, "debug")
	}
	if v, _ := s.Get("write.prune"); v != "true" {
		t.Errorf("write.prune = %q, want %q (should not change)", v, "true")
	}
}

func TestApplyEnvOverrides_NoOverride(t *testing.T) {
	t.Setenv(EnvRoot, "")
	t.Setenv(EnvLogLevel, "")

	s := newMemStore(map[string]string{"root": "/efi/loader"})
	ApplyEnvOverrides(s)

	if v, _ := s.Get("root"); v != "/efi/loader" {
		t.Errorf("root = %q, want %q (should not change)", v, "/efi/loader")
	}
	if _, ok := s.Get("log.level"); ok {
		t.Error("log.level should not be set")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		data    map[string]string
		wantErr []string
	}{
		{"defaults", DefaultValues(), nil},
		{"unknown keys ignored", map[string]string{"something.else": "x"}, nil},
		{"bad bool", map[string]string{"write.prune": "yes"}, []string{"write.prune"}},
		{"bad level", map[string]string{"log.level": "loud"}, []string{"log.level"}},
		{"bad mode", map[string]string{"write.file-mode": "0999"}, []string{"write.file-mode"}},
		{"empty root", map[string]string{"root": ""}, []string{"root"}},
		{
			"every error reported",
			map[string]string{"write.atomic": "no", "write.file-mode": "rw"},
			[]string{"write.atomic", "write.file-mode"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(newMemStore(tt.data))
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			for _, key := range tt.wantErr {
				if !strings.Contains(err.Error(), key) {
					t.Errorf("error %q does not mention %s", err, key)
				}
			}
		})
	}
}

func TestValidateValue_UnknownKey(t *testing.T) {
	err := ValidateValue("editor", "1")
	if err == nil || !strings.Contains(err.Error(), "unknown setting") {
		t.Errorf("ValidateValue(editor) = %v, want unknown setting error", err)
	}
}

func TestResolve(t *testing.T) {
	s := newMemStore(map[string]string{
		"root":            "/boot/loader",
		"write.atomic":    "false",
		"write.prune":     "true",
		"write.file-mode": "0600",
		"log.level":       "info",
	})
	r, err := Resolve(s)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := Resolved{
		Root:     "/boot/loader",
		Atomic:   false,
		Prune:    true,
		FileMode: fs.FileMode(0600),
		LogLevel: logging.LevelInfo,
	}
	if r != want {
		t.Errorf("Resolve() = %+v, want %+v", r, want)
	}
	if !r.WriteOptions().Prune {
		t.Error("WriteOptions().Prune = false, want true")
	}
	if n := len(r.Options(nil)); n != 3 {
		t.Errorf("Options() returned %d options, want 3", n)
	}
}

func TestResolve_Defaults(t *testing.T) {
	r, err := Resolve(newMemStore(nil))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if r.Root != DefaultRoot || !r.Atomic || r.Prune || r.FileMode != 0644 || r.LogLevel != logging.LevelWarn {
		t.Errorf("Resolve(empty) = %+v", r)
	}
}

func TestResolve_Invalid(t *testing.T) {
	if _, err := Resolve(newMemStore(map[string]string{"log.level": "loud"})); err == nil {
		t.Error("Resolve with invalid log.level should fail")
	}
}

func TestValidValues_ParseWhenResolved(t *testing.T) {
	for _, level := range validValues[KeyLogLevel] {
		if _, err := logging.ParseLevel(level); err != nil {
			t.Errorf("log.level %q passes validation but does not parse: %v", level, err)
		}
	}
	for _, mode := range []string{"0600", "0644", DefaultValues()[KeyFileMode]} {
		s := newMemStore(map[string]string{KeyFileMode: mode})
		if err := Validate(s); err != nil {
			t.Fatalf("Validate(%s): %v", mode, err)
		}
		if _, err := Resolve(s); err != nil {
			t.Errorf("Resolve(%s): %v", mode, err)
		}
	}
}

func TestDefaultPaths(t *testing.T) {
	t.Setenv(EnvSettings, "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")

	p, err := DefaultPaths("")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/xdg", "sdbootconf", "settings.yaml"); p.SettingsFile != want {
		t.Errorf("SettingsFile = %q, want %q", p.SettingsFile, want)
	}

	t.Setenv(EnvSettings, "/etc/sdbootconf.yaml")
	p, err = DefaultPaths("")
	if err != nil {
		t.Fatal(err)
	}
	if p.SettingsFile != "/etc/sdbootconf.yaml" {
		t.Errorf("env SettingsFile = %q", p.SettingsFile)
	}

	p, err = DefaultPaths("/tmp/explicit.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if p.SettingsFile != "/tmp/explicit.yaml" || p.SettingsDir != "/tmp" {
		t.Errorf("explicit paths = %+v", p)
	}
}

func TestTemplateDirs(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")

	dirs := TemplateDirs(newMemStore(map[string]string{"templates.dir": "/custom"}))
	want := []string{"/custom", "/xdg/sdbootconf/templates", "/etc/sdbootconf/templates"}
	if strings.Join(dirs, ":") != strings.Join(want, ":") {
		t.Errorf("TemplateDirs() = %v, want %v", dirs, want)
	}

	dirs = TemplateDirs(newMemStore(map[string]string{"templates.dir": ""}))
	if len(dirs) != 2 {
		t.Errorf("empty templates.dir should be skipped, got %v", dirs)
	}
}

package settings

import (
	"os"
	"path/filepath"
)

// AppName names the per-user and system directories.
const AppName = "sdbootconf"

// Paths captures resolved locations for settings.
type Paths struct {
	SettingsDir  string // $XDG_CONFIG_HOME/sdbootconf
	SettingsFile string // $XDG_CONFIG_HOME/sdbootconf/settings.yaml
}

// DefaultPaths resolves the settings locations. An explicit file (from a
// flag) wins, then SDBOOTCONF_SETTINGS, then the XDG config directory.
func DefaultPaths(explicit string) (Paths, error) {
	file := explicit
	if file == "" {
		file = os.Getenv(EnvSettings)
	}
	if file != "" {
		abs, err := filepath.Abs(file)
		if err != nil {
			return Paths{}, err
		}
		return Paths{SettingsDir: filepath.Dir(abs), SettingsFile: abs}, nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, err
	}
	dir = filepath.Join(dir, AppName)
	return Paths{SettingsDir: dir, SettingsFile: filepath.Join(dir, "settings.yaml")}, nil
}

// TemplateDirs returns the entry template search path, most specific first.
// An empty templates.dir is skipped.
func TemplateDirs(s Store) []string {
	var dirs []string
	if d, ok := s.Get(KeyTemplatesDir); ok && d != "" {
		dirs = append(dirs, d)
	}
	if cfg, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(cfg, AppName, "templates"))
	}
	return append(dirs, filepath.Join("/etc", AppName, "templates"))
}

package settings

import "os"

// Environment variable names for sdbootconf settings.
const (
	EnvRoot     = "SDBOOTCONF_ROOT"      // Override the boot configuration root
	EnvLogLevel = "SDBOOTCONF_LOG_LEVEL" // Override log.level
	EnvSettings = "SDBOOTCONF_SETTINGS"  // Path to the settings file
)

// ApplyEnvOverrides checks SDBOOTCONF_ROOT and SDBOOTCONF_LOG_LEVEL and
// overrides the corresponding settings in memory.
// These overrides are not persisted to the settings file.
func ApplyEnvOverrides(s Store) {
	if root := os.Getenv(EnvRoot); root != "" {
		s.SetInMemory(KeyRoot, root)
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		s.SetInMemory(KeyLogLevel, level)
	}
}

// Package settings holds the sdbootconf tool's own settings: where the boot
// configuration lives and how it is written. These are not boot loader
// directives.
package settings

// Store provides key-value access to tool settings.
// Keys are flat strings (dotted keys like "write.prune" are literal
// strings, not nested paths).
type Store interface {
	// Get returns the value for key and whether it was found.
	Get(key string) (string, bool)

	// Set writes key=value to the store and persists to disk.
	Set(key, value string) error

	// SetInMemory writes key=value to the in-memory store without persisting.
	// Use this for runtime overrides (defaults, env vars) that should not be
	// written back to the settings file.
	SetInMemory(key, value string)

	// Unset removes key from the store and persists to disk.
	Unset(key string) error

	// All returns a copy of all key-value pairs.
	All() map[string]string
}

package settings

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// validValues maps known keys to their allowed values.
// An empty slice means the key has a type-specific check below, or none.
var validValues = map[string][]string{
	KeyRoot:         {},
	KeyWriteAtomic:  {"true", "false"},
	KeyWritePrune:   {"true", "false"},
	KeyFileMode:     {},
	KeyLogLevel:     {"debug", "info", "warn", "error"},
	KeyTemplatesDir: {},
}

// Known reports whether key is a recognised setting.
func Known(key string) bool {
	_, ok := validValues[key]
	return ok
}

// Keys returns the recognised setting keys, sorted.
func Keys() []string {
	keys := make([]string, 0, len(validValues))
	for k := range validValues {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// ValidateValue checks one value for a known key.
func ValidateValue(key, val string) error {
	allowed, ok := validValues[key]
	if !ok {
		return fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(Keys(), ", "))
	}
	if len(allowed) > 0 {
		if !slices.Contains(allowed, val) {
			return fmt.Errorf("%s: invalid value %q (allowed: %s)",
				key, val, strings.Join(allowed, ", "))
		}
		return nil
	}

	switch key {
	case KeyRoot:
		if val == "" {
			return fmt.Errorf("%s: must not be empty", key)
		}
	case KeyFileMode:
		if _, err := parseFileMode(val); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

// Validate checks all values in s for known keys. It returns an error
// describing every invalid value found, or nil if all values are valid.
func Validate(s Store) error {
	all := s.All()
	var errs []string

	for _, key := range Keys() {
		val, ok := all[key]
		if !ok {
			continue
		}
		if err := ValidateValue(key, val); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("settings validation failed:\n  %s", strings.Join(errs, "\n  "))
}

func parseFileMode(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 8, 32)
	if err != nil || n == 0 || n > 0777 {
		return 0, fmt.Errorf("must be an octal permission like 0644, got %q", s)
	}
	return uint32(n), nil
}


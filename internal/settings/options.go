package settings

import (
	"fmt"
	"io/fs"
	"log/slog"

	"sdbootconf/internal/bootstore"
	"sdbootconf/internal/logging"
)

// Resolved is the typed form of a validated settings store.
type Resolved struct {
	Root     string
	Atomic   bool
	Prune    bool
	FileMode fs.FileMode
	LogLevel logging.Level
}

// Defaults returns the resolved default settings.
func Defaults() Resolved {
	return Resolved{
		Root:     DefaultRoot,
		Atomic:   true,
		FileMode: bootstore.DefaultFileMode,
		LogLevel: logging.LevelWarn,
	}
}

// Resolve validates s and converts it. Missing keys take their defaults.
func Resolve(s Store) (Resolved, error) {
	if err := Validate(s); err != nil {
		return Resolved{}, err
	}
	get := func(key string) string {
		if v, ok := s.Get(key); ok {
			return v
		}
		return DefaultValues()[key]
	}

	mode, err := parseFileMode(get(KeyFileMode))
	if err != nil {
		return Resolved{}, fmt.Errorf("%s: %w", KeyFileMode, err)
	}
	level, err := logging.ParseLevel(get(KeyLogLevel))
	if err != nil {
		return Resolved{}, fmt.Errorf("%s: %w", KeyLogLevel, err)
	}
	return Resolved{
		Root:     get(KeyRoot),
		Atomic:   get(KeyWriteAtomic) == "true",
		Prune:    get(KeyWritePrune) == "true",
		FileMode: fs.FileMode(mode),
		LogLevel: level,
	}, nil
}

// Options returns the store options these settings ask for.
func (r Resolved) Options(log *slog.Logger) []bootstore.Option {
	return []bootstore.Option{
		bootstore.WithAtomicWrites(r.Atomic),
		bootstore.WithFileMode(r.FileMode),
		bootstore.WithLogger(log),
	}
}

// WriteOptions returns the write options these settings ask for.
func (r Resolved) WriteOptions() bootstore.WriteOptions {
	return bootstore.WriteOptions{Prune: r.Prune}
}

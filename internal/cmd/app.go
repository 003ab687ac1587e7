// Package cmd implements the sdbootconf command-line interface.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"sdbootconf/internal/bootstore"
	"sdbootconf/internal/settings"
	"sdbootconf/internal/template"
)

// App holds application state shared across commands.
type App struct {
	Root         string
	StoreOpts    []bootstore.Option
	WriteOpts    bootstore.WriteOptions
	Settings     settings.Store
	SettingsErr  error // invalid settings; reported when the boot config is opened
	TemplatePath template.SearchPath
	Log          *slog.Logger
	Out          io.Writer
	Err          io.Writer
	JSON         bool // output in JSON format

	store *bootstore.Store
}

// Boot loads the boot configuration on first use and returns it.
func (a *App) Boot(ctx context.Context) (*bootstore.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	if a.SettingsErr != nil {
		return nil, fmt.Errorf("%w\nFix it with 'sdbootconf settings set' or 'sdbootconf settings unset'", a.SettingsErr)
	}
	s, err := bootstore.Load(ctx, a.Root, a.StoreOpts...)
	if err != nil {
		return nil, err
	}
	a.store = s
	return s, nil
}

// reportFailures prints each failed file of a write to Err.
func (a *App) reportFailures(r *bootstore.WriteReport) {
	for _, f := range r.Failed {
		fmt.Fprintf(a.Err, "%s %v\n", a.WarnColor("failed:"), f.Err)
	}
}

// SuccessColor returns the string wrapped in green ANSI codes if stdout is a terminal,
// otherwise returns the string unchanged.
func (a *App) SuccessColor(s string) string {
	if f, ok := a.Out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "\033[32m" + s + "\033[0m"
	}
	return s
}

// WarnColor returns the string wrapped in orange ANSI codes if stdout is a terminal,
// otherwise returns the string unchanged.
func (a *App) WarnColor(s string) string {
	if f, ok := a.Out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "\033[38;5;214m" + s + "\033[0m"
	}
	return s
}

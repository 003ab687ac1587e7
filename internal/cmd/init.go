package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sdbootconf/internal/bootconf"
	"sdbootconf/internal/bootstore"
	"sdbootconf/internal/settings"
)

// newInitCmd creates the init command.
// init doesn't use App.Boot since the root may not exist yet.
func newInitCmd(provider *AppProvider) *cobra.Command {
	var (
		force    bool
		timeout  uint64
		editor   bool
		saveRoot bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a fresh boot loader directory",
		Long: `Create the boot loader directory, an empty entries/ directory and a
loader.conf with the given timeout and editor setting.

Fails if loader.conf already exists, unless --force is given. Existing
entries are left alone.

Examples:
  sdbootconf --root /boot/loader init --timeout 5 --save-root`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}
			if app.SettingsErr != nil {
				return app.SettingsErr
			}

			probe := bootstore.New(app.Root)
			if _, err := os.Stat(probe.ConfigPath()); err == nil {
				if !force {
					return errors.New("loader.conf already exists (use --force to overwrite)")
				}
			} else if !os.IsNotExist(err) {
				return fmt.Errorf("checking loader.conf: %w", err)
			}

			cb := bootconf.NewConfigBuilder()
			if cmd.Flags().Changed("timeout") {
				cb.Timeout(timeout)
			}
			if cmd.Flags().Changed("editor") {
				cb.Editor(editor)
			}
			cfg, err := cb.Build()
			if err != nil {
				return err
			}
			s, err := bootstore.NewStoreBuilder(app.Root, app.StoreOpts...).Config(cfg).Build()
			if err != nil {
				return err
			}

			if err := os.MkdirAll(s.EntriesPath(), 0755); err != nil {
				return fmt.Errorf("creating entries directory: %w", err)
			}
			if err := s.WriteConfig(cmd.Context()); err != nil {
				return err
			}
			if saveRoot {
				if err := app.Settings.Set(settings.KeyRoot, app.Root); err != nil {
					return fmt.Errorf("saving root: %w", err)
				}
			}

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(map[string]string{"root": app.Root, "status": "initialized"})
			}
			fmt.Fprintf(app.Out, "Initialized boot loader directory at %s\n", app.Root)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing loader.conf")
	cmd.Flags().Uint64Var(&timeout, "timeout", 0, "Menu timeout in seconds")
	cmd.Flags().BoolVar(&editor, "editor", false, "Allow editing the kernel command line at boot")
	cmd.Flags().BoolVar(&saveRoot, "save-root", false, "Save --root to the settings file")

	return cmd
}

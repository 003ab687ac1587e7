package cmd

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"sdbootconf/internal/settings"
)

// newSettingsCmd creates the settings command with subcommands.
func newSettingsCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage sdbootconf settings",
		Long: `Manage sdbootconf's own settings, stored in settings.yaml.

These are not boot loader directives; use 'sdbootconf config' for loader.conf.

Settings:
  root             Boot loader directory holding loader.conf (default /efi/loader)
  write.atomic     Write through a temp file and rename (true/false)
  write.prune      Delete stale entry files when writing all entries (true/false)
  write.file-mode  Permission bits of written files, octal (default 0644)
  log.level        debug, info, warn or error
  templates.dir    Extra directory searched first for entry templates

Environment overrides: SDBOOTCONF_ROOT, SDBOOTCONF_LOG_LEVEL.

Subcommands:
  list      List all settings
  get       Get a setting
  set       Set a setting
  unset     Remove a setting, restoring its default
  validate  Check every setting`,
	}

	cmd.AddCommand(newSettingsListCmd(provider))
	cmd.AddCommand(newSettingsGetCmd(provider))
	cmd.AddCommand(newSettingsSetCmd(provider))
	cmd.AddCommand(newSettingsUnsetCmd(provider))
	cmd.AddCommand(newSettingsValidateCmd(provider))

	return cmd
}

func newSettingsListCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			all := app.Settings.All()
			if app.JSON {
				return json.NewEncoder(app.Out).Encode(all)
			}

			keys := make([]string, 0, len(all))
			for k := range all {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(app.Out, "%s: %s\n", k, all[k])
			}
			return nil
		},
	}
}

func newSettingsGetCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			key := args[0]
			value, ok := app.Settings.Get(key)
			if app.JSON {
				return json.NewEncoder(app.Out).Encode(map[string]any{
					"key":   key,
					"value": value,
					"set":   ok,
				})
			}
			if ok {
				fmt.Fprintln(app.Out, value)
			} else {
				fmt.Fprintf(app.Out, "%s (not set)\n", key)
			}
			return nil
		},
	}
}

func newSettingsSetCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a setting",
		Long: `Set a setting and persist it to settings.yaml.

Examples:
  sdbootconf settings set root /boot/loader
  sdbootconf settings set write.prune true
  sdbootconf settings set write.file-mode 0600`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			key, value := args[0], args[1]
			if err := settings.ValidateValue(key, value); err != nil {
				return err
			}
			if err := app.Settings.Set(key, value); err != nil {
				return fmt.Errorf("saving setting: %w", err)
			}

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(map[string]string{"key": key, "value": value})
			}
			fmt.Fprintf(app.Out, "%s %s = %s\n", app.SuccessColor("Set"), key, value)
			return nil
		},
	}
}

func newSettingsUnsetCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a setting, restoring its default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			key := args[0]
			if err := app.Settings.Unset(key); err != nil {
				return fmt.Errorf("saving setting: %w", err)
			}
			settings.ApplyDefaults(app.Settings)

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(map[string]string{"key": key, "status": "unset"})
			}
			fmt.Fprintf(app.Out, "Unset %s\n", key)
			return nil
		},
	}
}

func newSettingsValidateCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check every setting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			verr := settings.Validate(app.Settings)
			if app.JSON {
				res := map[string]any{"valid": verr == nil}
				if verr != nil {
					res["error"] = verr.Error()
				}
				if err := json.NewEncoder(app.Out).Encode(res); err != nil {
					return err
				}
				return verr
			}
			if verr != nil {
				return verr
			}
			fmt.Fprintln(app.Out, "Settings are valid.")
			return nil
		},
	}
}

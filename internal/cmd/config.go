package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"sdbootconf/internal/bootconf"
	"sdbootconf/internal/token"
)

// newConfigCmd creates the config command with subcommands.
func newConfigCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage loader.conf directives",
		Long: `Manage the global boot loader directives in loader.conf.

Known directives (written in this order):
  default, timeout, console-mode, editor, auto-entries, auto-firmware,
  beep, reboot-for-bitlocker, secure-boot-enroll

Other directives are kept as-is and written after the known ones.

Subcommands:
  list   List all directives
  get    Get a directive value
  set    Set a directive
  unset  Remove a directive`,
	}

	cmd.AddCommand(newConfigListCmd(provider))
	cmd.AddCommand(newConfigGetCmd(provider))
	cmd.AddCommand(newConfigSetCmd(provider))
	cmd.AddCommand(newConfigUnsetCmd(provider))

	return cmd
}

func newConfigListCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all loader.conf directives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}
			s, err := app.Boot(cmd.Context())
			if err != nil {
				return err
			}

			snap := s.Snapshot()
			if app.JSON {
				return json.NewEncoder(app.Out).Encode(snap.Loader)
			}
			if len(snap.Loader) == 0 {
				fmt.Fprintln(app.Out, "No directives set")
				return nil
			}
			for _, d := range snap.Loader {
				fmt.Fprintf(app.Out, "%s %s\n", d.Key, d.Value)
			}
			return nil
		},
	}
}

func newConfigGetCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "get <directive>",
		Short: "Get a loader.conf directive",
		Long: `Print the value of a loader.conf directive, or "<directive> (not set)".

Examples:
  sdbootconf config get timeout
  sdbootconf config get default`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}
			s, err := app.Boot(cmd.Context())
			if err != nil {
				return err
			}

			key := args[0]
			value, ok := s.Config().Get(key)
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

func newConfigSetCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "set <directive> <value>",
		Short: "Set a loader.conf directive",
		Long: `Set a loader.conf directive and rewrite loader.conf.

Values are checked against the directive's type: timeout takes a
non-negative number, flags take yes/no/1/0/on/off/true/false,
console-mode and secure-boot-enroll take one of their allowed values.

Examples:
  sdbootconf config set timeout 5
  sdbootconf config set editor no
  sdbootconf config set console-mode max`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}
			s, err := app.Boot(cmd.Context())
			if err != nil {
				return err
			}

			key, value := args[0], args[1]
			if err := s.UpdateConfig(func(c *bootconf.Config) error {
				return c.SetString(key, value)
			}); err != nil {
				return err
			}
			if err := s.WriteConfig(cmd.Context()); err != nil {
				return err
			}

			stored, _ := s.Config().Get(key)
			if app.JSON {
				return json.NewEncoder(app.Out).Encode(map[string]string{"key": key, "value": stored})
			}
			fmt.Fprintf(app.Out, "%s %s = %s\n", app.SuccessColor("Set"), key, stored)
			if _, known := token.Loader.Lookup(key); !known {
				fmt.Fprintf(app.Err, "%s %q is not a directive sdbootconf knows; it was stored as-is\n",
					app.WarnColor("warning:"), key)
			}
			return nil
		},
	}
}

func newConfigUnsetCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "unset <directive>",
		Short: "Remove a loader.conf directive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}
			s, err := app.Boot(cmd.Context())
			if err != nil {
				return err
			}

			key := args[0]
			var removed bool
			_ = s.UpdateConfig(func(c *bootconf.Config) error {
				removed = c.Unset(key)
				return nil
			})
			if removed {
				if err := s.WriteConfig(cmd.Context()); err != nil {
					return err
				}
			}

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(map[string]any{"key": key, "removed": removed})
			}
			if removed {
				fmt.Fprintf(app.Out, "Unset %s\n", key)
			} else {
				fmt.Fprintf(app.Out, "%s (not set)\n", key)
			}
			return nil
		},
	}
}

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"sdbootconf/internal/bootconf"
)

func newDefaultCmd(provider *AppProvider) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "default [pattern]",
		Short: "Show or set the default entry",
		Long: `Without an argument, print the id of the entry the boot loader selects
by default. With one, set loader.conf's default directive. The pattern is
an entry id or a glob such as "arch*"; it must match an entry unless
--force is given.

Examples:
  sdbootconf default
  sdbootconf default arch
  sdbootconf default 'arch-*'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}
			s, err := app.Boot(cmd.Context())
			if err != nil {
				return err
			}

			if len(args) == 0 {
				e, ok := s.DefaultEntry()
				if app.JSON {
					return json.NewEncoder(app.Out).Encode(map[string]any{
						"pattern": s.Config().Default,
						"entry":   e.ID,
						"matched": ok,
					})
				}
				if !ok {
					return fmt.Errorf("no default entry (default %q)", s.Config().Default)
				}
				fmt.Fprintln(app.Out, e.ID)
				return nil
			}

			pattern := args[0]
			previous := s.Config()
			if err := s.UpdateConfig(func(c *bootconf.Config) error {
				return c.SetString("default", pattern)
			}); err != nil {
				return err
			}
			e, ok := s.DefaultEntry()
			if !ok && !force {
				s.SetConfig(previous)
				return fmt.Errorf("default %q matches no entry (use --force to set it anyway)", pattern)
			}
			if err := s.WriteConfig(cmd.Context()); err != nil {
				return err
			}

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(map[string]any{
					"pattern": pattern,
					"entry":   e.ID,
					"matched": ok,
				})
			}
			if ok {
				fmt.Fprintf(app.Out, "%s default %s (selects %s)\n", app.SuccessColor("Set"), pattern, e.ID)
			} else {
				fmt.Fprintf(app.Out, "%s default %s\n", app.SuccessColor("Set"), pattern)
				fmt.Fprintf(app.Err, "%s %q matches no entry\n", app.WarnColor("warning:"), pattern)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Set the default even if it matches no entry")

	return cmd
}

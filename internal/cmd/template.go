package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sdbootconf/internal/template"
)

// newTemplateCmd creates the template command with subcommands.
func newTemplateCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "List and preview entry templates",
		Long: `Entry templates are TOML, JSON or YAML files named <name>.toml,
<name>.json, <name>.yaml or <name>.yml. They are searched for in the
templates.dir setting, then $XDG_CONFIG_HOME/sdbootconf/templates, then
/etc/sdbootconf/templates. The first match wins.

Use a template with 'sdbootconf entry add <id> --template <name>'.

Subcommands:
  list    List available templates
  show    Show a template's variables
  render  Print the entry a template would produce`,
	}

	cmd.AddCommand(newTemplateListCmd(provider))
	cmd.AddCommand(newTemplateShowCmd(provider))
	cmd.AddCommand(newTemplateRenderCmd(provider))

	return cmd
}

func newTemplateListCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			infos, err := template.List(app.TemplatePath)
			if err != nil {
				return err
			}
			if app.JSON {
				if infos == nil {
					infos = []template.Info{}
				}
				return json.NewEncoder(app.Out).Encode(infos)
			}
			if len(infos) == 0 {
				fmt.Fprintf(app.Out, "No templates found in: %s\n", strings.Join(app.TemplatePath, ", "))
				return nil
			}

			tw := tabwriter.NewWriter(app.Out, 0, 4, 2, ' ', 0)
			for _, info := range infos {
				fmt.Fprintf(tw, "%s\t%s\t%d vars\t%s\n", info.Name, info.Description, info.Vars, info.SourcePath)
			}
			return tw.Flush()
		},
	}
}

func newTemplateShowCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show a template's variables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			t, err := template.Load(args[0], app.TemplatePath)
			if err != nil {
				return err
			}
			if app.JSON {
				return json.NewEncoder(app.Out).Encode(t)
			}

			fmt.Fprintf(app.Out, "%s", args[0])
			if t.Description != "" {
				fmt.Fprintf(app.Out, ": %s", t.Description)
			}
			fmt.Fprintln(app.Out)
			if len(t.Vars) == 0 {
				fmt.Fprintln(app.Out, "  (no variables)")
				return nil
			}

			names := make([]string, 0, len(t.Vars))
			for name := range t.Vars {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				v := t.Vars[name]
				var notes []string
				if v.Required {
					notes = append(notes, "required")
				}
				if v.Default != "" {
					notes = append(notes, "default "+v.Default)
				}
				if len(v.Enum) > 0 {
					notes = append(notes, "one of "+strings.Join(v.Enum, ", "))
				}
				fmt.Fprintf(app.Out, "  %s", name)
				if len(notes) > 0 {
					fmt.Fprintf(app.Out, " (%s)", strings.Join(notes, "; "))
				}
				if v.Description != "" {
					fmt.Fprintf(app.Out, ": %s", v.Description)
				}
				fmt.Fprintln(app.Out)
			}
			return nil
		},
	}
}

func newTemplateRenderCmd(provider *AppProvider) *cobra.Command {
	var (
		vars []string
		id   string
	)

	cmd := &cobra.Command{
		Use:   "render <name>",
		Short: "Print the entry a template would produce",
		Long: `Render a template with the given variables and print the entry file
it would produce, without writing anything.

Examples:
  sdbootconf template render arch --var kernel=linux-lts`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			values, err := parseKeyValues(vars, "--var")
			if err != nil {
				return err
			}
			t, err := template.Load(args[0], app.TemplatePath)
			if err != nil {
				return err
			}
			if id == "" {
				id = args[0]
			}
			e, err := t.Instantiate(id, values)
			if err != nil {
				return err
			}
			fmt.Fprint(app.Out, e.String())
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&vars, "var", nil, "Template variable as name=value (repeatable)")
	cmd.Flags().StringVar(&id, "id", "", "Entry id to render for (default the template name)")

	return cmd
}

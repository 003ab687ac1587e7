package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"sdbootconf/internal/bootstore"
)

// Output formats accepted by --format.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
	formatTOML = "toml"
)

func newShowCmd(provider *AppProvider) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the whole boot configuration",
		Long: `Show loader.conf and every entry as they would be written.

Formats:
  text  file contents, one block per file (default)
  json  structured snapshot (same as --json)
  yaml  structured snapshot
  toml  structured snapshot

Examples:
  sdbootconf show
  sdbootconf show --format yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}
			s, err := app.Boot(cmd.Context())
			if err != nil {
				return err
			}

			if app.JSON {
				format = formatJSON
			}
			switch format {
			case formatText:
				return writeText(app, s)
			case formatJSON, formatYAML, formatTOML:
				return encode(app.Out, format, s.Snapshot())
			default:
				return fmt.Errorf("unknown format %q (valid: text, json, yaml, toml)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format: text, json, yaml or toml")

	return cmd
}

func writeText(app *App, s *bootstore.Store) error {
	fmt.Fprintf(app.Out, "# %s\n", s.ConfigPath())
	fmt.Fprint(app.Out, s.Config().String())

	def, hasDefault := s.DefaultEntry()
	for _, e := range s.Entries() {
		marker := ""
		if hasDefault && e.ID == def.ID {
			marker = " " + app.SuccessColor("(default)")
		}
		fmt.Fprintf(app.Out, "\n# %s%s\n", s.EntryPath(e.ID), marker)
		fmt.Fprint(app.Out, e.String())
	}
	return nil
}

// encode writes v to w as JSON, YAML or TOML.
func encode(w io.Writer, format string, v any) error {
	switch format {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case formatTOML:
		return toml.NewEncoder(w).Encode(v)
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

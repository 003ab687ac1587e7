package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"sdbootconf/internal/bootstore"
)

// newImportCmd creates the import command.
func newImportCmd(provider *AppProvider) *cobra.Command {
	var (
		format string
		dryRun bool
		keep   bool
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Write the boot configuration from a snapshot file",
		Long: `Replace loader.conf and every entry with the contents of a snapshot, as
written by 'sdbootconf show --format json|yaml|toml'. The format is taken
from the file extension unless --format is given; "-" reads JSON from stdin.

Entry files not in the snapshot are deleted unless --keep is given. The
snapshot's root is ignored; files are written under --root.

Examples:
  sdbootconf show --format yaml > boot.yaml
  sdbootconf --root /mnt/efi/loader import boot.yaml --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}
			if app.SettingsErr != nil {
				return app.SettingsErr
			}

			snap, err := readSnapshot(cmd.InOrStdin(), args[0], format)
			if err != nil {
				return err
			}
			s, err := snap.Restore(app.Root, app.StoreOpts...)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			opts := bootstore.WriteOptions{Prune: !keep}

			if dryRun {
				diffs, err := s.Diff(cmd.Context(), opts)
				if err != nil {
					return err
				}
				for _, d := range diffs {
					if !d.Changed() {
						continue
					}
					text, err := unifiedDiff(d)
					if err != nil {
						return err
					}
					fmt.Fprint(app.Out, text)
				}
				return nil
			}

			report, writeErr := s.WriteAll(cmd.Context(), opts)
			app.reportFailures(report)
			if app.JSON {
				if err := json.NewEncoder(app.Out).Encode(map[string]any{
					"root":    s.Root(),
					"entries": s.Len(),
					"written": report.Written,
					"removed": report.Removed,
				}); err != nil {
					return err
				}
				return writeErr
			}
			fmt.Fprintf(app.Out, "%s %d entries to %s", app.SuccessColor("Imported"), s.Len(), s.Root())
			if len(report.Removed) > 0 {
				fmt.Fprintf(app.Out, ", removed %d", len(report.Removed))
			}
			fmt.Fprintln(app.Out)
			return writeErr
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Snapshot format: json, yaml or toml (default from extension)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print what would change instead of writing")
	cmd.Flags().BoolVar(&keep, "keep", false, "Keep entry files that are not in the snapshot")

	return cmd
}

// readSnapshot decodes a snapshot file, or stdin for "-". An empty format
// is guessed from the extension.
func readSnapshot(stdin io.Reader, path, format string) (bootstore.Snapshot, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
		if format == "" {
			format = formatJSON
		}
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return bootstore.Snapshot{}, fmt.Errorf("reading snapshot: %w", err)
	}

	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			format = formatYAML
		case ".toml":
			format = formatTOML
		default:
			format = formatJSON
		}
	}

	var snap bootstore.Snapshot
	switch format {
	case formatJSON:
		err = json.Unmarshal(data, &snap)
	case formatYAML:
		err = yaml.Unmarshal(data, &snap)
	case formatTOML:
		err = toml.Unmarshal(data, &snap)
	default:
		return bootstore.Snapshot{}, fmt.Errorf("unknown format %q (valid: json, yaml, toml)", format)
	}
	if err != nil {
		return bootstore.Snapshot{}, fmt.Errorf("parsing %s snapshot %s: %w", format, path, err)
	}
	return snap, nil
}

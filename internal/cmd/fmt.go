package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"sdbootconf/internal/bootstore"
)

// errNotCanonical is returned by "fmt --check" when a file would change.
var errNotCanonical = errors.New("boot configuration is not in canonical form")

// FmtResult is the JSON output of the fmt command.
type FmtResult struct {
	Changed []string `json:"changed"`
	Written []string `json:"written,omitempty"`
	Removed []string `json:"removed,omitempty"`
	Failed  []string `json:"failed,omitempty"`
}

func newFmtCmd(provider *AppProvider) *cobra.Command {
	var (
		check    bool
		showDiff bool
		prune    bool
	)

	cmd := &cobra.Command{
		Use:   "fmt",
		Short: "Rewrite every file in canonical form",
		Long: `Rewrite loader.conf and every entry in canonical form.

--diff prints a unified diff of what would change and writes nothing.
--check lists the files that would change and fails if there are any.
--prune also deletes *.conf files in entries/ that hold no loadable entry;
it defaults to the write.prune setting.

Examples:
  sdbootconf fmt --diff
  sdbootconf fmt --check
  sdbootconf fmt`,
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

			opts := app.WriteOpts
			if cmd.Flags().Changed("prune") {
				opts.Prune = prune
			}

			diffs, err := s.Diff(cmd.Context(), opts)
			if err != nil {
				return err
			}
			var changed []bootstore.FileDiff
			for _, d := range diffs {
				if d.Changed() {
					changed = append(changed, d)
				}
			}

			if showDiff || check {
				if showDiff && !app.JSON {
					for _, d := range changed {
						text, err := unifiedDiff(d)
						if err != nil {
							return err
						}
						fmt.Fprint(app.Out, text)
					}
				}
				if app.JSON {
					if err := json.NewEncoder(app.Out).Encode(FmtResult{Changed: diffPaths(changed)}); err != nil {
						return err
					}
				} else if check {
					for _, d := range changed {
						fmt.Fprintln(app.Out, d.Path)
					}
				}
				if check && len(changed) > 0 {
					return fmt.Errorf("%w: %d files differ", errNotCanonical, len(changed))
				}
				return nil
			}

			if len(changed) == 0 {
				if app.JSON {
					return json.NewEncoder(app.Out).Encode(FmtResult{Changed: []string{}})
				}
				fmt.Fprintln(app.Out, "Already canonical")
				return nil
			}

			report, writeErr := s.WriteAll(cmd.Context(), opts)
			if app.JSON {
				res := FmtResult{Changed: diffPaths(changed), Written: report.Written, Removed: report.Removed}
				for _, f := range report.Failed {
					res.Failed = append(res.Failed, f.Path)
				}
				if err := json.NewEncoder(app.Out).Encode(res); err != nil {
					return err
				}
				return writeErr
			}
			app.reportFailures(report)
			fmt.Fprintf(app.Out, "%s %d files", app.SuccessColor("Wrote"), len(report.Written))
			if len(report.Removed) > 0 {
				fmt.Fprintf(app.Out, ", removed %d", len(report.Removed))
			}
			fmt.Fprintln(app.Out)
			if writeErr != nil {
				return fmt.Errorf("%d files failed", len(report.Failed))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Fail if any file is not in canonical form")
	cmd.Flags().BoolVar(&showDiff, "diff", false, "Print what would change instead of writing")
	cmd.Flags().BoolVar(&prune, "prune", false, "Delete entry files that hold no loadable entry")

	return cmd
}

// unifiedDiff renders d as a unified diff against /dev/null for created or
// removed files.
func unifiedDiff(d bootstore.FileDiff) (string, error) {
	ud := difflib.UnifiedDiff{
		A:        splitLines(d.Current),
		B:        splitLines(d.Desired),
		FromFile: d.Path,
		ToFile:   d.Path,
		Context:  3,
	}
	if !d.Exists {
		ud.A = nil
		ud.FromFile = "/dev/null"
	}
	if d.Remove {
		ud.B = nil
		ud.ToFile = "/dev/null"
	}
	return difflib.GetUnifiedDiffString(ud)
}

// splitLines is difflib.SplitLines without the trailing empty line it adds
// to newline-terminated text.
func splitLines(s string) []string {
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func diffPaths(ds []bootstore.FileDiff) []string {
	paths := make([]string, 0, len(ds))
	for _, d := range ds {
		paths = append(paths, d.Path)
	}
	return paths
}

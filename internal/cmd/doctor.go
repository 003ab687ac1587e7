package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// DoctorResult represents the output of the doctor command.
type DoctorResult struct {
	Problems []string `json:"problems"`
	Fixed    bool     `json:"fixed"`
}

// newDoctorCmd creates the doctor command.
func newDoctorCmd(provider *AppProvider) *cobra.Command {
	var fix bool

	cmd := &cobra.Command{
		Use:     "doctor",
		Aliases: []string{"check"},
		Short:   "Check the boot configuration for problems",
		Long: `Check the boot configuration for problems the boot loader would trip over.

Checks for:
- Orphaned temporary files left by an interrupted write
- Files in entries/ that are not loaded (not *.conf, or an invalid id)
- A default directive that matches no entry
- Entries with neither linux nor efi
- Entries with initrd but no linux
- Entries without a title

With --fix, orphaned temporary files are removed. Other problems are
only reported.`,
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

			problems, err := s.Doctor(cmd.Context(), fix)
			if err != nil {
				return fmt.Errorf("doctor failed: %w", err)
			}

			if app.JSON {
				if problems == nil {
					problems = []string{}
				}
				return json.NewEncoder(app.Out).Encode(DoctorResult{Problems: problems, Fixed: fix})
			}

			if len(problems) == 0 {
				fmt.Fprintln(app.Out, "No problems found.")
				return nil
			}

			fmt.Fprintf(app.Out, "Found %d problems:\n", len(problems))
			for _, problem := range problems {
				fmt.Fprintf(app.Out, "  - %s\n", problem)
			}
			if fix {
				fmt.Fprintln(app.Out, "\nOrphaned temp files were removed.")
			} else {
				fmt.Fprintln(app.Out, "\nRun 'sdbootconf doctor --fix' to remove orphaned temp files.")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "Remove orphaned temp files (default is check only)")

	return cmd
}

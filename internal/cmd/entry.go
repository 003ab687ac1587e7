package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sdbootconf/internal/bootconf"
	"sdbootconf/internal/bootstore"
	"sdbootconf/internal/template"
)

// newEntryCmd creates the entry command with subcommands.
func newEntryCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entry",
		Short: "Manage boot loader entries",
		Long: `Manage boot loader entries, one file per entry under entries/.

An entry's id is its file name without .conf.

Subcommands:
  list    List entries
  show    Show one entry
  add     Create an entry
  remove  Delete an entry
  set     Set a directive on an entry
  unset   Remove a directive from an entry`,
	}

	cmd.AddCommand(newEntryListCmd(provider))
	cmd.AddCommand(newEntryShowCmd(provider))
	cmd.AddCommand(newEntryAddCmd(provider))
	cmd.AddCommand(newEntryRemoveCmd(provider))
	cmd.AddCommand(newEntrySetCmd(provider))
	cmd.AddCommand(newEntryUnsetCmd(provider))

	return cmd
}

func newEntryListCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List entries",
		Long: `List entries in file name order. The entry selected by the loader's
default directive is marked with *.`,
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

			snap := s.Snapshot()
			if app.JSON {
				return json.NewEncoder(app.Out).Encode(snap.Entries)
			}
			if len(snap.Entries) == 0 {
				fmt.Fprintln(app.Out, "No entries")
				return nil
			}

			tw := tabwriter.NewWriter(app.Out, 0, 4, 2, ' ', 0)
			for _, e := range s.Entries() {
				marker := " "
				if e.ID == snap.DefaultEntry {
					marker = "*"
				}
				kind := e.Linux
				if kind == "" {
					kind = e.Efi
				}
				fmt.Fprintf(tw, "%s %s\t%s\t%s\n", marker, e.ID, e.Title, kind)
			}
			return tw.Flush()
		},
	}
}

func newEntryShowCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one entry",
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

			e, ok := s.Entry(args[0])
			if !ok {
				return fmt.Errorf("entry %q: %w", args[0], bootstore.ErrNotFound)
			}
			if app.JSON {
				return json.NewEncoder(app.Out).Encode(s.SnapshotEntry(e))
			}
			fmt.Fprintf(app.Out, "# %s\n", s.EntryPath(e.ID))
			fmt.Fprint(app.Out, e.String())
			return nil
		},
	}
}

// entryFlags holds the typed directive flags of "entry add".
type entryFlags struct {
	title, version, machineID, sortKey string
	linux, efi, options, devicetree    string
	architecture                       string
	initrd, overlays, directives       []string
	tmpl                               string
	vars                               []string
}

func newEntryAddCmd(provider *AppProvider) *cobra.Command {
	var f entryFlags

	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Create an entry",
		Long: `Create entries/<id>.conf.

Directives come from an optional template (--template, with {{name}}
placeholders filled from --var) and then from the flags below, which
override the template. --initrd and --overlay may be repeated and are
appended in order. --set key=value sets any other directive.

Examples:
  sdbootconf entry add arch --title "Arch Linux" --linux /vmlinuz-linux \
      --initrd /intel-ucode.img --initrd /initramfs-linux.img --options "root=/dev/sda2 rw"
  sdbootconf entry add windows --title Windows --efi /EFI/Microsoft/Boot/bootmgfw.efi
  sdbootconf entry add arch-lts --template arch --var kernel=linux-lts`,
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

			id := args[0]
			if _, exists := s.Entry(id); exists {
				return &bootconf.ValidationError{Field: "id", Value: id, Err: bootstore.ErrDuplicateID}
			}
			b, err := bootconf.NewEntryBuilder(id)
			if err != nil {
				return err
			}

			if f.tmpl != "" {
				vars, err := parseKeyValues(f.vars, "--var")
				if err != nil {
					return err
				}
				t, err := template.Load(f.tmpl, app.TemplatePath)
				if err != nil {
					return err
				}
				rendered, err := t.Render(vars)
				if err != nil {
					return err
				}
				rendered.Apply(b)
			}

			flags := cmd.Flags()
			for _, sf := range []struct {
				name  string
				value string
				set   func(string) *bootconf.EntryBuilder
			}{
				{"title", f.title, b.Title},
				{"version", f.version, b.Version},
				{"machine-id", f.machineID, b.MachineID},
				{"sort-key", f.sortKey, b.SortKey},
				{"linux", f.linux, b.Linux},
				{"efi", f.efi, b.Efi},
				{"options", f.options, b.Options},
				{"devicetree", f.devicetree, b.Devicetree},
				{"architecture", f.architecture, b.Architecture},
			} {
				if flags.Changed(sf.name) {
					sf.set(sf.value)
				}
			}
			if len(f.initrd) > 0 {
				b.Initrd(f.initrd...)
			}
			if len(f.overlays) > 0 {
				b.DevicetreeOverlay(f.overlays...)
			}
			extra, err := parseKeyValuePairs(f.directives, "--set")
			if err != nil {
				return err
			}
			for _, kv := range extra {
				b.Directive(kv[0], kv[1])
			}

			e, err := b.Build()
			if err != nil {
				return err
			}
			if err := s.AddEntry(e); err != nil {
				return err
			}
			if err := s.WriteEntry(cmd.Context(), id); err != nil {
				return err
			}
			app.Log.Debug("created entry", "id", id)

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(s.SnapshotEntry(e))
			}
			fmt.Fprintf(app.Out, "%s entry %s (%s)\n", app.SuccessColor("Created"), id, s.EntryPath(id))
			if e.Linux == "" && e.Efi == "" {
				fmt.Fprintf(app.Err, "%s entry %s has neither linux nor efi and will not boot\n",
					app.WarnColor("warning:"), id)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&f.title, "title", "t", "", "Menu title")
	cmd.Flags().StringVar(&f.version, "version", "", "Version string")
	cmd.Flags().StringVar(&f.machineID, "machine-id", "", "Machine ID")
	cmd.Flags().StringVar(&f.sortKey, "sort-key", "", "Menu sort key")
	cmd.Flags().StringVar(&f.linux, "linux", "", "Kernel image path")
	cmd.Flags().StringVar(&f.efi, "efi", "", "EFI program path")
	cmd.Flags().StringArrayVar(&f.initrd, "initrd", nil, "Initrd path (repeatable, appended in order)")
	cmd.Flags().StringVarP(&f.options, "options", "o", "", "Kernel command line")
	cmd.Flags().StringVar(&f.devicetree, "devicetree", "", "Devicetree path")
	cmd.Flags().StringArrayVar(&f.overlays, "overlay", nil, "Devicetree overlay path (repeatable)")
	cmd.Flags().StringVar(&f.architecture, "architecture", "", "EFI architecture (e.g. x64, aa64)")
	cmd.Flags().StringArrayVar(&f.directives, "set", nil, "Other directive as key=value (repeatable)")
	cmd.Flags().StringVar(&f.tmpl, "template", "", "Start from the named entry template")
	cmd.Flags().StringArrayVar(&f.vars, "var", nil, "Template variable as name=value (repeatable)")

	return cmd
}

func newEntryRemoveCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an entry and its file",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}
			s, err := app.Boot(cmd.Context())
			if err != nil {
				return err
			}

			id := args[0]
			def, hadDefault := s.DefaultEntry()
			if err := s.RemoveEntry(id); err != nil {
				return err
			}
			if err := s.RemoveEntryFile(cmd.Context(), id); err != nil {
				return err
			}

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(map[string]string{"removed": id})
			}
			fmt.Fprintf(app.Out, "Removed entry %s\n", id)
			if hadDefault && def.ID == id {
				if next, ok := s.DefaultEntry(); ok {
					fmt.Fprintf(app.Err, "%s default now selects %s\n", app.WarnColor("note:"), next.ID)
				} else {
					fmt.Fprintf(app.Err, "%s default %q no longer matches any entry\n",
						app.WarnColor("warning:"), s.Config().Default)
				}
			}
			return nil
		},
	}
}

func newEntrySetCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "set <id> <directive> <value>",
		Short: "Set a directive on an entry",
		Long: `Set a directive on an entry and rewrite its file. The value replaces
any earlier one; for initrd and devicetree-overlay give all paths
separated by spaces.

Examples:
  sdbootconf entry set arch options "root=/dev/sda2 rw quiet"
  sdbootconf entry set arch initrd "/intel-ucode.img /initramfs-linux.img"`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}
			s, err := app.Boot(cmd.Context())
			if err != nil {
				return err
			}

			id, key, value := args[0], args[1], args[2]
			if err := s.UpdateEntry(id, func(e *bootconf.Entry) error {
				return e.SetString(key, value)
			}); err != nil {
				return err
			}
			if err := s.WriteEntry(cmd.Context(), id); err != nil {
				return err
			}

			e, _ := s.Entry(id)
			stored, _ := e.Get(key)
			if app.JSON {
				return json.NewEncoder(app.Out).Encode(map[string]string{"id": id, "key": key, "value": stored})
			}
			fmt.Fprintf(app.Out, "%s %s %s = %s\n", app.SuccessColor("Set"), id, key, stored)
			return nil
		},
	}
}

func newEntryUnsetCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "unset <id> <directive>",
		Short: "Remove a directive from an entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}
			s, err := app.Boot(cmd.Context())
			if err != nil {
				return err
			}

			id, key := args[0], args[1]
			var removed bool
			if err := s.UpdateEntry(id, func(e *bootconf.Entry) error {
				removed = e.Unset(key)
				return nil
			}); err != nil {
				return err
			}
			if removed {
				if err := s.WriteEntry(cmd.Context(), id); err != nil {
					return err
				}
			}

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(map[string]any{"id": id, "key": key, "removed": removed})
			}
			if removed {
				fmt.Fprintf(app.Out, "Unset %s %s\n", id, key)
			} else {
				fmt.Fprintf(app.Out, "%s %s (not set)\n", id, key)
			}
			return nil
		},
	}
}

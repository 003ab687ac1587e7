package cmd

import (
	"io"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"sdbootconf/internal/logging"
	"sdbootconf/internal/settings"
	"sdbootconf/internal/settings/yamlstore"
	"sdbootconf/internal/template"
)

// AppProvider lazily initializes the App on first use.
type AppProvider struct {
	once sync.Once
	app  *App
	err  error

	// Captured from flags before Execute()
	Root         string
	SettingsPath string
	JSONOutput   bool
	Verbose      bool
	Out          io.Writer
	Err          io.Writer
}

// Get returns the App, initializing it on first call.
func (p *AppProvider) Get() (*App, error) {
	p.once.Do(func() {
		if p.app == nil {
			p.app, p.err = p.init()
		}
	})
	return p.app, p.err
}

// NewTestProvider creates a provider pre-initialized with the given App.
// Used for testing commands with a test App.
func NewTestProvider(app *App) *AppProvider {
	return &AppProvider{
		app:        app,
		JSONOutput: app.JSON,
		Out:        app.Out,
		Err:        app.Err,
	}
}

func (p *AppProvider) init() (*App, error) {
	out := p.Out
	if out == nil {
		out = os.Stdout
	}
	errOut := p.Err
	if errOut == nil {
		errOut = os.Stderr
	}

	paths, err := settings.DefaultPaths(p.SettingsPath)
	if err != nil {
		return nil, err
	}
	st, err := yamlstore.New(paths.SettingsFile)
	if err != nil {
		return nil, err
	}
	settings.ApplyEnvOverrides(st)
	if p.Root != "" {
		st.SetInMemory(settings.KeyRoot, p.Root)
	}
	settings.ApplyDefaults(st)

	resolved, settingsErr := settings.Resolve(st)
	if settingsErr != nil {
		resolved = settings.Defaults()
		if root, ok := st.Get(settings.KeyRoot); ok && root != "" {
			resolved.Root = root
		}
	}
	if p.Verbose {
		resolved.LogLevel = logging.LevelDebug
	}

	logger := logging.New(logging.Config{Level: resolved.LogLevel, Output: errOut})
	storeLog := logger.WithComponent("bootstore")

	return &App{
		Root:         resolved.Root,
		StoreOpts:    resolved.Options(storeLog.Logger),
		WriteOpts:    resolved.WriteOptions(),
		Settings:     st,
		SettingsErr:  settingsErr,
		TemplatePath: template.SearchPath(settings.TemplateDirs(st)),
		Log:          logger.WithComponent("cli").Logger,
		Out:          out,
		Err:          errOut,
		JSON:         p.JSONOutput,
	}, nil
}

// Execute runs the CLI.
func Execute() error {
	provider := &AppProvider{
		Out: os.Stdout,
		Err: os.Stderr,
	}
	return newRootCmd(provider).Execute()
}

// newRootCmd creates the root command with all subcommands.
func newRootCmd(provider *AppProvider) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sdbootconf",
		Short: "Read and edit systemd-boot loader configuration",
		Long: `sdbootconf reads, edits and rewrites the systemd-boot configuration
directory: loader.conf and the boot loader entries under entries/.

Files are rewritten in a canonical form: known directives in a fixed order,
unknown directives kept verbatim after them. Comments are not preserved.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags - these populate the provider config
	rootCmd.PersistentFlags().StringVar(&provider.Root, "root", "", "Boot loader directory holding loader.conf (default from settings, /efi/loader)")
	rootCmd.PersistentFlags().StringVar(&provider.SettingsPath, "settings", "", "Path to the settings file (default $XDG_CONFIG_HOME/sdbootconf/settings.yaml)")
	rootCmd.PersistentFlags().BoolVar(&provider.JSONOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&provider.Verbose, "verbose", "v", false, "Log file operations to stderr")

	rootCmd.AddCommand(newInitCmd(provider))
	rootCmd.AddCommand(newShowCmd(provider))
	rootCmd.AddCommand(newConfigCmd(provider))
	rootCmd.AddCommand(newEntryCmd(provider))
	rootCmd.AddCommand(newDefaultCmd(provider))
	rootCmd.AddCommand(newFmtCmd(provider))
	rootCmd.AddCommand(newImportCmd(provider))
	rootCmd.AddCommand(newDoctorCmd(provider))
	rootCmd.AddCommand(newSettingsCmd(provider))
	rootCmd.AddCommand(newTemplateCmd(provider))
	rootCmd.AddCommand(newVersionCmd(provider))

	return rootCmd
}

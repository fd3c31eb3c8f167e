// Package cli provides the command-line interface of the nugettest harness.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aboutcode-org/nuget-inspector/internal/config"
	"github.com/aboutcode-org/nuget-inspector/internal/logger"
)

// App represents the nugettest CLI application.
type App struct {
	Config   *config.Config
	logLevel string
	logFile  string
}

// NewApp creates a new harness CLI application with env-derived defaults.
func NewApp() *App {
	return &App{Config: config.New()}
}

// CreateRootCommand creates and configures the root command.
func (app *App) CreateRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "nugettest",
		Short: "Golden-fixture verification harness for nuget-inspector",
		Long: `nugettest runs nuget-inspector across the test data tree of project
manifests and solutions, normalizes its JSON output and compares it against
stored -expected.json fixtures. Set REGEN_TEST_FIXTURES=yes (or use the regen
command) to rewrite fixtures instead of comparing.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			// A .env next to the checkout may carry NUGET_INSPECTOR etc.
			_ = godotenv.Load()
			return logger.Configure(app.logLevel, app.logFile)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.Config.DataDir, "data-dir", app.Config.DataDir, "Test data tree root")
	flags.StringVar(&app.Config.Binary, "binary", app.Config.Binary, "nuget-inspector binary under test")
	flags.StringVar(&app.Config.Table, "table", app.Config.Table, "YAML classification table")
	flags.IntVar(&app.Config.Workers, "workers", app.Config.Workers, "Parallel worker count for verification runs")
	flags.DurationVar(&app.Config.Timeout, "timeout", app.Config.Timeout, "Per-invocation timeout")
	flags.BoolVarP(&app.Config.Verbose, "verbose", "v", false, "Log every passing case, not just failures")
	flags.StringVar(&app.logLevel, "log-level", "", "Set log level (debug|info|warn|error)")
	flags.StringVar(&app.logFile, "log-file", "", "Write logs to file instead of stderr")

	for _, name := range []string{"data-dir", "binary", "workers", "timeout"} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			fmt.Fprintf(os.Stderr, "Error binding %s flag: %v\n", name, err)
			os.Exit(1)
		}
	}

	app.addRunCommands(rootCmd)
	app.addFixtureCommands(rootCmd)
	app.addCanonCommand(rootCmd)
	app.addVersionCommand(rootCmd)

	return rootCmd
}

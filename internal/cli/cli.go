package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/andyrewlee/typeahead/internal/config"
	"github.com/andyrewlee/typeahead/internal/logging"
)

// Run executes the typeahead CLI. It returns a process exit code.
func Run(args []string, version string) int {
	root := buildRootCommand(version)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		var exitErr exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit with code %d", e.code)
}

// globalFlags apply to every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
}

func buildRootCommand(version string) *cobra.Command {
	var gf globalFlags
	root := &cobra.Command{
		Use:   "typeahead",
		Short: "Local echo for shells on slow connections",
		Long: `typeahead - Predict the echo of your keystrokes before the process sends it

Commands:
  typeahead run                     Run a shell with local echo
  typeahead run --latency 150ms     Simulate a slow connection
  typeahead replay <file>           Feed a recorded session through the engine`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.Version = version
	root.SetHelpCommand(&cobra.Command{Hidden: true})
	root.CompletionOptions.DisableDefaultCmd = true

	root.PersistentFlags().StringVar(&gf.configPath, "config", "", "Config file (default ~/.typeahead/config.json)")
	root.PersistentFlags().StringVar(&gf.logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	root.AddCommand(buildRunCommand(&gf))
	root.AddCommand(buildReplayCommand(&gf))
	return root
}

// loadConfig reads the config file named by --config, or the default one.
func (gf *globalFlags) loadConfig() (*config.Config, error) {
	if gf.configPath != "" {
		return config.LoadFrom(gf.configPath)
	}
	return config.Load()
}

// setupLogging logs to the application's log directory.
func (gf *globalFlags) setupLogging(cfg *config.Config) (func(), error) {
	level, ok := logging.ParseLevel(gf.logLevel)
	if !ok {
		return nil, fmt.Errorf("invalid --log-level %q", gf.logLevel)
	}
	if err := cfg.Paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("create directories: %w", err)
	}
	if err := logging.Initialize(cfg.Paths.LogDir, level); err != nil {
		return nil, err
	}
	return func() { _ = logging.Close() }, nil
}

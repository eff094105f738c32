// Package cli provides the command-line interface for partsync.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/partbench/partsync/internal/config"
	"github.com/partbench/partsync/internal/logging"
	"github.com/partbench/partsync/internal/version"
)

var (
	// Global flags
	cfgFile     string
	token       string
	apiURL      string
	libraryRoot string
	workers     int
	logDir      string
	verbose     bool

	// Global logger
	logger *logging.Logger

	// Global context for signal handling
	rootContext context.Context
	cancelFunc  context.CancelFunc
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "partsync",
		Short: "PartBench library browser - sync favorited components to disk",
		Long: `partsync ` + version.Version + ` - Built: ` + version.BuildTime + `
Synchronizes your favorited PartBench components into a local library
directory and downloads their filesets on demand.

The library is a plain directory tree: one folder per component, one
subfolder per modification, fileset files alongside. Every folder carries
a small JSON marker describing the catalog entity it stands for.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if logDir != "" {
				logger = logging.NewFileLogger(logDir)
			} else {
				logger = logging.NewLogger()
			}
			if verbose {
				logging.SetGlobalLevel(-1) // zerolog.DebugLevel
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Catalog bearer token (overrides all other sources)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Catalog endpoint URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&libraryRoot, "library", "", "Library root directory (overrides config)")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "Concurrent download workers (0 = auto-detect)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Also write logs to a rotating file in this directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (shows debug messages)")

	rootCmd.Version = version.Version + " (" + version.BuildTime + ")"

	return rootCmd
}

// Execute runs the CLI.
func Execute() error {
	rootContext, cancelFunc = context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		for sig := range sigChan {
			if sig != nil {
				fmt.Fprintf(os.Stderr, "\nReceived signal %v, cancelling...\n", sig)
				cancelFunc()
			}
		}
	}()

	rootCmd := NewRootCmd()
	AddCommands(rootCmd)
	err := rootCmd.Execute()

	signal.Stop(sigChan)
	close(sigChan)

	return err
}

// AddCommands adds all subcommands to the root command.
func AddCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newUpdateCmd())
	rootCmd.AddCommand(newOpenCmd())
	rootCmd.AddCommand(newTreeCmd())
	rootCmd.AddCommand(newConfigCmd())
}

// GetLogger returns the global CLI logger.
func GetLogger() *logging.Logger {
	if logger == nil {
		logger = logging.NewLogger()
	}
	return logger
}

// loadConfig builds the effective configuration from file, environment and
// global flags, in ascending priority.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = config.DefaultConfigPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.MergeWithFlags(token, apiURL, libraryRoot, workers)
	return cfg, nil
}

// Package cli: configuration management commands.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/partbench/partsync/internal/config"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage partsync configuration",
		Long: `Configuration management commands for partsync.

Commands:
  init  - Interactive configuration setup
  show  - Display current configuration
  set   - Set a single configuration key
  path  - Show configuration file path`,
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigSetCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

// newConfigInitCmd creates the 'config init' command.
func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration interactively",
		Long: `Interactive configuration setup for partsync.

The configuration is saved to ` + config.DefaultConfigPath() + `

Use --force to overwrite existing configuration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := cfgFile
			if configPath == "" {
				configPath = config.DefaultConfigPath()
			}

			if !force {
				if _, err := os.Stat(configPath); err == nil {
					fmt.Printf("Configuration already exists at: %s\n", configPath)
					fmt.Println("Use --force to overwrite or run 'config show' to view current config.")
					return nil
				}
			}

			defaults := config.NewConfig()
			reader := bufio.NewReader(os.Stdin)

			fmt.Println("PartBench Configuration Setup")
			fmt.Println("=============================")
			fmt.Println()

			cfg := config.NewConfig()
			cfg.EndpointURL = promptString(reader, "Catalog endpoint URL", defaults.EndpointURL)
			cfg.LoginURL = promptString(reader, "Login URL", defaults.LoginURL)
			cfg.Program = promptString(reader, "Host CAD program", defaults.Program)
			cfg.LibraryRoot = promptString(reader, "Library root", defaults.LibraryRoot)
			cfg.DownloadWorkers = promptInt(reader, "Download workers (0 = auto)", defaults.DownloadWorkers)

			if err := config.Save(cfg, configPath); err != nil {
				return err
			}
			fmt.Printf("\nConfiguration saved to: %s\n", configPath)
			fmt.Println("Run 'partsync login' to authenticate.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	return cmd
}

// newConfigShowCmd creates the 'config show' command.
func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			fmt.Println("Current configuration:")
			fmt.Printf("  endpoint_url:             %s\n", cfg.EndpointURL)
			fmt.Printf("  login_url:                %s\n", cfg.LoginURL)
			fmt.Printf("  program:                  %s\n", cfg.Program)
			fmt.Printf("  root:                     %s\n", cfg.LibraryRoot)
			fmt.Printf("  download_workers:         %d\n", cfg.DownloadWorkers)
			fmt.Printf("  request_timeout_seconds:  %d\n", cfg.RequestTimeoutSeconds)
			fmt.Printf("  download_timeout_seconds: %d\n", cfg.DownloadTimeoutSeconds)
			if cfg.Token != "" {
				fmt.Printf("  token:                    (set, %d chars)\n", len(cfg.Token))
			} else {
				fmt.Printf("  token:                    (not set)\n")
			}
			return nil
		},
	}
}

// newConfigSetCmd creates the 'config set' command.
func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a single configuration key",
		Long: `Sets one configuration key and saves the file.

Keys: endpoint_url, login_url, program, root, download_workers,
request_timeout_seconds, download_timeout_seconds`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			configPath := cfgFile
			if configPath == "" {
				configPath = config.DefaultConfigPath()
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			switch key {
			case "endpoint_url":
				cfg.EndpointURL = value
			case "login_url":
				cfg.LoginURL = value
			case "program":
				cfg.Program = value
			case "root":
				cfg.LibraryRoot = value
			case "download_workers", "request_timeout_seconds", "download_timeout_seconds":
				n, err := strconv.Atoi(value)
				if err != nil || n < 0 {
					return fmt.Errorf("%s must be a non-negative integer, got %q", key, value)
				}
				switch key {
				case "download_workers":
					cfg.DownloadWorkers = n
				case "request_timeout_seconds":
					cfg.RequestTimeoutSeconds = n
				case "download_timeout_seconds":
					cfg.DownloadTimeoutSeconds = n
				}
			default:
				return fmt.Errorf("unknown configuration key %q", key)
			}

			if err := config.Save(cfg, configPath); err != nil {
				return err
			}
			fmt.Printf("%s = %s\n", key, value)
			return nil
		},
	}
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfgFile
			if path == "" {
				path = config.DefaultConfigPath()
			}
			fmt.Println(path)
			if _, err := os.Stat(path); os.IsNotExist(err) {
				fmt.Println("(file does not exist yet, run 'partsync config init')")
			}
			return nil
		},
	}
}

func promptString(reader *bufio.Reader, label, def string) string {
	fmt.Printf("%s [%s]: ", label, def)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return def
	}
	return input
}

func promptInt(reader *bufio.Reader, label string, def int) int {
	fmt.Printf("%s [%d]: ", label, def)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return def
	}
	if v, err := strconv.Atoi(input); err == nil && v >= 0 {
		return v
	}
	fmt.Printf("  Invalid value, keeping %d\n", def)
	return def
}

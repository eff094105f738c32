package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/partbench/partsync/internal/api"
	"github.com/partbench/partsync/internal/config"
)

// newLoginCmd creates the 'login' command.
func newLoginCmd() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "login [username]",
		Short: "Log in to the catalog and store the bearer token",
		Long: `Exchanges your PartBench credentials for a bearer token and stores it in
a mode-0600 token file next to the configuration. The password is read
from the terminal without echo and never written anywhere.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				username = args[0]
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			reader := bufio.NewReader(os.Stdin)
			for username == "" {
				fmt.Print("Username: ")
				input, err := reader.ReadString('\n')
				if err != nil {
					return err
				}
				username = strings.TrimSpace(input)
			}

			fmt.Print("Password: ")
			password, err := readPassword()
			fmt.Println()
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			if len(password) == 0 {
				return fmt.Errorf("empty password")
			}

			client := api.NewClient(cfg)
			bearer, err := client.Login(rootContext, username, string(password))
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			tokenPath := cfg.TokenPath()
			if err := config.WriteTokenFile(tokenPath, bearer); err != nil {
				return fmt.Errorf("failed to store token: %w", err)
			}

			fmt.Printf("Logged in as %s, token stored in %s\n", username, tokenPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Catalog username")
	return cmd
}

// readPassword reads a password without echo when stdin is a terminal and
// falls back to a plain line read when it is not (piped input, tests).
func readPassword() ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		return term.ReadPassword(fd)
	}
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return nil, err
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}

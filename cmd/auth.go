package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bookkeeper/cli/internal/auth"
	"github.com/bookkeeper/cli/internal/ui"
)

var (
	authEmail    string
	authPassword string
	authNoVerify bool
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage aggregator credentials",
	Long: `Manage the login used for the aggregation service.

Examples:
  # Interactive login
  bookkeeper auth login

  # Non-interactive login
  bookkeeper auth login --email you@example.com --password secret

  # Check auth status
  bookkeeper auth status

  # Remove stored credentials
  bookkeeper auth logout`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Save credentials to the credentials file",
	Long: `Log in to the aggregation service and save the credentials file.
Interactive by default when run in a terminal.

Non-interactive flags:
  --email ADDRESS      Login email
  --password SECRET    Login password
  --no-verify          Save without contacting the service`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAuthLogin(cmd)
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current authentication state",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, creds := auth.Status(cfg.CredentialsPath)
		fmt.Println(status)
		if creds != nil {
			fmt.Printf("  Email: %s\n", creds.Email)
			fmt.Printf("  Password: %s\n", auth.Mask(creds.Password))
			if creds.Session != "" {
				fmt.Printf("  Session: %s\n", auth.Mask(creds.Session))
			}
		}
		return nil
	},
}

var authVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify stored credentials are valid",
	Long: `Verify that the stored credentials can log in to the aggregation service.

This command does not save or modify any credentials.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, _, err := auth.Load(cfg.CredentialsPath)
		if err != nil {
			return fmt.Errorf("no credentials found: %w\nRun 'bookkeeper auth login' to authenticate", err)
		}

		fmt.Printf("Verifying credentials for %s...\n", creds.Email)
		if err := newClient(*creds).Verify(cmd.Context()); err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}

		fmt.Println(ui.Success("Authentication verified successfully"))
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := auth.Remove(cfg.CredentialsPath); err != nil {
			return fmt.Errorf("failed to remove credentials: %w", err)
		}
		fmt.Println("Credentials removed successfully")
		return nil
	},
}

func runAuthLogin(cmd *cobra.Command) error {
	email, password := authEmail, authPassword

	if password == "" {
		if !isInteractive() {
			return fmt.Errorf("--email and --password are required in non-interactive mode")
		}
		var err error
		email, password, err = ui.PromptLogin(email)
		if err != nil {
			return err
		}
	}

	creds := &auth.Credentials{Email: email, Password: password}
	if err := creds.Validate(); err != nil {
		return err
	}

	if !authNoVerify {
		fmt.Println("Testing authentication...")
		if err := newClient(*creds).Verify(cmd.Context()); err != nil {
			return fmt.Errorf("authentication test failed: %w", err)
		}
		fmt.Println(ui.Success("Authentication successful"))
	}

	if err := auth.Save(creds, cfg.CredentialsPath); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	fmt.Printf("Credentials saved to %s\n", cfg.CredentialsPath)

	return nil
}

func isInteractive() bool {
	return ui.IsTerminal(os.Stdin) && ui.IsTerminal(os.Stdout)
}

func init() {
	authLoginCmd.Flags().StringVar(&authEmail, "email", "", "Login email")
	authLoginCmd.Flags().StringVar(&authPassword, "password", "", "Login password")
	authLoginCmd.Flags().BoolVar(&authNoVerify, "no-verify", false, "Save without testing the login against the service")

	authCmd.AddCommand(authLoginCmd, authStatusCmd, authLogoutCmd, authVerifyCmd)
	rootCmd.AddCommand(authCmd)
}

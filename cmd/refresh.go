package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/bookkeeper/cli/internal/aggregator"
	"github.com/bookkeeper/cli/internal/refresh"
	"github.com/bookkeeper/cli/internal/ui"
)

// refreshCmd asks the aggregator to pull fresh data from every linked institution
var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Request a refresh of all linked accounts",
	Long: `Load the credentials file and ask the aggregation service to refresh every
linked account. The refresh runs on the service; this command returns as soon
as the request is accepted.

Credentials are read from MINT_EMAIL + MINT_PASSWORD when both are set,
otherwise from the JSON file given by --credentials:
    {
      "email": "you@example.com",
      "password": "your-password"
    }

Examples:
  bookkeeper refresh
  bookkeeper refresh --credentials ~/.mint.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		runner := refresh.NewRunner(
			aggregator.WithBaseURL(cfg.BaseURL),
			aggregator.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		)

		fmt.Println("Requesting account refresh...")

		resp, err := runner.Run(cmd.Context(), cfg.CredentialsPath)
		if err != nil {
			return err
		}

		fmt.Println(ui.Success("Refresh requested"))
		if resp.RequestID != "" {
			fmt.Printf("  Request ID: %s\n", resp.RequestID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}

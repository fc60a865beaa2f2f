package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bookkeeper/cli/internal/config"
	"github.com/bookkeeper/cli/internal/ledger"
	"github.com/bookkeeper/cli/internal/ui"
)

var (
	accountsOutput  string
	accountsNoCache bool
)

// accountsCmd groups the account listing commands
var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Read aggregated accounts",
	Long: `Read the accounts known to the aggregation service.

Listings are cached on disk (see --cache-dir and --cache-ttl) so repeated
lookups don't hit the service.

Examples:
  # List every account
  bookkeeper accounts list

  # Ask for a balance the way you would say it
  bookkeeper accounts find chase freedom`,
}

var accountsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all accounts",
	Long: `List all accounts with their type and current balance.

Examples:
  bookkeeper accounts list
  bookkeeper accounts list --output yaml
  bookkeeper accounts list --no-cache`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := config.ValidateOutput(accountsOutput, config.OutputPretty, config.OutputJSON, config.OutputYAML)
		if err != nil {
			return err
		}

		fetcher, err := newFetcher(accountsNoCache)
		if err != nil {
			return err
		}

		accounts, err := fetcher.Accounts(cmd.Context())
		if err != nil {
			return err
		}
		if accounts == nil {
			accounts = []ledger.Account{}
		}

		return printOutput(accounts, format)
	},
}

// accountMatch is the structured result of accounts find
type accountMatch struct {
	Account  ledger.Account `json:"account" yaml:"account"`
	Sentence string         `json:"sentence" yaml:"sentence"`
}

var accountsFindCmd = &cobra.Command{
	Use:   "find <keyword...>",
	Short: "Find the account that best matches a keyword and speak its balance",
	Long: `Search account names for the closest match to the keyword and print its
balance as a spoken sentence. Accounts you named "ignore" are never matched.

Examples:
  bookkeeper accounts find savings
  bookkeeper accounts find chase freedom --output json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := config.ValidateOutput(accountsOutput, config.OutputText, config.OutputJSON, config.OutputYAML)
		if err != nil {
			return err
		}

		fetcher, err := newFetcher(accountsNoCache)
		if err != nil {
			return err
		}

		accounts, err := fetcher.Accounts(cmd.Context())
		if err != nil {
			return err
		}

		keyword := strings.Join(args, " ")
		account, err := ledger.Search(accounts, keyword)
		if errors.Is(err, ledger.ErrNoAccounts) || account == nil {
			return fmt.Errorf("no account matches %q", keyword)
		}

		sentence := ledger.SpeakableSentence(*account)
		if format == config.OutputText {
			fmt.Println(sentence)
			fmt.Println(ui.Label(fmt.Sprintf("  account id %d (%s)", account.ID, account.AccountType)))
			return nil
		}
		return printOutput(accountMatch{Account: *account, Sentence: sentence}, format)
	},
}

func init() {
	rootCmd.AddCommand(accountsCmd)
	accountsCmd.AddCommand(accountsListCmd, accountsFindCmd)

	accountsCmd.PersistentFlags().StringVarP(&accountsOutput, "output", "o", "", "Output format (list: pretty, json, yaml; find: text, json, yaml)")
	accountsCmd.PersistentFlags().BoolVar(&accountsNoCache, "no-cache", false, "Skip the cached listing and fetch from the service")
}

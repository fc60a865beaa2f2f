package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bookkeeper/cli/internal/aggregator"
	"github.com/bookkeeper/cli/internal/auth"
	"github.com/bookkeeper/cli/internal/cache"
	"github.com/bookkeeper/cli/internal/config"
	"github.com/bookkeeper/cli/internal/ui"
)

var (
	// Global configuration state
	settings = viper.New()
	cfg      *config.Config

	// Command line flags
	cfgFile string
	version = "1.0.0" // This will be set during build
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bookkeeper",
	Short: "bookkeeper - refresh and read your aggregated financial accounts",
	Long: `bookkeeper talks to a personal-finance aggregation service on your behalf.
It triggers account refreshes, reads balances, and can answer Alexa balance
questions through a small webhook.

Run without a subcommand to see which credentials are configured.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInfo()
	},
}

func initConfig() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("failed to load .env file")
	}

	loaded, err := config.Load(settings, cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	log.SetLevel(log.WarnLevel)
	if cfg.Verbose {
		log.SetLevel(log.DebugLevel)
	}

	if cfg.NoColor || ui.ColorDisabled() {
		ui.DisableColor()
	}

	log.WithField("config", settings.ConfigFileUsed()).Debug("configuration loaded")
	return nil
}

// runInfo reports the configuration and every credential source
func runInfo() error {
	fmt.Printf("bookkeeper v%s\n", version)
	fmt.Printf("Platform: %s/%s\n\n", runtime.GOOS, runtime.GOARCH)

	fmt.Println(ui.Title("Credential Sources:"))
	fmt.Println()

	anyFound := false

	fmt.Printf("  %s + %s (env) ... ", auth.EnvEmail, auth.EnvPassword)
	if os.Getenv(auth.EnvEmail) != "" && os.Getenv(auth.EnvPassword) != "" {
		anyFound = true
		fmt.Println(ui.Success("set") + fmt.Sprintf(" (%s)", os.Getenv(auth.EnvEmail)))
	} else {
		fmt.Println("not set")
	}

	fmt.Printf("  %s (file) ... ", cfg.CredentialsPath)
	if creds, err := auth.LoadFile(cfg.CredentialsPath); err == nil {
		anyFound = true
		fmt.Println(ui.Success("OK") + fmt.Sprintf(" (%s)", creds.Email))
	} else if errors.Is(err, auth.ErrCredentialsNotFound) {
		fmt.Println("not found")
	} else {
		fmt.Println(ui.Error("invalid") + fmt.Sprintf(" (%s)", err))
	}

	fmt.Println()
	fmt.Println(ui.Title("Configuration:"))
	fmt.Println()
	configFile := settings.ConfigFileUsed()
	if configFile == "" {
		configFile = "(none)"
	}
	fmt.Printf("  %s %s\n", ui.Label("config file:"), configFile)
	fmt.Printf("  %s %s\n", ui.Label("service:    "), cfg.BaseURL)
	fmt.Printf("  %s %s (ttl %s)\n", ui.Label("cache:      "), cfg.CachePath, cfg.CacheTTL)

	fmt.Println()
	if !anyFound {
		fmt.Println(ui.Warn("No credentials configured. Run 'bookkeeper auth login' to get started."))
	}
	return nil
}

// newClient builds an aggregator client from the resolved configuration
func newClient(creds auth.Credentials) *aggregator.Client {
	return aggregator.NewClient(creds,
		aggregator.WithBaseURL(cfg.BaseURL),
		aggregator.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	)
}

// newFetcher loads credentials and wraps the client with the accounts cache
func newFetcher(bypass bool) (*cache.Fetcher, error) {
	creds, _, err := auth.Load(cfg.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("authentication required: %w\nRun 'bookkeeper auth login' to authenticate", err)
	}
	return &cache.Fetcher{
		Store:  cache.NewStore(cfg.CachePath, cfg.CacheTTL),
		Source: newClient(*creds),
		Email:  creds.Email,
		Bypass: bypass,
	}, nil
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default: ./bookkeeper.yaml or ~/.bookkeeper/bookkeeper.yaml)")
	flags.String("credentials", "", "Path to the JSON credentials file (default "+auth.DefaultPath+")")
	flags.String("base-url", "", "Aggregation service base URL")
	flags.String("cache-dir", "", "Directory for cached account listings")
	flags.Duration("cache-ttl", 0, "How long cached account listings are reused (default 1h)")
	flags.BoolP("verbose", "v", false, "Enable debug logging")
	flags.Bool("no-color", false, "Disable colored output")

	for key, flag := range map[string]string{
		"credentials_path": "credentials",
		"base_url":         "base-url",
		"cache_path":       "cache-dir",
		"cache_ttl":        "cache-ttl",
		"verbose":          "verbose",
		"no_color":         "no-color",
	} {
		_ = settings.BindPFlag(key, flags.Lookup(flag))
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of bookkeeper",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("bookkeeper v%s\n", version)
		},
	}

	rootCmd.AddCommand(versionCmd)
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/bookkeeper/cli/internal/aggregator"
	"github.com/bookkeeper/cli/internal/auth"
	"github.com/bookkeeper/cli/internal/cache"
)

// EnvPrefix namespaces every environment override, e.g. BOOKKEEPER_BASE_URL
const EnvPrefix = "BOOKKEEPER"

// Config is the resolved runtime configuration
type Config struct {
	CredentialsPath string        `mapstructure:"credentials_path"`
	CachePath       string        `mapstructure:"cache_path"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	BaseURL         string        `mapstructure:"base_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	Listen          string        `mapstructure:"listen"`
	RateLimit       float64       `mapstructure:"rate_limit"`
	RateBurst       int           `mapstructure:"rate_burst"`
	Verbose         bool          `mapstructure:"verbose"`
	NoColor         bool          `mapstructure:"no_color"`
}

// DefaultCachePath is ~/.bookkeeper/cache, or a relative path when the home
// directory is unknown.
func DefaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".bookkeeper", "cache")
	}
	return filepath.Join(home, ".bookkeeper", "cache")
}

// SetDefaults registers the default value of every key
func SetDefaults(v *viper.Viper) {
	v.SetDefault("credentials_path", auth.DefaultPath)
	v.SetDefault("cache_path", DefaultCachePath())
	v.SetDefault("cache_ttl", cache.DefaultTTL)
	v.SetDefault("base_url", aggregator.DefaultBaseURL)
	v.SetDefault("timeout", aggregator.DefaultTimeout)
	v.SetDefault("listen", ":8080")
	v.SetDefault("rate_limit", 5.0)
	v.SetDefault("rate_burst", 10)
}

// Load reads the optional config file and environment into a Config.
// An explicit configFile must exist; otherwise bookkeeper.{yaml,json,...}
// is looked up in the working directory and ~/.bookkeeper.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("bookkeeper")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".bookkeeper"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values that can't work
func (c *Config) Validate() error {
	if c.CredentialsPath == "" {
		return fmt.Errorf("credentials_path must not be empty")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl must not be negative, got %s", c.CacheTTL)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative, got %v", c.RateLimit)
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("base_url must be an http(s) URL, got %q", c.BaseURL)
	}
	return nil
}

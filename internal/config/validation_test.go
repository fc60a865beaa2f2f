package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateOutput(t *testing.T) {
	listFormats := []OutputFormat{OutputPretty, OutputJSON, OutputYAML}

	tests := []struct {
		name        string
		format      string
		expected    OutputFormat
		expectedErr string
	}{
		{name: "Valid json", format: "json", expected: OutputJSON},
		{name: "Valid yaml", format: "yaml", expected: OutputYAML},
		{name: "Text not allowed here", format: "text", expectedErr: "unsupported output format"},
		{name: "Invalid format", format: "xml", expectedErr: "unsupported output format"},
		{name: "Empty format", format: "", expected: OutputPretty}, // first allowed is the default
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateOutput(tt.format, listFormats...)
			if tt.expectedErr == "" {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, got)
			} else {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedErr)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "../../.mint.json", cfg.CredentialsPath)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, 10, cfg.RateBurst)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bookkeeper.yaml")
	require.NoError(t, os.WriteFile(path, []byte("credentials_path: /etc/mint.json\ncache_ttl: 15m\nlisten: \":9090\"\n"), 0600))

	t.Setenv("BOOKKEEPER_LISTEN", ":7070")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "/etc/mint.json", cfg.CredentialsPath)
	assert.Equal(t, 15*time.Minute, cfg.CacheTTL)
	assert.Equal(t, ":7070", cfg.Listen)
}

func TestLoadJSONConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"cache_path": "/var/cache/bookkeeper"}`), 0600))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "/var/cache/bookkeeper", cfg.CachePath)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestValidate(t *testing.T) {
	cfg := Config{CredentialsPath: "x", BaseURL: "ftp://nope"}
	assert.ErrorContains(t, cfg.Validate(), "base_url")

	cfg = Config{CredentialsPath: "x", BaseURL: "https://ok", RateLimit: -1}
	assert.ErrorContains(t, cfg.Validate(), "rate_limit")
}

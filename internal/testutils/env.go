package testutils

import (
	"os"
	"path/filepath"
	"testing"
)

// SetEnv sets environment variables for the duration of a test and returns
// a function that restores the previous values.
func SetEnv(t *testing.T, env map[string]string) func() {
	t.Helper()

	type prev struct {
		value string
		set   bool
	}
	saved := make(map[string]prev, len(env))
	for k, val := range env {
		old, ok := os.LookupEnv(k)
		saved[k] = prev{value: old, set: ok}
		if err := os.Setenv(k, val); err != nil {
			t.Fatalf("failed to set %s: %v", k, err)
		}
	}

	return func() {
		for k, p := range saved {
			if p.set {
				_ = os.Setenv(k, p.value)
			} else {
				_ = os.Unsetenv(k)
			}
		}
	}
}

// WriteCredentials writes a credentials file into a fresh temp dir and returns its path
func WriteCredentials(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".mint.json")
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatalf("failed to write credentials: %v", err)
	}
	return path
}

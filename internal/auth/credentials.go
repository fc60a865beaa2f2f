package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// DefaultPath is where the credentials file lives relative to the working directory
const DefaultPath = "../../.mint.json"

var validate = validator.New()

// Validate checks that both login fields are present
func (c *Credentials) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid credentials: %s is required", jsonName(verrs[0].Field()))
		}
		return fmt.Errorf("invalid credentials: %w", err)
	}
	return nil
}

func jsonName(field string) string {
	switch field {
	case "Email":
		return "email"
	case "Password":
		return "password"
	default:
		return field
	}
}

// LoadFile reads and validates the credentials file at path
func LoadFile(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s does not exist", ErrCredentialsNotFound, path)
		}
		return nil, fmt.Errorf("failed to read credentials from %s: %w", path, err)
	}

	if err := validateDocument(data); err != nil {
		return nil, fmt.Errorf("credentials file %s is invalid: %w", path, err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials from %s: %w", path, err)
	}

	if err := creds.Validate(); err != nil {
		return nil, fmt.Errorf("credentials file %s: %w", path, err)
	}

	return &creds, nil
}

// Load loads credentials using the following precedence:
//  1. Environment variables (MINT_EMAIL + MINT_PASSWORD, optional MINT_SESSION)
//  2. The credentials file at path
func Load(path string) (*Credentials, Source, error) {
	email := os.Getenv(EnvEmail)
	password := os.Getenv(EnvPassword)
	if email != "" && password != "" {
		return &Credentials{
			Email:    email,
			Password: password,
			Session:  os.Getenv(EnvSession),
		}, SourceEnv, nil
	}

	creds, err := LoadFile(path)
	if err != nil {
		return nil, "", err
	}
	return creds, SourceFile, nil
}

// Save writes credentials to path, readable only by the current user
func Save(creds *Credentials, path string) error {
	if err := creds.Validate(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials to %s: %w", path, err)
	}

	return nil
}

// Remove deletes the credentials file. A missing file is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

// Status returns a human-readable description of the current auth state
func Status(path string) (string, *Credentials) {
	creds, source, err := Load(path)
	if err != nil {
		return "Not authenticated", nil
	}

	var from string
	switch source {
	case SourceEnv:
		from = fmt.Sprintf("environment (%s + %s)", EnvEmail, EnvPassword)
	default:
		from = fmt.Sprintf("file (%s)", path)
	}

	return fmt.Sprintf("Authenticated via %s as %s", from, creds.Email), creds
}

package auth

import (
	"errors"
	"fmt"
)

// Source describes where a set of credentials was loaded from
type Source string

const (
	SourceEnv  Source = "env"  // MINT_EMAIL + MINT_PASSWORD
	SourceFile Source = "file" // JSON credentials file
)

// Environment variables that take precedence over the credentials file
const (
	EnvEmail    = "MINT_EMAIL"
	EnvPassword = "MINT_PASSWORD"
	EnvSession  = "MINT_SESSION"
)

// ErrCredentialsNotFound is returned when neither the environment nor the
// credentials file supply a login.
var ErrCredentialsNotFound = errors.New("credentials not found")

// Credentials holds the login for the aggregation service
type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Session  string `json:"session,omitempty"` // optional pre-issued session token
}

// String never prints the password.
func (c Credentials) String() string {
	return fmt.Sprintf("%s (password: %s)", c.Email, Mask(c.Password))
}

// Mask hides all but the first and last two characters of s
func Mask(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + "..." + s[len(s)-2:]
}

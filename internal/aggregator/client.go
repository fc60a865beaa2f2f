// Package aggregator is a thin HTTP client for the account aggregation service.
package aggregator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/bookkeeper/cli/internal/auth"
	"github.com/bookkeeper/cli/internal/metrics"
)

const (
	DefaultBaseURL = "https://mint.intuit.com/api/v1"
	DefaultTimeout = 60 * time.Second
	// tokens are renewed this long before they expire
	tokenLeeway = 3 * time.Minute
	userAgent   = "bookkeeper-cli/1.0"
)

// ErrUnauthorized is returned when the service rejects the credentials
var ErrUnauthorized = errors.New("aggregator rejected credentials")

// Client talks to the aggregation service on behalf of one login
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	email    string
	password string

	token      *tokenCache
	tokenMutex sync.RWMutex
}

type tokenCache struct {
	Token     string
	ExpiresAt time.Time
	// Supplied marks a session token taken from the credentials file
	Supplied bool
}

// sessionRequest is the login body
type sessionRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is returned by the login endpoint
type SessionResponse struct {
	Token string `json:"token"`
	Exp   int64  `json:"exp"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at a different service root
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.BaseURL = url
		}
	}
}

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.HTTPClient = hc
		}
	}
}

// NewClient creates a client for the given login. A pre-issued session token
// in creds is used as-is instead of logging in, until the service rejects it.
func NewClient(creds auth.Credentials, opts ...Option) *Client {
	c := &Client{
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
		email:      creds.Email,
		password:   creds.Password,
	}
	if creds.Session != "" {
		c.token = &tokenCache{Token: creds.Session, Supplied: true}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (t *tokenCache) valid(now time.Time) bool {
	if t == nil || t.Token == "" {
		return false
	}
	// session tokens supplied by the user carry no expiry
	return t.ExpiresAt.IsZero() || now.Before(t.ExpiresAt.Add(-tokenLeeway))
}

// Token returns a valid session token, logging in when the cached one is
// missing or about to expire.
func (c *Client) Token(ctx context.Context) (string, error) {
	c.tokenMutex.RLock()
	if c.token.valid(time.Now()) {
		token := c.token.Token
		c.tokenMutex.RUnlock()
		return token, nil
	}
	c.tokenMutex.RUnlock()

	c.tokenMutex.Lock()
	defer c.tokenMutex.Unlock()

	// Another goroutine may have logged in while we waited for the lock
	if c.token.valid(time.Now()) {
		return c.token.Token, nil
	}

	return c.loginLocked(ctx)
}

// loginLocked exchanges the email and password for a session token.
// Caller must hold tokenMutex write lock.
func (c *Client) loginLocked(ctx context.Context) (string, error) {
	body, err := c.send(ctx, http.MethodPost, "/session", sessionRequest{Email: c.email, Password: c.password}, "")
	if err != nil {
		return "", fmt.Errorf("login failed: %w", err)
	}

	var resp SessionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse session response: %w", err)
	}
	if resp.Token == "" {
		return "", fmt.Errorf("login failed: empty session token")
	}

	c.token = &tokenCache{Token: resp.Token}
	if resp.Exp > 0 {
		c.token.ExpiresAt = time.Unix(resp.Exp, 0)
	}

	log.WithField("email", auth.Mask(c.email)).Debug("aggregator session established")
	return resp.Token, nil
}

// DoRequest performs an authenticated API request
func (c *Client) DoRequest(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	token, err := c.Token(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := c.send(ctx, method, path, body, token)
	if errors.Is(err, ErrUnauthorized) && c.dropSuppliedToken(token) {
		log.Debug("supplied session token rejected, logging in")
		if token, err = c.Token(ctx); err != nil {
			return nil, err
		}
		return c.send(ctx, method, path, body, token)
	}
	return resp, err
}

// dropSuppliedToken forgets a rejected user-supplied token so the next
// Token call logs in with the email and password. It reports whether
// token was that supplied token.
func (c *Client) dropSuppliedToken(token string) bool {
	c.tokenMutex.Lock()
	defer c.tokenMutex.Unlock()
	if c.token == nil || !c.token.Supplied || c.token.Token != token {
		return false
	}
	c.token = nil
	return true
}

func (c *Client) send(ctx context.Context, method, path string, body interface{}, token string) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	metrics.ObserveAggregatorCall(path, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, apiError(resp.StatusCode, respBody)
	}

	return respBody, nil
}

func apiError(status int, body []byte) error {
	var msg string
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		msg = errResp.Error
		if errResp.Details != "" {
			msg += " - " + errResp.Details
		}
	} else {
		msg = string(bytes.TrimSpace(body))
	}

	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return fmt.Errorf("%w (%d): %s", ErrUnauthorized, status, msg)
	}
	return fmt.Errorf("API error (%d): %s", status, msg)
}

package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/bookkeeper/cli/internal/ledger"
)

// RefreshResponse is returned when an account refresh is requested
type RefreshResponse struct {
	OK        bool   `json:"ok"`
	RequestID string `json:"requestId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// InitiateAccountRefresh asks the service to pull fresh data from every
// linked institution. The refresh itself runs asynchronously on the service.
func (c *Client) InitiateAccountRefresh(ctx context.Context) (*RefreshResponse, error) {
	respBody, err := c.DoRequest(ctx, http.MethodPost, "/accounts/refresh", map[string]interface{}{})
	if err != nil {
		return nil, err
	}

	var resp RefreshResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse refresh response: %w", err)
	}

	if !resp.OK {
		return nil, fmt.Errorf("refresh rejected: %s", resp.Error)
	}

	return &resp, nil
}

// GetAccounts lists every aggregated account
func (c *Client) GetAccounts(ctx context.Context) ([]ledger.Account, error) {
	respBody, err := c.DoRequest(ctx, http.MethodGet, "/accounts", nil)
	if err != nil {
		return nil, err
	}

	var accounts []ledger.Account
	if err := json.Unmarshal(respBody, &accounts); err != nil {
		return nil, fmt.Errorf("failed to parse accounts: %w", err)
	}

	return accounts, nil
}

// Verify checks the credentials by establishing a session
func (c *Client) Verify(ctx context.Context) error {
	_, err := c.Token(ctx)
	return err
}

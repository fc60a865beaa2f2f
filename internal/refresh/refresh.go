// Package refresh loads a login and asks the aggregator to refresh its accounts.
package refresh

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/bookkeeper/cli/internal/aggregator"
	"github.com/bookkeeper/cli/internal/auth"
	"github.com/bookkeeper/cli/internal/metrics"
)

// Refresher is the single call the runner makes against the service
type Refresher interface {
	InitiateAccountRefresh(ctx context.Context) (*aggregator.RefreshResponse, error)
}

// LoadFunc loads credentials from path
type LoadFunc func(path string) (*auth.Credentials, auth.Source, error)

// ClientFunc builds a client from a login
type ClientFunc func(creds auth.Credentials) Refresher

// Runner wires credential loading to the aggregator client
type Runner struct {
	Load      LoadFunc
	NewClient ClientFunc
}

// NewRunner returns a Runner backed by the credentials file and the real
// aggregator client.
func NewRunner(opts ...aggregator.Option) *Runner {
	return &Runner{
		Load: auth.Load,
		NewClient: func(creds auth.Credentials) Refresher {
			return aggregator.NewClient(creds, opts...)
		},
	}
}

// Run loads credentials from path and requests one account refresh.
// Nothing is sent when the credentials cannot be loaded.
func (r *Runner) Run(ctx context.Context, path string) (*aggregator.RefreshResponse, error) {
	creds, source, err := r.Load(path)
	if err != nil {
		metrics.RecordRefresh("credentials_error")
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	logger := log.WithFields(log.Fields{
		"email":  auth.Mask(creds.Email),
		"source": source,
	})
	logger.Debug("requesting account refresh")

	resp, err := r.NewClient(*creds).InitiateAccountRefresh(ctx)
	if err != nil {
		metrics.RecordRefresh("error")
		logger.WithError(err).Warn("account refresh failed")
		return nil, fmt.Errorf("account refresh failed: %w", err)
	}

	metrics.RecordRefresh("ok")
	logger.WithField("request_id", resp.RequestID).Info("account refresh requested")
	return resp, nil
}

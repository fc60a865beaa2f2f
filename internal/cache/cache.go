// Package cache keeps the most recent account listing on disk so repeated
// lookups don't hit the aggregator.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/bookkeeper/cli/internal/ledger"
	"github.com/bookkeeper/cli/internal/metrics"
)

// DefaultTTL is how long a cached listing is reused
const DefaultTTL = time.Hour

// AccountSource fetches accounts from the aggregator
type AccountSource interface {
	GetAccounts(ctx context.Context) ([]ledger.Account, error)
}

// Store is a directory of per-login account listings
type Store struct {
	Dir string
	TTL time.Duration
	now func() time.Time
}

func NewStore(dir string, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{Dir: dir, TTL: ttl, now: time.Now}
}

// Path returns the cache file for a login. The email is hashed so it never
// appears in the file name.
func (s *Store) Path(email string) string {
	sum := md5.Sum([]byte(email))
	return filepath.Join(s.Dir, "accounts-"+hex.EncodeToString(sum[:])+".json")
}

// Load returns the cached listing if it is younger than the TTL. ok is false
// when the file is missing, stale or unreadable.
func (s *Store) Load(email string) (accounts []ledger.Account, ok bool) {
	path := s.Path(email)
	info, err := os.Stat(path)
	if err != nil || s.now().Sub(info.ModTime()) >= s.TTL {
		return nil, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	if err := json.Unmarshal(data, &accounts); err != nil {
		log.WithField("path", path).WithError(err).Warn("discarding corrupt accounts cache")
		return nil, false
	}
	return accounts, true
}

// Save replaces the cached listing atomically
func (s *Store) Save(email string, accounts []ledger.Account) error {
	if err := os.MkdirAll(s.Dir, 0700); err != nil {
		return fmt.Errorf("failed to create cache directory %s: %w", s.Dir, err)
	}

	data, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("failed to marshal accounts: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, ".accounts-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.Path(email)); err != nil {
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	return nil
}

// Fetcher serves account listings from the store, falling back to the source
type Fetcher struct {
	Store  *Store
	Source AccountSource
	Email  string
	// Bypass skips reading the cache; fresh results are still written
	Bypass bool
}

// Accounts returns the login's accounts, from cache when fresh
func (f *Fetcher) Accounts(ctx context.Context) ([]ledger.Account, error) {
	if !f.Bypass {
		if accounts, ok := f.Store.Load(f.Email); ok {
			metrics.RecordCacheLookup("hit")
			return accounts, nil
		}
	}
	metrics.RecordCacheLookup("miss")

	accounts, err := f.Source.GetAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	if err := f.Store.Save(f.Email, accounts); err != nil {
		log.WithError(err).Warn("could not update accounts cache")
	}
	return accounts, nil
}

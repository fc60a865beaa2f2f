// Package server exposes the account lookup as an Alexa skill webhook.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/bookkeeper/cli/internal/alexa"
	"github.com/bookkeeper/cli/internal/ledger"
	"github.com/bookkeeper/cli/internal/metrics"
)

// maxBodyBytes bounds skill request bodies
const maxBodyBytes = 1 << 20

// AccountProvider returns the current account listing
type AccountProvider interface {
	Accounts(ctx context.Context) ([]ledger.Account, error)
}

// Options tune the HTTP surface
type Options struct {
	RateLimit float64 // requests per second per client, 0 disables
	RateBurst int
}

type Server struct {
	accounts AccountProvider
	opts     Options
}

func New(accounts AccountProvider, opts Options) *Server {
	return &Server{accounts: accounts, opts: opts}
}

// Routes builds the router
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)
	if s.opts.RateLimit > 0 {
		r.Use(newRateLimiter(s.opts.RateLimit, s.opts.RateBurst).middleware)
	}

	r.Post("/", s.handleIntent)
	r.Get("/", s.handleAccounts)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())
	return r
}

// handleIntent answers "what is my <account> balance?"
func (s *Server) handleIntent(w http.ResponseWriter, r *http.Request) {
	logger := loggerFrom(r.Context())

	var req alexa.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	keyword := req.Keyword()
	if keyword == "" {
		writeError(w, http.StatusBadRequest, "missing account keyword")
		return
	}

	accounts, err := s.accounts.Accounts(r.Context())
	if err != nil {
		logger.WithError(err).Error("failed to load accounts")
		writeError(w, http.StatusBadGateway, "accounts unavailable")
		return
	}

	account, err := ledger.Search(accounts, keyword)
	if errors.Is(err, ledger.ErrNoAccounts) || account == nil {
		logger.WithField("keyword", keyword).Info("no account matched")
		writeJSON(w, http.StatusOK, alexa.NewSpeech(fmt.Sprintf("I couldn't find an account matching %s.", keyword)))
		return
	}

	logger.WithFields(log.Fields{"keyword": keyword, "account_id": account.ID}).Info("answered balance request")
	writeJSON(w, http.StatusOK, alexa.NewSpeech(ledger.SpeakableSentence(*account)))
}

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.accounts.Accounts(r.Context())
	if err != nil {
		loggerFrom(r.Context()).WithError(err).Error("failed to load accounts")
		writeError(w, http.StatusBadGateway, "accounts unavailable")
		return
	}
	if accounts == nil {
		accounts = []ledger.Account{}
	}
	writeJSON(w, http.StatusOK, accounts)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

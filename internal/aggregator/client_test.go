package aggregator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookkeeper/cli/internal/auth"
)

type fakeService struct {
	logins    atomic.Int32
	refreshes atomic.Int32
	lastLogin sessionRequest
	exp       int64
}

func (f *fakeService) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/session", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		f.logins.Add(1)
		var req sessionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		f.lastLogin = req
		if req.Password != "hunter22" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid login","details":"bad password"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(SessionResponse{Token: "tok-1", Exp: f.exp})
	})
	mux.HandleFunc("/accounts/refresh", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.refreshes.Add(1)
		_, _ = w.Write([]byte(`{"ok":true,"requestId":"r-1"}`))
	})
	mux.HandleFunc("/accounts", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"userName":"Checking","accountType":"bank","currentBalance":12.5}]`))
	})
	return mux
}

func newTestClient(t *testing.T, creds auth.Credentials) (*Client, *fakeService) {
	t.Helper()
	svc := &fakeService{exp: time.Now().Add(time.Hour).Unix()}
	server := httptest.NewServer(svc.handler(t))
	t.Cleanup(server.Close)
	return NewClient(creds, WithBaseURL(server.URL), WithHTTPClient(server.Client())), svc
}

func TestNewClient(t *testing.T) {
	c := NewClient(auth.Credentials{Email: "jane@example.com", Password: "hunter22"})
	assert.Equal(t, DefaultBaseURL, c.BaseURL)
	require.NotNil(t, c.HTTPClient)
	assert.Equal(t, DefaultTimeout, c.HTTPClient.Timeout)
	assert.Nil(t, c.token)
}

func TestInitiateAccountRefresh(t *testing.T) {
	c, svc := newTestClient(t, auth.Credentials{Email: "jane@example.com", Password: "hunter22"})

	resp, err := c.InitiateAccountRefresh(context.Background())
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, "r-1", resp.RequestID)

	assert.Equal(t, int32(1), svc.logins.Load())
	assert.Equal(t, int32(1), svc.refreshes.Load())
	assert.Equal(t, "jane@example.com", svc.lastLogin.Email)
	assert.Equal(t, "hunter22", svc.lastLogin.Password)
}

func TestTokenIsReused(t *testing.T) {
	c, svc := newTestClient(t, auth.Credentials{Email: "jane@example.com", Password: "hunter22"})

	for i := 0; i < 3; i++ {
		_, err := c.InitiateAccountRefresh(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), svc.logins.Load())
	assert.Equal(t, int32(3), svc.refreshes.Load())
}

func TestTokenRenewedNearExpiry(t *testing.T) {
	c, svc := newTestClient(t, auth.Credentials{Email: "jane@example.com", Password: "hunter22"})
	svc.exp = time.Now().Add(time.Minute).Unix()

	_, err := c.Token(context.Background())
	require.NoError(t, err)
	_, err = c.Token(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(2), svc.logins.Load())
}

func TestSessionTokenSkipsLogin(t *testing.T) {
	c, svc := newTestClient(t, auth.Credentials{Email: "jane@example.com", Password: "x", Session: "tok-1"})

	_, err := c.InitiateAccountRefresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(0), svc.logins.Load())
	assert.Equal(t, int32(1), svc.refreshes.Load())
}

func TestRevokedSessionTokenFallsBackToLogin(t *testing.T) {
	c, svc := newTestClient(t, auth.Credentials{Email: "jane@example.com", Password: "hunter22", Session: "revoked"})

	resp, err := c.InitiateAccountRefresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "r-1", resp.RequestID)
	assert.Equal(t, int32(1), svc.logins.Load())
	assert.Equal(t, int32(1), svc.refreshes.Load())

	// the fresh token is kept
	_, err = c.InitiateAccountRefresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), svc.logins.Load())
	assert.Equal(t, int32(2), svc.refreshes.Load())
}

func TestRevokedSessionTokenWithBadPassword(t *testing.T) {
	c, svc := newTestClient(t, auth.Credentials{Email: "jane@example.com", Password: "wrong", Session: "revoked"})

	_, err := c.InitiateAccountRefresh(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(1), svc.logins.Load())
	assert.Equal(t, int32(0), svc.refreshes.Load())
}

func TestUnauthorized(t *testing.T) {
	c, svc := newTestClient(t, auth.Credentials{Email: "jane@example.com", Password: "wrong"})

	_, err := c.InitiateAccountRefresh(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Contains(t, err.Error(), "invalid login - bad password")
	assert.Equal(t, int32(0), svc.refreshes.Load())

	assert.ErrorIs(t, c.Verify(context.Background()), ErrUnauthorized)
}

func TestGetAccounts(t *testing.T) {
	c, _ := newTestClient(t, auth.Credentials{Email: "jane@example.com", Password: "hunter22"})

	accounts, err := c.GetAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, int64(1), accounts[0].ID)
	assert.Equal(t, "Checking", accounts[0].UserName)
	assert.Equal(t, 12.5, accounts[0].CurrentBalance)
}

func TestRefreshRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"error":"refresh already running"}`))
	}))
	defer server.Close()

	c := NewClient(auth.Credentials{Email: "a", Password: "b", Session: "s"}, WithBaseURL(server.URL))
	_, err := c.InitiateAccountRefresh(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refresh already running")
}

func TestServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer server.Close()

	c := NewClient(auth.Credentials{Email: "a", Password: "b", Session: "s"}, WithBaseURL(server.URL))
	_, err := c.GetAccounts(context.Background())
	require.Error(t, err)
	assert.Equal(t, "API error (502): upstream down", err.Error())
}

func TestLoginLogMasksEmail(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()
	level := log.GetLevel()
	log.SetLevel(log.DebugLevel)
	defer log.SetLevel(level)

	c, _ := newTestClient(t, auth.Credentials{Email: "jane@example.com", Password: "hunter22"})
	_, err := c.Token(context.Background())
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "aggregator session established", entry.Message)
	assert.Equal(t, auth.Mask("jane@example.com"), entry.Data["email"])
}

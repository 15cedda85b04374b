package cognito

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func tokenServer(t *testing.T, check func(r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/oauth2/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		check(r)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "access-1",
			"id_token":     "id-1",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestProvider_ExchangeCode(t *testing.T) {
	srv := tokenServer(t, func(r *http.Request) {
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.Equal(t, "https://app.example.com/callback", r.PostForm.Get("redirect_uri"))

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "client", user)
		assert.Equal(t, "secret", pass)
	})

	p, err := NewProvider(Config{
		Domain:       srv.URL,
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURI:  "https://app.example.com/callback",
	}, srv.Client(), zap.NewNop())
	require.NoError(t, err)

	set, err := p.ExchangeCode(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "access-1", set.AccessToken)
	assert.Equal(t, "id-1", set.IDToken)
	assert.Equal(t, "Bearer", set.TokenType)
	assert.InDelta(t, 3600, set.ExpiresIn, 5)
}

func TestProvider_Refresh(t *testing.T) {
	srv := tokenServer(t, func(r *http.Request) {
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "refresh-1", r.PostForm.Get("refresh_token"))
	})

	p, err := NewProvider(Config{Domain: srv.URL, ClientID: "client", ClientSecret: "secret"}, srv.Client(), nil)
	require.NoError(t, err)

	set, err := p.Refresh(context.Background(), "refresh-1")
	require.NoError(t, err)
	assert.Equal(t, "access-1", set.AccessToken)
	assert.Equal(t, "id-1", set.IDToken)
	assert.Equal(t, "refresh-1", set.RefreshToken)
}

func TestProvider_ExchangeRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	p, err := NewProvider(Config{Domain: srv.URL, ClientID: "client"}, srv.Client(), nil)
	require.NoError(t, err)

	_, err = p.ExchangeCode(context.Background(), "used-code")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_grant")
}

func TestNewProvider_NotConfigured(t *testing.T) {
	_, err := NewProvider(Config{ClientID: "client"}, nil, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestProvider_AuthCodeURL(t *testing.T) {
	p, err := NewProvider(Config{Domain: "https://auth.example.com", ClientID: "client", RedirectURI: "https://app/cb"}, nil, nil)
	require.NoError(t, err)

	url := p.AuthCodeURL("xyz")
	assert.Contains(t, url, "https://auth.example.com/oauth2/authorize")
	assert.Contains(t, url, "state=xyz")
}

func countingServer(t *testing.T, status int, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":"server_error"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestProvider_BreakerOpensOnServerErrors(t *testing.T) {
	var hits int32
	srv := countingServer(t, http.StatusBadGateway, &hits)

	p, err := NewProvider(Config{Domain: srv.URL, ClientID: "client"}, srv.Client(), nil)
	require.NoError(t, err)

	for i := 0; i < breakerMinRequests; i++ {
		_, err := p.ExchangeCode(context.Background(), "code")
		require.Error(t, err)
	}

	_, err = p.Refresh(context.Background(), "refresh-1")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(breakerMinRequests), atomic.LoadInt32(&hits))
}

func TestProvider_RejectedGrantsDoNotTrip(t *testing.T) {
	var hits int32
	srv := countingServer(t, http.StatusBadRequest, &hits)

	p, err := NewProvider(Config{Domain: srv.URL, ClientID: "client"}, srv.Client(), nil)
	require.NoError(t, err)

	for i := 0; i < breakerMinRequests*2; i++ {
		_, err := p.ExchangeCode(context.Background(), "used-code")
		require.Error(t, err)
		assert.NotErrorIs(t, err, gobreaker.ErrOpenState)
	}
	assert.Equal(t, int32(breakerMinRequests*2), atomic.LoadInt32(&hits))
}

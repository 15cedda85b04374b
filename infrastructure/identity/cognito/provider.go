// Package cognito exchanges OAuth grants against a Cognito hosted UI domain.
package cognito

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"kellerliste/application/ports"
)

// ErrNotConfigured is returned when no hosted UI domain or client id is set
var ErrNotConfigured = errors.New("cognito client is not configured")

// Config holds the app client settings of the user pool
type Config struct {
	Domain       string
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// Breaker settings for the token endpoint
const (
	breakerMinRequests      = 5
	breakerFailureThreshold = 0.8
	breakerInterval         = 30 * time.Second
	breakerOpenTimeout      = 60 * time.Second
)

// Provider implements ports.IdentityProvider against the Cognito token endpoint
type Provider struct {
	oauth      *oauth2.Config
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
	now        func() time.Time
}

// NewProvider creates a new Cognito identity provider
func NewProvider(cfg Config, httpClient *http.Client, logger *zap.Logger) (*Provider, error) {
	if cfg.Domain == "" || cfg.ClientID == "" {
		return nil, ErrNotConfigured
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Provider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.Domain + "/oauth2/authorize",
				TokenURL:  cfg.Domain + "/oauth2/token",
				AuthStyle: oauth2.AuthStyleInHeader,
			},
			Scopes: []string{"openid", "email"},
		},
		httpClient: httpClient,
		breaker:    newBreaker(logger),
		logger:     logger,
		now:        time.Now,
	}, nil
}

// newBreaker stops calling the token endpoint while it keeps failing.
// Rejected grants are answers, not failures, and never trip it.
func newBreaker(logger *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "cognito-token",
		MaxRequests: 1,
		Interval:    breakerInterval,
		Timeout:     breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < breakerMinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= breakerFailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			var retrieveErr *oauth2.RetrieveError
			if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
				return retrieveErr.Response.StatusCode < http.StatusInternalServerError
			}
			return err == nil
		},
	})
}

// AuthCodeURL returns the hosted UI login URL for state
func (p *Provider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// ExchangeCode trades a one-time authorization code for a token set
func (p *Provider) ExchangeCode(ctx context.Context, code string) (*ports.TokenSet, error) {
	token, err := p.call(func() (*oauth2.Token, error) {
		return p.oauth.Exchange(p.clientContext(ctx), code)
	})
	if err != nil {
		p.logger.Warn("Authorization code exchange failed", zap.Error(err))
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}
	return p.tokenSet(token), nil
}

// Refresh trades a refresh token for a new token set. Cognito does not rotate
// refresh tokens, so the one passed in is carried over.
func (p *Provider) Refresh(ctx context.Context, refreshToken string) (*ports.TokenSet, error) {
	expired := &oauth2.Token{RefreshToken: refreshToken, Expiry: p.now().Add(-time.Minute)}

	token, err := p.call(func() (*oauth2.Token, error) {
		return p.oauth.TokenSource(p.clientContext(ctx), expired).Token()
	})
	if err != nil {
		p.logger.Warn("Token refresh failed", zap.Error(err))
		return nil, fmt.Errorf("refreshing token: %w", err)
	}
	return p.tokenSet(token), nil
}

func (p *Provider) call(fn func() (*oauth2.Token, error)) (*oauth2.Token, error) {
	out, err := p.breaker.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		return nil, err
	}
	return out.(*oauth2.Token), nil
}

func (p *Provider) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
}

func (p *Provider) tokenSet(token *oauth2.Token) *ports.TokenSet {
	set := &ports.TokenSet{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		Expiry:       token.Expiry,
	}
	if id, ok := token.Extra("id_token").(string); ok {
		set.IDToken = id
	}
	if !token.Expiry.IsZero() {
		set.ExpiresIn = int64(token.Expiry.Sub(p.now()).Round(time.Second).Seconds())
	}
	return set
}

var _ ports.IdentityProvider = (*Provider)(nil)

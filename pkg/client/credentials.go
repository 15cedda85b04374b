package client

import (
	"context"
	"time"

	"kellerliste/pkg/auth"
)

// expirySkew refreshes slightly early so a token does not lapse in flight
const expirySkew = 30 * time.Second

// Credentials are the tokens a signed-in user holds. The ID token carries the
// email claim the API authorizer reads.
type Credentials struct {
	AccessToken  string    `json:"access_token"`
	IDToken      string    `json:"id_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Expired reports whether the credentials need a refresh at now
func (c Credentials) Expired(now time.Time) bool {
	if c.IDToken == "" {
		return true
	}
	return !c.ExpiresAt.IsZero() && !now.Add(expirySkew).Before(c.ExpiresAt)
}

// Valid reports whether the credentials carry a token at all
func (c Credentials) Valid() bool {
	return c.IDToken != ""
}

// TokenRefresher trades a refresh token for new credentials
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (Credentials, error)
}

// tokenResponse is the body of GET /auth and POST /auth/refresh
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// credentials converts the response. The exp claim of the ID token wins over
// expires_in since it is what the authorizer checks.
func (t tokenResponse) credentials(now time.Time) Credentials {
	creds := Credentials{
		AccessToken:  t.AccessToken,
		IDToken:      t.IDToken,
		RefreshToken: t.RefreshToken,
	}
	if exp, err := auth.ExpiryOf(t.IDToken); err == nil {
		creds.ExpiresAt = exp
	} else if t.ExpiresIn > 0 {
		creds.ExpiresAt = now.Add(time.Duration(t.ExpiresIn) * time.Second)
	}
	return creds
}

package auth

import (
	"context"
	"errors"
)

// ErrNoIdentity is returned when a request carries no identity claim
var ErrNoIdentity = errors.New("identity not found in context")

// Identity is the verified caller of a request
type Identity struct {
	Email string
}

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity adds the caller's identity to ctx
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext extracts the caller's identity
func IdentityFromContext(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(identityKey).(Identity)
	if !ok || id.Email == "" {
		return Identity{}, ErrNoIdentity
	}
	return id, nil
}

// EmailFromAuthorizer reads the email claim that an API Gateway Cognito
// authorizer places under requestContext.authorizer.claims.
func EmailFromAuthorizer(authorizer map[string]interface{}) (string, bool) {
	claims, ok := authorizer["claims"].(map[string]interface{})
	if !ok {
		return "", false
	}
	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return "", false
	}
	return email, true
}

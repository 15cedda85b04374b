package services

import (
	"context"

	"go.uber.org/zap"

	"kellerliste/application/ports"
	apperrors "kellerliste/pkg/errors"
)

// AuthService exchanges OAuth grants with the identity provider
type AuthService struct {
	provider ports.IdentityProvider
	logger   *zap.Logger
}

// NewAuthService creates a new auth service. provider may be nil when the
// identity provider is not configured; every call then fails.
func NewAuthService(provider ports.IdentityProvider, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{provider: provider, logger: logger}
}

// ExchangeCode trades the one-time code from the hosted UI redirect for tokens
func (s *AuthService) ExchangeCode(ctx context.Context, code string) (*ports.TokenSet, error) {
	if code == "" {
		return nil, apperrors.NewValidationError("no auth code")
	}
	if s.provider == nil {
		return nil, apperrors.NewInternalError("identity provider is not configured")
	}

	tokens, err := s.provider.ExchangeCode(ctx, code)
	if err != nil {
		return nil, apperrors.NewDependencyError("auth", err)
	}
	return tokens, nil
}

// Refresh trades a refresh token for a new token set
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*ports.TokenSet, error) {
	if refreshToken == "" {
		return nil, apperrors.NewValidationError("refresh_token is required")
	}
	if s.provider == nil {
		return nil, apperrors.NewInternalError("identity provider is not configured")
	}

	tokens, err := s.provider.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, apperrors.NewDependencyError("token refresh", err)
	}
	return tokens, nil
}

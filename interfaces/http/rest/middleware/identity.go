package middleware

import (
	"net/http"
	"strings"

	"github.com/awslabs/aws-lambda-go-api-proxy/core"
	"go.uber.org/zap"

	"kellerliste/pkg/auth"
	apperrors "kellerliste/pkg/errors"
)

// Identity resolves the caller's email and stores it in the request context.
// Behind API Gateway the Cognito authorizer has already verified the token
// and the claim is read from the proxied request context. Otherwise the
// bearer token is checked with validator; a nil validator rejects the request.
func Identity(validator *auth.JWTValidator, errHandler *apperrors.ErrorHandler, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if gw, ok := core.GetAPIGatewayContextFromContext(r.Context()); ok {
				if email, ok := auth.EmailFromAuthorizer(gw.Authorizer); ok {
					ctx := auth.WithIdentity(r.Context(), auth.Identity{Email: email})
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			if validator == nil {
				errHandler.Handle(w, r, apperrors.NewUnauthorizedError("missing identity claim"))
				return
			}

			token := bearerToken(r)
			if token == "" {
				errHandler.Handle(w, r, apperrors.NewUnauthorizedError("missing authorization header"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.Debug("Rejected bearer token", zap.Error(err), zap.String("path", r.URL.Path))
				errHandler.Handle(w, r, apperrors.NewUnauthorizedError(err.Error()))
				return
			}

			ctx := auth.WithIdentity(r.Context(), auth.Identity{Email: claims.Email})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return strings.TrimSpace(header)
}

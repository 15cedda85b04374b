package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"kellerliste/application/services"
	apperrors "kellerliste/pkg/errors"
)

// RefreshRequest is the body of POST /auth/refresh
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// AuthHandler handles the OAuth code and refresh exchanges
type AuthHandler struct {
	service    *services.AuthService
	errHandler *apperrors.ErrorHandler
	logger     *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(service *services.AuthService, errHandler *apperrors.ErrorHandler, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service:    service,
		errHandler: errHandler,
		logger:     logger,
	}
}

// ExchangeCode handles GET /auth?code=...
func (h *AuthHandler) ExchangeCode(w http.ResponseWriter, r *http.Request) {
	tokens, err := h.service.ExchangeCode(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, tokens)
}

// Refresh handles POST /auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := decodeBody(r, &req); err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	tokens, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, tokens)
}

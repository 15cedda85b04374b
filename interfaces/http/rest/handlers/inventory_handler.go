package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"kellerliste/application/services"
	"kellerliste/domain/inventory"
	"kellerliste/pkg/auth"
	apperrors "kellerliste/pkg/errors"
)

// ItemResponse wraps a single item
type ItemResponse struct {
	Item inventory.Item `json:"item"`
}

// RemovedResponse confirms a delete
type RemovedResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// InventoryHandler handles the /items resource
type InventoryHandler struct {
	service    *services.InventoryService
	errHandler *apperrors.ErrorHandler
	logger     *zap.Logger
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(
	service *services.InventoryService,
	errHandler *apperrors.ErrorHandler,
	logger *zap.Logger,
) *InventoryHandler {
	return &InventoryHandler{
		service:    service,
		errHandler: errHandler,
		logger:     logger,
	}
}

// ListItems handles GET /items
func (h *InventoryHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	id, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		h.errHandler.Handle(w, r, apperrors.NewUnauthorizedError(err.Error()))
		return
	}

	result, err := h.service.Inventory(r.Context(), id.Email)
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, result)
}

// CreateItem handles POST /items
func (h *InventoryHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	id, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		h.errHandler.Handle(w, r, apperrors.NewUnauthorizedError(err.Error()))
		return
	}

	var req services.AddItemRequest
	if err := decodeBody(r, &req); err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	item, err := h.service.AddItem(r.Context(), id.Email, req)
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusCreated, ItemResponse{Item: item})
}

// GetItem handles GET /items/{id}
func (h *InventoryHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		h.errHandler.Handle(w, r, apperrors.NewUnauthorizedError(err.Error()))
		return
	}

	result, err := h.service.Item(r.Context(), id.Email, chi.URLParam(r, "id"))
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, result)
}

// UpdateItem handles PATCH /items/{id}
func (h *InventoryHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		h.errHandler.Handle(w, r, apperrors.NewUnauthorizedError(err.Error()))
		return
	}

	var req services.UpdateItemRequest
	if err := decodeBody(r, &req); err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	item, err := h.service.UpdateItem(r.Context(), id.Email, chi.URLParam(r, "id"), req)
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, ItemResponse{Item: item})
}

// DeleteItem handles DELETE /items/{id}
func (h *InventoryHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		h.errHandler.Handle(w, r, apperrors.NewUnauthorizedError(err.Error()))
		return
	}

	itemID := chi.URLParam(r, "id")
	if err := h.service.RemoveItem(r.Context(), id.Email, itemID); err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, RemovedResponse{ID: itemID, Message: "item removed"})
}

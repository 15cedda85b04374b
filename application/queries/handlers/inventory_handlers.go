package handlers

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"kellerliste/application/ports"
	"kellerliste/application/queries"
	"kellerliste/domain/inventory"
	apperrors "kellerliste/pkg/errors"
)

// InventoryQueryHandler answers reads against the inventory record
type InventoryQueryHandler struct {
	repo   ports.InventoryRepository
	logger *zap.Logger
}

// NewInventoryQueryHandler creates a new inventory query handler
func NewInventoryQueryHandler(repo ports.InventoryRepository, logger *zap.Logger) *InventoryQueryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryQueryHandler{repo: repo, logger: logger}
}

// GetInventory returns the full snapshot for the caller
func (h *InventoryQueryHandler) GetInventory(ctx context.Context, query queries.GetInventoryQuery) (*queries.GetInventoryResult, error) {
	record, err := h.load(ctx, query.UserEmail)
	if err != nil {
		return nil, err
	}
	return &queries.GetInventoryResult{Inventory: record.Inventory}, nil
}

// GetItem returns the first item carrying the requested id
func (h *InventoryQueryHandler) GetItem(ctx context.Context, query queries.GetItemQuery) (*queries.GetItemResult, error) {
	record, err := h.load(ctx, query.UserEmail)
	if err != nil {
		return nil, err
	}

	category, item, err := inventory.Find(record.Inventory, query.ItemID)
	if errors.Is(err, inventory.ErrItemNotFound) {
		return nil, apperrors.NewNotFoundError("item")
	}
	if err != nil {
		return nil, err
	}
	return &queries.GetItemResult{Category: category, Item: item}, nil
}

func (h *InventoryQueryHandler) load(ctx context.Context, owner string) (*inventory.Record, error) {
	record, err := h.repo.Get(ctx, owner)
	if errors.Is(err, ports.ErrRecordNotFound) {
		return nil, apperrors.NewNotFoundError("inventory")
	}
	if err != nil {
		h.logger.Error("Failed to get inventory", zap.String("userEmail", owner), zap.Error(err))
		return nil, apperrors.NewDependencyError("getting inventory", err)
	}
	return record, nil
}

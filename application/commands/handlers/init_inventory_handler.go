package handlers

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"kellerliste/application/commands"
	"kellerliste/application/ports"
	"kellerliste/domain/events"
	"kellerliste/domain/inventory"
	apperrors "kellerliste/pkg/errors"
)

// InitInventoryHandler creates the empty record when a user confirms sign-up
type InitInventoryHandler struct {
	repo      ports.InventoryRepository
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewInitInventoryHandler creates a new init inventory handler
func NewInitInventoryHandler(
	repo ports.InventoryRepository,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *InitInventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InitInventoryHandler{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// Handle writes an inventory with every category empty. An existing record
// is left alone so a repeated confirmation cannot wipe it.
func (h *InitInventoryHandler) Handle(ctx context.Context, cmd commands.InitInventoryCommand) error {
	err := h.repo.Create(ctx, inventory.NewRecord(cmd.UserEmail))
	if errors.Is(err, ports.ErrRecordExists) {
		h.logger.Info("Inventory already initialized", zap.String("userEmail", cmd.UserEmail))
		return nil
	}
	if err != nil {
		return apperrors.NewDependencyError("initializing inventory", err)
	}

	h.logger.Info("Inventory initialized", zap.String("userEmail", cmd.UserEmail))

	if h.publisher != nil {
		if err := h.publisher.Publish(ctx, events.NewInventoryInitialized(cmd.UserEmail, time.Now().UTC())); err != nil {
			h.logger.Warn("Failed to publish event", zap.String("userEmail", cmd.UserEmail), zap.Error(err))
		}
	}
	return nil
}

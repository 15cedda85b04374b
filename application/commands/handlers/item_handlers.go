package handlers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"kellerliste/application/commands"
	"kellerliste/application/ports"
	"kellerliste/domain/events"
	"kellerliste/domain/inventory"
	apperrors "kellerliste/pkg/errors"
	"kellerliste/pkg/observability"
)

// AddItemHandler handles AddItemCommand
type AddItemHandler struct {
	mutator recordMutator
	logger  *zap.Logger
}

// NewAddItemHandler creates a new add item handler
func NewAddItemHandler(
	repo ports.InventoryRepository,
	publisher ports.EventPublisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *AddItemHandler {
	m := newRecordMutator(repo, publisher, metrics, logger)
	return &AddItemHandler{mutator: m, logger: m.logger}
}

// Handle appends the item to its bucket. A user without a record gets one.
func (h *AddItemHandler) Handle(ctx context.Context, cmd commands.AddItemCommand) error {
	category, err := inventory.ParseCategory(cmd.Category)
	if err != nil {
		return apperrors.NewValidationError(err.Error())
	}
	item := cmd.Item.ToItem()

	err = h.mutator.apply(ctx, cmd.UserEmail, true, func(inv inventory.Inventory) (inventory.Inventory, error) {
		return inventory.Add(inv, category, item), nil
	})
	if err != nil {
		return err
	}

	h.logger.Info("Item added",
		zap.String("userEmail", cmd.UserEmail),
		zap.String("category", category.String()),
		zap.String("itemID", item.ID),
	)
	h.mutator.publish(ctx, events.NewItemAdded(cmd.UserEmail, category, item, time.Now().UTC()))
	return nil
}

// UpdateItemHandler handles UpdateItemCommand
type UpdateItemHandler struct {
	mutator recordMutator
	logger  *zap.Logger
}

// NewUpdateItemHandler creates a new update item handler
func NewUpdateItemHandler(
	repo ports.InventoryRepository,
	publisher ports.EventPublisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *UpdateItemHandler {
	m := newRecordMutator(repo, publisher, metrics, logger)
	return &UpdateItemHandler{mutator: m, logger: m.logger}
}

// Handle replaces the first item with the command's id
func (h *UpdateItemHandler) Handle(ctx context.Context, cmd commands.UpdateItemCommand) error {
	replacement := cmd.Item.ToItem()

	err := h.mutator.apply(ctx, cmd.UserEmail, false, func(inv inventory.Inventory) (inventory.Inventory, error) {
		return inventory.Update(inv, cmd.ItemID, replacement)
	})
	if err != nil {
		return err
	}

	h.logger.Info("Item updated",
		zap.String("userEmail", cmd.UserEmail),
		zap.String("itemID", cmd.ItemID),
	)
	h.mutator.publish(ctx, events.NewItemUpdated(cmd.UserEmail, cmd.ItemID, replacement, time.Now().UTC()))
	return nil
}

// RemoveItemHandler handles RemoveItemCommand
type RemoveItemHandler struct {
	mutator recordMutator
	logger  *zap.Logger
}

// NewRemoveItemHandler creates a new remove item handler
func NewRemoveItemHandler(
	repo ports.InventoryRepository,
	publisher ports.EventPublisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *RemoveItemHandler {
	m := newRecordMutator(repo, publisher, metrics, logger)
	return &RemoveItemHandler{mutator: m, logger: m.logger}
}

// Handle removes the first item with the command's id
func (h *RemoveItemHandler) Handle(ctx context.Context, cmd commands.RemoveItemCommand) error {
	err := h.mutator.apply(ctx, cmd.UserEmail, false, func(inv inventory.Inventory) (inventory.Inventory, error) {
		return inventory.Remove(inv, cmd.ItemID)
	})
	if err != nil {
		return err
	}

	h.logger.Info("Item removed",
		zap.String("userEmail", cmd.UserEmail),
		zap.String("itemID", cmd.ItemID),
	)
	h.mutator.publish(ctx, events.NewItemRemoved(cmd.UserEmail, cmd.ItemID, time.Now().UTC()))
	return nil
}

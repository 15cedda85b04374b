package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"kellerliste/application/commands"
	"kellerliste/application/commands/bus"
	"kellerliste/application/queries"
	querybus "kellerliste/application/queries/bus"
	"kellerliste/domain/inventory"
	apperrors "kellerliste/pkg/errors"
)

// AddItemRequest is the body of POST /items
type AddItemRequest struct {
	Category string              `json:"category"`
	Item     commands.ItemFields `json:"item"`
}

// UpdateItemRequest is the body of PATCH /items/{id}
type UpdateItemRequest struct {
	Item commands.ItemFields `json:"item"`
}

// InventoryService is the entry point shared by the router and the
// per-function Lambda handlers. It turns requests into bus messages.
type InventoryService struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	logger     *zap.Logger
	newID      func() string
}

// NewInventoryService creates a new inventory service
func NewInventoryService(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	logger *zap.Logger,
) *InventoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryService{
		commandBus: commandBus,
		queryBus:   queryBus,
		logger:     logger,
		newID:      uuid.NewString,
	}
}

// Inventory returns the caller's full snapshot
func (s *InventoryService) Inventory(ctx context.Context, userEmail string) (*queries.GetInventoryResult, error) {
	result, err := s.queryBus.Ask(ctx, queries.GetInventoryQuery{UserEmail: userEmail})
	if err != nil {
		return nil, err
	}
	out, ok := result.(*queries.GetInventoryResult)
	if !ok {
		return nil, unexpectedResult(result)
	}
	return out, nil
}

// Item returns the first item with id
func (s *InventoryService) Item(ctx context.Context, userEmail, id string) (*queries.GetItemResult, error) {
	result, err := s.queryBus.Ask(ctx, queries.GetItemQuery{UserEmail: userEmail, ItemID: id})
	if err != nil {
		return nil, err
	}
	out, ok := result.(*queries.GetItemResult)
	if !ok {
		return nil, unexpectedResult(result)
	}
	return out, nil
}

// AddItem appends req.Item to req.Category. A blank id is replaced with a
// fresh uuid; a supplied id is kept as is and not checked for uniqueness.
func (s *InventoryService) AddItem(ctx context.Context, userEmail string, req AddItemRequest) (inventory.Item, error) {
	if req.Item.ID == "" {
		req.Item.ID = s.newID()
	}

	cmd := commands.AddItemCommand{
		UserEmail: userEmail,
		Category:  req.Category,
		Item:      req.Item,
	}
	if err := s.commandBus.Send(ctx, cmd); err != nil {
		return inventory.Item{}, err
	}
	return req.Item.ToItem(), nil
}

// UpdateItem replaces the first item with id. The replacement keeps id when
// the body does not name one.
func (s *InventoryService) UpdateItem(ctx context.Context, userEmail, id string, req UpdateItemRequest) (inventory.Item, error) {
	if req.Item.ID == "" {
		req.Item.ID = id
	}

	cmd := commands.UpdateItemCommand{
		UserEmail: userEmail,
		ItemID:    id,
		Item:      req.Item,
	}
	if err := s.commandBus.Send(ctx, cmd); err != nil {
		return inventory.Item{}, err
	}
	return req.Item.ToItem(), nil
}

// RemoveItem removes the first item with id
func (s *InventoryService) RemoveItem(ctx context.Context, userEmail, id string) error {
	return s.commandBus.Send(ctx, commands.RemoveItemCommand{UserEmail: userEmail, ItemID: id})
}

// InitInventory creates the empty record for a confirmed user
func (s *InventoryService) InitInventory(ctx context.Context, userEmail string) error {
	return s.commandBus.Send(ctx, commands.InitInventoryCommand{UserEmail: userEmail})
}

func unexpectedResult(result interface{}) error {
	return apperrors.NewInternalError(fmt.Sprintf("unexpected query result %T", result))
}

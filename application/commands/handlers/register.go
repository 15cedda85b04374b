package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"kellerliste/application/commands"
	"kellerliste/application/commands/bus"
	"kellerliste/application/ports"
	"kellerliste/pkg/observability"
)

// Register wires every inventory command handler into b
func Register(
	b *bus.CommandBus,
	repo ports.InventoryRepository,
	publisher ports.EventPublisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) error {
	add := NewAddItemHandler(repo, publisher, metrics, logger)
	update := NewUpdateItemHandler(repo, publisher, metrics, logger)
	remove := NewRemoveItemHandler(repo, publisher, metrics, logger)
	initInv := NewInitInventoryHandler(repo, publisher, logger)

	registrations := []struct {
		cmd     bus.Command
		handler bus.CommandHandlerFunc
	}{
		{commands.AddItemCommand{}, func(ctx context.Context, cmd bus.Command) error {
			c, ok := cmd.(commands.AddItemCommand)
			if !ok {
				return invalidCommand(cmd)
			}
			return add.Handle(ctx, c)
		}},
		{commands.UpdateItemCommand{}, func(ctx context.Context, cmd bus.Command) error {
			c, ok := cmd.(commands.UpdateItemCommand)
			if !ok {
				return invalidCommand(cmd)
			}
			return update.Handle(ctx, c)
		}},
		{commands.RemoveItemCommand{}, func(ctx context.Context, cmd bus.Command) error {
			c, ok := cmd.(commands.RemoveItemCommand)
			if !ok {
				return invalidCommand(cmd)
			}
			return remove.Handle(ctx, c)
		}},
		{commands.InitInventoryCommand{}, func(ctx context.Context, cmd bus.Command) error {
			c, ok := cmd.(commands.InitInventoryCommand)
			if !ok {
				return invalidCommand(cmd)
			}
			return initInv.Handle(ctx, c)
		}},
	}

	for _, r := range registrations {
		if err := b.Register(r.cmd, r.handler); err != nil {
			return err
		}
	}
	return nil
}

func invalidCommand(cmd bus.Command) error {
	return fmt.Errorf("invalid command type %T", cmd)
}

package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"kellerliste/application/ports"
	"kellerliste/application/queries"
	querybus "kellerliste/application/queries/bus"
)

// Register wires the inventory query handlers into b
func Register(b *querybus.QueryBus, repo ports.InventoryRepository, logger *zap.Logger) error {
	h := NewInventoryQueryHandler(repo, logger)

	err := b.Register(queries.GetInventoryQuery{}, querybus.QueryHandlerFunc(func(ctx context.Context, q querybus.Query) (interface{}, error) {
		query, ok := q.(queries.GetInventoryQuery)
		if !ok {
			return nil, fmt.Errorf("invalid query type %T", q)
		}
		return h.GetInventory(ctx, query)
	}))
	if err != nil {
		return err
	}

	return b.Register(queries.GetItemQuery{}, querybus.QueryHandlerFunc(func(ctx context.Context, q querybus.Query) (interface{}, error) {
		query, ok := q.(queries.GetItemQuery)
		if !ok {
			return nil, fmt.Errorf("invalid query type %T", q)
		}
		return h.GetItem(ctx, query)
	}))
}

package handlers

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"kellerliste/application/ports"
	"kellerliste/domain/events"
	"kellerliste/domain/inventory"
	apperrors "kellerliste/pkg/errors"
	"kellerliste/pkg/observability"
)

// mutateFunc computes the next snapshot from the stored one
type mutateFunc func(inventory.Inventory) (inventory.Inventory, error)

// recordMutator runs the read, mutate, write cycle shared by the item handlers.
// Save is unconditional, so two overlapping cycles for one user lose the
// earlier write.
type recordMutator struct {
	repo      ports.InventoryRepository
	publisher ports.EventPublisher
	metrics   *observability.Metrics
	logger    *zap.Logger
}

func newRecordMutator(
	repo ports.InventoryRepository,
	publisher ports.EventPublisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) recordMutator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return recordMutator{
		repo:      repo,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// apply loads the record for owner, runs fn on it and stores the result.
// When createMissing is set an absent record starts out empty instead of
// failing with not found.
func (m recordMutator) apply(ctx context.Context, owner string, createMissing bool, fn mutateFunc) error {
	record, err := m.repo.Get(ctx, owner)
	switch {
	case errors.Is(err, ports.ErrRecordNotFound) && createMissing:
		record = inventory.NewRecord(owner)
	case errors.Is(err, ports.ErrRecordNotFound):
		return apperrors.NewNotFoundError("inventory")
	case err != nil:
		return apperrors.NewDependencyError("getting inventory", err)
	}

	next, err := fn(record.Inventory)
	if errors.Is(err, inventory.ErrItemNotFound) {
		return apperrors.NewNotFoundError("item")
	}
	if err != nil {
		return err
	}

	if err := m.repo.Save(ctx, &inventory.Record{Owner: owner, Inventory: next}); err != nil {
		return apperrors.NewDependencyError("saving inventory", err)
	}

	m.metrics.RecordInventorySize(ctx, next.Count())
	return nil
}

// publish sends event after a successful write. Failures are logged only,
// the record is already stored.
func (m recordMutator) publish(ctx context.Context, event events.DomainEvent) {
	if m.publisher == nil {
		return
	}
	if err := m.publisher.Publish(ctx, event); err != nil {
		m.logger.Warn("Failed to publish event",
			zap.String("eventType", event.GetEventType()),
			zap.String("userEmail", event.GetAggregateID()),
			zap.Error(err),
		)
	}
}

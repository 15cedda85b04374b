// Package memory keeps inventory records in process memory. It backs the local
// API server when no table is configured and serves as the repository in tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"kellerliste/application/ports"
	"kellerliste/domain/inventory"
)

// InventoryRepository is a map backed ports.InventoryRepository.
// Records are copied on the way in and out so callers never share slices
// with the stored state.
type InventoryRepository struct {
	mu      sync.RWMutex
	records map[string]inventory.Inventory
}

// NewInventoryRepository creates an empty repository
func NewInventoryRepository() *InventoryRepository {
	return &InventoryRepository{records: make(map[string]inventory.Inventory)}
}

// Get reads the whole record for owner
func (r *InventoryRepository) Get(ctx context.Context, owner string) (*inventory.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	inv, ok := r.records[owner]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ports.ErrRecordNotFound, owner)
	}
	return &inventory.Record{Owner: owner, Inventory: inv.Clone()}, nil
}

// Save replaces the whole record
func (r *InventoryRepository) Save(ctx context.Context, record *inventory.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[record.Owner] = record.Inventory.Clone()
	return nil
}

// Create stores record unless the owner already has one
func (r *InventoryRepository) Create(ctx context.Context, record *inventory.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[record.Owner]; ok {
		return fmt.Errorf("%w: %s", ports.ErrRecordExists, record.Owner)
	}
	r.records[record.Owner] = record.Inventory.Clone()
	return nil
}

// Delete removes the record for owner
func (r *InventoryRepository) Delete(ctx context.Context, owner string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, owner)
	return nil
}

// Len returns the number of stored records
func (r *InventoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

var _ ports.InventoryRepository = (*InventoryRepository)(nil)

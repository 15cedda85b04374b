package queries

import (
	"kellerliste/domain/inventory"
	apperrors "kellerliste/pkg/errors"
)

// GetInventoryQuery represents a query for the caller's whole inventory
type GetInventoryQuery struct {
	UserEmail string
}

// Validate validates the GetInventoryQuery
func (q GetInventoryQuery) Validate() error {
	if q.UserEmail == "" {
		return apperrors.NewValidationError("userEmail is required")
	}
	return nil
}

// GetInventoryResult is the snapshot returned to the client
type GetInventoryResult struct {
	Inventory inventory.Inventory `json:"inventory"`
}

// GetItemQuery represents a lookup of one item by id
type GetItemQuery struct {
	UserEmail string
	ItemID    string
}

// Validate validates the GetItemQuery
func (q GetItemQuery) Validate() error {
	if q.UserEmail == "" {
		return apperrors.NewValidationError("userEmail is required")
	}
	if q.ItemID == "" {
		return apperrors.NewValidationError("itemId is required")
	}
	return nil
}

// GetItemResult holds the matched item and the bucket it was found in
type GetItemResult struct {
	Category inventory.Category `json:"category"`
	Item     inventory.Item     `json:"item"`
}

package commands

import (
	"kellerliste/domain/inventory"
	apperrors "kellerliste/pkg/errors"
	"kellerliste/pkg/utils"
)

// ItemFields carries the client supplied fields of an item
type ItemFields struct {
	ID     string `json:"id" validate:"required,max=128"`
	Name   string `json:"name" validate:"required,max=200"`
	Amount string `json:"amount" validate:"max=100"`
	Date   string `json:"date,omitempty" validate:"max=64"`
}

// ToItem converts the fields into a domain item
func (f ItemFields) ToItem() inventory.Item {
	return inventory.Item{
		ID:     f.ID,
		Name:   f.Name,
		Amount: f.Amount,
		Date:   f.Date,
	}
}

// AddItemCommand appends an item to a category bucket
type AddItemCommand struct {
	UserEmail string     `json:"userEmail" validate:"required"`
	Category  string     `json:"category" validate:"required,category"`
	Item      ItemFields `json:"item"`
}

// Validate validates the AddItemCommand
func (c AddItemCommand) Validate() error {
	return validate(c)
}

// UpdateItemCommand replaces the first item carrying ItemID
type UpdateItemCommand struct {
	UserEmail string     `json:"userEmail" validate:"required"`
	ItemID    string     `json:"itemId" validate:"required"`
	Item      ItemFields `json:"item"`
}

// Validate validates the UpdateItemCommand
func (c UpdateItemCommand) Validate() error {
	return validate(c)
}

// RemoveItemCommand removes the first item carrying ItemID
type RemoveItemCommand struct {
	UserEmail string `json:"userEmail" validate:"required"`
	ItemID    string `json:"itemId" validate:"required"`
}

// Validate validates the RemoveItemCommand
func (c RemoveItemCommand) Validate() error {
	return validate(c)
}

// InitInventoryCommand creates the empty record for a newly confirmed user
type InitInventoryCommand struct {
	UserEmail string `json:"userEmail" validate:"required,email"`
}

// Validate validates the InitInventoryCommand
func (c InitInventoryCommand) Validate() error {
	return validate(c)
}

func validate(cmd interface{}) error {
	if err := utils.ValidateStruct(cmd); err != nil {
		return apperrors.NewValidationError(err.Error())
	}
	return nil
}

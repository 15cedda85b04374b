package events

import (
	"time"

	"kellerliste/domain/inventory"
)

// SourceBackend is the EventBridge source for events raised by the handlers.
const SourceBackend = "kellerliste.backend"

// Event types
const (
	TypeInventoryInitialized = "inventory.initialized"
	TypeItemAdded            = "inventory.item_added"
	TypeItemUpdated          = "inventory.item_updated"
	TypeItemRemoved          = "inventory.item_removed"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// InventoryInitialized is raised when the empty record for a new user is written
type InventoryInitialized struct {
	BaseEvent
	UserEmail string `json:"user_email"`
}

// NewInventoryInitialized creates an InventoryInitialized event
func NewInventoryInitialized(userEmail string, timestamp time.Time) InventoryInitialized {
	return InventoryInitialized{
		BaseEvent: BaseEvent{
			AggregateID: userEmail,
			EventType:   TypeInventoryInitialized,
			Timestamp:   timestamp,
			Version:     1,
		},
		UserEmail: userEmail,
	}
}

// ItemChanged is raised after an add, update or remove has been persisted
type ItemChanged struct {
	BaseEvent
	UserEmail string             `json:"user_email"`
	ItemID    string             `json:"item_id"`
	Category  inventory.Category `json:"category,omitempty"`
	Item      *inventory.Item    `json:"item,omitempty"`
}

// NewItemAdded creates an ItemChanged event of type inventory.item_added
func NewItemAdded(userEmail string, category inventory.Category, item inventory.Item, timestamp time.Time) ItemChanged {
	return newItemChanged(TypeItemAdded, userEmail, item.ID, category, &item, timestamp)
}

// NewItemUpdated creates an ItemChanged event of type inventory.item_updated
func NewItemUpdated(userEmail, itemID string, item inventory.Item, timestamp time.Time) ItemChanged {
	return newItemChanged(TypeItemUpdated, userEmail, itemID, "", &item, timestamp)
}

// NewItemRemoved creates an ItemChanged event of type inventory.item_removed
func NewItemRemoved(userEmail, itemID string, timestamp time.Time) ItemChanged {
	return newItemChanged(TypeItemRemoved, userEmail, itemID, "", nil, timestamp)
}

func newItemChanged(eventType, userEmail, itemID string, category inventory.Category, item *inventory.Item, timestamp time.Time) ItemChanged {
	return ItemChanged{
		BaseEvent: BaseEvent{
			AggregateID: userEmail,
			EventType:   eventType,
			Timestamp:   timestamp,
			Version:     1,
		},
		UserEmail: userEmail,
		ItemID:    itemID,
		Category:  category,
		Item:      item,
	}
}

package ports

import (
	"context"
	"errors"
	"time"

	"kellerliste/domain/events"
	"kellerliste/domain/inventory"
)

var (
	// ErrRecordNotFound is returned when no record exists for an identity
	ErrRecordNotFound = errors.New("inventory record not found")

	// ErrRecordExists is returned by Create when the identity already has a record
	ErrRecordExists = errors.New("inventory record already exists")
)

// InventoryRepository defines the interface for inventory record persistence.
// This is a port in hexagonal architecture - the domain doesn't know about the implementation.
// Every method is a single-key operation; there is no conditional write on Save.
type InventoryRepository interface {
	// Get reads the whole record for owner
	Get(ctx context.Context, owner string) (*inventory.Record, error)

	// Save replaces the whole record (last writer wins)
	Save(ctx context.Context, record *inventory.Record) error

	// Create writes a record only if none exists for the owner
	Create(ctx context.Context, record *inventory.Record) error

	// Delete removes the record for owner
	Delete(ctx context.Context, owner string) error
}

// TokenSet is the response of the identity provider's token endpoint
type TokenSet struct {
	AccessToken  string    `json:"access_token"`
	IDToken      string    `json:"id_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	ExpiresIn    int64     `json:"expires_in,omitempty"`
	Expiry       time.Time `json:"-"`
}

// IdentityProvider exchanges OAuth grants for tokens
type IdentityProvider interface {
	// ExchangeCode trades a one-time authorization code for a token set
	ExchangeCode(ctx context.Context, code string) (*TokenSet, error)

	// Refresh trades a refresh token for a new token set
	Refresh(ctx context.Context, refreshToken string) (*TokenSet, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"kellerliste/domain/inventory"
)

// Session holds one user's credentials and the last inventory fetched for
// them. Mutations go to the API first and are mirrored into the cache on
// success. A Session is safe for concurrent use.
type Session struct {
	client    *Client
	refresher TokenRefresher

	mu        sync.Mutex
	creds     Credentials
	inventory inventory.Inventory
	now       func() time.Time
}

// NewSession starts a session with existing credentials. refresher may be nil,
// in which case the client's refresh endpoint is used.
func NewSession(c *Client, creds Credentials, refresher TokenRefresher) *Session {
	if refresher == nil {
		refresher = c
	}
	return &Session{
		client:    c,
		refresher: refresher,
		creds:     creds,
		now:       time.Now,
	}
}

// SignIn exchanges the hosted UI code and starts a session
func SignIn(ctx context.Context, c *Client, code string) (*Session, error) {
	creds, err := c.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return NewSession(c, creds, nil), nil
}

// Credentials returns the credentials currently held
func (s *Session) Credentials() Credentials {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds
}

// Inventory returns a copy of the cached inventory, nil before Load
func (s *Session) Inventory() inventory.Inventory {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inventory == nil {
		return nil
	}
	return s.inventory.Clone()
}

// SignOut forgets credentials and cached data
func (s *Session) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = Credentials{}
	s.inventory = nil
}

// Load fetches the inventory and replaces the cache
func (s *Session) Load(ctx context.Context) (inventory.Inventory, error) {
	creds, err := s.fresh(ctx)
	if err != nil {
		return nil, err
	}

	inv, err := s.client.Inventory(ctx, creds)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.inventory = inv
	s.mu.Unlock()
	return inv.Clone(), nil
}

// Add adds item to category
func (s *Session) Add(ctx context.Context, category inventory.Category, item inventory.Item) (inventory.Item, error) {
	creds, err := s.fresh(ctx)
	if err != nil {
		return inventory.Item{}, err
	}

	added, err := s.client.AddItem(ctx, creds, category, item)
	if err != nil {
		return inventory.Item{}, err
	}
	// the server stores legacy aliases under their current name
	if parsed, err := inventory.ParseCategory(string(category)); err == nil {
		category = parsed
	}

	s.mirror(func(inv inventory.Inventory) (inventory.Inventory, error) {
		return inventory.Add(inv, category, added), nil
	})
	return added, nil
}

// Update replaces the item with id
func (s *Session) Update(ctx context.Context, id string, item inventory.Item) (inventory.Item, error) {
	creds, err := s.fresh(ctx)
	if err != nil {
		return inventory.Item{}, err
	}

	updated, err := s.client.UpdateItem(ctx, creds, id, item)
	if err != nil {
		return inventory.Item{}, err
	}

	s.mirror(func(inv inventory.Inventory) (inventory.Inventory, error) {
		return inventory.Update(inv, id, updated)
	})
	return updated, nil
}

// Remove removes the item with id
func (s *Session) Remove(ctx context.Context, id string) error {
	creds, err := s.fresh(ctx)
	if err != nil {
		return err
	}

	if err := s.client.RemoveItem(ctx, creds, id); err != nil {
		return err
	}

	s.mirror(func(inv inventory.Inventory) (inventory.Inventory, error) {
		return inventory.Remove(inv, id)
	})
	return nil
}

// fresh returns usable credentials, refreshing them first when expired
func (s *Session) fresh(ctx context.Context) (Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.creds.Valid() && s.creds.RefreshToken == "" {
		return Credentials{}, ErrNotSignedIn
	}
	if !s.creds.Expired(s.now()) {
		return s.creds, nil
	}
	if s.creds.RefreshToken == "" {
		return Credentials{}, fmt.Errorf("%w: credentials expired", ErrNotSignedIn)
	}

	next, err := s.refresher.Refresh(ctx, s.creds.RefreshToken)
	if err != nil {
		return Credentials{}, fmt.Errorf("refreshing credentials: %w", err)
	}
	// the refresh grant does not rotate the refresh token
	if next.RefreshToken == "" {
		next.RefreshToken = s.creds.RefreshToken
	}
	s.creds = next
	return next, nil
}

// mirror applies a successful mutation to the cache. A cache that has drifted
// from the server is dropped so the next Load starts clean.
func (s *Session) mirror(fn func(inventory.Inventory) (inventory.Inventory, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inventory == nil {
		return
	}
	next, err := fn(s.inventory)
	if err != nil {
		s.inventory = nil
		return
	}
	s.inventory = next
}

package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kellerliste/application/commands"
	"kellerliste/application/commands/bus"
	commandhandlers "kellerliste/application/commands/handlers"
	"kellerliste/application/ports"
	querybus "kellerliste/application/queries/bus"
	queryhandlers "kellerliste/application/queries/handlers"
	"kellerliste/domain/inventory"
	"kellerliste/infrastructure/persistence/memory"
	apperrors "kellerliste/pkg/errors"
)

const user = "a@example.com"

func newTestService(t *testing.T) (*InventoryService, *memory.InventoryRepository) {
	t.Helper()
	repo := memory.NewInventoryRepository()
	cb := bus.NewCommandBus()
	qb := querybus.NewQueryBus(nil)
	require.NoError(t, commandhandlers.Register(cb, repo, nil, nil, zap.NewNop()))
	require.NoError(t, queryhandlers.Register(qb, repo, zap.NewNop()))
	return NewInventoryService(cb, qb, zap.NewNop()), repo
}

func TestInventoryService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	require.NoError(t, svc.InitInventory(ctx, user))

	item, err := svc.AddItem(ctx, user, AddItemRequest{
		Category: "beverages",
		Item:     commands.ItemFields{Name: "water", Amount: "1L"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID, "blank id is generated")

	found, err := svc.Item(ctx, user, item.ID)
	require.NoError(t, err)
	assert.Equal(t, inventory.Beverages, found.Category)
	assert.Equal(t, "water", found.Item.Name)

	updated, err := svc.UpdateItem(ctx, user, item.ID, UpdateItemRequest{
		Item: commands.ItemFields{Name: "water", Amount: "6L"},
	})
	require.NoError(t, err)
	assert.Equal(t, item.ID, updated.ID)

	snapshot, err := svc.Inventory(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "6L", snapshot.Inventory[inventory.Beverages][0].Amount)

	require.NoError(t, svc.RemoveItem(ctx, user, item.ID))
	_, err = svc.Item(ctx, user, item.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestInventoryService_KeepsSuppliedID(t *testing.T) {
	svc, _ := newTestService(t)

	item, err := svc.AddItem(context.Background(), user, AddItemRequest{
		Category: "food",
		Item:     commands.ItemFields{ID: "fixed", Name: "rice"},
	})
	require.NoError(t, err)
	assert.Equal(t, "fixed", item.ID)
}

func TestInventoryService_Validation(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	_, err := svc.AddItem(ctx, user, AddItemRequest{Category: "toys", Item: commands.ItemFields{Name: "ball"}})
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, 400, apperrors.StatusCode(err))

	_, err = svc.AddItem(ctx, "", AddItemRequest{Category: "food", Item: commands.ItemFields{Name: "rice"}})
	assert.True(t, apperrors.IsValidation(err))

	assert.Zero(t, repo.Len())
}

type mockIdentityProvider struct {
	mock.Mock
}

func (m *mockIdentityProvider) ExchangeCode(ctx context.Context, code string) (*ports.TokenSet, error) {
	args := m.Called(ctx, code)
	set, _ := args.Get(0).(*ports.TokenSet)
	return set, args.Error(1)
}

func (m *mockIdentityProvider) Refresh(ctx context.Context, token string) (*ports.TokenSet, error) {
	args := m.Called(ctx, token)
	set, _ := args.Get(0).(*ports.TokenSet)
	return set, args.Error(1)
}

func TestAuthService(t *testing.T) {
	ctx := context.Background()

	t.Run("exchange", func(t *testing.T) {
		provider := new(mockIdentityProvider)
		provider.On("ExchangeCode", mock.Anything, "code").Return(&ports.TokenSet{AccessToken: "a", IDToken: "i"}, nil)

		tokens, err := NewAuthService(provider, nil).ExchangeCode(ctx, "code")
		require.NoError(t, err)
		assert.Equal(t, "i", tokens.IDToken)
	})

	t.Run("missing code", func(t *testing.T) {
		_, err := NewAuthService(new(mockIdentityProvider), nil).ExchangeCode(ctx, "")
		assert.True(t, apperrors.IsValidation(err))
		assert.Equal(t, "no auth code", apperrors.GetAppError(err).Body())
	})

	t.Run("provider failure", func(t *testing.T) {
		provider := new(mockIdentityProvider)
		provider.On("Refresh", mock.Anything, "r").Return(nil, errors.New("invalid_grant"))

		_, err := NewAuthService(provider, nil).Refresh(ctx, "r")
		assert.True(t, apperrors.IsDependency(err))
		assert.Contains(t, apperrors.GetAppError(err).Body(), "invalid_grant")
	})

	t.Run("not configured", func(t *testing.T) {
		_, err := NewAuthService(nil, nil).ExchangeCode(ctx, "code")
		assert.Equal(t, 500, apperrors.StatusCode(err))
	})
}

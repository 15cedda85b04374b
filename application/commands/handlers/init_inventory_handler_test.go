package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"kellerliste/application/commands"
	"kellerliste/domain/inventory"
	"kellerliste/infrastructure/persistence/memory"
)

func TestInitInventoryHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("creates empty record with every category", func(t *testing.T) {
		repo := memory.NewInventoryRepository()
		pub := new(mockPublisher)
		pub.On("Publish", mock.Anything, mock.Anything).Return(nil).Once()

		h := NewInitInventoryHandler(repo, pub, nil)
		require.NoError(t, h.Handle(ctx, commands.InitInventoryCommand{UserEmail: owner}))

		got, err := repo.Get(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, inventory.New(), got.Inventory)
		pub.AssertExpectations(t)
	})

	t.Run("existing record is kept", func(t *testing.T) {
		repo := seededRepo(t)
		h := NewInitInventoryHandler(repo, nil, nil)

		require.NoError(t, h.Handle(ctx, commands.InitInventoryCommand{UserEmail: owner}))

		got, err := repo.Get(ctx, owner)
		require.NoError(t, err)
		assert.Len(t, got.Inventory[inventory.Food], 1)
	})
}

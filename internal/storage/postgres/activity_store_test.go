package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexdziarn/fool.fun/internal/domain"
	"github.com/alexdziarn/fool.fun/internal/storage"
)

func TestActivityStore_InsertAndGetByToken(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewActivityStore(pool)
	ctx := context.Background()

	entries := []*domain.Activity{
		{ActivityID: "a2", Token: "tok1", Type: domain.ActivitySteal, From: "minter1", To: "stealer1", Amount: 100_000_000, Timestamp: 200, CreatedAt: 200},
		{ActivityID: "a1", Token: "tok1", Type: domain.ActivityCreate, To: "minter1", Timestamp: 100, CreatedAt: 100},
		{ActivityID: "a3", Token: "tok2", Type: domain.ActivityCreate, To: "minter2", Timestamp: 150, CreatedAt: 150},
	}
	for _, a := range entries {
		require.NoError(t, store.Insert(ctx, a))
	}

	got, err := store.GetByToken(ctx, "tok1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Ordered by timestamp ASC
	assert.Equal(t, "a1", got[0].ActivityID)
	assert.Equal(t, "a2", got[1].ActivityID)
	assert.Equal(t, domain.ActivitySteal, got[1].Type)
	assert.Equal(t, uint64(100_000_000), got[1].Amount)
}

func TestActivityStore_Duplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewActivityStore(pool)
	ctx := context.Background()

	a := &domain.Activity{ActivityID: "a1", Token: "tok1", Type: domain.ActivityCreate, To: "minter1", Timestamp: 100, CreatedAt: 100}
	require.NoError(t, store.Insert(ctx, a))

	err := store.Insert(ctx, a)
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func TestActivityStore_EmptyToken(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewActivityStore(pool)

	got, err := store.GetByToken(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Empty(t, got)
}

package inviteflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIntentStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryIntentStore()

	_, ok, err := store.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	intent := PendingInviteIntent{Token: "abc123", Email: "a@x.com", SuggestedFullName: "Alice Smith"}
	require.NoError(t, store.Put(ctx, intent))

	got, ok, err := store.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, intent, got)

	// Put overwrites the record wholesale
	require.NoError(t, store.Put(ctx, PendingInviteIntent{Token: "def456"}))
	got, _, _ = store.Get(ctx)
	assert.Equal(t, "def456", got.Token)
	assert.Empty(t, got.Email)
	assert.Empty(t, got.SuggestedFullName)

	require.NoError(t, store.Clear(ctx))
	_, ok, err = store.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	// Clearing an empty store is not an error
	require.NoError(t, store.Clear(ctx))
}

func TestFileIntentStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewFileIntentStore(dir)
	require.NoError(t, err)

	_, ok, err := store.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	intent := PendingInviteIntent{Token: "abc123", Email: "a@x.com"}
	require.NoError(t, store.Put(ctx, intent))

	// A fresh store over the same directory sees the record
	reopened, err := NewFileIntentStore(dir)
	require.NoError(t, err)
	got, ok, err := reopened.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, intent, got)

	require.NoError(t, reopened.Clear(ctx))
	_, ok, err = store.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Clear(ctx))
}

package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"berrybot/internal/storage"
)

func TestMemorySessionStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()

	// Unknown chats get a fresh idle session.
	session, err := store.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, Session{}, session)

	session = Session{
		Step:   StepSelectingBerry,
		UserID: 42,
		Phone:  "9001234567",
		Cart:   []storage.CartItem{storage.NewCartLine("Голубика", 2, 500)},
	}
	require.NoError(t, store.Save(ctx, 42, session))

	got, err := store.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, session, got)
	assert.True(t, got.LoggedIn())

	// Sessions are scoped per chat.
	other, err := store.Get(ctx, 43)
	require.NoError(t, err)
	assert.False(t, other.LoggedIn())

	require.NoError(t, store.Clear(ctx, 42))
	got, err = store.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, Session{}, got)
}

package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestUserStore(t *testing.T) (*UserStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	return NewUserStore(path, zap.NewNop()), path
}

func TestUserStoreRegistrationFlow(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestUserStore(t)

	// First contact share: unknown phone.
	_, err := store.Get(ctx, "9001234567")
	require.ErrorIs(t, err, ErrUserNotFound)

	user := User{UserID: 12345, FullName: "Иванов Иван Иванович", Phone: "9001234567"}
	require.NoError(t, store.Upsert(ctx, user))

	// Subsequent contact shares log in with the stored name.
	got, err := store.Get(ctx, "9001234567")
	require.NoError(t, err)
	assert.Equal(t, user, got)

	// Re-registration overwrites the record.
	renamed := User{UserID: 12345, FullName: "Петров Пётр Петрович", Phone: "9001234567"}
	require.NoError(t, store.Upsert(ctx, renamed))
	got, err = store.Get(ctx, "9001234567")
	require.NoError(t, err)
	assert.Equal(t, "Петров Пётр Петрович", got.FullName)
}

func TestUserStoreAll(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestUserStore(t)

	require.NoError(t, store.Upsert(ctx, User{UserID: 2, FullName: "Петров Пётр Петрович", Phone: "9002222222"}))
	require.NoError(t, store.Upsert(ctx, User{UserID: 1, FullName: "Иванов Иван Иванович", Phone: "9001111111"}))

	users, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "9001111111", users[0].Phone)
	assert.Equal(t, "9002222222", users[1].Phone)
}

func TestUserStoreQuarantinesCorruptFile(t *testing.T) {
	ctx := context.Background()
	store, path := newTestUserStore(t)

	require.NoError(t, os.WriteFile(path, []byte("][ definitely not json"), 0o644))

	users, err := store.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	// The broken file is kept aside for inspection.
	_, err = os.Stat(path + ".corrupted")
	require.NoError(t, err)

	// The store keeps working after the quarantine.
	require.NoError(t, store.Upsert(ctx, User{UserID: 1, FullName: "Иванов Иван Иванович", Phone: "9001234567"}))
	got, err := store.Get(ctx, "9001234567")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.UserID)
}

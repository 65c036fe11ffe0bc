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

func newTestOrderStore(t *testing.T) (*OrderStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.json")
	return NewOrderStore(path, zap.NewNop()), path
}

func testOrder(userID int64, date string, cart []CartItem) Order {
	return Order{
		UserID:   userID,
		FullName: "Иванов Иван Иванович",
		Phone:    "9001234567",
		Cart:     cart,
		Date:     date,
		Time:     "12:00",
		Status:   StatusPendingPayment,
	}
}

func TestOrderStoreCreateAssignsIncreasingIDs(t *testing.T) {
	ctx := context.Background()
	store, path := newTestOrderStore(t)

	cart := []CartItem{NewCartLine("Голубика", 1, 500)}
	for want := int64(1); want <= 3; want++ {
		id, err := store.Create(ctx, testOrder(7, "01.10.2026", cart))
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}

	// The counter survives a reload from disk.
	reloaded := NewOrderStore(path, zap.NewNop())
	id, err := reloaded.Create(ctx, testOrder(7, "01.10.2026", cart))
	require.NoError(t, err)
	assert.Equal(t, int64(4), id)
}

func TestOrderStoreGet(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestOrderStore(t)

	cart := []CartItem{NewCartLine("Вишня", 2, 390)}
	id, err := store.Create(ctx, testOrder(7, "02.10.2026", cart))
	require.NoError(t, err)

	order, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, order.ID)
	assert.Equal(t, StatusPendingPayment, order.Status)
	assert.False(t, order.CreatedAt.IsZero())

	_, err = store.Get(ctx, 999)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderStoreListByUserNewestFirst(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestOrderStore(t)

	cart := []CartItem{NewCartLine("Клюква", 1, 420)}
	_, err := store.Create(ctx, testOrder(1, "01.10.2026", cart))
	require.NoError(t, err)
	_, err = store.Create(ctx, testOrder(2, "01.10.2026", cart))
	require.NoError(t, err)
	_, err = store.Create(ctx, testOrder(1, "02.10.2026", cart))
	require.NoError(t, err)

	orders, err := store.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, int64(3), orders[0].ID)
	assert.Equal(t, int64(1), orders[1].ID)
}

func TestOrderStoreStatusLattice(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestOrderStore(t)

	cart := []CartItem{NewCartLine("Черника", 1, 450)}
	id, err := store.Create(ctx, testOrder(7, "03.10.2026", cart))
	require.NoError(t, err)

	require.NoError(t, store.UpdateStatus(ctx, id, StatusPaid))
	require.NoError(t, store.UpdateStatus(ctx, id, StatusCancelled))

	// Cancelled is terminal.
	err = store.UpdateStatus(ctx, id, StatusPaid)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	err = store.UpdateStatus(ctx, id, StatusPendingPayment)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	err = store.UpdateStatus(ctx, 999, StatusPaid)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestIsDuplicateIgnoresItemOrder(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestOrderStore(t)

	blueberry := NewCartLine("Голубика", 2, 500)
	cherry := NewCartLine("Вишня", 1, 390)
	date := "05.10.2026"

	_, err := store.Create(ctx, testOrder(7, date, []CartItem{blueberry, cherry}))
	require.NoError(t, err)

	dup, err := store.IsDuplicate(ctx, []CartItem{cherry, blueberry}, 7, date)
	require.NoError(t, err)
	assert.True(t, dup, "a permuted cart is still a duplicate")

	// Different user, different date, different quantity are not duplicates.
	dup, err = store.IsDuplicate(ctx, []CartItem{cherry, blueberry}, 8, date)
	require.NoError(t, err)
	assert.False(t, dup)

	dup, err = store.IsDuplicate(ctx, []CartItem{blueberry, cherry}, 7, "06.10.2026")
	require.NoError(t, err)
	assert.False(t, dup)

	dup, err = store.IsDuplicate(ctx, []CartItem{blueberry, NewCartLine("Вишня", 2, 390)}, 7, date)
	require.NoError(t, err)
	assert.False(t, dup)
}

func TestIsDuplicateMultiplicityMatters(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestOrderStore(t)

	date := "07.10.2026"
	twoLines := []CartItem{
		NewCartLine("Голубика", 1, 500),
		NewCartLine("Голубика", 2, 500),
	}
	_, err := store.Create(ctx, testOrder(7, date, twoLines))
	require.NoError(t, err)

	// One combined line of 3 kg is not the same cart as two lines of 1+2 kg.
	combined := []CartItem{NewCartLine("Голубика", 3, 500)}
	dup, err := store.IsDuplicate(ctx, combined, 7, date)
	require.NoError(t, err)
	assert.False(t, dup)

	// The same two lines in reverse order are a duplicate.
	dup, err = store.IsDuplicate(ctx, []CartItem{twoLines[1], twoLines[0]}, 7, date)
	require.NoError(t, err)
	assert.True(t, dup)
}

func TestIsDuplicateSkipsCancelledOrders(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestOrderStore(t)

	cart := []CartItem{NewCartLine("Земляника", 1, 380)}
	date := "08.10.2026"
	id, err := store.Create(ctx, testOrder(7, date, cart))
	require.NoError(t, err)
	require.NoError(t, store.UpdateStatus(ctx, id, StatusCancelled))

	dup, err := store.IsDuplicate(ctx, cart, 7, date)
	require.NoError(t, err)
	assert.False(t, dup, "cancelled orders do not count as duplicates")
}

func TestOrderStoreReinitializesCorruptFile(t *testing.T) {
	ctx := context.Background()
	store, path := newTestOrderStore(t)

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	orders, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)

	// The counter restarts from scratch with the reinitialized file.
	id, err := store.Create(ctx, testOrder(7, "09.10.2026", []CartItem{NewCartLine("Бузина", 1, 350)}))
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

func TestOrderCreationScenario(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestOrderStore(t)

	cart := []CartItem{
		NewCartLine("Голубика", 2, 500),
		NewCartLine("Вишня", 1, 400),
	}

	id, err := store.Create(ctx, testOrder(7, "10.10.2026", cart))
	require.NoError(t, err)

	order, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusPendingPayment, order.Status)
	assert.Equal(t, 1400.0, order.Total())
}

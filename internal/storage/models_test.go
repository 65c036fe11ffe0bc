package storage

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCartLineRounding(t *testing.T) {
	for _, kg := range []float64{0.1, 0.33, 1, 2.5, 7.77, 99.99, 100} {
		line := NewCartLine("Голубика", kg, 500)
		want := math.Round(500*kg*100) / 100
		assert.Equal(t, want, line.TotalPrice, "kg=%v", kg)
	}
}

func TestCartTotal(t *testing.T) {
	cart := []CartItem{
		NewCartLine("Голубика", 2, 500),
		NewCartLine("Вишня", 1, 400),
	}
	assert.Equal(t, 1400.0, CartTotal(cart))
	assert.Equal(t, 0.0, CartTotal(nil))
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		allowed  bool
	}{
		{StatusPendingPayment, StatusPaid, true},
		{StatusPendingPayment, StatusCancelled, true},
		{StatusPaid, StatusCancelled, true},
		{StatusPaid, StatusPendingPayment, false},
		{StatusCancelled, StatusPendingPayment, false},
		{StatusCancelled, StatusPaid, false},
		{StatusCancelled, StatusCancelled, false},
		{StatusPendingPayment, StatusPendingPayment, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to), "%s → %s", tt.from, tt.to)
	}
}

func TestStatusActive(t *testing.T) {
	assert.True(t, StatusPendingPayment.Active())
	assert.True(t, StatusPaid.Active())
	assert.False(t, StatusCancelled.Active())
}

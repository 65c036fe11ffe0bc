package storage

import (
	"math"
	"time"
)

type OrderStatus string

const (
	StatusPendingPayment OrderStatus = "pending_payment"
	StatusPaid           OrderStatus = "paid"
	StatusCancelled      OrderStatus = "cancelled"
)

// Label returns the customer-facing Russian name of the status.
func (s OrderStatus) Label() string {
	switch s {
	case StatusPendingPayment:
		return "ожидает оплату"
	case StatusPaid:
		return "оплачено"
	case StatusCancelled:
		return "отменён"
	}
	return string(s)
}

// CanTransitionTo reports whether the status change is allowed.
// Cancelled is terminal; a paid order can still be cancelled.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case StatusPendingPayment:
		return next == StatusPaid || next == StatusCancelled
	case StatusPaid:
		return next == StatusCancelled
	}
	return false
}

// Active reports whether the order still occupies its delivery slot.
func (s OrderStatus) Active() bool {
	return s == StatusPendingPayment || s == StatusPaid
}

type CartItem struct {
	Berry      string  `json:"berry"`
	Kg         float64 `json:"kg"`
	PricePerKg int     `json:"price_per_kg"`
	TotalPrice float64 `json:"total_price"`
}

// NewCartLine prices a quantity of a berry, rounding the line total to
// two decimals.
func NewCartLine(berry string, kg float64, pricePerKg int) CartItem {
	return CartItem{
		Berry:      berry,
		Kg:         kg,
		PricePerKg: pricePerKg,
		TotalPrice: round2(float64(pricePerKg) * kg),
	}
}

// CartTotal sums the line totals of a cart, rounded to two decimals.
func CartTotal(cart []CartItem) float64 {
	var total float64
	for _, item := range cart {
		total += item.TotalPrice
	}
	return round2(total)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

const (
	DateLayout = "02.01.2006"
	TimeLayout = "15:04"
)

type Order struct {
	ID        int64       `json:"id"`
	UserID    int64       `json:"user_id"`
	FullName  string      `json:"full_name"`
	Phone     string      `json:"phone"`
	Cart      []CartItem  `json:"cart"`
	Date      string      `json:"date"`
	Time      string      `json:"time"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

// Total is the order's cart total.
func (o Order) Total() float64 {
	return CartTotal(o.Cart)
}

// User is a registered customer, keyed by the 10-digit phone number.
type User struct {
	UserID   int64  `json:"user_id"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

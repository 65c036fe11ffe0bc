package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("status transition not allowed")
)

// OrderStore keeps all orders plus the id counter in a single JSON
// document that is read and rewritten as a whole on every mutation.
// Single-writer: the store serializes access within the process and
// assumes no other process touches the file.
type OrderStore struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

type ordersFile struct {
	LastID int64            `json:"last_id"`
	Orders map[string]Order `json:"orders"`
}

func NewOrderStore(path string, logger *zap.Logger) *OrderStore {
	return &OrderStore{
		path:   path,
		logger: logger,
	}
}

func (s *OrderStore) load() (*ordersFile, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		f := &ordersFile{Orders: map[string]Order{}}
		if err := s.save(f); err != nil {
			return nil, err
		}
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read orders file: %w", err)
	}

	var f ordersFile
	if err := json.Unmarshal(data, &f); err != nil || f.Orders == nil {
		// Corrupt or hand-edited file: reinitialize rather than crash.
		s.logger.Warn("Orders file is invalid, reinitializing",
			zap.String("path", s.path),
			zap.Error(err))
		f = ordersFile{Orders: map[string]Order{}}
		if err := s.save(&f); err != nil {
			return nil, err
		}
	}
	return &f, nil
}

func (s *OrderStore) save(f *ordersFile) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal orders: %w", err)
	}

	// Whole-file replace via temp file + rename so a crash mid-write
	// cannot truncate the store.
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".orders-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write orders: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace orders file: %w", err)
	}
	return nil
}

// Create assigns the next id from the persisted counter and inserts the
// order in one read-modify-write cycle.
func (s *OrderStore) Create(ctx context.Context, order Order) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return 0, err
	}

	f.LastID++
	order.ID = f.LastID
	if order.Status == "" {
		order.Status = StatusPendingPayment
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}

	f.Orders[strconv.FormatInt(order.ID, 10)] = order
	if err := s.save(f); err != nil {
		return 0, err
	}
	return order.ID, nil
}

func (s *OrderStore) Get(ctx context.Context, id int64) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return Order{}, err
	}
	order, ok := f.Orders[strconv.FormatInt(id, 10)]
	if !ok {
		return Order{}, fmt.Errorf("order %d: %w", id, ErrOrderNotFound)
	}
	return order, nil
}

// List returns all orders, newest first.
func (s *OrderStore) List(ctx context.Context) ([]Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return nil, err
	}

	orders := make([]Order, 0, len(f.Orders))
	for _, order := range f.Orders {
		orders = append(orders, order)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })
	return orders, nil
}

// ListByUser returns the user's orders, newest first.
func (s *OrderStore) ListByUser(ctx context.Context, userID int64) ([]Order, error) {
	orders, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	own := orders[:0]
	for _, order := range orders {
		if order.UserID == userID {
			own = append(own, order)
		}
	}
	return own, nil
}

// UpdateStatus moves an order to the new status if the transition is
// allowed by the lattice; cancelled is terminal.
func (s *OrderStore) UpdateStatus(ctx context.Context, id int64, next OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return err
	}

	key := strconv.FormatInt(id, 10)
	order, ok := f.Orders[key]
	if !ok {
		return fmt.Errorf("order %d: %w", id, ErrOrderNotFound)
	}
	if !order.Status.CanTransitionTo(next) {
		return fmt.Errorf("order %d (%s → %s): %w", id, order.Status, next, ErrInvalidTransition)
	}

	order.Status = next
	f.Orders[key] = order
	return s.save(f)
}

// IsDuplicate reports whether the user already has a non-cancelled
// order for the same date whose cart matches the candidate exactly,
// ignoring item order.
func (s *OrderStore) IsDuplicate(ctx context.Context, cart []CartItem, userID int64, date string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return false, err
	}

	candidate := sortedCart(cart)
	for _, order := range f.Orders {
		if order.UserID != userID || order.Date != date || order.Status == StatusCancelled {
			continue
		}
		if cartsEqual(candidate, sortedCart(order.Cart)) {
			return true, nil
		}
	}
	return false, nil
}

func sortedCart(cart []CartItem) []CartItem {
	sorted := make([]CartItem, len(cart))
	copy(sorted, cart)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Berry != sorted[j].Berry {
			return sorted[i].Berry < sorted[j].Berry
		}
		if sorted[i].Kg != sorted[j].Kg {
			return sorted[i].Kg < sorted[j].Kg
		}
		return sorted[i].PricePerKg < sorted[j].PricePerKg
	})
	return sorted
}

func cartsEqual(a, b []CartItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

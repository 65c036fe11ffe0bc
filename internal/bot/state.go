package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"berrybot/internal/storage"
	"berrybot/pkg/redis"
)

// Dialogue steps. An empty step means the chat is idle.
const (
	StepAwaitingContact  = "awaiting_contact"
	StepAwaitingFullName = "awaiting_full_name"
	StepSelectingBerry   = "selecting_berry"
	StepEnteringQuantity = "entering_quantity"
	StepChoosingDate     = "choosing_date"
	StepChoosingTime     = "choosing_time"
)

// Session is the transient per-chat dialogue state: registration
// fields, the cart being built and the chosen delivery date. It lives
// only for the duration of an interactive session and is cleared on
// completion, cancellation or restart.
type Session struct {
	Step         string             `json:"step"`
	UserID       int64              `json:"user_id"`
	Phone        string             `json:"phone"`
	FullName     string             `json:"full_name"`
	CurrentBerry string             `json:"current_berry"`
	Cart         []storage.CartItem `json:"cart"`
	DeliveryDate string             `json:"delivery_date"`
}

// LoggedIn reports whether the chat passed contact verification.
func (s Session) LoggedIn() bool {
	return s.Phone != ""
}

// SessionStore keeps one Session per chat. Get returns a zero Session
// for chats without saved state.
type SessionStore interface {
	Get(ctx context.Context, chatID int64) (Session, error)
	Save(ctx context.Context, chatID int64, session Session) error
	Clear(ctx context.Context, chatID int64) error
}

// RedisSessionStore keeps sessions as JSON blobs with a TTL, so an
// abandoned dialogue eventually expires on its own.
type RedisSessionStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{
		redis: client,
		ttl:   ttl,
	}
}

func (s *RedisSessionStore) Get(ctx context.Context, chatID int64) (Session, error) {
	data, err := s.redis.Get(ctx, sessionKey(chatID))
	if errors.Is(err, redis.ErrKeyNotFound) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to get session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return Session{}, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return session, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, chatID int64, session Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(chatID), data, s.ttl); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Clear(ctx context.Context, chatID int64) error {
	if err := s.redis.Del(ctx, sessionKey(chatID)); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func sessionKey(chatID int64) string {
	return fmt.Sprintf("state:%d", chatID)
}

// MemorySessionStore is a process-local SessionStore. Used when no
// Redis address is configured, and in tests.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[int64]Session),
	}
}

func (s *MemorySessionStore) Get(ctx context.Context, chatID int64) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[chatID], nil
}

func (s *MemorySessionStore) Save(ctx context.Context, chatID int64, session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[chatID] = session
	return nil
}

func (s *MemorySessionStore) Clear(ctx context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, chatID)
	return nil
}

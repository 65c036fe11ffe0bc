package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"
)

var ErrUserNotFound = errors.New("user not found")

// UserStore keeps registered customers keyed by phone in one JSON
// document, rewritten whole on every mutation.
type UserStore struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

func NewUserStore(path string, logger *zap.Logger) *UserStore {
	return &UserStore{
		path:   path,
		logger: logger,
	}
}

func (s *UserStore) load() map[string]User {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]User{}
	}
	if err != nil {
		s.logger.Warn("Failed to read users file, treating as empty",
			zap.String("path", s.path),
			zap.Error(err))
		return map[string]User{}
	}

	var users map[string]User
	if err := json.Unmarshal(data, &users); err != nil || users == nil {
		// Quarantine the corrupt file so registrations keep working and
		// the broken data stays around for inspection.
		s.logger.Warn("Users file is corrupt, quarantining",
			zap.String("path", s.path),
			zap.Error(err))
		if renameErr := os.Rename(s.path, s.path+".corrupted"); renameErr != nil {
			s.logger.Error("Failed to quarantine users file", zap.Error(renameErr))
		}
		return map[string]User{}
	}
	return users
}

func (s *UserStore) save(users map[string]User) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal users: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".users-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write users: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace users file: %w", err)
	}
	return nil
}

func (s *UserStore) Get(ctx context.Context, phone string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.load()[phone]
	if !ok {
		return User{}, fmt.Errorf("phone %s: %w", phone, ErrUserNotFound)
	}
	return user, nil
}

// Upsert creates or overwrites the record for the user's phone.
func (s *UserStore) Upsert(ctx context.Context, user User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := s.load()
	users[user.Phone] = user
	return s.save(users)
}

// All returns every registered user, ordered by phone.
func (s *UserStore) All(ctx context.Context) ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byPhone := s.load()
	users := make([]User, 0, len(byPhone))
	for _, user := range byPhone {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Phone < users[j].Phone })
	return users, nil
}

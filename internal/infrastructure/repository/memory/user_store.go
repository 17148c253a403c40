package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kirillkom/medguard/internal/core/domain"
)

// UserStore holds practitioners and bearer sessions. Sessions are always kept
// here, even when the rest of the state lives in Postgres.
type UserStore struct {
	mu       sync.RWMutex
	users    map[string]domain.User
	sessions map[string]domain.Session
}

func NewUserStore() *UserStore {
	return &UserStore{
		users:    make(map[string]domain.User),
		sessions: make(map[string]domain.Session),
	}
}

func (s *UserStore) SaveUser(_ context.Context, user *domain.User) error {
	if user == nil || user.ID == "" {
		return domain.WrapError(domain.ErrInvalidInput, "save user", errors.New("user id is required"))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = *user
	return nil
}

func (s *UserStore) GetUser(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get user", fmt.Errorf("user %s", id))
	}
	return &user, nil
}

func (s *UserStore) FindByMedicalID(_ context.Context, medicalID string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.MedicalID == medicalID {
			cp := user
			return &cp, nil
		}
	}
	return nil, domain.WrapError(domain.ErrNotFound, "find user", fmt.Errorf("medical id %s", medicalID))
}

func (s *UserStore) CreateSession(_ context.Context, session *domain.Session) error {
	if session == nil || session.Token == "" {
		return domain.WrapError(domain.ErrInvalidInput, "create session", errors.New("token is required"))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = *session
	return nil
}

func (s *UserStore) GetSession(_ context.Context, token string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get session", errors.New("unknown token"))
	}
	return &session, nil
}

func (s *UserStore) DeleteSession(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[token]; !ok {
		return domain.WrapError(domain.ErrNotFound, "delete session", errors.New("unknown token"))
	}
	delete(s.sessions, token)
	return nil
}

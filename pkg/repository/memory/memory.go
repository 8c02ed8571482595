// Package memory keeps every repository in process memory. It backs
// SESSION_BACKEND=memory and the tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/blog/pkg/auth"
)

// UserRepository implements auth.UserRepository.
type UserRepository struct {
	mu    sync.RWMutex
	byID  map[uuid.UUID]auth.User
	email map[string]uuid.UUID
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:  make(map[uuid.UUID]auth.User),
		email: make(map[string]uuid.UUID),
	}
}

func (r *UserRepository) Create(_ context.Context, user auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.email[user.Email]; ok {
		return auth.ErrDuplicateEmail
	}
	user.Sessions = nil
	r.byID[user.ID] = user
	r.email[user.Email] = user.ID
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return auth.User{}, auth.ErrNotFound
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.email[email]
	if !ok {
		return auth.User{}, auth.ErrNotFound
	}
	return r.byID[id], nil
}

func (r *UserRepository) Update(_ context.Context, user auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.byID[user.ID]
	if !ok {
		return auth.ErrNotFound
	}
	if id, taken := r.email[user.Email]; taken && id != user.ID {
		return auth.ErrDuplicateEmail
	}
	delete(r.email, old.Email)
	user.Sessions = nil
	r.byID[user.ID] = user
	r.email[user.Email] = user.ID
	return nil
}

type sessionKey struct {
	userID uuid.UUID
	token  string
}

// SessionRepository implements auth.SessionRepository.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[sessionKey]auth.Session
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[sessionKey]auth.Session)}
}

func (r *SessionRepository) Add(_ context.Context, userID uuid.UUID, s auth.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sessionKey{userID, s.Token}] = s
	return nil
}

func (r *SessionRepository) Find(_ context.Context, userID uuid.UUID, token string) ([]auth.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sessionKey{userID, token}]
	if !ok {
		return nil, nil
	}
	return []auth.Session{s}, nil
}

func (r *SessionRepository) Delete(_ context.Context, userID uuid.UUID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionKey{userID, token})
	return nil
}

func (r *SessionRepository) DeleteExpired(_ context.Context, userID uuid.UUID, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for k, s := range r.sessions {
		if k.userID == userID && s.Expired(now) {
			delete(r.sessions, k)
			n++
		}
	}
	return n, nil
}

// Count returns the number of stored sessions of userID.
func (r *SessionRepository) Count(userID uuid.UUID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for k := range r.sessions {
		if k.userID == userID {
			n++
		}
	}
	return n
}

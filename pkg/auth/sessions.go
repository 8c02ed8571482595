package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
)

// SessionStore creates, resolves and removes refresh-token sessions.
type SessionStore struct {
	users      UserRepository
	sessions   SessionRepository
	ttl        time.Duration
	tokenBytes int
	now        func() time.Time
}

// SessionStoreOption customizes a SessionStore.
type SessionStoreOption func(*SessionStore)

// WithSessionClock overrides the clock used for expiry computation.
func WithSessionClock(now func() time.Time) SessionStoreOption {
	return func(s *SessionStore) { s.now = now }
}

// WithTokenBytes sets the number of random bytes behind each refresh token.
func WithTokenBytes(n int) SessionStoreOption {
	return func(s *SessionStore) { s.tokenBytes = n }
}

func NewSessionStore(users UserRepository, sessions SessionRepository, ttl time.Duration, opts ...SessionStoreOption) *SessionStore {
	s := &SessionStore{
		users:      users,
		sessions:   sessions,
		ttl:        ttl,
		tokenBytes: 64,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create appends a new session to the user and returns its refresh token.
func (s *SessionStore) Create(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := newRefreshToken(s.tokenBytes)
	if err != nil {
		return "", err
	}
	now := s.now()
	session := Session{Token: token, ExpiresAt: now.Add(s.ttl), CreatedAt: now}
	if err := s.sessions.Add(ctx, userID, session); err != nil {
		return "", Persistence("add session", err)
	}
	return token, nil
}

// FindByIdentityAndToken loads the user together with the sessions matching token.
// Expiry is not checked here.
func (s *SessionStore) FindByIdentityAndToken(ctx context.Context, userID uuid.UUID, token string) (User, error) {
	if token == "" {
		return User{}, ErrSessionNotFound
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrSessionNotFound
		}
		return User{}, Persistence("get user", err)
	}
	sessions, err := s.sessions.Find(ctx, userID, token)
	if err != nil {
		return User{}, Persistence("find session", err)
	}
	if len(sessions) == 0 {
		return User{}, ErrSessionNotFound
	}
	user.Sessions = sessions
	return user, nil
}

// Remove deletes the session with the given token. Missing sessions are ignored.
func (s *SessionStore) Remove(ctx context.Context, userID uuid.UUID, token string) error {
	return Persistence("delete session", s.sessions.Delete(ctx, userID, token))
}

// Prune deletes the user's sessions that have already expired.
func (s *SessionStore) Prune(ctx context.Context, userID uuid.UUID) (int, error) {
	n, err := s.sessions.DeleteExpired(ctx, userID, s.now())
	return n, Persistence("prune sessions", err)
}

func newRefreshToken(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

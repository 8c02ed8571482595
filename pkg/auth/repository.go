package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserRepository abstracts persistence of user records.
// Implementations return ErrNotFound for missing rows and ErrDuplicateEmail
// when the unique email constraint is violated.
type UserRepository interface {
	Create(ctx context.Context, user User) error
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Update(ctx context.Context, user User) error
}

// SessionRepository persists sessions keyed by (user id, token).
type SessionRepository interface {
	Add(ctx context.Context, userID uuid.UUID, s Session) error
	// Find returns the sessions of userID whose token equals token (zero or one).
	Find(ctx context.Context, userID uuid.UUID, token string) ([]Session, error)
	// Delete removes the (userID, token) session. Deleting a missing session is not an error.
	Delete(ctx context.Context, userID uuid.UUID, token string) error
	// DeleteExpired removes sessions of userID that expired at or before now.
	DeleteExpired(ctx context.Context, userID uuid.UUID, now time.Time) (int, error)
}

// TokenSigner issues and verifies short-lived access tokens.
type TokenSigner interface {
	Issue(ctx context.Context, userID string) (string, error)
	Verify(token string) (string, error)
}

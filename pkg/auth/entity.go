package auth

import (
	"time"

	"github.com/google/uuid"
)

// User is a domain entity representing a blog account.
// Sessions is populated only by lookups that resolve sessions.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	Sessions     []Session `json:"-"`
}

// Session is one refresh-token login owned by a user.
type Session struct {
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the session is no longer usable at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionFor returns the session with the given token, if the user carries one.
func (u User) SessionFor(token string) (Session, bool) {
	for _, s := range u.Sessions {
		if s.Token == token {
			return s, true
		}
	}
	return Session{}, false
}

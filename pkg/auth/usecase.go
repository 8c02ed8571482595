package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

// AuthUseCase describes authentication, session and account behavior.
type AuthUseCase interface {
	Register(ctx context.Context, in RegisterInput) (AuthResult, error)
	Login(ctx context.Context, email, password string) (AuthResult, error)
	RefreshAccessToken(ctx context.Context, user User) (string, error)
	Logout(ctx context.Context, userID uuid.UUID, refreshToken string) error
	UpdateUser(ctx context.Context, userID uuid.UUID, patch UserPatch) (User, error)
}

type RegisterInput struct {
	Email    string
	Password string
}

// UserPatch carries the user fields a client may change. Nil fields are left untouched.
type UserPatch struct {
	Email    *string
	Password *string
}

type AuthResult struct {
	User         User
	RefreshToken string
	AccessToken  string
}

type authService struct {
	users    UserRepository
	sessions *SessionStore
	tokens   TokenSigner
	log      *slog.Logger
	now      func() time.Time
	cost     int
}

// Option customizes the default AuthUseCase implementation.
type Option func(*authService)

func WithLogger(l *slog.Logger) Option { return func(s *authService) { s.log = l } }

func WithClock(now func() time.Time) Option { return func(s *authService) { s.now = now } }

// WithBcryptCost overrides bcrypt.DefaultCost; tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option { return func(s *authService) { s.cost = cost } }

// NewAuthService returns default implementation of AuthUseCase.
func NewAuthService(users UserRepository, sessions *SessionStore, tokens TokenSigner, opts ...Option) AuthUseCase {
	s := &authService{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		log:      slog.Default(),
		now:      func() time.Time { return time.Now().UTC() },
		cost:     bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return AuthResult{}, err
	}
	if err := validatePassword(in.Password); err != nil {
		return AuthResult{}, err
	}

	// Best-effort check; the unique index is authoritative.
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return AuthResult{}, ErrDuplicateEmail
	} else if !errors.Is(err, ErrNotFound) {
		return AuthResult{}, Persistence("get user by email", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return AuthResult{}, err
	}

	user := User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(passwordHash),
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return AuthResult{}, Persistence("create user", err)
	}
	return s.issue(ctx, user)
}

func (s *authService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, Persistence("get user by email", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return AuthResult{}, ErrInvalidCredentials
	}
	return s.issue(ctx, user)
}

func (s *authService) RefreshAccessToken(ctx context.Context, user User) (string, error) {
	return s.tokens.Issue(ctx, user.ID.String())
}

func (s *authService) Logout(ctx context.Context, userID uuid.UUID, refreshToken string) error {
	if err := s.sessions.Remove(ctx, userID, refreshToken); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "session removed", "user_id", userID)

	if n, err := s.sessions.Prune(ctx, userID); err != nil {
		s.log.WarnContext(ctx, "prune expired sessions", "user_id", userID, "error", err)
	} else if n > 0 {
		s.log.InfoContext(ctx, "expired sessions pruned", "user_id", userID, "count", n)
	}
	return nil
}

func (s *authService) UpdateUser(ctx context.Context, userID uuid.UUID, patch UserPatch) (User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return User{}, Persistence("get user", err)
	}
	if patch.Email != nil {
		email, err := normalizeEmail(*patch.Email)
		if err != nil {
			return User{}, err
		}
		if email != user.Email {
			if _, err := s.users.GetByEmail(ctx, email); err == nil {
				return User{}, ErrDuplicateEmail
			} else if !errors.Is(err, ErrNotFound) {
				return User{}, Persistence("get user by email", err)
			}
		}
		user.Email = email
	}
	if patch.Password != nil {
		if err := validatePassword(*patch.Password); err != nil {
			return User{}, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), s.cost)
		if err != nil {
			return User{}, err
		}
		user.PasswordHash = string(hash)
	}
	if err := s.users.Update(ctx, user); err != nil {
		return User{}, Persistence("update user", err)
	}
	return user, nil
}

// issue creates a session and an access token for an authenticated user.
func (s *authService) issue(ctx context.Context, user User) (AuthResult, error) {
	refreshToken, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return AuthResult{}, err
	}
	accessToken, err := s.tokens.Issue(ctx, user.ID.String())
	if err != nil {
		return AuthResult{}, err
	}
	s.log.InfoContext(ctx, "session created", "user_id", user.ID)
	return AuthResult{User: user, RefreshToken: refreshToken, AccessToken: accessToken}, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", ValidationError("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ValidationError("email is malformed")
	}
	return email, nil
}

func validatePassword(p string) error {
	if len(p) < minPasswordLen {
		return ValidationError("password must be at least 8 characters")
	}
	return nil
}

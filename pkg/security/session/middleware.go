// Package session implements the stateful auth gate, which admits a request only
// when it carries a refresh token of a stored, unexpired session.
package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/artem13815/blog/pkg/auth"
	"github.com/artem13815/blog/pkg/security"
)

// Finder resolves a user and its sessions by identity and refresh token.
type Finder interface {
	FindByIdentityAndToken(ctx context.Context, userID uuid.UUID, token string) (auth.User, error)
}

type Option func(*gate)

func WithClock(now func() time.Time) Option { return func(g *gate) { g.now = now } }

func WithRejectHook(fn security.RejectFunc) Option { return func(g *gate) { g.onReject = fn } }

type gate struct {
	finder   Finder
	now      func() time.Time
	onReject security.RejectFunc
}

// NewVerifyMiddleware returns a Fiber middleware reading x-refresh-token and _id.
// Expired sessions are rejected but left in the store.
func NewVerifyMiddleware(finder Finder, opts ...Option) fiber.Handler {
	g := &gate{finder: finder, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g.handle
}

func (g *gate) handle(c *fiber.Ctx) error {
	refreshToken := strings.TrimSpace(c.Get(security.HeaderRefreshToken))
	userID, err := uuid.Parse(strings.TrimSpace(c.Get(security.HeaderUserID)))
	if err != nil || refreshToken == "" {
		return g.reject(c, auth.ErrSessionNotFound)
	}

	user, err := g.finder.FindByIdentityAndToken(c.Context(), userID, refreshToken)
	if err != nil {
		return g.reject(c, err)
	}

	now := g.now()
	valid := false
	for _, s := range user.Sessions {
		if s.Token == refreshToken && !s.Expired(now) {
			valid = true
		}
	}
	if !valid {
		return g.reject(c, auth.ErrSessionExpired)
	}

	c.Locals(security.LocalUserID, user.ID.String())
	c.Locals(security.LocalUser, user)
	c.Locals(security.LocalRefreshToken, refreshToken)
	return c.Next()
}

func (g *gate) reject(c *fiber.Ctx, err error) error {
	kind := auth.Kind(err)
	if g.onReject != nil {
		g.onReject("verifySession", kind)
	}
	switch {
	case errors.Is(err, auth.ErrSessionNotFound):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"kind":    kind,
			"message": "User not found. Make sure that the refresh token and user id are correct",
		})
	case errors.Is(err, auth.ErrSessionExpired):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"kind":    kind,
			"message": "Refresh token has expired or the session is invalid",
		})
	default:
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"kind":    kind,
			"message": "session could not be verified",
		})
	}
}

// Package security holds the request-context contract shared by the auth gates
// and the handlers behind them.
package security

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/artem13815/blog/pkg/auth"
)

// Header names of the token wire contract.
const (
	HeaderAccessToken  = "x-access-token"
	HeaderRefreshToken = "x-refresh-token"
	HeaderUserID       = "_id"
)

// Fiber locals set by the gates.
const (
	LocalUserID       = "userId"
	LocalUser         = "user"
	LocalRefreshToken = "refreshToken"
)

// RejectFunc observes a gate rejection, e.g. for metrics.
type RejectFunc func(gate, kind string)

// UserID returns the identity attached by either gate.
func UserID(c *fiber.Ctx) (uuid.UUID, bool) {
	s, _ := c.Locals(LocalUserID).(string)
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// User returns the user record attached by the session gate.
func User(c *fiber.Ctx) (auth.User, bool) {
	u, ok := c.Locals(LocalUser).(auth.User)
	return u, ok
}

// RefreshToken returns the refresh token attached by the session gate.
func RefreshToken(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalRefreshToken).(string)
	return s
}

// Unauthorized halts the request with a 401 and a {kind, message} payload.
func Unauthorized(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"kind":    auth.Kind(err),
		"message": err.Error(),
	})
}

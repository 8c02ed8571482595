package jwt

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/blog/pkg/auth"
	"github.com/artem13815/blog/pkg/security"
)

// Verifier is the part of the signer the gate needs.
type Verifier interface {
	Verify(token string) (string, error)
}

// MiddlewareOption customizes the authenticate gate.
type MiddlewareOption func(*gate)

// WithRejectHook observes every rejection, e.g. for metrics.
func WithRejectHook(fn security.RejectFunc) MiddlewareOption {
	return func(g *gate) { g.onReject = fn }
}

type gate struct {
	verifier Verifier
	onReject security.RejectFunc
}

// NewAuthMiddleware returns a Fiber middleware that validates the access token
// carried in the x-access-token header.
// On success sets user id (subject) into c.Locals("userId").
func NewAuthMiddleware(v Verifier, opts ...MiddlewareOption) fiber.Handler {
	g := &gate{verifier: v}
	for _, opt := range opts {
		opt(g)
	}
	return g.handle
}

func (g *gate) handle(c *fiber.Ctx) error {
	tokenStr := strings.TrimSpace(c.Get(security.HeaderAccessToken))
	userID, err := g.verifier.Verify(tokenStr)
	if err != nil {
		if g.onReject != nil {
			g.onReject("authenticate", auth.Kind(err))
		}
		return security.Unauthorized(c, err)
	}
	c.Locals(security.LocalUserID, userID)
	return c.Next()
}

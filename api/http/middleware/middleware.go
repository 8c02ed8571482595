// Package middleware holds the cross-cutting Fiber handlers mounted in front of every route.
package middleware

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/oklog/ulid/v2"

	"github.com/artem13815/blog/pkg/security"
)

// RequestObserver receives one call per finished request.
type RequestObserver interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

// RequestID tags each request with a ULID, echoed in X-Request-ID.
func RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:    fiber.HeaderXRequestID,
		Generator: func() string { return ulid.Make().String() },
	})
}

// RequestLogger logs one http.request record per request.
func RequestLogger(log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Info("http.request",
			"method", c.Method(),
			"path", c.Path(),
			"status", statusOf(c, err),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
			"remote", c.IP(),
			"user_agent", c.Get(fiber.HeaderUserAgent),
		)
		return err
	}
}

// Metrics reports every request to obs, labelled by route pattern. The method is
// copied because Fiber reuses the request buffer it points into.
func Metrics(obs RequestObserver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		obs.ObserveRequest(utils.CopyString(c.Method()), c.Route().Path, statusOf(c, err), time.Since(start))
		return err
	}
}

// CORS lets browser clients send and read the token headers.
func CORS(allowOrigins string) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: "GET,POST,PATCH,PUT,DELETE,HEAD,OPTIONS",
		AllowHeaders: strings.Join([]string{
			fiber.HeaderOrigin,
			fiber.HeaderXRequestedWith,
			fiber.HeaderContentType,
			fiber.HeaderAccept,
			security.HeaderUserID,
			security.HeaderAccessToken,
			security.HeaderRefreshToken,
		}, ","),
		ExposeHeaders: security.HeaderAccessToken + "," + security.HeaderRefreshToken,
	})
}

// statusOf predicts the status the error handler will write for err.
func statusOf(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

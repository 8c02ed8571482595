package http

import (
	"log/slog"
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"

	"github.com/artem13815/blog/api/http/handlers"
	"github.com/artem13815/blog/api/http/middleware"
)

// Routes carries everything the router mounts.
type Routes struct {
	Auth     *handlers.AuthHandler
	Posts    *handlers.PostHandler
	Comments *handlers.CommentHandler
	Health   *handlers.HealthHandler

	// Authenticate checks the access token, VerifySession the refresh token.
	Authenticate  fiber.Handler
	VerifySession fiber.Handler

	Logger       *slog.Logger
	Observer     middleware.RequestObserver
	Metrics      nethttp.Handler
	AllowOrigins string
}

// Register wires middleware and all HTTP routes onto given Fiber app.
func Register(app *fiber.App, r Routes) {
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	if r.Logger != nil {
		app.Use(middleware.RequestLogger(r.Logger))
	}
	if r.Observer != nil {
		app.Use(middleware.Metrics(r.Observer))
	}
	app.Use(middleware.CORS(r.AllowOrigins))

	// Health and readiness endpoints for probes/monitoring
	app.Get("/health", r.Health.Health)
	app.Get("/ready", r.Health.Ready)
	if r.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(r.Metrics))
	}
	app.Get("/swagger/*", swagger.HandlerDefault)

	u := app.Group("/users")
	u.Post("/", r.Auth.Register)
	u.Post("/login", r.Auth.Login)
	u.Get("/me/access-token", r.VerifySession, r.Auth.AccessToken)
	u.Delete("/session", r.VerifySession, r.Auth.Logout)
	u.Patch("/:id", r.Authenticate, r.Auth.UpdateUser)

	p := app.Group("/posts")
	p.Get("/", r.Posts.List)
	p.Post("/", r.Authenticate, r.Posts.Create)
	p.Get("/:postId", r.Posts.Get)
	p.Patch("/:id", r.Authenticate, r.Posts.Update)
	p.Delete("/:id", r.Authenticate, r.Posts.Delete)
	p.Get("/:postId/comments", r.Comments.List)
	p.Post("/:postId/comments", r.Authenticate, r.Comments.Create)
}

// @title         blog API
// @version       1.0
// @description   Blog backend with access/refresh token sessions.
// @BasePath      /
// @schemes       http
// @host          localhost:8080
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	_ "github.com/artem13815/blog/docs"

	// internal imports
	httpapi "github.com/artem13815/blog/api/http"
	"github.com/artem13815/blog/api/http/handlers"
	"github.com/artem13815/blog/pkg/auth"
	"github.com/artem13815/blog/pkg/comment"
	"github.com/artem13815/blog/pkg/config"
	"github.com/artem13815/blog/pkg/health"
	"github.com/artem13815/blog/pkg/health/checkers"
	"github.com/artem13815/blog/pkg/logging"
	"github.com/artem13815/blog/pkg/metrics"
	"github.com/artem13815/blog/pkg/post"
	"github.com/artem13815/blog/pkg/repository/memory"
	pgrepo "github.com/artem13815/blog/pkg/repository/postgres"
	redisrepo "github.com/artem13815/blog/pkg/repository/redis"
	"github.com/artem13815/blog/pkg/security/jwt"
	"github.com/artem13815/blog/pkg/security/session"
	"github.com/artem13815/blog/pkg/storage/postgres"
	"github.com/artem13815/blog/pkg/storage/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration from env/.env and the optional YAML file
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

type storage struct {
	users    auth.UserRepository
	sessions auth.SessionRepository
	posts    post.Repository
	comments comment.Repository
	checkers []health.Checker
	closers  []func()
}

func (s *storage) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// openStorage picks repositories for the configured session backend. Users,
// posts and comments live in postgres unless everything runs in memory.
func openStorage(ctx context.Context, cfg config.Config, log *slog.Logger) (*storage, error) {
	st := &storage{}
	if cfg.SessionBackend == config.BackendMemory {
		st.users = memory.NewUserRepository()
		st.sessions = memory.NewSessionRepository()
		st.posts = memory.NewPostRepository()
		st.comments = memory.NewCommentRepository()
		log.Warn("running with in-memory storage; data is lost on restart")
		return st, nil
	}

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	st.closers = append(st.closers, pool.Close)
	if err := postgres.Migrate(ctx, pool); err != nil {
		st.close()
		return nil, err
	}
	st.users = pgrepo.NewUserRepository(pool)
	st.sessions = pgrepo.NewSessionRepository(pool)
	st.posts = pgrepo.NewPostRepository(pool)
	st.comments = pgrepo.NewCommentRepository(pool)
	st.checkers = append(st.checkers, checkers.NewPostgresChecker(pool))

	if cfg.SessionBackend == config.BackendRedis {
		client, err := redis.Connect(ctx, redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			st.close()
			return nil, err
		}
		st.closers = append(st.closers, func() { _ = client.Close() })
		st.sessions = redisrepo.NewSessionRepository(client)
		st.checkers = append(st.checkers, checkers.NewRedisChecker(client))
	}
	log.Info("storage ready", "session_backend", cfg.SessionBackend)
	return st, nil
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	st, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	m := metrics.New()

	// Wire dependencies (Clean Architecture)
	signer := jwt.NewSigner([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.AccessTokenTTL)
	store := auth.NewSessionStore(st.users, st.sessions, cfg.RefreshTokenTTL, auth.WithTokenBytes(cfg.RefreshTokenBytes))
	authUC := auth.NewAuthService(st.users, store, signer, auth.WithLogger(log))

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	httpapi.Register(app, httpapi.Routes{
		Auth:          handlers.NewAuthHandler(authUC),
		Posts:         handlers.NewPostHandler(post.NewService(st.posts)),
		Comments:      handlers.NewCommentHandler(comment.NewService(st.comments, st.posts)),
		Health:        handlers.NewHealthHandler(health.NewService(st.checkers...)),
		Authenticate:  jwt.NewAuthMiddleware(signer, jwt.WithRejectHook(m.ObserveRejection)),
		VerifySession: session.NewVerifyMiddleware(store, session.WithRejectHook(m.ObserveRejection)),
		Logger:        log,
		Observer:      m,
		Metrics:       m.Handler(),
		AllowOrigins:  cfg.CORSAllowOrigins,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "port", cfg.Port)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	httpapi "github.com/artem13815/blog/api/http"
	"github.com/artem13815/blog/api/http/handlers"
	"github.com/artem13815/blog/pkg/auth"
	"github.com/artem13815/blog/pkg/comment"
	"github.com/artem13815/blog/pkg/health"
	"github.com/artem13815/blog/pkg/metrics"
	"github.com/artem13815/blog/pkg/post"
	"github.com/artem13815/blog/pkg/repository/memory"
	"github.com/artem13815/blog/pkg/security/jwt"
	"github.com/artem13815/blog/pkg/security/session"
)

type server struct {
	app      *fiber.App
	now      time.Time
	sessions *memory.SessionRepository
}

func newServer(t *testing.T) *server {
	t.Helper()
	s := &server{now: time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return s.now }

	users := memory.NewUserRepository()
	s.sessions = memory.NewSessionRepository()
	posts := memory.NewPostRepository()
	m := metrics.New()

	store := auth.NewSessionStore(users, s.sessions, 240*time.Hour, auth.WithSessionClock(clock))
	signer := jwt.NewSigner([]byte("test-secret"), "blog", 15*time.Minute, jwt.WithClock(clock))
	authUC := auth.NewAuthService(users, store, signer,
		auth.WithClock(clock),
		auth.WithBcryptCost(bcrypt.MinCost),
		auth.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	s.app = fiber.New()
	httpapi.Register(s.app, httpapi.Routes{
		Auth:          handlers.NewAuthHandler(authUC),
		Posts:         handlers.NewPostHandler(post.NewService(posts)),
		Comments:      handlers.NewCommentHandler(comment.NewService(memory.NewCommentRepository(), posts)),
		Health:        handlers.NewHealthHandler(health.NewService()),
		Authenticate:  jwt.NewAuthMiddleware(signer, jwt.WithRejectHook(m.ObserveRejection)),
		VerifySession: session.NewVerifyMiddleware(store, session.WithClock(clock), session.WithRejectHook(m.ObserveRejection)),
		Observer:      m,
		Metrics:       m.Handler(),
		AllowOrigins:  "*",
	})
	return s
}

func (s *server) do(t *testing.T, method, path string, body any, headers map[string]string) (*nethttp.Response, map[string]any) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp, out
}

type credentials struct {
	id, refresh, access string
}

func (s *server) register(t *testing.T, email, password string) credentials {
	t.Helper()
	resp, body := s.do(t, nethttp.MethodPost, "/users", map[string]string{"email": email, "password": password}, nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode, body)
	return credentials{
		id:      body["id"].(string),
		refresh: resp.Header.Get("x-refresh-token"),
		access:  resp.Header.Get("x-access-token"),
	}
}

func TestRegisterThenRefreshAccessToken(t *testing.T) {
	s := newServer(t)
	c := s.register(t, "Alice@Example.com", "correct-horse")
	require.NotEmpty(t, c.refresh)
	require.NotEmpty(t, c.access)

	resp, body := s.do(t, nethttp.MethodGet, "/users/me/access-token", nil, map[string]string{
		"_id": c.id, "x-refresh-token": c.refresh,
	})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["accessToken"])
	assert.Equal(t, body["accessToken"], resp.Header.Get("x-access-token"))
}

func TestRegister_BodyHidesSecrets(t *testing.T) {
	s := newServer(t)
	resp, body := s.do(t, nethttp.MethodPost, "/users", map[string]string{"email": "bob@example.com", "password": "longenough"}, nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, "bob@example.com", body["email"])
	assert.NotContains(t, body, "passwordHash")
	assert.NotContains(t, body, "sessions")

	resp, body = s.do(t, nethttp.MethodPost, "/users", map[string]string{"email": "bob@example.com", "password": "longenough"}, nil)
	assert.Equal(t, nethttp.StatusConflict, resp.StatusCode)
	assert.Equal(t, "duplicate_email", body["kind"])

	resp, body = s.do(t, nethttp.MethodPost, "/users", map[string]string{"email": "not-an-email", "password": "longenough"}, nil)
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation_error", body["kind"])
}

func TestLogin(t *testing.T) {
	s := newServer(t)
	c := s.register(t, "carol@example.com", "password-1")

	resp, body := s.do(t, nethttp.MethodPost, "/users/login", map[string]string{"email": "carol@example.com", "password": "wrong-pass"}, nil)
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid_credentials", body["kind"])
	assert.Empty(t, resp.Header.Get("x-refresh-token"))

	resp, body = s.do(t, nethttp.MethodPost, "/users/login", map[string]string{"email": "carol@example.com", "password": "password-1"}, nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, c.id, body["id"])
	assert.NotEqual(t, c.refresh, resp.Header.Get("x-refresh-token"))
}

func TestLogoutRemovesOnlyThatSession(t *testing.T) {
	s := newServer(t)
	first := s.register(t, "dave@example.com", "password-1")
	resp, _ := s.do(t, nethttp.MethodPost, "/users/login", map[string]string{"email": "dave@example.com", "password": "password-1"}, nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	second := resp.Header.Get("x-refresh-token")

	resp, _ = s.do(t, nethttp.MethodDelete, "/users/session", nil, map[string]string{"_id": first.id, "x-refresh-token": first.refresh})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	resp, body := s.do(t, nethttp.MethodGet, "/users/me/access-token", nil, map[string]string{"_id": first.id, "x-refresh-token": first.refresh})
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "session_not_found", body["kind"])

	resp, _ = s.do(t, nethttp.MethodGet, "/users/me/access-token", nil, map[string]string{"_id": first.id, "x-refresh-token": second})
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
}

func TestExpiredSessionIsRejectedButKept(t *testing.T) {
	s := newServer(t)
	c := s.register(t, "erin@example.com", "password-1")

	s.now = s.now.Add(240*time.Hour + time.Second)
	resp, body := s.do(t, nethttp.MethodGet, "/users/me/access-token", nil, map[string]string{"_id": c.id, "x-refresh-token": c.refresh})
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "session_expired", body["kind"])
	assert.Equal(t, "Refresh token has expired or the session is invalid", body["message"])
}

func TestAuthenticatedPostsAndComments(t *testing.T) {
	s := newServer(t)
	c := s.register(t, "frank@example.com", "password-1")
	authz := map[string]string{"x-access-token": c.access}

	resp, body := s.do(t, nethttp.MethodPost, "/posts", map[string]string{"title": "Hello", "body": "world"}, nil)
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "missing_token", body["kind"])

	resp, body = s.do(t, nethttp.MethodPost, "/posts", map[string]string{"title": "Hello", "body": "world"}, authz)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	postID := body["id"].(string)

	resp, body = s.do(t, nethttp.MethodPatch, "/posts/"+postID, map[string]string{"body": "edited"}, authz)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, "Hello", body["title"])
	assert.Equal(t, "edited", body["body"])

	resp, body = s.do(t, nethttp.MethodPost, "/posts/"+postID+"/comments", map[string]string{"name": "gina", "body": "nice"}, authz)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, postID, body["postId"])

	req := httptest.NewRequest(nethttp.MethodGet, "/posts/"+postID+"/comments", nil)
	raw, err := s.app.Test(req)
	require.NoError(t, err)
	var list []map[string]any
	require.NoError(t, json.NewDecoder(raw.Body).Decode(&list))
	raw.Body.Close()
	assert.Len(t, list, 1)

	resp, body = s.do(t, nethttp.MethodDelete, "/posts/"+postID, nil, authz)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, "Hello", body["title"])

	resp, body = s.do(t, nethttp.MethodGet, "/posts/"+postID, nil, nil)
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", body["kind"])
}

func TestAuthenticate_RejectsForeignSignature(t *testing.T) {
	s := newServer(t)
	forged, err := jwt.NewSigner([]byte("other-secret"), "blog", time.Minute).Issue(t.Context(), "someone")
	require.NoError(t, err)

	resp, body := s.do(t, nethttp.MethodPost, "/posts", map[string]string{"title": "x"}, map[string]string{"x-access-token": forged})
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid_signature", body["kind"])

	metricsResp, err := s.app.Test(httptest.NewRequest(nethttp.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	raw, err := io.ReadAll(metricsResp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), `blog_auth_gate_rejections_total{gate="authenticate",kind="invalid_signature"} 1`))
}

func TestUpdateUser(t *testing.T) {
	s := newServer(t)
	alice := s.register(t, "alice@example.com", "password-1")
	bob := s.register(t, "bob@example.com", "password-1")

	resp, body := s.do(t, nethttp.MethodPatch, "/users/"+bob.id, map[string]string{"email": "x@example.com"}, map[string]string{"x-access-token": alice.access})
	assert.Equal(t, nethttp.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "forbidden", body["kind"])

	resp, body = s.do(t, nethttp.MethodPatch, "/users/"+alice.id, map[string]string{"email": "bob@example.com"}, map[string]string{"x-access-token": alice.access})
	assert.Equal(t, nethttp.StatusConflict, resp.StatusCode)

	resp, body = s.do(t, nethttp.MethodPatch, "/users/"+alice.id, map[string]string{"email": "alice2@example.com"}, map[string]string{"x-access-token": alice.access})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice2@example.com", body["email"])

	// Sessions survive the update.
	resp, _ = s.do(t, nethttp.MethodGet, "/users/me/access-token", nil, map[string]string{"_id": alice.id, "x-refresh-token": alice.refresh})
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	resp, body := s.do(t, nethttp.MethodGet, "/health", nil, nil)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])

	resp, body = s.do(t, nethttp.MethodGet, "/ready", nil, nil)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, "ready", body["status"])
}

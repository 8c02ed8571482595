// Package redis stores sessions as one hash per user: field = refresh token,
// value = "<expiresAt>:<createdAt>" in unix nanoseconds.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/artem13815/blog/pkg/auth"
)

const keyPrefix = "blog:sessions:"

type SessionRepository struct {
	rdb goredis.Cmdable
}

func NewSessionRepository(rdb goredis.Cmdable) *SessionRepository {
	return &SessionRepository{rdb: rdb}
}

func sessionsKey(userID uuid.UUID) string { return keyPrefix + userID.String() }

func (r *SessionRepository) Add(ctx context.Context, userID uuid.UUID, s auth.Session) error {
	return r.rdb.HSet(ctx, sessionsKey(userID), s.Token, encode(s)).Err()
}

func (r *SessionRepository) Find(ctx context.Context, userID uuid.UUID, token string) ([]auth.Session, error) {
	val, err := r.rdb.HGet(ctx, sessionsKey(userID), token).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s, err := decode(token, val)
	if err != nil {
		return nil, err
	}
	return []auth.Session{s}, nil
}

func (r *SessionRepository) Delete(ctx context.Context, userID uuid.UUID, token string) error {
	return r.rdb.HDel(ctx, sessionsKey(userID), token).Err()
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	key := sessionsKey(userID)
	all, err := r.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	var expired []string
	for token, val := range all {
		s, err := decode(token, val)
		// Undecodable entries can never authenticate; drop them with the expired ones.
		if err != nil || s.Expired(now) {
			expired = append(expired, token)
		}
	}
	if len(expired) == 0 {
		return 0, nil
	}
	n, err := r.rdb.HDel(ctx, key, expired...).Result()
	return int(n), err
}

func encode(s auth.Session) string {
	return strconv.FormatInt(s.ExpiresAt.UnixNano(), 10) + ":" + strconv.FormatInt(s.CreatedAt.UnixNano(), 10)
}

func decode(token, val string) (auth.Session, error) {
	exp, created, ok := strings.Cut(val, ":")
	if !ok {
		return auth.Session{}, fmt.Errorf("malformed session value %q", val)
	}
	expNs, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return auth.Session{}, fmt.Errorf("parse expires_at: %w", err)
	}
	createdNs, err := strconv.ParseInt(created, 10, 64)
	if err != nil {
		return auth.Session{}, fmt.Errorf("parse created_at: %w", err)
	}
	return auth.Session{
		Token:     token,
		ExpiresAt: time.Unix(0, expNs).UTC(),
		CreatedAt: time.Unix(0, createdNs).UTC(),
	}, nil
}

var _ auth.SessionRepository = (*SessionRepository)(nil)

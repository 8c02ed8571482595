package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/blog/pkg/auth"
)

// SessionRepository stores sessions in a table keyed by (user_id, token).
type SessionRepository struct {
	db DB
}

func NewSessionRepository(db DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Add(ctx context.Context, userID uuid.UUID, s auth.Session) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO sessions (user_id, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`, userID, s.Token, s.ExpiresAt, s.CreatedAt)
	return err
}

func (r *SessionRepository) Find(ctx context.Context, userID uuid.UUID, token string) ([]auth.Session, error) {
	rows, err := r.db.Query(ctx, `
		SELECT token, expires_at, created_at
		FROM sessions WHERE user_id = $1 AND token = $2
	`, userID, token)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []auth.Session
	for rows.Next() {
		var s auth.Session
		if err := rows.Scan(&s.Token, &s.ExpiresAt, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.ExpiresAt = s.ExpiresAt.UTC()
		s.CreatedAt = s.CreatedAt.UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SessionRepository) Delete(ctx context.Context, userID uuid.UUID, token string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1 AND token = $2`, userID, token)
	return err
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1 AND expires_at <= $2`, userID, now)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

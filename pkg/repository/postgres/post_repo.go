package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/artem13815/blog/pkg/auth"
	"github.com/artem13815/blog/pkg/post"
)

// PostRepository хранит посты блога.
type PostRepository struct {
	db DB
}

func NewPostRepository(db DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, p post.Post) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	_, err := r.db.Exec(ctx, `
INSERT INTO posts (id, title, body, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)
`, p.ID, strings.TrimSpace(p.Title), p.Body, p.CreatedAt, p.UpdatedAt)
	return auth.Persistence("create post", err)
}

func (r *PostRepository) GetByID(ctx context.Context, id uuid.UUID) (post.Post, error) {
	row := r.db.QueryRow(ctx, `
SELECT id, title, body, created_at, updated_at FROM posts WHERE id = $1
`, id)
	p, err := scanPost(row)
	return p, auth.Persistence("get post", err)
}

func (r *PostRepository) List(ctx context.Context) ([]post.Post, error) {
	rows, err := r.db.Query(ctx, `
SELECT id, title, body, created_at, updated_at FROM posts ORDER BY created_at DESC
`)
	if err != nil {
		return nil, auth.Persistence("list posts", err)
	}
	defer rows.Close()
	out := []post.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, auth.Persistence("scan post", err)
		}
		out = append(out, p)
	}
	return out, auth.Persistence("list posts", rows.Err())
}

// Update applies only the non-nil fields of patch.
func (r *PostRepository) Update(ctx context.Context, id uuid.UUID, patch post.Patch, now time.Time) error {
	tag, err := r.db.Exec(ctx, `
UPDATE posts
SET title = COALESCE($2, title),
    body = COALESCE($3, body),
    updated_at = $4
WHERE id = $1
`, id, patch.Title, patch.Body, now)
	if err != nil {
		return auth.Persistence("update post", err)
	}
	if tag.RowsAffected() == 0 {
		return post.ErrNotFound
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id uuid.UUID) (post.Post, error) {
	row := r.db.QueryRow(ctx, `
DELETE FROM posts WHERE id = $1
RETURNING id, title, body, created_at, updated_at
`, id)
	p, err := scanPost(row)
	return p, auth.Persistence("delete post", err)
}

func scanPost(row pgx.Row) (post.Post, error) {
	var p post.Post
	if err := row.Scan(&p.ID, &p.Title, &p.Body, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return post.Post{}, post.ErrNotFound
		}
		return post.Post{}, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/artem13815/blog/pkg/auth"
	"github.com/artem13815/blog/pkg/comment"
)

type CommentRepository struct {
	db DB
}

func NewCommentRepository(db DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, c comment.Comment) error {
	_, err := r.db.Exec(ctx, `
INSERT INTO comments (id, post_id, name, body, created_at)
VALUES ($1, $2, $3, $4, $5)
`, c.ID, c.PostID, c.Name, c.Body, c.CreatedAt)
	return auth.Persistence("create comment", err)
}

func (r *CommentRepository) ListByPost(ctx context.Context, postID uuid.UUID) ([]comment.Comment, error) {
	rows, err := r.db.Query(ctx, `
SELECT id, post_id, name, body, created_at
FROM comments WHERE post_id = $1 ORDER BY created_at
`, postID)
	if err != nil {
		return nil, auth.Persistence("list comments", err)
	}
	defer rows.Close()
	out := []comment.Comment{}
	for rows.Next() {
		var c comment.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.Name, &c.Body, &c.CreatedAt); err != nil {
			return nil, auth.Persistence("scan comment", err)
		}
		c.CreatedAt = c.CreatedAt.UTC()
		out = append(out, c)
	}
	return out, auth.Persistence("list comments", rows.Err())
}

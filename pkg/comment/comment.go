package comment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/blog/pkg/auth"
	"github.com/artem13815/blog/pkg/post"
)

// Comment belongs to exactly one post.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	PostID    uuid.UUID `json:"postId"`
	Name      string    `json:"name"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

var ErrValidation = auth.ValidationError("name and body are required")

type Repository interface {
	Create(ctx context.Context, c Comment) error
	ListByPost(ctx context.Context, postID uuid.UUID) ([]Comment, error)
}

type UseCase interface {
	Create(ctx context.Context, postID uuid.UUID, name, body string) (Comment, error)
	ListByPost(ctx context.Context, postID uuid.UUID) ([]Comment, error)
}

type service struct {
	repo  Repository
	posts post.Repository
	now   func() time.Time
}

func NewService(repo Repository, posts post.Repository) UseCase {
	return &service{repo: repo, posts: posts, now: func() time.Time { return time.Now().UTC() }}
}

// Create adds a comment to an existing post; unknown posts yield post.ErrNotFound.
func (s *service) Create(ctx context.Context, postID uuid.UUID, name, body string) (Comment, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.TrimSpace(body) == "" {
		return Comment{}, ErrValidation
	}
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return Comment{}, err
	}
	c := Comment{ID: uuid.New(), PostID: postID, Name: name, Body: body, CreatedAt: s.now()}
	if err := s.repo.Create(ctx, c); err != nil {
		return Comment{}, err
	}
	return c, nil
}

func (s *service) ListByPost(ctx context.Context, postID uuid.UUID) ([]Comment, error) {
	return s.repo.ListByPost(ctx, postID)
}

package post

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/blog/pkg/auth"
)

// UseCase covers CRUD on posts.
type UseCase interface {
	Create(ctx context.Context, title, body string) (Post, error)
	Get(ctx context.Context, id uuid.UUID) (Post, error)
	List(ctx context.Context) ([]Post, error)
	Update(ctx context.Context, id uuid.UUID, patch Patch) error
	Delete(ctx context.Context, id uuid.UUID) (Post, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) UseCase {
	return &service{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

func (s *service) Create(ctx context.Context, title, body string) (Post, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Post{}, ErrValidation("title is required")
	}
	now := s.now()
	p := Post{ID: uuid.New(), Title: title, Body: body, CreatedAt: now, UpdatedAt: now}
	if err := s.repo.Create(ctx, p); err != nil {
		return Post{}, err
	}
	return p, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (Post, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]Post, error) {
	return s.repo.List(ctx)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, patch Patch) error {
	if patch.Title != nil {
		t := strings.TrimSpace(*patch.Title)
		if t == "" {
			return ErrValidation("title must not be empty")
		}
		patch.Title = &t
	}
	return s.repo.Update(ctx, id, patch, s.now())
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) (Post, error) {
	return s.repo.Delete(ctx, id)
}

// ErrValidation простая ошибка валидации.
type ErrValidation string

func (e ErrValidation) Error() string { return string(e) }

func (e ErrValidation) Is(target error) bool { return target == auth.ErrValidation }

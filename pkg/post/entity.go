package post

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/blog/pkg/auth"
)

// Post is a blog entry.
type Post struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Patch holds the fields of a partial update. Nil fields are left untouched.
type Patch struct {
	Title *string
	Body  *string
}

var ErrNotFound = fmt.Errorf("post %w", auth.ErrNotFound)

// Repository is the persistence port for posts.
type Repository interface {
	Create(ctx context.Context, p Post) error
	GetByID(ctx context.Context, id uuid.UUID) (Post, error)
	List(ctx context.Context) ([]Post, error)
	Update(ctx context.Context, id uuid.UUID, patch Patch, now time.Time) error
	// Delete removes the post and returns it as it was before removal.
	Delete(ctx context.Context, id uuid.UUID) (Post, error)
}

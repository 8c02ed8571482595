package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/blog/pkg/comment"
	"github.com/artem13815/blog/pkg/post"
)

// PostRepository implements post.Repository.
type PostRepository struct {
	mu    sync.RWMutex
	posts map[uuid.UUID]post.Post
}

func NewPostRepository() *PostRepository {
	return &PostRepository{posts: make(map[uuid.UUID]post.Post)}
}

func (r *PostRepository) Create(_ context.Context, p post.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts[p.ID] = p
	return nil
}

func (r *PostRepository) GetByID(_ context.Context, id uuid.UUID) (post.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.posts[id]
	if !ok {
		return post.Post{}, post.ErrNotFound
	}
	return p, nil
}

// List returns posts newest first.
func (r *PostRepository) List(_ context.Context) ([]post.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]post.Post, 0, len(r.posts))
	for _, p := range r.posts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *PostRepository) Update(_ context.Context, id uuid.UUID, patch post.Patch, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return post.ErrNotFound
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Body != nil {
		p.Body = *patch.Body
	}
	p.UpdatedAt = now
	r.posts[id] = p
	return nil
}

func (r *PostRepository) Delete(_ context.Context, id uuid.UUID) (post.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return post.Post{}, post.ErrNotFound
	}
	delete(r.posts, id)
	return p, nil
}

// CommentRepository implements comment.Repository.
type CommentRepository struct {
	mu       sync.RWMutex
	comments []comment.Comment
}

func NewCommentRepository() *CommentRepository { return &CommentRepository{} }

func (r *CommentRepository) Create(_ context.Context, c comment.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.comments = append(r.comments, c)
	return nil
}

// ListByPost returns comments in insertion order.
func (r *CommentRepository) ListByPost(_ context.Context, postID uuid.UUID) ([]comment.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []comment.Comment
	for _, c := range r.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

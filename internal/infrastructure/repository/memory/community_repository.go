package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/kirillkom/medguard/internal/core/domain"
)

type CommunityRepository struct {
	mu    sync.RWMutex
	posts map[string]*domain.Post
	order []string
}

func NewCommunityRepository() *CommunityRepository {
	return &CommunityRepository{posts: make(map[string]*domain.Post)}
}

func (r *CommunityRepository) CreatePost(_ context.Context, post *domain.Post) error {
	if post == nil || post.ID == "" {
		return domain.WrapError(domain.ErrInvalidInput, "create post", errors.New("post id is required"))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.posts[post.ID]; exists {
		return domain.WrapError(domain.ErrInvalidInput, "create post", fmt.Errorf("duplicate post id %s", post.ID))
	}
	cp := clonePost(*post)
	r.posts[post.ID] = &cp
	r.order = append(r.order, post.ID)
	return nil
}

func (r *CommunityRepository) GetPost(_ context.Context, id string) (*domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get post", fmt.Errorf("post %s", id))
	}
	cp := clonePost(*post)
	return &cp, nil
}

func (r *CommunityRepository) ListPosts(context.Context) ([]domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Post, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		out = append(out, clonePost(*r.posts[r.order[i]]))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *CommunityRepository) AddComment(_ context.Context, postID string, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[postID]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "add comment", fmt.Errorf("post %s", postID))
	}
	post.Comments = append(post.Comments, *comment)
	return nil
}

func (r *CommunityRepository) SetLike(_ context.Context, postID, userID string, liked bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[postID]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "set like", fmt.Errorf("post %s", postID))
	}
	kept := post.LikedBy[:0]
	for _, id := range post.LikedBy {
		if id != userID {
			kept = append(kept, id)
		}
	}
	if liked {
		kept = append(kept, userID)
	}
	post.LikedBy = kept
	return nil
}

func clonePost(p domain.Post) domain.Post {
	p.LikedBy = append([]string(nil), p.LikedBy...)
	p.Comments = append([]domain.Comment(nil), p.Comments...)
	p.Tags = append([]string(nil), p.Tags...)
	return p
}

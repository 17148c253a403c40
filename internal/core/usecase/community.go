package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/medguard/internal/core/domain"
	"github.com/kirillkom/medguard/internal/core/ports"
)

type CommunityUseCase struct {
	repo     ports.CommunityRepository
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

func NewCommunityUseCase(repo ports.CommunityRepository, notifier Notifier) *CommunityUseCase {
	return &CommunityUseCase{
		repo:     repo,
		notifier: notifier,
		logger:   slog.Default(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (uc *CommunityUseCase) ListPosts(ctx context.Context) ([]domain.Post, error) {
	posts, err := uc.repo.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (uc *CommunityUseCase) CreatePost(ctx context.Context, user domain.User, content string) (*domain.Post, error) {
	if strings.TrimSpace(content) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create post", errors.New("content is required"))
	}
	post := &domain.Post{
		ID:        uuid.NewString(),
		Author:    user.Name,
		AuthorID:  user.ID,
		Content:   content,
		Comments:  []domain.Comment{},
		Tags:      []string{domain.DefaultPostTag},
		CreatedAt: uc.now(),
	}
	if err := uc.repo.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// AddComment appends a comment and pings the post author when someone else replies.
func (uc *CommunityUseCase) AddComment(ctx context.Context, user domain.User, postID, content string) (*domain.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "add comment", errors.New("content is required"))
	}
	post, err := uc.repo.GetPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}

	comment := &domain.Comment{
		ID:        uuid.NewString(),
		Author:    user.Name,
		AuthorID:  user.ID,
		Content:   content,
		CreatedAt: uc.now(),
	}
	if err := uc.repo.AddComment(ctx, post.ID, comment); err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}

	if uc.notifier != nil && post.AuthorID != "" && post.AuthorID != user.ID {
		message := fmt.Sprintf("%s replied to your post.", user.Name)
		if err := uc.notifier.Push(ctx, post.AuthorID, domain.NotificationCommunity, "New Discussion Pulse", message); err != nil {
			uc.logger.Warn("comment_notification_failed", "post_id", post.ID, "error", err)
		}
	}
	return comment, nil
}

func (uc *CommunityUseCase) ToggleLike(ctx context.Context, user domain.User, postID string) (*domain.Post, error) {
	post, err := uc.repo.GetPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	if err := uc.repo.SetLike(ctx, post.ID, user.ID, !post.IsLikedBy(user.ID)); err != nil {
		return nil, fmt.Errorf("set like: %w", err)
	}
	updated, err := uc.repo.GetPost(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("reload post: %w", err)
	}
	return updated, nil
}

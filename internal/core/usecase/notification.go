package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/medguard/internal/core/domain"
	"github.com/kirillkom/medguard/internal/core/ports"
)

// Notifier pushes a single entry into a practitioner's inbox.
type Notifier interface {
	Push(ctx context.Context, userID string, kind domain.NotificationType, title, message string) error
}

const medicalIDPlaceholder = "{medical_id}"

type NotificationUseCase struct {
	repo      ports.NotificationRepository
	templates []domain.NotificationTemplate
	now       func() time.Time
}

func NewNotificationUseCase(repo ports.NotificationRepository, templates []domain.NotificationTemplate) *NotificationUseCase {
	return &NotificationUseCase{
		repo:      repo,
		templates: append([]domain.NotificationTemplate(nil), templates...),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SeedInbox fills a new practitioner's inbox from the configured templates.
func (uc *NotificationUseCase) SeedInbox(ctx context.Context, user domain.User) error {
	now := uc.now()
	for _, tpl := range uc.templates {
		n := &domain.Notification{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			Type:      tpl.Type,
			Title:     tpl.Title,
			Message:   strings.ReplaceAll(tpl.Message, medicalIDPlaceholder, user.MedicalID),
			IsRead:    tpl.IsRead,
			CreatedAt: now.Add(-tpl.Age),
		}
		if err := uc.repo.Create(ctx, n); err != nil {
			return fmt.Errorf("seed inbox: %w", err)
		}
	}
	return nil
}

func (uc *NotificationUseCase) Push(ctx context.Context, userID string, kind domain.NotificationType, title, message string) error {
	if strings.TrimSpace(userID) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "push notification", errors.New("user id is required"))
	}
	n := &domain.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      kind,
		Title:     title,
		Message:   message,
		CreatedAt: uc.now(),
	}
	if err := uc.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func (uc *NotificationUseCase) List(ctx context.Context, userID string) ([]domain.Notification, error) {
	items, err := uc.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (uc *NotificationUseCase) MarkRead(ctx context.Context, userID, id string) error {
	if err := uc.repo.MarkRead(ctx, userID, id); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

func (uc *NotificationUseCase) ClearAll(ctx context.Context, userID string) error {
	if err := uc.repo.ClearAll(ctx, userID); err != nil {
		return fmt.Errorf("clear notifications: %w", err)
	}
	return nil
}

func (uc *NotificationUseCase) HasUnread(ctx context.Context, userID string) (bool, error) {
	items, err := uc.repo.ListByUser(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("list notifications: %w", err)
	}
	for _, n := range items {
		if !n.IsRead {
			return true, nil
		}
	}
	return false, nil
}

package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/kirillkom/medguard/internal/core/domain"
)

type NotificationRepository struct {
	mu     sync.RWMutex
	byUser map[string][]domain.Notification
	// recipients remembers every inbox ever created, in first-seen order.
	recipients []string
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{byUser: make(map[string][]domain.Notification)}
}

func (r *NotificationRepository) Create(_ context.Context, n *domain.Notification) error {
	if n == nil || n.ID == "" || n.UserID == "" {
		return domain.WrapError(domain.ErrInvalidInput, "create notification", errors.New("id and user id are required"))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byUser[n.UserID]; !ok {
		r.recipients = append(r.recipients, n.UserID)
	}
	r.byUser[n.UserID] = append(r.byUser[n.UserID], *n)
	return nil
}

func (r *NotificationRepository) ListByUser(_ context.Context, userID string) ([]domain.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := r.byUser[userID]
	out := make([]domain.Notification, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *NotificationRepository) MarkRead(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.byUser[userID]
	for i := range items {
		if items[i].ID == id {
			items[i].IsRead = true
			return nil
		}
	}
	return domain.WrapError(domain.ErrNotFound, "mark notification read", fmt.Errorf("notification %s", id))
}

// ClearAll empties the inbox but keeps the user as a broadcast recipient.
func (r *NotificationRepository) ClearAll(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byUser[userID]; ok {
		r.byUser[userID] = nil
	}
	return nil
}

func (r *NotificationRepository) ListRecipients(context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.recipients...), nil
}

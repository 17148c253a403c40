package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kirillkom/medguard/internal/core/domain"
)

func TestNotificationRepositoryInboxLifecycle(t *testing.T) {
	repo := NewNotificationRepository()
	ctx := context.Background()
	now := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)
	_ = repo.Create(ctx, &domain.Notification{ID: "a", UserID: "u-1", CreatedAt: now.Add(-2 * time.Hour)})
	_ = repo.Create(ctx, &domain.Notification{ID: "b", UserID: "u-1", CreatedAt: now})
	_ = repo.Create(ctx, &domain.Notification{ID: "c", UserID: "u-2", CreatedAt: now})

	items, _ := repo.ListByUser(ctx, "u-1")
	if len(items) != 2 || items[0].ID != "b" {
		t.Fatalf("unexpected inbox: %+v", items)
	}

	if err := repo.MarkRead(ctx, "u-1", "a"); err != nil {
		t.Fatalf("MarkRead() error: %v", err)
	}
	if err := repo.MarkRead(ctx, "u-1", "c"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for another user's notification, got %v", err)
	}
	items, _ = repo.ListByUser(ctx, "u-1")
	if !items[1].IsRead {
		t.Fatalf("expected notification a to be read")
	}

	if err := repo.ClearAll(ctx, "u-1"); err != nil {
		t.Fatalf("ClearAll() error: %v", err)
	}
	items, _ = repo.ListByUser(ctx, "u-1")
	if len(items) != 0 {
		t.Fatalf("expected empty inbox, got %+v", items)
	}

	recipients, _ := repo.ListRecipients(ctx)
	if len(recipients) != 2 || recipients[0] != "u-1" || recipients[1] != "u-2" {
		t.Fatalf("cleared inbox must stay a recipient, got %v", recipients)
	}
}

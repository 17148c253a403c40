package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/kirillkom/medguard/internal/core/domain"
)

func TestUserStoreSessions(t *testing.T) {
	store := NewUserStore()
	ctx := context.Background()
	_ = store.SaveUser(ctx, &domain.User{ID: "u-1", MedicalID: "MD-1"})

	found, err := store.FindByMedicalID(ctx, "MD-1")
	if err != nil || found.ID != "u-1" {
		t.Fatalf("FindByMedicalID() = %+v, %v", found, err)
	}
	if _, err := store.FindByMedicalID(ctx, "MD-2"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	_ = store.CreateSession(ctx, &domain.Session{Token: "t-1", UserID: "u-1"})
	session, err := store.GetSession(ctx, "t-1")
	if err != nil || session.UserID != "u-1" {
		t.Fatalf("GetSession() = %+v, %v", session, err)
	}
	if err := store.DeleteSession(ctx, "t-1"); err != nil {
		t.Fatalf("DeleteSession() error: %v", err)
	}
	if err := store.DeleteSession(ctx, "t-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

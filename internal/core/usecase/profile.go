package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/kirillkom/medguard/internal/core/domain"
	"github.com/kirillkom/medguard/internal/core/ports"
)

type unreadChecker interface {
	HasUnread(ctx context.Context, userID string) (bool, error)
}

type ProfileUseCase struct {
	users         ports.UserStore
	reports       ports.ReportRepository
	notifications unreadChecker
	reference     domain.Reference
}

func NewProfileUseCase(
	users ports.UserStore,
	reports ports.ReportRepository,
	notifications unreadChecker,
	reference domain.Reference,
) *ProfileUseCase {
	return &ProfileUseCase{
		users:         users,
		reports:       reports,
		notifications: notifications,
		reference:     reference,
	}
}

func (uc *ProfileUseCase) Profile(ctx context.Context, user domain.User) (*domain.Profile, error) {
	stored, err := uc.users.GetUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	count, err := uc.reports.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count reports: %w", err)
	}
	return &domain.Profile{User: *stored, ReportCount: count}, nil
}

// UpdatePhoto replaces the profile photo. An empty URL keeps the current one.
func (uc *ProfileUseCase) UpdatePhoto(ctx context.Context, user domain.User, photoURL string) (*domain.Profile, error) {
	photoURL = strings.TrimSpace(photoURL)
	if photoURL != "" {
		stored, err := uc.users.GetUser(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("get user: %w", err)
		}
		stored.PhotoURL = photoURL
		if err := uc.users.SaveUser(ctx, stored); err != nil {
			return nil, fmt.Errorf("save user: %w", err)
		}
	}
	return uc.Profile(ctx, user)
}

func (uc *ProfileUseCase) Dashboard(ctx context.Context, user domain.User) (*domain.Dashboard, error) {
	all, err := uc.reports.List(ctx, domain.ReportFilter{})
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	critical := make([]domain.Report, 0)
	for _, r := range all {
		if r.Severity == domain.SeverityCritical {
			critical = append(critical, r)
		}
	}
	unread, err := uc.notifications.HasUnread(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("check unread: %w", err)
	}
	return &domain.Dashboard{
		User:                   user,
		TotalReports:           len(all),
		CriticalReports:        critical,
		HasUnreadNotifications: unread,
		NetworkStats:           uc.reference.NetworkStats,
	}, nil
}

func (uc *ProfileUseCase) Reference(context.Context) domain.Reference {
	return uc.reference
}

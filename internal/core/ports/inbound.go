package ports

import (
	"context"
	"io"

	"github.com/kirillkom/medguard/internal/core/domain"
)

// AuthService is the inbound contract for the simulated practitioner login.
type AuthService interface {
	Login(ctx context.Context, req domain.LoginRequest) (*domain.Session, *domain.User, error)
	Signup(ctx context.Context, req domain.SignupRequest) (*domain.Session, *domain.User, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// ReportService is the inbound contract for the safety network logs.
type ReportService interface {
	Submit(ctx context.Context, user domain.User, submission domain.ReportSubmission, summary string) (*domain.Report, error)
	List(ctx context.Context, filter domain.ReportFilter) ([]domain.Report, error)
	GetByID(ctx context.Context, id string) (*domain.Report, error)
	Share(ctx context.Context, user domain.User, id string) error
	Export(ctx context.Context, w io.Writer) error
}

// DraftService owns open report forms and their classifier bridges.
type DraftService interface {
	Open(ctx context.Context, user domain.User) (*domain.Draft, error)
	State(ctx context.Context, user domain.User, draftID string) (*domain.Draft, error)
	UpdateDescription(ctx context.Context, user domain.User, draftID, description string) (*domain.Draft, error)
	Watch(ctx context.Context, user domain.User, draftID string) (<-chan domain.AnalysisState, func(), error)
	Submit(ctx context.Context, user domain.User, draftID string, submission domain.ReportSubmission) (*domain.Report, error)
	Discard(ctx context.Context, user domain.User, draftID string) error
	DiscardAll(ctx context.Context, user domain.User) int
}

// CommunityService is the inbound contract for the discussion feed.
type CommunityService interface {
	ListPosts(ctx context.Context) ([]domain.Post, error)
	CreatePost(ctx context.Context, user domain.User, content string) (*domain.Post, error)
	AddComment(ctx context.Context, user domain.User, postID, content string) (*domain.Comment, error)
	ToggleLike(ctx context.Context, user domain.User, postID string) (*domain.Post, error)
}

// NotificationService is the inbound contract for the per-user inbox.
type NotificationService interface {
	List(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
	ClearAll(ctx context.Context, userID string) error
	HasUnread(ctx context.Context, userID string) (bool, error)
}

// ProfileService is the inbound read model for the profile and dashboard screens.
type ProfileService interface {
	Profile(ctx context.Context, user domain.User) (*domain.Profile, error)
	UpdatePhoto(ctx context.Context, user domain.User, photoURL string) (*domain.Profile, error)
	Dashboard(ctx context.Context, user domain.User) (*domain.Dashboard, error)
	Reference(ctx context.Context) domain.Reference
}

// BroadcastHandler fans a shared report out to the network.
type BroadcastHandler interface {
	HandleReportShared(ctx context.Context, event domain.ReportSharedEvent) error
}

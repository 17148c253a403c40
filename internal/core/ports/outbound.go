package ports

import (
	"context"
	"io"

	"github.com/kirillkom/medguard/internal/core/domain"
)

// IncidentAnalyzer is the remote classifier behind the bridge.
type IncidentAnalyzer interface {
	Analyze(ctx context.Context, description string) (domain.IncidentAnalysis, error)
}

// ReportRepository persists and reads safety reports.
type ReportRepository interface {
	Create(ctx context.Context, report *domain.Report) error
	GetByID(ctx context.Context, id string) (*domain.Report, error)
	List(ctx context.Context, filter domain.ReportFilter) ([]domain.Report, error)
	Count(ctx context.Context) (int, error)
}

// NotificationRepository persists per-user inboxes.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
	ClearAll(ctx context.Context, userID string) error
	ListRecipients(ctx context.Context) ([]string, error)
}

// CommunityRepository persists posts, comments and likes.
type CommunityRepository interface {
	CreatePost(ctx context.Context, post *domain.Post) error
	GetPost(ctx context.Context, id string) (*domain.Post, error)
	ListPosts(ctx context.Context) ([]domain.Post, error)
	AddComment(ctx context.Context, postID string, comment *domain.Comment) error
	SetLike(ctx context.Context, postID, userID string, liked bool) error
}

// UserStore keeps practitioners and their sessions.
type UserStore interface {
	SaveUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	FindByMedicalID(ctx context.Context, medicalID string) (*domain.User, error)
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, token string) (*domain.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

// EventPublisher publishes report broadcast events.
type EventPublisher interface {
	PublishReportShared(ctx context.Context, event domain.ReportSharedEvent) error
}

// EventSubscriber consumes report broadcast events.
type EventSubscriber interface {
	SubscribeReportShared(ctx context.Context, handler func(context.Context, domain.ReportSharedEvent) error) error
}

// ReportExporter renders the logs into a spreadsheet.
type ReportExporter interface {
	WriteReports(w io.Writer, reports []domain.Report) error
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/kirillkom/medguard/internal/core/domain"
)

type reportRepoFake struct {
	mu      sync.Mutex
	reports []domain.Report
	err     error
}

func (f *reportRepoFake) Create(_ context.Context, report *domain.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.reports = append(f.reports, *report)
	return nil
}

func (f *reportRepoFake) GetByID(_ context.Context, id string) (*domain.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reports {
		if r.ID == id {
			cp := r
			return &cp, nil
		}
	}
	return nil, domain.WrapError(domain.ErrNotFound, "get report", fmt.Errorf("report %s", id))
}

func (f *reportRepoFake) List(_ context.Context, filter domain.ReportFilter) ([]domain.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.Report, 0, len(f.reports))
	for i := len(f.reports) - 1; i >= 0; i-- {
		r := f.reports[i]
		if filter.Severity != "" && r.Severity != filter.Severity {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *reportRepoFake) Count(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reports), nil
}

type pushed struct {
	userID  string
	kind    domain.NotificationType
	title   string
	message string
}

type notifierFake struct {
	mu    sync.Mutex
	items []pushed
	err   error
}

func (f *notifierFake) Push(_ context.Context, userID string, kind domain.NotificationType, title, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.items = append(f.items, pushed{userID: userID, kind: kind, title: title, message: message})
	return nil
}

type publisherFake struct {
	events []domain.ReportSharedEvent
	err    error
}

func (f *publisherFake) PublishReportShared(_ context.Context, event domain.ReportSharedEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

type exporterFake struct {
	written []domain.Report
}

func (f *exporterFake) WriteReports(w io.Writer, reports []domain.Report) error {
	f.written = reports
	_, err := fmt.Fprintf(w, "%d reports", len(reports))
	return err
}

type notificationRepoFake struct {
	mu    sync.Mutex
	items []domain.Notification
}

func (f *notificationRepoFake) Create(_ context.Context, n *domain.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, *n)
	return nil
}

func (f *notificationRepoFake) ListByUser(_ context.Context, userID string) ([]domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Notification, 0)
	for _, n := range f.items {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *notificationRepoFake) MarkRead(_ context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id && f.items[i].UserID == userID {
			f.items[i].IsRead = true
			return nil
		}
	}
	return domain.WrapError(domain.ErrNotFound, "mark read", fmt.Errorf("notification %s", id))
}

func (f *notificationRepoFake) ClearAll(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.items[:0]
	for _, n := range f.items {
		if n.UserID != userID {
			kept = append(kept, n)
		}
	}
	f.items = kept
	return nil
}

func (f *notificationRepoFake) ListRecipients(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, n := range f.items {
		if _, ok := seen[n.UserID]; ok {
			continue
		}
		seen[n.UserID] = struct{}{}
		out = append(out, n.UserID)
	}
	sort.Strings(out)
	return out, nil
}

type communityRepoFake struct {
	posts map[string]*domain.Post
	order []string
}

func newCommunityRepoFake() *communityRepoFake {
	return &communityRepoFake{posts: make(map[string]*domain.Post)}
}

func (f *communityRepoFake) CreatePost(_ context.Context, post *domain.Post) error {
	cp := *post
	f.posts[post.ID] = &cp
	f.order = append(f.order, post.ID)
	return nil
}

func (f *communityRepoFake) GetPost(_ context.Context, id string) (*domain.Post, error) {
	post, ok := f.posts[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get post", fmt.Errorf("post %s", id))
	}
	cp := *post
	cp.LikedBy = append([]string(nil), post.LikedBy...)
	cp.Comments = append([]domain.Comment(nil), post.Comments...)
	return &cp, nil
}

func (f *communityRepoFake) ListPosts(context.Context) ([]domain.Post, error) {
	out := make([]domain.Post, 0, len(f.order))
	for i := len(f.order) - 1; i >= 0; i-- {
		out = append(out, *f.posts[f.order[i]])
	}
	return out, nil
}

func (f *communityRepoFake) AddComment(_ context.Context, postID string, comment *domain.Comment) error {
	post, ok := f.posts[postID]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "add comment", fmt.Errorf("post %s", postID))
	}
	post.Comments = append(post.Comments, *comment)
	return nil
}

func (f *communityRepoFake) SetLike(_ context.Context, postID, userID string, liked bool) error {
	post, ok := f.posts[postID]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "set like", fmt.Errorf("post %s", postID))
	}
	kept := make([]string, 0, len(post.LikedBy))
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

type userStoreFake struct {
	mu       sync.Mutex
	users    map[string]domain.User
	sessions map[string]domain.Session
}

func newUserStoreFake() *userStoreFake {
	return &userStoreFake{
		users:    make(map[string]domain.User),
		sessions: make(map[string]domain.Session),
	}
}

func (f *userStoreFake) SaveUser(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = *user
	return nil
}

func (f *userStoreFake) GetUser(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get user", errors.New(id))
	}
	return &u, nil
}

func (f *userStoreFake) FindByMedicalID(_ context.Context, medicalID string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.MedicalID == medicalID {
			cp := u
			return &cp, nil
		}
	}
	return nil, domain.WrapError(domain.ErrNotFound, "find user", errors.New(medicalID))
}

func (f *userStoreFake) CreateSession(_ context.Context, session *domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[session.Token] = *session
	return nil
}

func (f *userStoreFake) GetSession(_ context.Context, token string) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[token]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get session", errors.New("unknown token"))
	}
	return &s, nil
}

func (f *userStoreFake) DeleteSession(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[token]; !ok {
		return domain.WrapError(domain.ErrNotFound, "delete session", errors.New("unknown token"))
	}
	delete(f.sessions, token)
	return nil
}

func validSubmission() domain.ReportSubmission {
	return domain.ReportSubmission{
		PatientName:  "john quincy doe",
		PatientAge:   42,
		State:        "Karnataka",
		City:         "Bengaluru",
		IncidentDate: "2025-03-14",
		Severity:     "high",
		Description:  "Patient threatened staff after a long wait in triage.",
		DoctorName:   "Dr. Priya Rao",
		ClinicID:     "City General",
	}
}

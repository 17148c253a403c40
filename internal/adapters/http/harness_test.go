package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/kirillkom/medguard/internal/config"
	"github.com/kirillkom/medguard/internal/core/domain"
	"github.com/kirillkom/medguard/internal/core/usecase"
	"github.com/kirillkom/medguard/internal/infrastructure/export/xlsx"
	"github.com/kirillkom/medguard/internal/infrastructure/queue/inproc"
	"github.com/kirillkom/medguard/internal/infrastructure/repository/memory"
)

type stubAnalyzer struct {
	mu    sync.Mutex
	calls int
}

func (a *stubAnalyzer) Analyze(context.Context, string) (domain.IncidentAnalysis, error) {
	a.mu.Lock()
	a.calls++
	a.mu.Unlock()
	return domain.IncidentAnalysis{
		RiskLevel:       "HIGH",
		Summary:         "Verbal threat escalated to physical intimidation.",
		Recommendations: []string{"Alert security", "Document witnesses", "Offer staff debrief"},
	}, nil
}

// immediateScheduler fires every task right away on its own goroutine.
type immediateScheduler struct{}

type firedTask struct{}

func (firedTask) Stop() bool { return false }

func (immediateScheduler) AfterFunc(_ time.Duration, f func()) usecase.ScheduledTask {
	go f()
	return firedTask{}
}

type testApp struct {
	handler http.Handler
	drafts  *usecase.DraftUseCase
}

func newTestApp(t *testing.T, cfg config.Config) *testApp {
	t.Helper()

	reference := domain.DefaultReference()
	users := memory.NewUserStore()
	reportsRepo := memory.NewReportRepository()
	notificationsRepo := memory.NewNotificationRepository()
	communityRepo := memory.NewCommunityRepository()

	notifications := usecase.NewNotificationUseCase(notificationsRepo, []domain.NotificationTemplate{
		{Type: domain.NotificationSystem, Title: "Welcome", Message: "Credentials {medical_id} verified.", Age: 2 * time.Hour, IsRead: true},
	})
	broadcast := usecase.NewBroadcastUseCase(notificationsRepo, notifications)
	reports := usecase.NewReportUseCase(
		reportsRepo,
		notifications,
		inproc.NewPublisher(broadcast, nil),
		xlsx.NewExporter(),
		reference,
		nil,
	)
	drafts := usecase.NewDraftUseCase(
		&stubAnalyzer{},
		reports,
		usecase.DraftConfig{Bridge: usecase.BridgeConfig{MinChars: 20, QuietPeriod: time.Millisecond, CallTimeout: time.Second}},
		nil,
		usecase.WithScheduler(immediateScheduler{}),
	)
	t.Cleanup(drafts.CloseAll)

	services := Services{
		Auth:          usecase.NewAuthUseCase(users, notifications, reference),
		Reports:       reports,
		Drafts:        drafts,
		Community:     usecase.NewCommunityUseCase(communityRepo, notifications),
		Notifications: notifications,
		Profile:       usecase.NewProfileUseCase(users, reportsRepo, notifications, reference),
	}
	return &testApp{
		handler: NewRouter(cfg, services).Handler(),
		drafts:  drafts,
	}
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res := httptest.NewRecorder()
	a.handler.ServeHTTP(res, req)
	return res
}

func (a *testApp) login(t *testing.T, medicalID string) string {
	t.Helper()
	res := a.do(t, http.MethodPost, "/v1/auth/login", "", domain.LoginRequest{
		Email:     "doc@example.org",
		Password:  "secret",
		MedicalID: medicalID,
	})
	if res.Code != http.StatusOK {
		t.Fatalf("login expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var session sessionView
	decodeBody(t, res, &session)
	if session.Token == "" {
		t.Fatalf("expected session token")
	}
	return session.Token
}

func decodeBody(t *testing.T, res *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(bytes.NewReader(res.Body.Bytes())).Decode(dst); err != nil {
		t.Fatalf("decode response %q: %v", res.Body.String(), err)
	}
}

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"/v1/reports":                     "/v1/reports",
		"/v1/reports/export":              "/v1/reports/export",
		"/v1/reports/abc/share":           "/v1/reports/{report_id}/share",
		"/v1/drafts/d-1/events":           "/v1/drafts/{draft_id}/events",
		"/v1/community/posts/p1/comments": "/v1/community/posts/{post_id}/comments",
		"/v1/notifications/n-9/read":      "/v1/notifications/{notification_id}/read",
		"/healthz":                        "/healthz",
	}
	for in, want := range cases {
		if got := normalizePath(in); got != want {
			t.Fatalf("normalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHTTPServerMetricsMiddlewareAndObservers(t *testing.T) {
	m := NewHTTPServerMetrics("api", "gemini")
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/drafts/d-1", nil))

	m.ObserveAnalysis("success", 800*time.Millisecond)
	m.ObserveAnalysis("stale", time.Second)
	m.ObserveSuperseded()
	m.SetActiveDrafts(3)
	m.ObserveReportSubmitted("HIGH")
	m.ObserveRetry("gemini.generate")
	m.ObserveBreakerState("gemini.generate", "open")

	body := scrape(t, m.Handler())
	for _, want := range []string{
		`medguard_http_requests_total{method="GET",path="/v1/drafts/{draft_id}",service="api",status="418"} 1`,
		`medguard_analysis_requests_total{outcome="stale",provider="gemini",service="api"} 1`,
		`medguard_analysis_debounce_superseded_total{service="api"} 1`,
		`medguard_drafts_active{service="api"} 3`,
		`medguard_reports_submitted_total{service="api",severity="HIGH"} 1`,
		`medguard_resilience_retries_total{operation="gemini.generate",service="api"} 1`,
		`medguard_resilience_circuit_breaker_open{operation="gemini.generate",service="api"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in exposition:\n%s", want, body)
		}
	}
}

func TestWorkerMetrics(t *testing.T) {
	m := NewWorkerMetrics("worker")
	m.HandlerStarted()
	m.ObserveHandled("success", 20*time.Millisecond, 2*time.Second)
	m.HandlerFinished()

	body := scrape(t, m.Handler())
	for _, want := range []string{
		`medguard_worker_broadcast_process_total{service="worker",status="success"} 1`,
		`medguard_worker_broadcast_process_in_flight{service="worker"} 0`,
		`medguard_worker_queue_lag_seconds_count{service="worker"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in exposition:\n%s", want, body)
		}
	}
}

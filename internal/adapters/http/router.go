package httpadapter

import (
	"net/http"
	"time"

	"github.com/kirillkom/medguard/internal/config"
	"github.com/kirillkom/medguard/internal/core/ports"
)

// Services groups the inbound ports the HTTP surface is built on.
type Services struct {
	Auth          ports.AuthService
	Reports       ports.ReportService
	Drafts        ports.DraftService
	Community     ports.CommunityService
	Notifications ports.NotificationService
	Profile       ports.ProfileService
}

// Metrics instruments requests and serves the exposition endpoint.
type Metrics interface {
	Middleware(next http.Handler) http.Handler
	Handler() http.Handler
}

type RouterOption func(*Router)

func WithMetrics(m Metrics) RouterOption {
	return func(rt *Router) {
		rt.metrics = m
	}
}

func WithClock(now func() time.Time) RouterOption {
	return func(rt *Router) {
		if now != nil {
			rt.now = now
		}
	}
}

type Router struct {
	cfg      config.Config
	services Services
	metrics  Metrics
	now      func() time.Time
}

func NewRouter(cfg config.Config, services Services, opts ...RouterOption) *Router {
	rt := &Router{
		cfg:      cfg,
		services: services,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	auth := func(h http.HandlerFunc) http.HandlerFunc {
		return requireUser(rt.services.Auth, h)
	}

	mux.HandleFunc("GET /healthz", rt.healthz)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}
	mux.HandleFunc("GET /v1/reference", rt.reference)

	mux.HandleFunc("POST /v1/auth/login", rt.login)
	mux.HandleFunc("POST /v1/auth/signup", rt.signup)
	mux.HandleFunc("POST /v1/auth/logout", auth(rt.logout))

	mux.HandleFunc("GET /v1/dashboard", auth(rt.dashboard))
	mux.HandleFunc("GET /v1/profile", auth(rt.profile))
	mux.HandleFunc("PUT /v1/profile/photo", auth(rt.updatePhoto))

	mux.HandleFunc("GET /v1/reports", auth(rt.listReports))
	mux.HandleFunc("POST /v1/reports", auth(rt.submitReport))
	mux.HandleFunc("GET /v1/reports/export", auth(rt.exportReports))
	mux.HandleFunc("GET /v1/reports/{id}", auth(rt.getReport))
	mux.HandleFunc("POST /v1/reports/{id}/share", auth(rt.shareReport))

	mux.HandleFunc("POST /v1/drafts", auth(rt.openDraft))
	mux.HandleFunc("GET /v1/drafts/{id}", auth(rt.draftState))
	mux.HandleFunc("PUT /v1/drafts/{id}/description", auth(rt.updateDraftDescription))
	mux.HandleFunc("GET /v1/drafts/{id}/events", auth(rt.draftEvents))
	mux.HandleFunc("POST /v1/drafts/{id}/submit", auth(rt.submitDraft))
	mux.HandleFunc("DELETE /v1/drafts/{id}", auth(rt.discardDraft))

	mux.HandleFunc("GET /v1/community/posts", auth(rt.listPosts))
	mux.HandleFunc("POST /v1/community/posts", auth(rt.createPost))
	mux.HandleFunc("POST /v1/community/posts/{id}/comments", auth(rt.addComment))
	mux.HandleFunc("POST /v1/community/posts/{id}/like", auth(rt.toggleLike))

	mux.HandleFunc("GET /v1/notifications", auth(rt.listNotifications))
	mux.HandleFunc("POST /v1/notifications/{id}/read", auth(rt.markNotificationRead))
	mux.HandleFunc("DELETE /v1/notifications", auth(rt.clearNotifications))

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, rt.cfg.BackpressureWait())
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) reference(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rt.services.Profile.Reference(r.Context()))
}

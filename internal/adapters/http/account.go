package httpadapter

import (
	"log/slog"
	"net/http"

	"github.com/kirillkom/medguard/internal/core/domain"
)

func (rt *Router) login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	session, user, err := rt.services.Auth.Login(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionView{Token: session.Token, User: *user})
}

func (rt *Router) signup(w http.ResponseWriter, r *http.Request) {
	var req domain.SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	session, user, err := rt.services.Auth.Signup(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionView{Token: session.Token, User: *user})
}

func (rt *Router) logout(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	if err := rt.services.Auth.Logout(r.Context(), tokenFromContext(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	if n := rt.services.Drafts.DiscardAll(r.Context(), user); n > 0 {
		slog.Info("drafts_discarded_on_logout", "user_id", user.ID, "drafts", n)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) dashboard(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	dashboard, err := rt.services.Profile.Dashboard(r.Context(), user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

func (rt *Router) profile(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	profile, err := rt.services.Profile.Profile(r.Context(), user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (rt *Router) updatePhoto(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	var req struct {
		PhotoURL string `json:"photo_url"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	profile, err := rt.services.Profile.UpdatePhoto(r.Context(), user, req.PhotoURL)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (rt *Router) listNotifications(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	items, err := rt.services.Notifications.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, presentNotifications(items, rt.now()))
}

func (rt *Router) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	if err := rt.services.Notifications.MarkRead(r.Context(), user.ID, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) clearNotifications(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	if err := rt.services.Notifications.ClearAll(r.Context(), user.ID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kirillkom/medguard/internal/core/domain"
)

const sseKeepAliveInterval = 25 * time.Second

func (rt *Router) openDraft(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	draft, err := rt.services.Drafts.Open(r.Context(), user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, draft)
}

func (rt *Router) draftState(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	draft, err := rt.services.Drafts.State(r.Context(), user, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (rt *Router) updateDraftDescription(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	var req struct {
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	draft, err := rt.services.Drafts.UpdateDescription(r.Context(), user, r.PathValue("id"), req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (rt *Router) submitDraft(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	var submission domain.ReportSubmission
	if err := decodeJSON(r, &submission); err != nil {
		writeError(w, r, err)
		return
	}
	report, err := rt.services.Drafts.Submit(r.Context(), user, r.PathValue("id"), submission)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

func (rt *Router) discardDraft(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	if err := rt.services.Drafts.Discard(r.Context(), user, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// draftEvents streams the current bridge state followed by every change until
// the client goes away or the draft is closed.
func (rt *Router) draftEvents(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	draftID := r.PathValue("id")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, errors.New("streaming is not supported by response writer"))
		return
	}

	updates, stop, err := rt.services.Drafts.Watch(r.Context(), user, draftID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer stop()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	keepAlive := time.NewTicker(sseKeepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case state, open := <-updates:
			if !open {
				_, _ = fmt.Fprint(w, "event: closed\ndata: {}\n\n")
				flusher.Flush()
				return
			}
			if err := writeStateEvent(w, state); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeStateEvent(w http.ResponseWriter, state domain.AnalysisState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: state\ndata: %s\n\n", payload)
	return err
}

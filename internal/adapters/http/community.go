package httpadapter

import (
	"net/http"
)

type contentRequest struct {
	Content string `json:"content"`
}

func (rt *Router) listPosts(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	posts, err := rt.services.Community.ListPosts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": presentPosts(posts, user.ID, rt.now())})
}

func (rt *Router) createPost(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	var req contentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	post, err := rt.services.Community.CreatePost(r.Context(), user, req.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, presentPost(*post, user.ID, rt.now()))
}

func (rt *Router) addComment(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	var req contentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	comment, err := rt.services.Community.AddComment(r.Context(), user, r.PathValue("id"), req.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, presentComment(*comment, rt.now()))
}

func (rt *Router) toggleLike(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	post, err := rt.services.Community.ToggleLike(r.Context(), user, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, presentPost(*post, user.ID, rt.now()))
}

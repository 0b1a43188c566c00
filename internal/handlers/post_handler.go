package handlers

import (
	"net/http"
	"strconv"

	"familycircle/internal/service"
)

// PostHandler serves the circle feed.
type PostHandler struct {
	posts *service.PostService
}

func NewPostHandler(posts *service.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// pathID parses a numeric path parameter set by the router.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id, err == nil && id > 0
}

// CreatePost adds a post to the caller's circle feed.
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var body struct {
		Title    string `json:"title"`
		Content  string `json:"content"`
		ImageURL string `json:"imageUrl"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	post, err := h.posts.CreatePost(user, body.Title, body.Content, body.ImageURL)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, post)
}

// GetFeed returns the circle feed, newest first.
func (h *PostHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	posts, err := h.posts.GetFeed(user, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, posts)
}

// GetPost returns one post with its counters.
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	postID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid post id")
		return
	}

	post, err := h.posts.GetPost(user, postID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, post)
}

// DeletePost removes a post.
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	postID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid post id")
		return
	}

	if err := h.posts.DeletePost(user, postID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "post deleted"})
}

// AddComment replies to a post.
func (h *PostHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	postID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid post id")
		return
	}

	var body struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	comment, err := h.posts.AddComment(user, postID, body.Content)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, comment)
}

// GetComments lists a post's comments.
func (h *PostHandler) GetComments(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	postID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid post id")
		return
	}

	comments, err := h.posts.GetComments(user, postID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, comments)
}

// LikePost records the caller's like.
func (h *PostHandler) LikePost(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	postID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid post id")
		return
	}

	if err := h.posts.LikePost(user, postID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "liked"})
}

// UnlikePost removes the caller's like.
func (h *PostHandler) UnlikePost(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	postID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid post id")
		return
	}

	if err := h.posts.UnlikePost(user, postID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "unliked"})
}

package handlers

import (
	"net/http"

	"familycircle/internal/service"
)

// CircleHandler serves the caller's own family circle.
type CircleHandler struct {
	circles *service.CircleService
}

func NewCircleHandler(circles *service.CircleService) *CircleHandler {
	return &CircleHandler{circles: circles}
}

// GetCircle returns the caller's circle with members.
func (h *CircleHandler) GetCircle(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	circle, err := h.circles.GetMyCircle(user)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, circle)
}

// RenameCircle changes the circle name. Admins only.
func (h *CircleHandler) RenameCircle(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var body struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.circles.RenameCircle(user, body.Name); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "circle renamed"})
}

// JoinCircle accepts an invite code. The join itself is not available yet
// and always answers 501 after validating the code shape.
func (h *CircleHandler) JoinCircle(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var body struct {
		InviteCode string `json:"inviteCode"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.circles.JoinByInviteCode(user, body.InviteCode); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "joined"})
}

// LeaveCircle removes the caller from their circle.
func (h *CircleHandler) LeaveCircle(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	if err := h.circles.LeaveCircle(user); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "left circle"})
}

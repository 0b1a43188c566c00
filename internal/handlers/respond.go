package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"familycircle/internal/service"
	"familycircle/internal/validation"
)

// errorResponse is the JSON error body. Field is set for validation
// failures so clients can highlight the offending form field.
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// respondServiceError translates service-layer errors into HTTP statuses.
// Unknown errors become a generic 500 so internals never leak to clients.
func respondServiceError(w http.ResponseWriter, err error) {
	var verr validation.Error
	if errors.As(err, &verr) {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Message, Field: verr.Field})
		return
	}

	switch {
	case errors.Is(err, service.ErrEmailTaken):
		respondJSON(w, http.StatusConflict, errorResponse{Error: "An account with this email already exists", Field: "email"})
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, service.ErrWrongPassword):
		respondError(w, http.StatusForbidden, "Incorrect password")
	case errors.Is(err, service.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrSessionExpired):
		respondError(w, http.StatusUnauthorized, "Session is invalid or expired")
	case errors.Is(err, service.ErrResetTokenInvalid):
		respondError(w, http.StatusBadRequest, "This reset link is invalid")
	case errors.Is(err, service.ErrResetTokenUsed):
		respondError(w, http.StatusBadRequest, "This reset link has already been used")
	case errors.Is(err, service.ErrResetTokenExpired):
		respondError(w, http.StatusBadRequest, "This reset link has expired")
	case errors.Is(err, service.ErrNotImplemented):
		respondError(w, http.StatusNotImplemented, "Joining an existing circle is not supported yet")
	case errors.Is(err, service.ErrNoCircle):
		respondError(w, http.StatusNotFound, "You are not in a family circle")
	case errors.Is(err, service.ErrCircleNotFound):
		respondError(w, http.StatusNotFound, "Circle not found")
	case errors.Is(err, service.ErrNotMember):
		respondError(w, http.StatusForbidden, "You are not a member of this circle")
	case errors.Is(err, service.ErrNotAdmin):
		respondError(w, http.StatusForbidden, "You do not have permission to do that")
	case errors.Is(err, service.ErrPostNotFound):
		respondError(w, http.StatusNotFound, "Post not found")
	case errors.Is(err, service.ErrTaskNotFound):
		respondError(w, http.StatusNotFound, "Task not found")
	case errors.Is(err, service.ErrEventNotFound):
		respondError(w, http.StatusNotFound, "Event not found")
	default:
		log.Error().Err(err).Msg("Unhandled service error")
		respondError(w, http.StatusInternalServerError, "Something went wrong")
	}
}

// decodeJSON reads a JSON request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

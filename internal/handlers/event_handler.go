package handlers

import (
	"net/http"
	"time"

	"familycircle/internal/service"
)

// EventHandler serves the circle calendar.
type EventHandler struct {
	events *service.EventService
}

func NewEventHandler(events *service.EventService) *EventHandler {
	return &EventHandler{events: events}
}

type eventRequest struct {
	Title    string     `json:"title"`
	Location string     `json:"location"`
	StartsAt time.Time  `json:"startsAt"`
	EndsAt   *time.Time `json:"endsAt"`
}

// CreateEvent adds a calendar entry to the caller's circle.
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var body eventRequest
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	event, err := h.events.CreateEvent(user, body.Title, body.Location, body.StartsAt, body.EndsAt)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, event)
}

// GetEvents lists events in a window. Defaults to the next 90 days.
func (h *EventHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	from := time.Now()
	to := from.AddDate(0, 3, 0)
	if raw := r.URL.Query().Get("from"); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			from = parsed
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			to = parsed
		}
	}

	events, err := h.events.GetEvents(user, from, to)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, events)
}

// UpdateEvent changes an event.
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	eventID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid event id")
		return
	}

	var body eventRequest
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.events.UpdateEvent(user, eventID, body.Title, body.Location, body.StartsAt, body.EndsAt); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "event updated"})
}

// DeleteEvent removes an event.
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	eventID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid event id")
		return
	}

	if err := h.events.DeleteEvent(user, eventID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "event deleted"})
}

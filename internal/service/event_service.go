package service

import (
	"errors"
	"time"

	"familycircle/internal/models"
	"familycircle/internal/repository"
	"familycircle/internal/validation"
)

var ErrEventNotFound = errors.New("event not found")

// EventService handles the circle calendar.
type EventService struct {
	events *repository.EventRepository
}

func NewEventService(events *repository.EventRepository) *EventService {
	return &EventService{events: events}
}

// CreateEvent adds a calendar entry to the caller's circle.
func (s *EventService) CreateEvent(user *models.User, title, location string, startsAt time.Time, endsAt *time.Time) (*models.Event, error) {
	if user.CircleID == nil {
		return nil, ErrNoCircle
	}
	if title == "" {
		return nil, validation.Error{Field: "title", Message: "Title is required"}
	}
	if startsAt.IsZero() {
		return nil, validation.Error{Field: "startsAt", Message: "Start time is required"}
	}
	if endsAt != nil && endsAt.Before(startsAt) {
		return nil, validation.Error{Field: "endsAt", Message: "End time must be after the start time"}
	}
	return s.events.CreateEvent(*user.CircleID, user.ID, title, location, startsAt, endsAt)
}

// GetEvents lists circle events overlapping the window, soonest first.
func (s *EventService) GetEvents(user *models.User, from, to time.Time) ([]models.Event, error) {
	if user.CircleID == nil {
		return nil, ErrNoCircle
	}
	return s.events.GetCircleEvents(*user.CircleID, from, to)
}

// UpdateEvent changes an event. The creator or a circle admin may edit.
func (s *EventService) UpdateEvent(user *models.User, eventID int64, title, location string, startsAt time.Time, endsAt *time.Time) error {
	event, err := s.requireEvent(user, eventID)
	if err != nil {
		return err
	}
	if event.CreatedBy != user.ID && user.CircleRole != models.RoleAdmin {
		return ErrNotAdmin
	}
	if title == "" {
		return validation.Error{Field: "title", Message: "Title is required"}
	}
	if endsAt != nil && endsAt.Before(startsAt) {
		return validation.Error{Field: "endsAt", Message: "End time must be after the start time"}
	}
	return s.events.UpdateEvent(eventID, title, location, startsAt, endsAt)
}

// DeleteEvent removes an event. The creator or a circle admin may delete.
func (s *EventService) DeleteEvent(user *models.User, eventID int64) error {
	event, err := s.requireEvent(user, eventID)
	if err != nil {
		return err
	}
	if event.CreatedBy != user.ID && user.CircleRole != models.RoleAdmin {
		return ErrNotAdmin
	}
	return s.events.DeleteEvent(eventID)
}

func (s *EventService) requireEvent(user *models.User, eventID int64) (*models.Event, error) {
	if user.CircleID == nil {
		return nil, ErrNoCircle
	}
	event, err := s.events.GetEvent(eventID)
	if err != nil {
		return nil, err
	}
	if event == nil || event.CircleID != *user.CircleID {
		return nil, ErrEventNotFound
	}
	return event, nil
}

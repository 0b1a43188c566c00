package repository

import (
	"database/sql"
	"fmt"
	"time"

	"familycircle/internal/database"
	"familycircle/internal/models"
)

// EventRepository handles database operations for calendar events
type EventRepository struct {
	db *database.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

// CreateEvent inserts a new event
func (r *EventRepository) CreateEvent(circleID, createdBy int64, title, location string, startsAt time.Time, endsAt *time.Time) (*models.Event, error) {
	query := "INSERT INTO events (circle_id, created_by, title, location, starts_at, ends_at) VALUES (?, ?, ?, ?, ?, ?)"
	id, err := r.db.ExecReturningID(query, circleID, createdBy, title, nullIfEmpty(location), startsAt, endsAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	return &models.Event{
		ID:        id,
		CircleID:  circleID,
		CreatedBy: createdBy,
		Title:     title,
		Location:  location,
		StartsAt:  startsAt,
		EndsAt:    endsAt,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}, nil
}

const eventSelect = `
	SELECT id, circle_id, created_by, title, COALESCE(location, ''), starts_at, ends_at, created_at, updated_at
	FROM events
`

func scanEvent(row interface{ Scan(...interface{}) error }) (*models.Event, error) {
	event := &models.Event{}
	var endsAt sql.NullTime
	err := row.Scan(
		&event.ID, &event.CircleID, &event.CreatedBy, &event.Title, &event.Location,
		&event.StartsAt, &endsAt, &event.CreatedAt, &event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if endsAt.Valid {
		event.EndsAt = &endsAt.Time
	}
	return event, nil
}

// GetCircleEvents retrieves events in a circle between from and to,
// ordered by start time.
func (r *EventRepository) GetCircleEvents(circleID int64, from, to time.Time) ([]models.Event, error) {
	query := eventSelect + " WHERE circle_id = ? AND starts_at >= ? AND starts_at < ? ORDER BY starts_at ASC"
	rows, err := r.db.Query(query, circleID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}

// GetEvent retrieves an event by ID. Returns nil when no event matches.
func (r *EventRepository) GetEvent(eventID int64) (*models.Event, error) {
	event, err := scanEvent(r.db.QueryRow(eventSelect+" WHERE id = ?", eventID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// UpdateEvent updates an event's details
func (r *EventRepository) UpdateEvent(eventID int64, title, location string, startsAt time.Time, endsAt *time.Time) error {
	query := `
		UPDATE events SET title = ?, location = ?, starts_at = ?, ends_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	if _, err := r.db.Exec(query, title, nullIfEmpty(location), startsAt, endsAt, eventID); err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	return nil
}

// DeleteEvent removes an event
func (r *EventRepository) DeleteEvent(eventID int64) error {
	if _, err := r.db.Exec("DELETE FROM events WHERE id = ?", eventID); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// DeleteUserEvents removes all events created by a user
func (r *EventRepository) DeleteUserEvents(userID int64) error {
	if _, err := r.db.Exec("DELETE FROM events WHERE created_by = ?", userID); err != nil {
		return fmt.Errorf("failed to delete user events: %w", err)
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

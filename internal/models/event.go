package models

import "time"

// Event is a calendar entry scoped to a circle.
type Event struct {
	ID        int64      `json:"id"`
	CircleID  int64      `json:"circleId"`
	CreatedBy int64      `json:"createdBy"`
	Title     string     `json:"title"`
	Location  string     `json:"location,omitempty"`
	StartsAt  time.Time  `json:"startsAt"`
	EndsAt    *time.Time `json:"endsAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"-"`
}

// IsPast reports whether the event is entirely in the past.
func (e *Event) IsPast() bool {
	if e.EndsAt != nil {
		return time.Now().After(*e.EndsAt)
	}
	return time.Now().After(e.StartsAt)
}

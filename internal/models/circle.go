package models

import "time"

// Circle represents a family group. Every member of a circle can read its
// feed, tasks and events; admins can additionally change the circle itself.
type Circle struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	InviteCode string    `json:"inviteCode"`
	CreatedBy  int64     `json:"createdBy"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"-"`
}

// CircleMember represents the relationship between a user and a circle
type CircleMember struct {
	ID       int64     `json:"id"`
	CircleID int64     `json:"circleId"`
	UserID   int64     `json:"userId"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

// IsAdmin reports whether the membership carries the admin role.
func (m *CircleMember) IsAdmin() bool {
	return m.Role == RoleAdmin
}

// CircleWithMembers combines a circle with its member information
type CircleWithMembers struct {
	Circle  Circle         `json:"circle"`
	Members []CircleMember `json:"members"`
	Users   []User         `json:"users"`
}

package models

import "time"

// Circle membership roles.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// User represents an account in the system. DisplayName is always derived
// from the first and last names at write time.
type User struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	DisplayName   string    `json:"displayName"`
	PhotoURL      string    `json:"photoUrl,omitempty"`
	CircleID      *int64    `json:"circleId,omitempty"`
	CircleRole    string    `json:"circleRole,omitempty"`
	OAuthProvider string    `json:"-"`
	OAuthSubject  string    `json:"-"`
	IsAdmin       bool      `json:"isAdmin,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"-"`
}

// PublicProfile is the subset of a user visible to other members.
type PublicProfile struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoUrl,omitempty"`
}

// Public returns the user's shareable profile.
func (u *User) Public() PublicProfile {
	return PublicProfile{ID: u.ID, DisplayName: u.DisplayName, PhotoURL: u.PhotoURL}
}

// DisplayNameFor derives the display name stored on a user.
func DisplayNameFor(firstName, lastName string) string {
	return firstName + " " + lastName
}

// Session represents an authenticated session
type Session struct {
	ID        string    `json:"-"`
	UserID    int64     `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"-"`
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// PasswordResetToken represents a token for password reset
type PasswordResetToken struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
	Used      bool
}

// IsExpired checks if the reset token has expired
func (t *PasswordResetToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

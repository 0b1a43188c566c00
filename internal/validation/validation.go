// Package validation holds the pure field validators used by sign-up and
// profile forms. Every validator returns nil or an Error carrying the exact
// user-facing message; rules are checked in order with early return on the
// first failure.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailRegex      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	letterRegex     = regexp.MustCompile(`[A-Za-z]`)
	digitRegex      = regexp.MustCompile(`[0-9]`)
	nameRegex       = regexp.MustCompile(`^[A-Za-z\s'-]+$`)
	inviteCodeRegex = regexp.MustCompile(`^[A-Za-z0-9]{6,10}$`)
)

// Error is a field-scoped validation failure.
type Error struct {
	Field   string
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks that an email is present and shaped like
// local@domain.tld. No attempt at full RFC compliance.
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return Error{Field: "email", Message: "Email is required"}
	}
	if !emailRegex.MatchString(email) {
		return Error{Field: "email", Message: "Please enter a valid email address"}
	}
	return nil
}

// ValidatePassword checks length before letter presence before digit
// presence.
func ValidatePassword(password string) error {
	if password == "" {
		return Error{Field: "password", Message: "Password is required"}
	}
	if len(password) < 8 {
		return Error{Field: "password", Message: "Password must be at least 8 characters"}
	}
	if !letterRegex.MatchString(password) {
		return Error{Field: "password", Message: "Password must include at least one letter"}
	}
	if !digitRegex.MatchString(password) {
		return Error{Field: "password", Message: "Password must include at least one number"}
	}
	return nil
}

// ValidateName checks a first or last name. The field label is used in the
// returned messages, e.g. "First name is required".
func ValidateName(name, field string) error {
	if field == "" {
		field = "Name"
	}
	if strings.TrimSpace(name) == "" {
		return Error{Field: field, Message: field + " is required"}
	}
	if !nameRegex.MatchString(name) {
		return Error{Field: field, Message: field + " can only contain letters, spaces, hyphens and apostrophes"}
	}
	return nil
}

// ValidateCircleName checks a family circle name.
func ValidateCircleName(name string) error {
	if strings.TrimSpace(name) == "" {
		return Error{Field: "circleName", Message: "Family Circle name is required"}
	}
	return nil
}

// ValidateInviteCode checks an invite code.
func ValidateInviteCode(code string) error {
	if strings.TrimSpace(code) == "" {
		return Error{Field: "inviteCode", Message: "Invite code is required"}
	}
	if !inviteCodeRegex.MatchString(code) {
		return Error{Field: "inviteCode", Message: "Invite code must be 6-10 alphanumeric characters"}
	}
	return nil
}

package models

import (
	"testing"
	"time"
)

func TestSessionIsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{"future expiry", time.Now().Add(time.Hour), false},
		{"past expiry", time.Now().Add(-time.Hour), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Session{ExpiresAt: tt.expiresAt}
			if got := s.IsExpired(); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTaskIsOverdue(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name string
		task Task
		want bool
	}{
		{"no due date", Task{}, false},
		{"due in the future", Task{DueDate: &future}, false},
		{"overdue", Task{DueDate: &past}, true},
		{"past due but done", Task{DueDate: &past, Done: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.task.IsOverdue(); got != tt.want {
				t.Errorf("IsOverdue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEventIsPast(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	recent := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name  string
		event Event
		want  bool
	}{
		{"starts in the future", Event{StartsAt: future}, false},
		{"started with no end", Event{StartsAt: recent}, true},
		{"started but still running", Event{StartsAt: past, EndsAt: &future}, false},
		{"ended", Event{StartsAt: past, EndsAt: &recent}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.IsPast(); got != tt.want {
				t.Errorf("IsPast() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCircleMemberIsAdmin(t *testing.T) {
	admin := CircleMember{Role: RoleAdmin}
	member := CircleMember{Role: RoleMember}
	if !admin.IsAdmin() {
		t.Error("admin role should report IsAdmin")
	}
	if member.IsAdmin() {
		t.Error("member role should not report IsAdmin")
	}
}

func TestDisplayNameFor(t *testing.T) {
	if got := DisplayNameFor("Jane", "Doe"); got != "Jane Doe" {
		t.Errorf("DisplayNameFor() = %q, want %q", got, "Jane Doe")
	}
}

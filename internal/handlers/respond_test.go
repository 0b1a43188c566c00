package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"familycircle/internal/service"
	"familycircle/internal/validation"
)

func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
		wantField  string
	}{
		{
			name:       "validation error carries the field",
			err:        validation.Error{Field: "password", Message: "Password must be at least 8 characters"},
			wantStatus: http.StatusBadRequest,
			wantError:  "Password must be at least 8 characters",
			wantField:  "password",
		},
		{
			name:       "duplicate email",
			err:        service.ErrEmailTaken,
			wantStatus: http.StatusConflict,
			wantError:  "An account with this email already exists",
			wantField:  "email",
		},
		{
			name:       "bad credentials",
			err:        service.ErrInvalidCredentials,
			wantStatus: http.StatusUnauthorized,
			wantError:  "Invalid email or password",
		},
		{
			name:       "expired session",
			err:        service.ErrSessionExpired,
			wantStatus: http.StatusUnauthorized,
			wantError:  "Session is invalid or expired",
		},
		{
			name:       "join not implemented",
			err:        service.ErrNotImplemented,
			wantStatus: http.StatusNotImplemented,
			wantError:  "Joining an existing circle is not supported yet",
		},
		{
			name:       "wrapped sentinel still maps",
			err:        errors.Join(errors.New("join circle"), service.ErrNotImplemented),
			wantStatus: http.StatusNotImplemented,
			wantError:  "Joining an existing circle is not supported yet",
		},
		{
			name:       "no circle",
			err:        service.ErrNoCircle,
			wantStatus: http.StatusNotFound,
			wantError:  "You are not in a family circle",
		},
		{
			name:       "not admin",
			err:        service.ErrNotAdmin,
			wantStatus: http.StatusForbidden,
			wantError:  "You do not have permission to do that",
		},
		{
			name:       "unknown error stays generic",
			err:        errors.New("pq: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "Something went wrong",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondServiceError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body.Error != tt.wantError {
				t.Errorf("error = %q, want %q", body.Error, tt.wantError)
			}
			if body.Field != tt.wantField {
				t.Errorf("field = %q, want %q", body.Field, tt.wantField)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
		})
	}
}

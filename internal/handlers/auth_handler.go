package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"familycircle/internal/authstate"
	"familycircle/internal/models"
	"familycircle/internal/security"
	"familycircle/internal/service"
)

// AuthHandler serves registration, login, logout, the auth-state probe,
// and the password-reset flow.
type AuthHandler struct {
	auth          *service.AuthService
	provision     *service.ProvisionService
	email         *service.EmailService
	maxUploadSize int64
}

func NewAuthHandler(auth *service.AuthService, provision *service.ProvisionService, email *service.EmailService, maxUploadSize int64) *AuthHandler {
	return &AuthHandler{auth: auth, provision: provision, email: email, maxUploadSize: maxUploadSize}
}

// sessionResponse is returned after registration and login.
type sessionResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
	User      *models.User   `json:"user"`
	Circle    *models.Circle `json:"circle,omitempty"`
}

// Register provisions a new account. The body is either JSON or, when a
// profile image is attached, multipart form data.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	input, file, err := h.parseRegisterRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if file != nil {
		defer file.Close()
		input.ProfileImage = file
	}

	user, circle, err := h.provision.SignUp(r.Context(), input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	session, err := h.auth.CreateSession(user)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, sessionResponse{
		Token:     session.ID,
		ExpiresAt: session.ExpiresAt,
		User:      user,
		Circle:    circle,
	})
}

func (h *AuthHandler) parseRegisterRequest(r *http.Request) (service.SignUpInput, multipart.File, error) {
	var input service.SignUpInput

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
			return input, nil, err
		}
		input = service.SignUpInput{
			Email:        r.FormValue("email"),
			Password:     r.FormValue("password"),
			FirstName:    r.FormValue("firstName"),
			LastName:     r.FormValue("lastName"),
			CircleChoice: service.CircleChoice(r.FormValue("circleChoice")),
			CircleName:   r.FormValue("circleName"),
			InviteCode:   r.FormValue("inviteCode"),
		}
		file, _, err := r.FormFile("profileImage")
		if err == http.ErrMissingFile {
			return input, nil, nil
		}
		if err != nil {
			return input, nil, err
		}
		return input, file, nil
	}

	var body struct {
		Email        string `json:"email"`
		Password     string `json:"password"`
		FirstName    string `json:"firstName"`
		LastName     string `json:"lastName"`
		CircleChoice string `json:"circleChoice"`
		CircleName   string `json:"circleName"`
		InviteCode   string `json:"inviteCode"`
	}
	if err := decodeJSON(r, &body); err != nil {
		return input, nil, err
	}
	return service.SignUpInput{
		Email:        body.Email,
		Password:     body.Password,
		FirstName:    body.FirstName,
		LastName:     body.LastName,
		CircleChoice: service.CircleChoice(body.CircleChoice),
		CircleName:   body.CircleName,
		InviteCode:   body.InviteCode,
	}, nil, nil
}

// Login exchanges credentials for a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, user, err := h.auth.Login(body.Email, body.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, sessionResponse{
		Token:     session.ID,
		ExpiresAt: session.ExpiresAt,
		User:      user,
	})
}

// Logout invalidates the caller's session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := security.BearerToken(r)
	if token == "" {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	if err := h.auth.Logout(token); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}

// AuthState resolves the caller's authentication state. Unlike the
// protected routes it never returns 401: an absent or dead session
// resolves to a signed-out state so clients can settle their UI.
func (h *AuthHandler) AuthState(w http.ResponseWriter, r *http.Request) {
	token := security.BearerToken(r)
	if token == "" {
		respondJSON(w, http.StatusOK, authstate.State{})
		return
	}

	user, err := h.auth.ValidateSession(token)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) || errors.Is(err, service.ErrSessionExpired) {
			respondJSON(w, http.StatusOK, authstate.State{})
			return
		}
		respondJSON(w, http.StatusOK, authstate.State{Error: "Could not resolve authentication state"})
		return
	}

	respondJSON(w, http.StatusOK, authstate.State{User: user})
}

// RequestPasswordReset emails a reset link. The response is identical
// whether or not the email matches an account.
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.auth.RequestPasswordReset(r.Context(), h.email, body.Email); err != nil {
		log.Error().Err(err).Msg("Failed to process password reset request")
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "If an account exists for that email, a reset link has been sent",
	})
}

// ResetPassword consumes a reset token and sets a new password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.auth.ResetPassword(body.Token, body.NewPassword); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}

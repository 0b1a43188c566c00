package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"familycircle/internal/models"
	"familycircle/internal/repository"
	"familycircle/internal/security"
	"familycircle/internal/validation"
)

// Identity error taxonomy. Handlers map these to field-scoped messages;
// anything else surfaces as a generic error.
var (
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWrongPassword      = errors.New("incorrect password")
	ErrUserNotFound       = errors.New("no account found with this email")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrResetTokenInvalid  = errors.New("invalid reset token")
	ErrResetTokenUsed     = errors.New("reset token already used")
	ErrResetTokenExpired  = errors.New("reset token expired")
)

// AuthService handles authentication: sessions, credentials, password
// reset and profile updates. It is also the source of session-change
// notifications consumed by the auth-state bridge.
type AuthService struct {
	userRepo        *repository.UserRepository
	sessionDuration time.Duration

	mu        sync.Mutex
	nextSubID int
	subs      map[int]func(*models.User)
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *repository.UserRepository, sessionDuration time.Duration) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		sessionDuration: sessionDuration,
		subs:            make(map[int]func(*models.User)),
	}
}

// SubscribeSessionChanges registers a callback invoked with the affected
// user on sign-in and with nil on sign-out or account deletion. The
// callback is invoked immediately with nil to resolve the initial state,
// mirroring how identity providers replay the current session on
// subscription. Returns an unsubscribe func.
func (s *AuthService) SubscribeSessionChanges(cb func(*models.User)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = cb
	s.mu.Unlock()

	cb(nil)

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *AuthService) notifySessionChange(user *models.User) {
	s.mu.Lock()
	cbs := make([]func(*models.User), 0, len(s.subs))
	for _, cb := range s.subs {
		cbs = append(cbs, cb)
	}
	s.mu.Unlock()

	for _, cb := range cbs {
		cb(user)
	}
}

// Login authenticates a user and creates a session
func (s *AuthService) Login(email, password string) (*models.Session, *models.User, error) {
	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if !security.CheckPassword(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.CreateSession(user)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

// CreateSession issues a new session for an already-authenticated user.
func (s *AuthService) CreateSession(user *models.User) (*models.Session, error) {
	sessionID := security.GenerateSessionID()
	expiresAt := time.Now().Add(s.sessionDuration)

	session, err := s.userRepo.CreateSession(sessionID, user.ID, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.notifySessionChange(user)
	return session, nil
}

// ValidateSession checks if a session is valid and returns the associated user
func (s *AuthService) ValidateSession(sessionID string) (*models.User, error) {
	session, err := s.userRepo.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if session.IsExpired() {
		_ = s.userRepo.DeleteSession(sessionID)
		return nil, ErrSessionExpired
	}

	user, err := s.userRepo.GetUserByID(session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrSessionNotFound
	}

	return user, nil
}

// Logout invalidates a session
func (s *AuthService) Logout(sessionID string) error {
	if err := s.userRepo.DeleteSession(sessionID); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}

	s.notifySessionChange(nil)
	return nil
}

// SessionEnded broadcasts a signed-out state to session-change
// subscribers. Used when a session dies outside the normal logout path,
// such as account deletion.
func (s *AuthService) SessionEnded() {
	s.notifySessionChange(nil)
}

// Reauthenticate verifies a user's credentials without creating a session.
// Sensitive operations (account deletion) require it.
func (s *AuthService) Reauthenticate(user *models.User, email, password string) error {
	if user == nil {
		return ErrSessionNotFound
	}
	if email != user.Email {
		return ErrUserNotFound
	}
	if !security.CheckPassword(password, user.PasswordHash) {
		return ErrWrongPassword
	}
	return nil
}

// UpdateProfile updates a user's names (the display name is re-derived).
func (s *AuthService) UpdateProfile(userID int64, firstName, lastName string) (*models.User, error) {
	if err := validation.ValidateName(firstName, "First name"); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(lastName, "Last name"); err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateNames(userID, firstName, lastName); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}
	return user, nil
}

// GetPublicProfile returns the shareable subset of another user's profile.
func (s *AuthService) GetPublicProfile(userID int64) (*models.PublicProfile, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	profile := user.Public()
	return &profile, nil
}

// SetPhotoURL attaches an uploaded profile image URL to a user.
func (s *AuthService) SetPhotoURL(userID int64, photoURL string) error {
	return s.userRepo.SetPhotoURL(userID, photoURL)
}

// OAuthLogin authenticates or creates a user from a verified OAuth
// identity, linking by email when an account already exists.
func (s *AuthService) OAuthLogin(provider, subject, email, firstName, lastName string) (*models.Session, *models.User, error) {
	if provider == "" || subject == "" {
		return nil, nil, errors.New("missing oauth provider information")
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, nil, err
	}

	user, err := s.userRepo.GetUserByOAuth(provider, subject)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lookup oauth user: %w", err)
	}

	if user == nil {
		existing, err := s.userRepo.GetUserByEmail(email)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to check existing user: %w", err)
		}
		if existing != nil {
			if existing.OAuthProvider != "" && existing.OAuthProvider != provider {
				return nil, nil, ErrEmailTaken
			}
			if err := s.userRepo.LinkOAuthProvider(existing.ID, provider, subject); err != nil {
				return nil, nil, fmt.Errorf("failed to link oauth provider: %w", err)
			}
			user = existing
		} else {
			if firstName == "" {
				firstName = "Family"
			}
			if lastName == "" {
				lastName = "Member"
			}
			// OAuth accounts get an unguessable password; they can set a
			// real one through password reset
			randomHash, err := security.HashPassword(security.GenerateSessionID())
			if err != nil {
				return nil, nil, fmt.Errorf("failed to generate oauth password hash: %w", err)
			}
			created, err := s.userRepo.CreateUser(email, randomHash, firstName, lastName)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create oauth user: %w", err)
			}
			if err := s.userRepo.LinkOAuthProvider(created.ID, provider, subject); err != nil {
				return nil, nil, fmt.Errorf("failed to link oauth provider: %w", err)
			}
			user = created
		}
	}

	session, err := s.CreateSession(user)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

// RequestPasswordReset creates a reset token and emails it. Deliberately
// reports success even when no account matches, to avoid leaking account
// existence.
func (s *AuthService) RequestPasswordReset(ctx context.Context, emailService *EmailService, email string) error {
	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil
	}

	token, err := security.GenerateSecureToken(32)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	_ = s.userRepo.DeleteUserPasswordResetTokens(user.ID)

	expiresAt := time.Now().Add(1 * time.Hour)
	if err := s.userRepo.CreatePasswordResetToken(token, user.ID, expiresAt); err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}

	if emailService != nil && emailService.IsEnabled() {
		if err := emailService.SendPasswordResetEmail(ctx, user.Email, user.DisplayName, token); err != nil {
			return fmt.Errorf("failed to send reset email: %w", err)
		}
	}

	return nil
}

// ResetPassword resets a user's password using a valid token
func (s *AuthService) ResetPassword(token, newPassword string) error {
	resetToken, err := s.userRepo.GetPasswordResetToken(token)
	if err != nil {
		return fmt.Errorf("failed to get reset token: %w", err)
	}
	if resetToken == nil {
		return ErrResetTokenInvalid
	}
	if resetToken.Used {
		return ErrResetTokenUsed
	}
	if resetToken.IsExpired() {
		return ErrResetTokenExpired
	}

	if err := validation.ValidatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(resetToken.UserID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.userRepo.MarkPasswordResetTokenAsUsed(token); err != nil {
		return fmt.Errorf("failed to mark token as used: %w", err)
	}

	// Force re-login everywhere after a password change
	if err := s.userRepo.DeleteUserSessions(resetToken.UserID); err != nil {
		return fmt.Errorf("failed to invalidate sessions: %w", err)
	}

	return nil
}

// CleanupExpiredSessions removes expired sessions from the database
func (s *AuthService) CleanupExpiredSessions() error {
	if err := s.userRepo.DeleteExpiredSessions(); err != nil {
		return fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	return nil
}

// CleanupExpiredPasswordResetTokens removes expired reset tokens
func (s *AuthService) CleanupExpiredPasswordResetTokens() error {
	if err := s.userRepo.DeleteExpiredPasswordResetTokens(); err != nil {
		return fmt.Errorf("failed to cleanup reset tokens: %w", err)
	}
	return nil
}

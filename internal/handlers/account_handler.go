package handlers

import (
	"net/http"

	"familycircle/internal/service"
	"familycircle/internal/storage"
)

// AccountHandler serves the authenticated user's own account: profile
// reads and updates, photo upload, and account deletion.
type AccountHandler struct {
	auth          *service.AuthService
	cleanup       *service.CleanupService
	blobs         storage.BlobStore
	maxUploadSize int64
}

func NewAccountHandler(auth *service.AuthService, cleanup *service.CleanupService, blobs storage.BlobStore, maxUploadSize int64) *AccountHandler {
	return &AccountHandler{auth: auth, cleanup: cleanup, blobs: blobs, maxUploadSize: maxUploadSize}
}

// Me returns the authenticated user.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, GetUserFromContext(r.Context()))
}

// PublicProfile returns another user's display name and photo.
func (h *AccountHandler) PublicProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	profile, err := h.auth.GetPublicProfile(userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// UpdateProfile changes the caller's first and last names.
func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var body struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.auth.UpdateProfile(user.ID, body.FirstName, body.LastName)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// UploadPhoto stores a new profile photo and records its URL.
func (h *AccountHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	file, _, err := r.FormFile("photo")
	if err != nil {
		respondError(w, http.StatusBadRequest, "A photo file is required")
		return
	}
	defer file.Close()

	url, err := h.blobs.Upload(r.Context(), storage.ProfileImageKey(user.ID), file)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if err := h.auth.SetPhotoURL(user.ID, url); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"photoUrl": url})
}

// DeleteAccount reauthenticates with the supplied credentials and then
// removes the account with everything belonging to it.
func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.cleanup.DeleteAccount(r.Context(), user, body.Email, body.Password); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "account deleted"})
}

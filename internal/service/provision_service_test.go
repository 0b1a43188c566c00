package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"familycircle/internal/models"
	"familycircle/internal/storage"
	"familycircle/internal/validation"
)

type fakeUserStore struct {
	nextID    int64
	users     map[int64]*models.User
	photoErr  error
	deleted   []int64
	sessions  map[int64]bool
	resets    map[int64]bool
	sessErr   error
	deleteErr error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:    make(map[int64]*models.User),
		sessions: make(map[int64]bool),
		resets:   make(map[int64]bool),
	}
}

func (f *fakeUserStore) GetUserByEmail(email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) CreateUser(email, passwordHash, firstName, lastName string) (*models.User, error) {
	f.nextID++
	u := &models.User{
		ID:           f.nextID,
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
		DisplayName:  models.DisplayNameFor(firstName, lastName),
		CreatedAt:    time.Now(),
	}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUserStore) SetPhotoURL(userID int64, photoURL string) error {
	if f.photoErr != nil {
		return f.photoErr
	}
	f.users[userID].PhotoURL = photoURL
	return nil
}

func (f *fakeUserStore) DeleteUser(userID int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.users, userID)
	f.deleted = append(f.deleted, userID)
	return nil
}

func (f *fakeUserStore) DeleteUserSessions(userID int64) error {
	if f.sessErr != nil {
		return f.sessErr
	}
	f.sessions[userID] = false
	return nil
}

func (f *fakeUserStore) DeleteUserPasswordResetTokens(userID int64) error {
	f.resets[userID] = false
	return nil
}

type fakeCircleStore struct {
	nextID  int64
	circles map[int64]*models.Circle
	removed []int64
}

func newFakeCircleStore() *fakeCircleStore {
	return &fakeCircleStore{circles: make(map[int64]*models.Circle)}
}

func (f *fakeCircleStore) CreateCircle(name string, creatorID int64) (*models.Circle, error) {
	f.nextID++
	c := &models.Circle{ID: f.nextID, Name: name, InviteCode: "ABC123", CreatedBy: creatorID}
	f.circles[c.ID] = c
	return c, nil
}

func (f *fakeCircleStore) DeleteCircle(circleID int64) error {
	delete(f.circles, circleID)
	return nil
}

func (f *fakeCircleStore) RemoveMember(circleID, userID int64) error {
	f.removed = append(f.removed, userID)
	return nil
}

type fakeBlobStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	uploadErr error
	listErr   error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string][]byte)}
}

func (f *fakeBlobStore) Upload(ctx context.Context, key string, r io.Reader) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	f.objects[key] = data
	f.mu.Unlock()
	return f.URL(key), nil
}

func (f *fakeBlobStore) URL(key string) string {
	return "https://blobs.test/" + key
}

func (f *fakeBlobStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[key]; !ok {
		return storage.ErrNotFound
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeBlobStore) List(ctx context.Context, prefix string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for key := range f.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func validSignUp(choice CircleChoice) SignUpInput {
	return SignUpInput{
		Email:        "jane@example.com",
		Password:     "hunter42x",
		FirstName:    "Jane",
		LastName:     "Doe",
		CircleChoice: choice,
		CircleName:   "The Does",
		InviteCode:   "ABC123",
	}
}

func TestSignUpCreatesAccountAndCircle(t *testing.T) {
	users := newFakeUserStore()
	circles := newFakeCircleStore()
	blobs := newFakeBlobStore()
	svc := NewProvisionService(users, circles, blobs, nil)

	input := validSignUp(CircleCreate)
	input.ProfileImage = strings.NewReader("fake-image-bytes")

	user, circle, err := svc.SignUp(context.Background(), input)
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if user == nil || circle == nil {
		t.Fatal("expected both a user and a circle")
	}
	if user.CircleID == nil || *user.CircleID != circle.ID {
		t.Errorf("user.CircleID = %v, want %d", user.CircleID, circle.ID)
	}
	if user.CircleRole != models.RoleAdmin {
		t.Errorf("user.CircleRole = %q, want %q", user.CircleRole, models.RoleAdmin)
	}
	if user.DisplayName != "Jane Doe" {
		t.Errorf("DisplayName = %q, want %q", user.DisplayName, "Jane Doe")
	}
	if user.PhotoURL == "" {
		t.Error("expected a photo URL after upload")
	}
	if _, ok := blobs.objects[storage.ProfileImageKey(user.ID)]; !ok {
		t.Error("expected the profile image in the blob store")
	}
}

func TestSignUpWithoutCircle(t *testing.T) {
	svc := NewProvisionService(newFakeUserStore(), newFakeCircleStore(), newFakeBlobStore(), nil)

	user, circle, err := svc.SignUp(context.Background(), validSignUp(CircleNone))
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if circle != nil {
		t.Errorf("expected no circle, got %+v", circle)
	}
	if user.CircleID != nil {
		t.Errorf("expected no circle membership, got %v", *user.CircleID)
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	users := newFakeUserStore()
	svc := NewProvisionService(users, newFakeCircleStore(), newFakeBlobStore(), nil)

	if _, _, err := svc.SignUp(context.Background(), validSignUp(CircleNone)); err != nil {
		t.Fatalf("first SignUp failed: %v", err)
	}
	_, _, err := svc.SignUp(context.Background(), validSignUp(CircleNone))
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if len(users.users) != 1 {
		t.Errorf("expected 1 user, got %d", len(users.users))
	}
}

func TestSignUpValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SignUpInput)
		message string
	}{
		{"short password", func(in *SignUpInput) { in.Password = "abc1" }, "Password must be at least 8 characters"},
		{"password without digit", func(in *SignUpInput) { in.Password = "abcdefgh" }, "Password must include at least one number"},
		{"bad email", func(in *SignUpInput) { in.Email = "not-an-email" }, "Please enter a valid email address"},
		{"bad first name", func(in *SignUpInput) { in.FirstName = "J@ne" }, "First name can only contain letters, spaces, hyphens and apostrophes"},
		{"missing circle name", func(in *SignUpInput) { in.CircleChoice = CircleCreate; in.CircleName = "" }, "Family Circle name is required"},
		{"bad invite code", func(in *SignUpInput) { in.CircleChoice = CircleJoin; in.InviteCode = "ab!" }, "Invite code must be 6-10 alphanumeric characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := newFakeUserStore()
			svc := NewProvisionService(users, newFakeCircleStore(), newFakeBlobStore(), nil)

			input := validSignUp(CircleNone)
			tt.mutate(&input)

			_, _, err := svc.SignUp(context.Background(), input)
			var verr validation.Error
			if !errors.As(err, &verr) {
				t.Fatalf("expected a validation error, got %v", err)
			}
			if verr.Message != tt.message {
				t.Errorf("message = %q, want %q", verr.Message, tt.message)
			}
			if len(users.users) != 0 {
				t.Error("validation failure must not create an account")
			}
		})
	}
}

func TestSignUpJoinNotImplemented(t *testing.T) {
	users := newFakeUserStore()
	svc := NewProvisionService(users, newFakeCircleStore(), newFakeBlobStore(), nil)

	_, _, err := svc.SignUp(context.Background(), validSignUp(CircleJoin))
	if !errors.Is(err, ErrNotImplemented) {
		t.Fatalf("expected ErrNotImplemented, got %v", err)
	}
	// The sequential runner leaves completed steps in place.
	if len(users.users) != 1 {
		t.Errorf("expected the account to survive the failed join, got %d users", len(users.users))
	}
}

func TestSignUpJoinCompensated(t *testing.T) {
	users := newFakeUserStore()
	svc := NewProvisionService(users, newFakeCircleStore(), newFakeBlobStore(), CompensatingRunner{})

	_, _, err := svc.SignUp(context.Background(), validSignUp(CircleJoin))
	if !errors.Is(err, ErrNotImplemented) {
		t.Fatalf("expected ErrNotImplemented, got %v", err)
	}
	if len(users.users) != 0 {
		t.Errorf("expected the account to be rolled back, got %d users", len(users.users))
	}
	if len(users.deleted) != 1 {
		t.Errorf("expected 1 compensating delete, got %d", len(users.deleted))
	}
}

func TestSignUpImageFailureStopsLaterSteps(t *testing.T) {
	users := newFakeUserStore()
	circles := newFakeCircleStore()
	blobs := newFakeBlobStore()
	blobs.uploadErr = fmt.Errorf("connection reset")
	svc := NewProvisionService(users, circles, blobs, nil)

	input := validSignUp(CircleCreate)
	input.ProfileImage = strings.NewReader("fake-image-bytes")

	_, _, err := svc.SignUp(context.Background(), input)
	if err == nil {
		t.Fatal("expected an error from the failed upload")
	}
	if len(users.users) != 1 {
		t.Errorf("expected the account to survive, got %d users", len(users.users))
	}
	if len(circles.circles) != 0 {
		t.Errorf("expected no circle after the upload failure, got %d", len(circles.circles))
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"familycircle/internal/models"
	"familycircle/internal/storage"
)

type fakeAuth struct {
	err          error
	reauthed     bool
	sessionEnded bool
}

func (f *fakeAuth) Reauthenticate(user *models.User, email, password string) error {
	f.reauthed = true
	return f.err
}

func (f *fakeAuth) SessionEnded() { f.sessionEnded = true }

// fakeContentStore covers posts, tasks, and events in one recorder.
type fakeContentStore struct {
	activityDeleted bool
	postsDeleted    bool
	tasksCleared    bool
	eventsDeleted   bool
}

func (f *fakeContentStore) DeleteUserActivity(userID int64) error { f.activityDeleted = true; return nil }
func (f *fakeContentStore) DeleteUserPosts(userID int64) error    { f.postsDeleted = true; return nil }
func (f *fakeContentStore) ClearUserTasks(userID int64) error     { f.tasksCleared = true; return nil }
func (f *fakeContentStore) DeleteUserEvents(userID int64) error   { f.eventsDeleted = true; return nil }

func newCleanupFixture() (*CleanupService, *fakeAuth, *fakeUserStore, *fakeCircleStore, *fakeContentStore, *fakeBlobStore) {
	auth := &fakeAuth{}
	users := newFakeUserStore()
	circles := newFakeCircleStore()
	content := &fakeContentStore{}
	blobs := newFakeBlobStore()
	svc := NewCleanupService(auth, users, circles, content, content, content, blobs)
	return svc, auth, users, circles, content, blobs
}

func cleanupTestUser(users *fakeUserStore, circleID int64) *models.User {
	user, _ := users.CreateUser("jane@example.com", "hash", "Jane", "Doe")
	if circleID != 0 {
		user.CircleID = &circleID
		user.CircleRole = models.RoleAdmin
	}
	return user
}

func TestDeleteAccountWrongPasswordTouchesNothing(t *testing.T) {
	svc, auth, users, _, content, _ := newCleanupFixture()
	user := cleanupTestUser(users, 7)
	auth.err = ErrWrongPassword

	err := svc.DeleteAccount(context.Background(), user, user.Email, "wrong")
	if !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}
	if content.activityDeleted || content.postsDeleted || content.tasksCleared || content.eventsDeleted {
		t.Error("domain data must not be touched after a failed reauthentication")
	}
	if len(users.deleted) != 0 {
		t.Error("the account must not be deleted after a failed reauthentication")
	}
	if auth.sessionEnded {
		t.Error("no session change should be broadcast")
	}
}

func TestDeleteAccountRemovesEverything(t *testing.T) {
	svc, auth, users, circles, content, blobs := newCleanupFixture()
	user := cleanupTestUser(users, 7)

	ctx := context.Background()
	blobs.objects[storage.ProfileImageKey(user.ID)] = []byte("photo")
	blobs.objects[storage.UserFilesPrefix(user.ID)+"a.jpg"] = []byte("a")
	blobs.objects[storage.UserFilesPrefix(user.ID)+"b.jpg"] = []byte("b")
	blobs.objects["userFiles/999/other.jpg"] = []byte("keep")

	if err := svc.DeleteAccount(ctx, user, user.Email, "hunter42x"); err != nil {
		t.Fatalf("DeleteAccount failed: %v", err)
	}

	if !content.activityDeleted || !content.postsDeleted || !content.tasksCleared || !content.eventsDeleted {
		t.Error("expected all domain data to be deleted")
	}
	if len(circles.removed) != 1 || circles.removed[0] != user.ID {
		t.Errorf("expected the user removed from their circle, got %v", circles.removed)
	}
	if len(users.deleted) != 1 || users.deleted[0] != user.ID {
		t.Errorf("expected the identity deleted, got %v", users.deleted)
	}
	if len(blobs.objects) != 1 {
		t.Errorf("expected only the other user's file to remain, got %d objects", len(blobs.objects))
	}
	if _, ok := blobs.objects["userFiles/999/other.jpg"]; !ok {
		t.Error("another user's file was deleted")
	}
	if !auth.sessionEnded {
		t.Error("expected a signed-out broadcast after deletion")
	}
}

func TestDeleteAccountIgnoresMissingBlobs(t *testing.T) {
	svc, _, users, _, _, _ := newCleanupFixture()
	user := cleanupTestUser(users, 0)

	if err := svc.DeleteAccount(context.Background(), user, user.Email, "hunter42x"); err != nil {
		t.Fatalf("DeleteAccount failed with an empty blob store: %v", err)
	}
	if len(users.deleted) != 1 {
		t.Error("expected the identity to be deleted")
	}
}

func TestDeleteAccountStopsBeforeIdentityOnStorageFailure(t *testing.T) {
	svc, auth, users, _, _, blobs := newCleanupFixture()
	user := cleanupTestUser(users, 0)
	blobs.listErr = fmt.Errorf("bucket unreachable")

	err := svc.DeleteAccount(context.Background(), user, user.Email, "hunter42x")
	if err == nil {
		t.Fatal("expected an error from the storage failure")
	}
	if len(users.deleted) != 0 {
		t.Error("the identity must survive so the deletion can be retried")
	}
	if auth.sessionEnded {
		t.Error("no session change should be broadcast on failure")
	}
}

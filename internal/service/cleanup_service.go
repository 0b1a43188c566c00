package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"familycircle/internal/models"
	"familycircle/internal/storage"
)

type reauthenticator interface {
	Reauthenticate(user *models.User, email, password string) error
	SessionEnded()
}

type cleanupIdentityStore interface {
	DeleteUserSessions(userID int64) error
	DeleteUserPasswordResetTokens(userID int64) error
	DeleteUser(userID int64) error
}

type cleanupCircleStore interface {
	RemoveMember(circleID, userID int64) error
}

type cleanupPostStore interface {
	DeleteUserPosts(userID int64) error
	DeleteUserActivity(userID int64) error
}

type cleanupTaskStore interface {
	ClearUserTasks(userID int64) error
}

type cleanupEventStore interface {
	DeleteUserEvents(userID int64) error
}

// CleanupService removes every trace of an account: circle membership,
// posts and activity, tasks, events, stored files, and finally the
// identity itself. The identity is deleted last so a failure partway
// through leaves an account that can retry the deletion.
type CleanupService struct {
	auth    reauthenticator
	users   cleanupIdentityStore
	circles cleanupCircleStore
	posts   cleanupPostStore
	tasks   cleanupTaskStore
	events  cleanupEventStore
	blobs   storage.BlobStore
}

func NewCleanupService(
	auth reauthenticator,
	users cleanupIdentityStore,
	circles cleanupCircleStore,
	posts cleanupPostStore,
	tasks cleanupTaskStore,
	events cleanupEventStore,
	blobs storage.BlobStore,
) *CleanupService {
	return &CleanupService{
		auth:    auth,
		users:   users,
		circles: circles,
		posts:   posts,
		tasks:   tasks,
		events:  events,
		blobs:   blobs,
	}
}

// DeleteAccount reauthenticates the user and then deletes their data in
// order: domain rows, stored files, identity. A failed reauthentication
// touches nothing. There is no compensation; a failure mid-way stops the
// remaining steps and the caller may retry.
func (s *CleanupService) DeleteAccount(ctx context.Context, user *models.User, email, password string) error {
	if err := s.auth.Reauthenticate(user, email, password); err != nil {
		return err
	}

	if err := s.deleteDomainData(user); err != nil {
		return err
	}
	if err := s.deleteStoredFiles(ctx, user.ID); err != nil {
		return err
	}
	if err := s.deleteIdentity(user.ID); err != nil {
		return err
	}

	s.auth.SessionEnded()
	log.Info().Int64("user_id", user.ID).Str("email", user.Email).Msg("Deleted account")
	return nil
}

func (s *CleanupService) deleteDomainData(user *models.User) error {
	if user.CircleID != nil {
		if err := s.circles.RemoveMember(*user.CircleID, user.ID); err != nil {
			return fmt.Errorf("failed to leave circle: %w", err)
		}
	}
	if err := s.posts.DeleteUserActivity(user.ID); err != nil {
		return fmt.Errorf("failed to delete comments and likes: %w", err)
	}
	if err := s.posts.DeleteUserPosts(user.ID); err != nil {
		return fmt.Errorf("failed to delete posts: %w", err)
	}
	if err := s.tasks.ClearUserTasks(user.ID); err != nil {
		return fmt.Errorf("failed to clear tasks: %w", err)
	}
	if err := s.events.DeleteUserEvents(user.ID); err != nil {
		return fmt.Errorf("failed to delete events: %w", err)
	}
	return nil
}

// deleteStoredFiles removes the profile photo and everything under the
// user's file prefix. Missing blobs are not an error; the files under the
// prefix are deleted concurrently since they are independent objects.
func (s *CleanupService) deleteStoredFiles(ctx context.Context, userID int64) error {
	err := s.blobs.Delete(ctx, storage.ProfileImageKey(userID))
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to delete profile photo: %w", err)
	}

	keys, err := s.blobs.List(ctx, storage.UserFilesPrefix(userID))
	if err != nil {
		return fmt.Errorf("failed to list user files: %w", err)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for _, key := range keys {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			err := s.blobs.Delete(ctx, key)
			if err == nil || errors.Is(err, storage.ErrNotFound) {
				return
			}
			mu.Lock()
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to delete %s: %w", key, err)
			}
			mu.Unlock()
		}(key)
	}
	wg.Wait()

	return firstErr
}

func (s *CleanupService) deleteIdentity(userID int64) error {
	if err := s.users.DeleteUserSessions(userID); err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}
	if err := s.users.DeleteUserPasswordResetTokens(userID); err != nil {
		return fmt.Errorf("failed to delete reset tokens: %w", err)
	}
	if err := s.users.DeleteUser(userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

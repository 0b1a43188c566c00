package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"familycircle/internal/models"
	"familycircle/internal/security"
	"familycircle/internal/storage"
	"familycircle/internal/validation"
)

// ErrNotImplemented is returned by operations that are declared in the API
// surface but have no working implementation yet.
var ErrNotImplemented = errors.New("not implemented")

// CircleChoice selects what happens to circle membership during sign-up.
type CircleChoice string

const (
	CircleNone   CircleChoice = "none"
	CircleCreate CircleChoice = "create"
	CircleJoin   CircleChoice = "join"
)

// SignUpInput carries everything a new account needs. ProfileImage is
// optional; CircleName is required when CircleChoice is CircleCreate and
// InviteCode when it is CircleJoin.
type SignUpInput struct {
	Email        string
	Password     string
	FirstName    string
	LastName     string
	ProfileImage io.Reader
	CircleChoice CircleChoice
	CircleName   string
	InviteCode   string
}

type provisionUserStore interface {
	GetUserByEmail(email string) (*models.User, error)
	CreateUser(email, passwordHash, firstName, lastName string) (*models.User, error)
	SetPhotoURL(userID int64, photoURL string) error
	DeleteUser(userID int64) error
}

type provisionCircleStore interface {
	CreateCircle(name string, creatorID int64) (*models.Circle, error)
	DeleteCircle(circleID int64) error
}

// ProvisionService runs the multi-step sign-up workflow: create the
// account, optionally upload a profile photo, then create or join a
// circle. The Runner decides what happens to completed steps when a
// later one fails.
type ProvisionService struct {
	users   provisionUserStore
	circles provisionCircleStore
	blobs   storage.BlobStore
	runner  Runner
}

// NewProvisionService creates a provisioning service. A nil runner falls
// back to SequentialRunner.
func NewProvisionService(users provisionUserStore, circles provisionCircleStore, blobs storage.BlobStore, runner Runner) *ProvisionService {
	if runner == nil {
		runner = SequentialRunner{}
	}
	return &ProvisionService{users: users, circles: circles, blobs: blobs, runner: runner}
}

// SignUp validates the input, then runs the provisioning steps. On success
// it returns the new user and, when one was created, the new circle.
func (s *ProvisionService) SignUp(ctx context.Context, input SignUpInput) (*models.User, *models.Circle, error) {
	if err := s.validate(input); err != nil {
		return nil, nil, err
	}

	var (
		user   *models.User
		circle *models.Circle
	)

	steps := []Step{
		{
			Name: "create account",
			Run: func(ctx context.Context) error {
				existing, err := s.users.GetUserByEmail(input.Email)
				if err != nil {
					return err
				}
				if existing != nil {
					return ErrEmailTaken
				}

				hash, err := security.HashPassword(input.Password)
				if err != nil {
					return err
				}
				user, err = s.users.CreateUser(input.Email, hash, input.FirstName, input.LastName)
				return err
			},
			Undo: func(ctx context.Context) error {
				return s.users.DeleteUser(user.ID)
			},
		},
	}

	if input.ProfileImage != nil {
		steps = append(steps, Step{
			Name: "upload profile photo",
			Run: func(ctx context.Context) error {
				url, err := s.blobs.Upload(ctx, storage.ProfileImageKey(user.ID), input.ProfileImage)
				if err != nil {
					return err
				}
				if err := s.users.SetPhotoURL(user.ID, url); err != nil {
					return err
				}
				user.PhotoURL = url
				return nil
			},
			Undo: func(ctx context.Context) error {
				err := s.blobs.Delete(ctx, storage.ProfileImageKey(user.ID))
				if errors.Is(err, storage.ErrNotFound) {
					return nil
				}
				return err
			},
		})
	}

	switch input.CircleChoice {
	case CircleCreate:
		steps = append(steps, Step{
			Name: "create circle",
			Run: func(ctx context.Context) error {
				var err error
				circle, err = s.circles.CreateCircle(input.CircleName, user.ID)
				if err != nil {
					return err
				}
				user.CircleID = &circle.ID
				user.CircleRole = models.RoleAdmin
				return nil
			},
			Undo: func(ctx context.Context) error {
				return s.circles.DeleteCircle(circle.ID)
			},
		})
	case CircleJoin:
		steps = append(steps, Step{
			Name: "join circle",
			Run: func(ctx context.Context) error {
				return ErrNotImplemented
			},
		})
	}

	if err := s.runner.Run(ctx, steps); err != nil {
		if user != nil {
			log.Warn().Err(err).Str("email", input.Email).Int64("user_id", user.ID).Msg("Sign-up stopped partway through")
		}
		return nil, nil, err
	}

	log.Info().Str("email", user.Email).Int64("user_id", user.ID).Msg("Provisioned new account")
	return user, circle, nil
}

func (s *ProvisionService) validate(input SignUpInput) error {
	if err := validation.ValidateEmail(input.Email); err != nil {
		return err
	}
	if err := validation.ValidatePassword(input.Password); err != nil {
		return err
	}
	if err := validation.ValidateName(input.FirstName, "First name"); err != nil {
		return err
	}
	if err := validation.ValidateName(input.LastName, "Last name"); err != nil {
		return err
	}

	switch input.CircleChoice {
	case CircleCreate:
		if err := validation.ValidateCircleName(input.CircleName); err != nil {
			return err
		}
	case CircleJoin:
		if err := validation.ValidateInviteCode(input.InviteCode); err != nil {
			return err
		}
	case CircleNone, "":
	default:
		return fmt.Errorf("unknown circle choice %q", input.CircleChoice)
	}
	return nil
}

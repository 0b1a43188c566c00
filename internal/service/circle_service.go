package service

import (
	"errors"
	"fmt"

	"familycircle/internal/models"
	"familycircle/internal/repository"
	"familycircle/internal/validation"
)

var (
	ErrNoCircle       = errors.New("user does not belong to a circle")
	ErrNotMember      = errors.New("not a member of this circle")
	ErrNotAdmin       = errors.New("admin access required")
	ErrCircleNotFound = errors.New("circle not found")
)

// CircleService answers circle reads and admin-only changes for the
// caller's own circle.
type CircleService struct {
	circles *repository.CircleRepository
}

func NewCircleService(circles *repository.CircleRepository) *CircleService {
	return &CircleService{circles: circles}
}

// GetMyCircle returns the caller's circle with all member details.
func (s *CircleService) GetMyCircle(user *models.User) (*models.CircleWithMembers, error) {
	if user.CircleID == nil {
		return nil, ErrNoCircle
	}

	circle, err := s.circles.GetCircleByID(*user.CircleID)
	if err != nil {
		return nil, err
	}
	if circle == nil {
		return nil, ErrCircleNotFound
	}

	members, users, err := s.circles.GetMembers(circle.ID)
	if err != nil {
		return nil, err
	}

	return &models.CircleWithMembers{Circle: *circle, Members: members, Users: users}, nil
}

// RenameCircle changes the caller's circle name. Admins only.
func (s *CircleService) RenameCircle(user *models.User, name string) error {
	if err := validation.ValidateCircleName(name); err != nil {
		return err
	}

	member, err := s.requireMembership(user)
	if err != nil {
		return err
	}
	if !member.IsAdmin() {
		return ErrNotAdmin
	}

	if err := s.circles.UpdateCircleName(member.CircleID, name); err != nil {
		return fmt.Errorf("failed to rename circle: %w", err)
	}
	return nil
}

// JoinByInviteCode validates the code shape but the join itself is not
// built yet.
func (s *CircleService) JoinByInviteCode(user *models.User, code string) error {
	if err := validation.ValidateInviteCode(code); err != nil {
		return err
	}
	return ErrNotImplemented
}

// LeaveCircle removes the caller from their circle.
func (s *CircleService) LeaveCircle(user *models.User) error {
	member, err := s.requireMembership(user)
	if err != nil {
		return err
	}
	return s.circles.RemoveMember(member.CircleID, user.ID)
}

// requireMembership resolves the caller's membership row, erroring when
// the user has no circle or the membership row is missing.
func (s *CircleService) requireMembership(user *models.User) (*models.CircleMember, error) {
	if user.CircleID == nil {
		return nil, ErrNoCircle
	}
	member, err := s.circles.GetMembership(*user.CircleID, user.ID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrNotMember
	}
	return member, nil
}

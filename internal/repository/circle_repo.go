package repository

import (
	"database/sql"
	"fmt"
	"time"

	"familycircle/internal/credentials"
	"familycircle/internal/database"
	"familycircle/internal/models"
)

// CircleRepository handles database operations for family circles
type CircleRepository struct {
	db *database.DB
}

// NewCircleRepository creates a new circle repository
func NewCircleRepository(db *database.DB) *CircleRepository {
	return &CircleRepository{db: db}
}

// inviteCodeAttempts bounds invite-code regeneration on collision. Codes
// are 6 chars from a 36-symbol alphabet, so collisions are rare; the
// UNIQUE constraint on circles.invite_code is the backstop.
const inviteCodeAttempts = 5

// CreateCircle creates a circle, adds the creator as an admin member, and
// records the membership on the creator's user row. The three writes share
// one transaction so a user can never reference a circle that does not
// list them as a member.
func (r *CircleRepository) CreateCircle(name string, creatorID int64) (*models.Circle, error) {
	inviteCode, err := r.freshInviteCode()
	if err != nil {
		return nil, err
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	circleID, err := tx.ExecReturningID(
		"INSERT INTO circles (name, invite_code, created_by) VALUES (?, ?, ?)",
		name, inviteCode, creatorID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create circle: %w", err)
	}

	_, err = tx.Exec(
		"INSERT INTO circle_members (circle_id, user_id, role) VALUES (?, ?, ?)",
		circleID, creatorID, models.RoleAdmin,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add circle member: %w", err)
	}

	_, err = tx.Exec(
		"UPDATE users SET circle_id = ?, circle_role = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		circleID, models.RoleAdmin, creatorID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update creator: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.Circle{
		ID:         circleID,
		Name:       name,
		InviteCode: inviteCode,
		CreatedBy:  creatorID,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}, nil
}

func (r *CircleRepository) freshInviteCode() (string, error) {
	for attempt := 0; attempt < inviteCodeAttempts; attempt++ {
		code, err := credentials.GenerateInviteCode()
		if err != nil {
			return "", fmt.Errorf("failed to generate invite code: %w", err)
		}

		var count int
		if err := r.db.QueryRow("SELECT COUNT(*) FROM circles WHERE invite_code = ?", code).Scan(&count); err != nil {
			return "", fmt.Errorf("failed to check invite code: %w", err)
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique invite code after %d attempts", inviteCodeAttempts)
}

// GetCircleByID retrieves a circle by ID. Returns nil when no circle matches.
func (r *CircleRepository) GetCircleByID(circleID int64) (*models.Circle, error) {
	query := "SELECT id, name, invite_code, created_by, created_at, updated_at FROM circles WHERE id = ?"
	circle := &models.Circle{}
	err := r.db.QueryRow(query, circleID).Scan(
		&circle.ID,
		&circle.Name,
		&circle.InviteCode,
		&circle.CreatedBy,
		&circle.CreatedAt,
		&circle.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get circle: %w", err)
	}
	return circle, nil
}

// GetCircleByInviteCode retrieves a circle by invite code.
func (r *CircleRepository) GetCircleByInviteCode(code string) (*models.Circle, error) {
	query := "SELECT id, name, invite_code, created_by, created_at, updated_at FROM circles WHERE invite_code = ?"
	circle := &models.Circle{}
	err := r.db.QueryRow(query, code).Scan(
		&circle.ID,
		&circle.Name,
		&circle.InviteCode,
		&circle.CreatedBy,
		&circle.CreatedAt,
		&circle.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get circle by invite code: %w", err)
	}
	return circle, nil
}

// GetMembers retrieves all members of a circle with their user details
func (r *CircleRepository) GetMembers(circleID int64) ([]models.CircleMember, []models.User, error) {
	query := `
		SELECT cm.id, cm.circle_id, cm.user_id, cm.role, cm.joined_at,
		       u.id, u.email, u.first_name, u.last_name, u.display_name, COALESCE(u.photo_url, ''), u.created_at
		FROM circle_members cm
		INNER JOIN users u ON cm.user_id = u.id
		WHERE cm.circle_id = ?
		ORDER BY cm.joined_at ASC
	`
	rows, err := r.db.Query(query, circleID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query circle members: %w", err)
	}
	defer rows.Close()

	var members []models.CircleMember
	var users []models.User
	for rows.Next() {
		var member models.CircleMember
		var user models.User
		if err := rows.Scan(
			&member.ID, &member.CircleID, &member.UserID, &member.Role, &member.JoinedAt,
			&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.DisplayName, &user.PhotoURL, &user.CreatedAt,
		); err != nil {
			return nil, nil, fmt.Errorf("failed to scan circle member: %w", err)
		}
		members = append(members, member)
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate circle members: %w", err)
	}

	return members, users, nil
}

// GetMembership retrieves a user's membership in a circle. Returns nil when
// the user is not a member.
func (r *CircleRepository) GetMembership(circleID, userID int64) (*models.CircleMember, error) {
	query := "SELECT id, circle_id, user_id, role, joined_at FROM circle_members WHERE circle_id = ? AND user_id = ?"
	member := &models.CircleMember{}
	err := r.db.QueryRow(query, circleID, userID).Scan(
		&member.ID, &member.CircleID, &member.UserID, &member.Role, &member.JoinedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return member, nil
}

// RemoveMember removes a user from a circle and clears the user row's
// circle reference in the same transaction.
func (r *CircleRepository) RemoveMember(circleID, userID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM circle_members WHERE circle_id = ? AND user_id = ?", circleID, userID); err != nil {
		return fmt.Errorf("failed to remove circle member: %w", err)
	}
	if _, err := tx.Exec("UPDATE users SET circle_id = NULL, circle_role = NULL, updated_at = CURRENT_TIMESTAMP WHERE id = ?", userID); err != nil {
		return fmt.Errorf("failed to clear user circle: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteCircle removes a circle, its memberships, and the circle reference
// on every member's user row. Used when circle creation is rolled back.
func (r *CircleRepository) DeleteCircle(circleID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("UPDATE users SET circle_id = NULL, circle_role = NULL, updated_at = CURRENT_TIMESTAMP WHERE circle_id = ?", circleID); err != nil {
		return fmt.Errorf("failed to clear member circle references: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM circle_members WHERE circle_id = ?", circleID); err != nil {
		return fmt.Errorf("failed to delete circle members: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM circles WHERE id = ?", circleID); err != nil {
		return fmt.Errorf("failed to delete circle: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdateCircleName updates a circle's name
func (r *CircleRepository) UpdateCircleName(circleID int64, name string) error {
	query := "UPDATE circles SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.Exec(query, name, circleID); err != nil {
		return fmt.Errorf("failed to update circle: %w", err)
	}
	return nil
}

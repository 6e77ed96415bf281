package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"onboarding-portal-api/models"

	"gorm.io/gorm"
)

// RoleDirectory is the authorization capability the workflow depends on.
type RoleDirectory interface {
	HasRole(ctx context.Context, userID int, role string) (bool, error)
	Promote(ctx context.Context, userID int, fromRole, toRole string) error
}

// PromotionService implements RoleDirectory over the users/roles tables.
type PromotionService struct {
	db *gorm.DB
}

func NewPromotionService(db *gorm.DB) *PromotionService {
	return &PromotionService{db: db}
}

func (s *PromotionService) HasRole(ctx context.Context, userID int, role string) (bool, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.Role.Role == role, nil
}

// Promote moves a user from fromRole to toRole. Idempotent: a user already
// holding toRole succeeds as a no-op. A user holding any other role fails
// with ErrRoleConflict so promotion never silently overrides an admin.
func (s *PromotionService) Promote(ctx context.Context, userID int, fromRole, toRole string) error {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}

	switch user.Role.Role {
	case toRole:
		return nil
	case fromRole:
		// fall through to the guarded update
	default:
		return fmt.Errorf("%w: user %d holds role %q", ErrRoleConflict, userID, user.Role.Role)
	}

	toRoleID, err := s.roleID(ctx, toRole)
	if err != nil {
		return err
	}

	now := time.Now()
	res := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("user_id = ? AND role_id = ?", userID, user.RoleID).
		Updates(map[string]interface{}{
			"role_id":   toRoleID,
			"update_at": &now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// The guard did not hold: somebody changed the role underneath us.
	// Re-read and treat an already-promoted user as success.
	user, err = s.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role.Role == toRole {
		return nil
	}
	return fmt.Errorf("%w: user %d holds role %q", ErrRoleConflict, userID, user.Role.Role)
}

func (s *PromotionService) loadUser(ctx context.Context, userID int) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Preload("Role").
		Where("user_id = ? AND delete_at IS NULL", userID).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *PromotionService) roleID(ctx context.Context, role string) (int, error) {
	var row models.Role
	err := s.db.WithContext(ctx).
		Where("role = ? AND delete_at IS NULL", role).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("role %q is not seeded", role)
	}
	if err != nil {
		return 0, err
	}
	return row.RoleID, nil
}

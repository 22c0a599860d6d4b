package user

import (
	"errors"

	"pesaguru-backend/internal/constants"
	"pesaguru-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrLastAdmin = errors.New("At least one admin must remain")

// validateRoleAssignment is checked before a role change is written. Users
// cannot change their own role and the last admin cannot be demoted.
func validateRoleAssignment(db *gorm.DB, actorID uuid.UUID, target *domain.User, role string) error {
	if actorID == target.UserID {
		return ErrSelfRoleChange
	}
	if target.Role == constants.Admin && role != constants.Admin {
		var admins int64
		if err := db.Model(&domain.User{}).Where("role = ?", constants.Admin).Count(&admins).Error; err != nil {
			return err
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}
	return nil
}

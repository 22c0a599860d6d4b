package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an account holder. Goals and portfolios are owned by a user.
type User struct {
	UserID       uuid.UUID    `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	Fullname     string       `gorm:"column:fullname;not null" json:"fullname"`
	UserName     string       `gorm:"column:user_name;not null;uniqueIndex" json:"user_name"`
	Email        string       `gorm:"column:email;not null;uniqueIndex" json:"email"`
	PasswordHash string       `gorm:"column:password_hash;not null" json:"-"`
	Role         string       `gorm:"column:role;not null;default:'user'" json:"role"`
	RiskCategory RiskCategory `gorm:"column:risk_category;type:varchar(20);not null;default:'moderate'" json:"risk_category"`
	CreatedAt    time.Time    `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt    time.Time    `gorm:"column:updatedAt" json:"updatedAt"`
}

func (User) TableName() string {
	return "Users"
}

// BeforeCreate sets UUID if not set (for DBs without gen_random_uuid).
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == uuid.Nil {
		u.UserID = uuid.New()
	}
	return nil
}

package user

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"pesaguru-backend/internal/application/emails"
	"pesaguru-backend/internal/constants"
	"pesaguru-backend/internal/domain"
	"pesaguru-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserNameRequired    = errors.New("Username is required and must be 3-30 letters, digits, dots, underscores or hyphens")
	ErrInvalidEmail        = errors.New("Invalid email format")
	ErrInvalidPassword     = errors.New("Password must be at least 8 characters with a letter, a number and a special character")
	ErrFullnameRequired    = errors.New("Full name is required and must be a non-empty string")
	ErrInvalidFullname     = errors.New("Full name contains invalid characters (only letters, spaces, hyphens, and apostrophes allowed)")
	ErrEmailTaken          = errors.New("Email already registered")
	ErrUserNameTaken       = errors.New("Username already registered")
	ErrUserNotFound        = errors.New("User not found")
	ErrInvalidRiskCategory = errors.New("Invalid risk category")
	ErrInvalidRole         = errors.New("Invalid role")
	ErrSelfRoleChange      = errors.New("You cannot change your own role")
)

// Service holds DB and Redis for user operations.
type Service struct {
	DB       *gorm.DB
	Rdb      *redis.Client
	Notifier emails.Sender
}

type RegisterInput struct {
	UserName string `json:"user_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Fullname string `json:"fullname"`
}

// Register creates a user with the "user" role and a moderate risk category,
// then sends the welcome email. Email failures are logged only.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	userName := strings.TrimSpace(in.UserName)
	if !validation.IsValidUserName(userName) {
		return nil, ErrUserNameRequired
	}
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if !validation.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if !validation.IsValidPassword(in.Password) {
		return nil, ErrInvalidPassword
	}
	trimmed := strings.TrimSpace(in.Fullname)
	if trimmed == "" {
		return nil, ErrFullnameRequired
	}
	if !validation.IsValidFullname(trimmed) {
		return nil, ErrInvalidFullname
	}

	var existing domain.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	}
	if err := s.DB.WithContext(ctx).Where("user_name = ?", userName).First(&existing).Error; err == nil {
		return nil, ErrUserNameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), 10)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		UserName:     userName,
		Email:        email,
		PasswordHash: string(hash),
		Fullname:     titleCaseAndNormalize(trimmed),
		Role:         constants.User,
		RiskCategory: domain.RiskModerate,
	}
	if err := s.DB.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	log.Info().Str("user_id", u.UserID.String()).Msg("user registered")

	if s.Notifier != nil {
		if err := s.Notifier.SendWelcome(ctx, u.Email, firstName(u.Fullname)); err != nil {
			log.Warn().Err(err).Str("user_id", u.UserID.String()).Msg("welcome email failed")
		}
	}
	return u, nil
}

// Profile returns the user by ID.
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	var u domain.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// SetRiskCategory records the risk appetite the user picked for themselves.
func (s *Service) SetRiskCategory(ctx context.Context, userID uuid.UUID, category domain.RiskCategory) (*domain.User, error) {
	if !category.Valid() {
		return nil, ErrInvalidRiskCategory
	}
	res := s.DB.WithContext(ctx).Model(&domain.User{}).Where("user_id = ?", userID).Update("risk_category", category)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}
	log.Info().Str("user_id", userID.String()).Str("risk_category", string(category)).Msg("risk category updated")
	return s.Profile(ctx, userID)
}

// UpdateRole changes another user's role and signs them out everywhere so the
// new role applies on their next login.
func (s *Service) UpdateRole(ctx context.Context, actorID, targetID uuid.UUID, role string) (*domain.User, error) {
	if !constants.IsValidRole(role) {
		return nil, ErrInvalidRole
	}
	u, err := s.Profile(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if err := validateRoleAssignment(s.DB.WithContext(ctx), actorID, u, role); err != nil {
		return nil, err
	}
	u.Role = role
	if err := s.DB.WithContext(ctx).Model(u).Update("role", role).Error; err != nil {
		return nil, err
	}
	destroyUserSessions(ctx, s.Rdb, targetID.String())
	log.Info().Str("actor_id", actorID.String()).Str("user_id", targetID.String()).Str("role", role).Msg("user role updated")
	return u, nil
}

func firstName(full string) string {
	if f := strings.Fields(full); len(f) > 0 {
		return f[0]
	}
	return ""
}

func titleCaseAndNormalize(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	var b strings.Builder
	capitalize := true
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !capitalize {
				b.WriteRune(' ')
				capitalize = true
			}
			continue
		}
		if capitalize {
			b.WriteRune(unicode.ToUpper(r))
			capitalize = false
		} else {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

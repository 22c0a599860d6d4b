package user

import (
	"pesaguru-backend/internal/application/riskprofiles"
	usersvc "pesaguru-backend/internal/application/user"
	"pesaguru-backend/internal/domain"
	authhandler "pesaguru-backend/internal/interfaces/handlers/auth"
	"pesaguru-backend/internal/middleware"
	"pesaguru-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Handlers holds the user service and session config for registration.
type Handlers struct {
	Service      *usersvc.Service
	RiskProfiles *riskprofiles.Service
	Config       middleware.SessionConfig
}

var statusMap = map[error]int{
	usersvc.ErrUserNameRequired:    fiber.StatusBadRequest,
	usersvc.ErrInvalidEmail:        fiber.StatusBadRequest,
	usersvc.ErrInvalidPassword:     fiber.StatusBadRequest,
	usersvc.ErrFullnameRequired:    fiber.StatusBadRequest,
	usersvc.ErrInvalidFullname:     fiber.StatusBadRequest,
	usersvc.ErrEmailTaken:          fiber.StatusConflict,
	usersvc.ErrUserNameTaken:       fiber.StatusConflict,
	usersvc.ErrUserNotFound:        fiber.StatusNotFound,
	usersvc.ErrInvalidRiskCategory: fiber.StatusBadRequest,
	usersvc.ErrInvalidRole:         fiber.StatusBadRequest,
	usersvc.ErrSelfRoleChange:      fiber.StatusBadRequest,
	usersvc.ErrLastAdmin:           fiber.StatusConflict,
}

// Register POST /api/v1/users/register creates the user and signs them in.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req usersvc.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	if req.UserName == "" || req.Email == "" || req.Password == "" || req.Fullname == "" {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}

	u, err := h.Service.Register(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err, statusMap)
	}
	if err := authhandler.StartSession(c, h.Service.Rdb, h.Config, u); err != nil {
		log.Warn().Err(err).Str("user_id", u.UserID.String()).Msg("session tracking failed after registration")
	}
	return response.SuccessCreated(c, "User created successfully", fiber.Map{"user": u}, nil)
}

// Profile GET /api/v1/users/me/profile returns the stored user plus their risk profile.
func (h *Handlers) Profile(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	u, err := h.Service.Profile(c.UserContext(), userID)
	if err != nil {
		return response.FromError(c, err, statusMap)
	}
	data := fiber.Map{"user": u}
	if h.RiskProfiles != nil {
		if rp, err := h.RiskProfiles.Get(c.UserContext(), u.RiskCategory); err == nil {
			data["risk_profile"] = rp
		}
	}
	return response.Success(c, "User found", data, nil)
}

type riskCategoryRequest struct {
	RiskCategory domain.RiskCategory `json:"risk_category"`
}

// SetRiskCategory PATCH /api/v1/users/me/risk-profile
func (h *Handlers) SetRiskCategory(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req riskCategoryRequest
	if err := c.BodyParser(&req); err != nil || req.RiskCategory == "" {
		return response.Error(c, "risk_category is required", fiber.StatusBadRequest, nil)
	}
	u, err := h.Service.SetRiskCategory(c.UserContext(), userID, req.RiskCategory)
	if err != nil {
		return response.FromError(c, err, statusMap)
	}
	refreshSession(c, u)
	return response.Success(c, "Risk profile updated", fiber.Map{"user": u}, nil)
}

type updateRoleRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// UpdateRole PATCH /api/v1/users/role (assign_role)
func (h *Handlers) UpdateRole(c *fiber.Ctx) error {
	actorID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req updateRoleRequest
	if err := c.BodyParser(&req); err != nil || req.UserID == "" || req.Role == "" {
		return response.Error(c, "user_id and role are required", fiber.StatusBadRequest, nil)
	}
	targetID, err := uuid.Parse(req.UserID)
	if err != nil {
		return response.Error(c, "Invalid user ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	u, err := h.Service.UpdateRole(c.UserContext(), actorID, targetID, req.Role)
	if err != nil {
		return response.FromError(c, err, statusMap)
	}
	return response.Success(c, "User role updated successfully", fiber.Map{"user": u}, nil)
}

// refreshSession keeps the cached session user in step with the stored row.
func refreshSession(c *fiber.Ctx, u *domain.User) {
	middleware.SetSessionUser(c, middleware.SessionUser{
		UserID:       u.UserID.String(),
		Fullname:     u.Fullname,
		Email:        u.Email,
		Role:         u.Role,
		RiskCategory: string(u.RiskCategory),
	})
}

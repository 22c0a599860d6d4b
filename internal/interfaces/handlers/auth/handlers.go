package auth

import (
	authsvc "pesaguru-backend/internal/application/auth"
	"pesaguru-backend/internal/domain"
	"pesaguru-backend/internal/middleware"
	"pesaguru-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	UserFinder authsvc.UserFinder
	Rdb        *redis.Client
	Config     middleware.SessionConfig
}

var loginStatus = map[error]int{
	authsvc.ErrEmailPasswordRequired: fiber.StatusBadRequest,
	authsvc.ErrInvalidEmail:          fiber.StatusUnauthorized,
	authsvc.ErrIncorrectPassword:     fiber.StatusUnauthorized,
}

// Login POST /api/v1/auth/login
func (h *Handlers) Login(c *fiber.Ctx) error {
	if h.UserFinder == nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	var req authsvc.LoginInput
	if err := c.BodyParser(&req); err != nil || req.Email == "" || req.Password == "" {
		return response.Error(c, authsvc.ErrEmailPasswordRequired.Error(), fiber.StatusBadRequest, nil)
	}

	user, err := h.UserFinder.FindByEmailAndPassword(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return response.FromError(c, err, loginStatus)
	}
	if err := StartSession(c, h.Rdb, h.Config, user); err != nil {
		log.Error().Err(err).Str("user_id", user.UserID.String()).Msg("session tracking failed")
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Login successful", fiber.Map{"user": SessionShape(user)}, nil)
}

// StartSession rotates the session id, stores the user in it, records the id
// under user_sessions:<user_id> and sets the cookie. Shared with registration.
func StartSession(c *fiber.Ctx, rdb *redis.Client, cfg middleware.SessionConfig, user *domain.User) error {
	sessionID := middleware.RegenerateSessionID(c)
	shape := SessionShape(user)
	middleware.SetSessionUser(c, middleware.SessionUser{
		UserID:       shape.UserID,
		Fullname:     shape.Fullname,
		Email:        shape.Email,
		Role:         shape.Role,
		RiskCategory: shape.RiskCategory,
	})
	if rdb != nil {
		if err := rdb.SAdd(c.UserContext(), middleware.UserSessionsPrefix+shape.UserID, sessionID).Err(); err != nil {
			return err
		}
	}
	cookie := middleware.SessionCookieConfig(cfg)
	cookie.Value = "s:" + sessionID
	c.Cookie(&cookie)
	return nil
}

// SessionShape is the user as stored in the session and returned to clients.
func SessionShape(u *domain.User) authsvc.SessionUserShape {
	return authsvc.SessionUserShape{
		UserID:       u.UserID.String(),
		Fullname:     u.Fullname,
		Email:        u.Email,
		Role:         u.Role,
		RiskCategory: string(u.RiskCategory),
	}
}

// Me GET /api/v1/auth/me
func (h *Handlers) Me(c *fiber.Ctx) error {
	sessionUser := middleware.GetUser(c)
	user, err := authsvc.VerifyUser(sessionUser)
	if err != nil {
		log.Debug().Str("path", c.Path()).
			Bool("session_id_present", middleware.GetSessionID(c) != "").
			Bool("session_user_nil", sessionUser == nil).
			Msg("auth/me: not authenticated")
		return response.Unauthorized(c, "Not authenticated")
	}
	return response.Success(c, "Authenticated", fiber.Map{"user": user}, nil)
}

// Logout DELETE /api/v1/auth/logout
func (h *Handlers) Logout(c *fiber.Ctx) error {
	sessionID := middleware.GetSessionID(c)
	ctx := c.UserContext()

	if sessionID != "" && h.Rdb != nil {
		if u, err := authsvc.VerifyUser(middleware.GetUser(c)); err == nil {
			_ = h.Rdb.SRem(ctx, middleware.UserSessionsPrefix+u.UserID, sessionID).Err()
		}
		_ = h.Rdb.Del(ctx, middleware.SessionRedisPrefix+sessionID).Err()
	}
	middleware.DestroySession(c)

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = ""
	cookie.MaxAge = -1
	if h.Config.IsProduction && !h.Config.AllowCrossSiteDev {
		cookie.Domain = h.Config.CookieDomain
	}
	c.Cookie(&cookie)

	return response.Success(c, "Logged out successfully", nil, nil)
}

package goals

import (
	"time"

	goalsvc "pesaguru-backend/internal/application/goals"
	"pesaguru-backend/internal/domain"
	"pesaguru-backend/internal/middleware"
	"pesaguru-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *goalsvc.Service
}

var statusMap = map[error]int{
	goalsvc.ErrGoalNotFound:        fiber.StatusNotFound,
	goalsvc.ErrNameRequired:        fiber.StatusBadRequest,
	goalsvc.ErrInvalidGoalType:     fiber.StatusBadRequest,
	goalsvc.ErrInvalidTarget:       fiber.StatusBadRequest,
	goalsvc.ErrInvalidAmount:       fiber.StatusBadRequest,
	goalsvc.ErrNegativeAmount:      fiber.StatusBadRequest,
	goalsvc.ErrInvalidTargetDate:   fiber.StatusBadRequest,
	goalsvc.ErrInvalidFrequency:    fiber.StatusBadRequest,
	goalsvc.ErrLoanLinkNotAllowed:  fiber.StatusBadRequest,
	goalsvc.ErrLinkedLoanNotFound:  fiber.StatusNotFound,
	goalsvc.ErrAllocationNotUsed:   fiber.StatusConflict,
	goalsvc.ErrReviewNotDue:        fiber.StatusTooManyRequests,
	goalsvc.ErrReviewUnavailable:   fiber.StatusBadGateway,
	goalsvc.ErrCompletedGoalLocked: fiber.StatusConflict,
}

const dateLayout = "2006-01-02"

// createGoalRequest accepts dates either as YYYY-MM-DD or RFC 3339.
type createGoalRequest struct {
	Name                  string                       `json:"name"`
	Type                  domain.GoalType              `json:"type"`
	TargetAmount          float64                      `json:"target_amount"`
	CurrentAmount         float64                      `json:"current_amount"`
	StartDate             string                       `json:"start_date"`
	TargetDate            string                       `json:"target_date"`
	ContributionFrequency domain.ContributionFrequency `json:"contribution_frequency"`
	ContributionAmount    float64                      `json:"contribution_amount"`
	LinkedLoanID          *uuid.UUID                   `json:"linked_loan_id"`
	Notes                 string                       `json:"notes"`
}

func parseDate(s string) (time.Time, bool) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func goalID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	return id, err == nil
}

func invalidGoalID(c *fiber.Ctx) error {
	return response.Error(c, "Invalid goal ID", fiber.StatusBadRequest, nil)
}

// Create POST /api/v1/goals
func (h *Handlers) Create(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req createGoalRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	target, ok := parseDate(req.TargetDate)
	if !ok {
		return response.Error(c, "target_date must be a date (YYYY-MM-DD)", fiber.StatusBadRequest, nil)
	}
	in := goalsvc.CreateInput{
		Name:                  req.Name,
		Type:                  req.Type,
		TargetAmount:          req.TargetAmount,
		CurrentAmount:         req.CurrentAmount,
		TargetDate:            target,
		ContributionFrequency: req.ContributionFrequency,
		ContributionAmount:    req.ContributionAmount,
		LinkedLoanID:          req.LinkedLoanID,
		Notes:                 req.Notes,
	}
	if req.StartDate != "" {
		start, ok := parseDate(req.StartDate)
		if !ok {
			return response.Error(c, "start_date must be a date (YYYY-MM-DD)", fiber.StatusBadRequest, nil)
		}
		in.StartDate = &start
	}
	goal, err := h.Service.Create(c.UserContext(), userID, in)
	if err != nil {
		return response.FromError(c, err, statusMap)
	}
	return response.SuccessCreated(c, "Goal created", fiber.Map{"goal": goal}, nil)
}

// List GET /api/v1/goals
func (h *Handlers) List(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	goals, err := h.Service.List(c.UserContext(), userID)
	if err != nil {
		return response.FromError(c, err, statusMap)
	}
	return response.Success(c, "Goals retrieved", fiber.Map{"goals": goals}, fiber.Map{"count": len(goals)})
}

// Get GET /api/v1/goals/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := goalID(c)
	if !ok {
		return invalidGoalID(c)
	}
	goal, err := h.Service.Get(c.UserContext(), userID, id)
	if err != nil {
		return response.FromError(c, err, statusMap)
	}
	return response.Success(c, "Goal retrieved", fiber.Map{"goal": goal}, nil)
}

type contributeRequest struct {
	Amount *float64 `json:"amount"`
}

// Contribute POST /api/v1/goals/:id/contribute
func (h *Handlers) Contribute(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := goalID(c)
	if !ok {
		return invalidGoalID(c)
	}
	var req contributeRequest
	if err := c.BodyParser(&req); err != nil || req.Amount == nil {
		return response.Error(c, "amount is required", fiber.StatusBadRequest, nil)
	}
	out, err := h.Service.Contribute(c.UserContext(), userID, id, *req.Amount)
	if err != nil {
		return response.FromError(c, err, statusMap)
	}
	return response.Success(c, "Contribution recorded", out, nil)
}

type progressRequest struct {
	CurrentAmount *float64 `json:"current_amount"`
}

// SetProgress PUT /api/v1/goals/:id/progress
func (h *Handlers) SetProgress(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := goalID(c)
	if !ok {
		return invalidGoalID(c)
	}
	var req progressRequest
	if err := c.BodyParser(&req); err != nil || req.CurrentAmount == nil {
		return response.Error(c, "current_amount is required", fiber.StatusBadRequest, nil)
	}
	out, err := h.Service.SetProgress(c.UserContext(), userID, id, *req.CurrentAmount)
	if err != nil {
		return response.FromError(c, err, statusMap)
	}
	return response.Success(c, "Progress updated", out, nil)
}

// Feasibility GET /api/v1/goals/:id/feasibility
func (h *Handlers) Feasibility(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := goalID(c)
	if !ok {
		return invalidGoalID(c)
	}
	report, err := h.Service.Feasibility(c.UserContext(), userID, id)
	if err != nil {
		return response.FromError(c, err, statusMap)
	}
	return response.Success(c, "Feasibility calculated", fiber.Map{"feasibility": report}, nil)
}

// ReviewAllocation POST /api/v1/goals/:id/review-allocation
func (h *Handlers) ReviewAllocation(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := goalID(c)
	if !ok {
		return invalidGoalID(c)
	}
	res, err := h.Service.ReviewAllocation(c.UserContext(), userID, id)
	if err != nil {
		return response.FromError(c, err, statusMap)
	}
	return response.Success(c, "Allocation reviewed", fiber.Map{"allocation_review": res}, nil)
}

// Events GET /api/v1/goals/:id/events
func (h *Handlers) Events(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := goalID(c)
	if !ok {
		return invalidGoalID(c)
	}
	events, err := h.Service.Events(c.UserContext(), userID, id)
	if err != nil {
		return response.FromError(c, err, statusMap)
	}
	return response.Success(c, "Goal events retrieved", fiber.Map{"events": events}, fiber.Map{"count": len(events)})
}

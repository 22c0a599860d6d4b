package loans

import (
	loansvc "pesaguru-backend/internal/application/loans"
	"pesaguru-backend/internal/middleware"
	"pesaguru-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *loansvc.Service
}

var statusMap = map[error]int{
	loansvc.ErrLenderRequired:   fiber.StatusBadRequest,
	loansvc.ErrInvalidPrincipal: fiber.StatusBadRequest,
	loansvc.ErrInvalidRepaid:    fiber.StatusBadRequest,
	loansvc.ErrLoanNotFound:     fiber.StatusNotFound,
}

// Create POST /api/v1/loans
func (h *Handlers) Create(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req loansvc.CreateInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	loan, err := h.Service.Create(c.UserContext(), userID, req)
	if err != nil {
		return response.FromError(c, err, statusMap)
	}
	return response.SuccessCreated(c, "Loan recorded", fiber.Map{"loan": loan}, nil)
}

// List GET /api/v1/loans
func (h *Handlers) List(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	loans, err := h.Service.List(c.UserContext(), userID)
	if err != nil {
		return response.FromError(c, err, statusMap)
	}
	return response.Success(c, "Loans retrieved", fiber.Map{"loans": loans}, fiber.Map{"count": len(loans)})
}

// Get GET /api/v1/loans/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	loanID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid loan ID", fiber.StatusBadRequest, nil)
	}
	loan, err := h.Service.Get(c.UserContext(), userID, loanID)
	if err != nil {
		return response.FromError(c, err, statusMap)
	}
	return response.Success(c, "Loan retrieved", fiber.Map{"loan": loan}, nil)
}

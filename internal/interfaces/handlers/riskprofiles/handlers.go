package riskprofiles

import (
	rpsvc "pesaguru-backend/internal/application/riskprofiles"
	"pesaguru-backend/internal/domain"
	"pesaguru-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *rpsvc.Service
}

var statusMap = map[error]int{
	rpsvc.ErrInvalidCategory:    fiber.StatusBadRequest,
	rpsvc.ErrProfileNotFound:    fiber.StatusNotFound,
	rpsvc.ErrAllocationNot100:   fiber.StatusBadRequest,
	rpsvc.ErrNegativeAllocation: fiber.StatusBadRequest,
}

// List GET /api/v1/risk-profiles
func (h *Handlers) List(c *fiber.Ctx) error {
	profiles, err := h.Service.List(c.UserContext())
	if err != nil {
		return response.FromError(c, err, statusMap)
	}
	return response.Success(c, "Risk profiles retrieved", fiber.Map{"risk_profiles": profiles}, fiber.Map{"count": len(profiles)})
}

// Get GET /api/v1/risk-profiles/:category
func (h *Handlers) Get(c *fiber.Ctx) error {
	p, err := h.Service.Get(c.UserContext(), domain.RiskCategory(c.Params("category")))
	if err != nil {
		return response.FromError(c, err, statusMap)
	}
	return response.Success(c, "Risk profile retrieved", fiber.Map{"risk_profile": p}, nil)
}

// Products GET /api/v1/risk-profiles/:category/products
func (h *Handlers) Products(c *fiber.Ctx) error {
	products, err := h.Service.Products(c.UserContext(), domain.RiskCategory(c.Params("category")))
	if err != nil {
		return response.FromError(c, err, statusMap)
	}
	return response.Success(c, "Products retrieved", fiber.Map{"products": products}, fiber.Map{"count": len(products)})
}

// SetAllocation PUT /api/v1/risk-profiles/:category/allocation (manage_risk_profiles)
func (h *Handlers) SetAllocation(c *fiber.Ctx) error {
	var a domain.Allocation
	if err := c.BodyParser(&a); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	p, err := h.Service.SetAllocation(c.UserContext(), domain.RiskCategory(c.Params("category")), a)
	if err != nil {
		return response.FromError(c, err, statusMap)
	}
	return response.Success(c, "Recommended allocation updated", fiber.Map{"risk_profile": p}, nil)
}

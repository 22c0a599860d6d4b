package portfolios

import (
	"time"

	portsvc "pesaguru-backend/internal/application/portfolios"
	"pesaguru-backend/internal/domain"
	"pesaguru-backend/internal/middleware"
	"pesaguru-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *portsvc.Service
}

var statusMap = map[error]int{
	portsvc.ErrPortfolioNotFound:   fiber.StatusNotFound,
	portsvc.ErrHoldingNotFound:     fiber.StatusNotFound,
	portsvc.ErrNameRequired:        fiber.StatusBadRequest,
	portsvc.ErrInvalidRiskCategory: fiber.StatusBadRequest,
	portsvc.ErrMissingHoldingField: fiber.StatusBadRequest,
	portsvc.ErrNegativeHolding:     fiber.StatusBadRequest,
	portsvc.ErrRiskProfileMissing:  fiber.StatusNotFound,
}

// holdingRequest mirrors portsvc.HoldingInput; purchase_date is YYYY-MM-DD or RFC 3339.
type holdingRequest struct {
	AssetType      domain.AssetClass `json:"asset_type"`
	Name           string            `json:"name"`
	AmountInvested *float64          `json:"amount_invested"`
	PurchasePrice  *float64          `json:"purchase_price"`
	CurrentValue   *float64          `json:"current_value"`
	PurchaseDate   string            `json:"purchase_date"`
}

func (r holdingRequest) input() (portsvc.HoldingInput, bool) {
	in := portsvc.HoldingInput{
		AssetType:      r.AssetType,
		Name:           r.Name,
		AmountInvested: r.AmountInvested,
		PurchasePrice:  r.PurchasePrice,
		CurrentValue:   r.CurrentValue,
	}
	if r.PurchaseDate == "" {
		return in, true
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, r.PurchaseDate); err == nil {
			in.PurchaseDate = &t
			return in, true
		}
	}
	return in, false
}

func params(c *fiber.Ctx, names ...string) ([]uuid.UUID, bool) {
	out := make([]uuid.UUID, 0, len(names))
	for _, n := range names {
		id, err := uuid.Parse(c.Params(n))
		if err != nil {
			return nil, false
		}
		out = append(out, id)
	}
	return out, true
}

func invalidID(c *fiber.Ctx) error {
	return response.Error(c, "Invalid portfolio or holding ID", fiber.StatusBadRequest, nil)
}

// Create POST /api/v1/portfolios
func (h *Handlers) Create(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req portsvc.CreateInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	p, err := h.Service.Create(c.UserContext(), userID, req)
	if err != nil {
		return response.FromError(c, err, statusMap)
	}
	return response.SuccessCreated(c, "Portfolio created", fiber.Map{"portfolio": p}, nil)
}

// List GET /api/v1/portfolios
func (h *Handlers) List(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	ps, err := h.Service.List(c.UserContext(), userID)
	if err != nil {
		return response.FromError(c, err, statusMap)
	}
	return response.Success(c, "Portfolios retrieved", fiber.Map{"portfolios": ps}, fiber.Map{"count": len(ps)})
}

// Get GET /api/v1/portfolios/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	ids, ok := params(c, "id")
	if !ok {
		return invalidID(c)
	}
	p, err := h.Service.Get(c.UserContext(), userID, ids[0])
	if err != nil {
		return response.FromError(c, err, statusMap)
	}
	return response.Success(c, "Portfolio retrieved", fiber.Map{"portfolio": p}, nil)
}

// AddHolding POST /api/v1/portfolios/:id/holdings
func (h *Handlers) AddHolding(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	ids, ok := params(c, "id")
	if !ok {
		return invalidID(c)
	}
	var req holdingRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	in, ok := req.input()
	if !ok {
		return response.Error(c, "purchase_date must be a date (YYYY-MM-DD)", fiber.StatusBadRequest, nil)
	}
	p, holding, err := h.Service.AddHolding(c.UserContext(), userID, ids[0], in)
	if err != nil {
		return response.FromError(c, err, statusMap)
	}
	return response.SuccessCreated(c, "Holding added", fiber.Map{"portfolio": p, "holding": holding}, nil)
}

// UpdateHolding PUT /api/v1/portfolios/:id/holdings/:holding_id
func (h *Handlers) UpdateHolding(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	ids, ok := params(c, "id", "holding_id")
	if !ok {
		return invalidID(c)
	}
	var req holdingRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	in, ok := req.input()
	if !ok {
		return response.Error(c, "purchase_date must be a date (YYYY-MM-DD)", fiber.StatusBadRequest, nil)
	}
	p, err := h.Service.UpdateHolding(c.UserContext(), userID, ids[0], ids[1], in)
	if err != nil {
		return response.FromError(c, err, statusMap)
	}
	return response.Success(c, "Holding updated", fiber.Map{"portfolio": p}, nil)
}

// RemoveHolding DELETE /api/v1/portfolios/:id/holdings/:holding_id
func (h *Handlers) RemoveHolding(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	ids, ok := params(c, "id", "holding_id")
	if !ok {
		return invalidID(c)
	}
	p, err := h.Service.RemoveHolding(c.UserContext(), userID, ids[0], ids[1])
	if err != nil {
		return response.FromError(c, err, statusMap)
	}
	return response.Success(c, "Holding removed", fiber.Map{"portfolio": p}, nil)
}

// Rebalancing GET /api/v1/portfolios/:id/rebalancing
func (h *Handlers) Rebalancing(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	ids, ok := params(c, "id")
	if !ok {
		return invalidID(c)
	}
	sugg, err := h.Service.RebalancingSuggestions(c.UserContext(), userID, ids[0])
	if err != nil {
		return response.FromError(c, err, statusMap)
	}
	return response.Success(c, "Rebalancing suggestions", fiber.Map{"suggestions": sugg}, fiber.Map{"count": len(sugg)})
}

// Rebalance POST /api/v1/portfolios/:id/rebalance
func (h *Handlers) Rebalance(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	ids, ok := params(c, "id")
	if !ok {
		return invalidID(c)
	}
	res, err := h.Service.Rebalance(c.UserContext(), userID, ids[0])
	if err != nil {
		return response.FromError(c, err, statusMap)
	}
	return response.Success(c, "Rebalance recorded", fiber.Map{"rebalance": res}, nil)
}

// Summary GET /api/v1/portfolios/:id/summary
func (h *Handlers) Summary(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	ids, ok := params(c, "id")
	if !ok {
		return invalidID(c)
	}
	sum, err := h.Service.Summary(c.UserContext(), userID, ids[0])
	if err != nil {
		return response.FromError(c, err, statusMap)
	}
	return response.Success(c, "Portfolio summary", fiber.Map{"summary": sum}, nil)
}

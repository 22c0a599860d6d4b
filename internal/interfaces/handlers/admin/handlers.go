package admin

import (
	goalsvc "pesaguru-backend/internal/application/goals"
	"pesaguru-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers exposes operator actions.
type Handlers struct {
	Goals *goalsvc.Service
}

// RunAllocationReviews POST /api/v1/admin/allocation-reviews/run (run_allocation_review)
// runs the sweep the scheduler would otherwise run on its next tick.
func (h *Handlers) RunAllocationReviews(c *fiber.Ctx) error {
	res, err := h.Goals.ReviewDueAllocations(c.UserContext())
	if err != nil {
		return response.FromError(c, err, nil)
	}
	log.Info().
		Int("candidates", res.Candidates).
		Int("adjusted", res.Adjusted).
		Int("failed", res.Failed).
		Str("trigger", "manual").
		Msg("allocation review sweep finished")
	return response.Success(c, "Allocation review sweep finished", fiber.Map{"sweep": res}, nil)
}

package allocation

import (
	"context"
	"time"

	"pesaguru-backend/internal/domain"

	"gonum.org/v1/gonum/floats"
	"gorm.io/datatypes"
)

// Annual expected returns per asset class, as fractions.
var ExpectedReturns = map[domain.AssetClass]float64{
	domain.AssetEquity:      0.08,
	domain.AssetBonds:       0.04,
	domain.AssetMoneyMarket: 0.015,
	domain.AssetAlternative: 0.06,
}

// DefaultAllocation returns the starting asset mix for a goal type and horizon.
func DefaultAllocation(goalType domain.GoalType, monthsToTarget int) domain.Allocation {
	var a domain.Allocation
	switch {
	case monthsToTarget <= 12:
		a = domain.Allocation{Equity: 20, Bonds: 40, MoneyMarket: 40, Alternative: 0}
	case monthsToTarget <= 60:
		a = domain.Allocation{Equity: 50, Bonds: 30, MoneyMarket: 15, Alternative: 5}
	default:
		a = domain.Allocation{Equity: 70, Bonds: 20, MoneyMarket: 5, Alternative: 5}
	}

	switch goalType {
	case domain.GoalEducation:
		a.Equity -= 10
		a.Bonds += 10
	case domain.GoalRetirement:
		if monthsToTarget > 120 {
			a.Bonds -= 10
			a.Equity += 5
			a.Alternative += 5
		}
	}
	return a
}

// ExpectedAnnualReturn is the allocation-weighted annual return, as a fraction.
func ExpectedAnnualReturn(a domain.Allocation) float64 {
	rates := make([]float64, len(domain.AssetClasses))
	for i, c := range domain.AssetClasses {
		rates[i] = ExpectedReturns[c]
	}
	return floats.Dot(a.Weights(), rates) / 100
}

// MonthsBetween counts whole calendar months from now until target. It is zero
// once target has passed and at least one while target is still ahead.
func MonthsBetween(now, target time.Time) int {
	if !target.After(now) {
		return 0
	}
	months := (target.Year()-now.Year())*12 + int(target.Month()) - int(now.Month())
	if now.AddDate(0, months, 0).After(target) {
		months--
	}
	if months < 1 {
		months = 1
	}
	return months
}

// Advice is what an investment provider returns for an allocation review.
type Advice struct {
	Allocation    domain.Allocation    `json:"allocation"`
	Summary       string               `json:"summary"`
	MarketFactors domain.MarketFactors `json:"market_factors"`
}

// Provider is the market-data / advice collaborator consulted during reviews.
type Provider interface {
	AdviseAllocation(ctx context.Context, goal *domain.FinancialGoal, now time.Time) (*Advice, error)
}

// AdjustmentResult describes an applied allocation review.
type AdjustmentResult struct {
	GoalID        string               `json:"goal_id"`
	Previous      domain.Allocation    `json:"previous_allocation"`
	Allocation    domain.Allocation    `json:"new_allocation"`
	Summary       string               `json:"summary"`
	MarketFactors domain.MarketFactors `json:"market_factors"`
	ReviewedAt    time.Time            `json:"reviewed_at"`
}

// Policy applies rate-limited allocation reviews to goals.
type Policy struct {
	Provider Provider
}

// AdjustAllocation reviews the goal's allocation with the provider and applies
// the advice to goal in place. It returns nil without error when the goal is
// not eligible or was reviewed less than ReviewInterval ago. Callers persist goal.
func (p *Policy) AdjustAllocation(ctx context.Context, goal *domain.FinancialGoal, now time.Time) (*AdjustmentResult, error) {
	if goal == nil || goal.Allocation.IsZero() || !goal.Type.IsInvestmentFamily() {
		return nil, nil
	}
	if !goal.ReviewState.Due(now) {
		return nil, nil
	}
	if p.Provider == nil {
		return nil, nil
	}

	advice, err := p.Provider.AdviseAllocation(ctx, goal, now)
	if err != nil {
		return nil, err
	}
	if advice == nil || advice.Allocation.IsZero() {
		return nil, nil
	}

	previous := goal.Allocation
	goal.Allocation = advice.Allocation
	goal.ReviewState.MarkReviewed(now)

	meta := goal.Metadata.Data()
	meta.LastReview = &domain.AllocationReview{
		ReviewedAt:    now,
		Previous:      previous,
		Summary:       advice.Summary,
		MarketFactors: advice.MarketFactors,
	}
	goal.Metadata = datatypes.NewJSONType(meta)

	return &AdjustmentResult{
		GoalID:        goal.GoalID.String(),
		Previous:      previous,
		Allocation:    advice.Allocation,
		Summary:       advice.Summary,
		MarketFactors: advice.MarketFactors,
		ReviewedAt:    now,
	}, nil
}

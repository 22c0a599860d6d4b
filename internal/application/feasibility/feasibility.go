// Package feasibility estimates whether a goal's contribution rate reaches its
// target by the target date.
package feasibility

import (
	"math"
	"time"

	"pesaguru-backend/internal/application/allocation"
	"pesaguru-backend/internal/domain"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusAlreadyAchieved Status = "already_achieved"
	StatusDeadlinePassed  Status = "deadline_passed"
	StatusOnTrack         Status = "on_track"
	StatusNeedsAdjustment Status = "needs_adjustment"
)

// Report is the feasibility of a single goal.
type Report struct {
	GoalID                     string  `json:"goal_id"`
	IsAchievable               bool    `json:"is_achievable"`
	Status                     Status  `json:"status"`
	Surplus                    float64 `json:"surplus"`
	Deficit                    float64 `json:"deficit"`
	MonthsRemaining            int     `json:"months_remaining"`
	RemainingAmount            float64 `json:"remaining_amount"`
	RequiredMonthly            float64 `json:"required_monthly_contribution"`
	CurrentMonthlyContribution float64 `json:"current_monthly_contribution"`
	ContributionGap            float64 `json:"contribution_gap,omitempty"`
	ExpectedAnnualReturn       float64 `json:"expected_annual_return,omitempty"`
	ProjectedGrowth            float64 `json:"projected_growth,omitempty"`
	ProjectedAmount            float64 `json:"projected_amount"`
}

// Calculate reports whether goal is achievable at its current monthly
// contribution. Investment-family goals are credited with compounded growth on
// the amount already saved at the allocation's expected return.
func Calculate(goal *domain.FinancialGoal, now time.Time) Report {
	r := Report{
		GoalID:                     goal.GoalID.String(),
		CurrentMonthlyContribution: round2(goal.MonthlyContribution()),
	}

	if goal.CurrentAmount >= goal.TargetAmount {
		r.IsAchievable = true
		r.Status = StatusAlreadyAchieved
		r.Surplus = round2(goal.CurrentAmount - goal.TargetAmount)
		r.ProjectedAmount = goal.CurrentAmount
		return r
	}

	remaining := goal.TargetAmount - goal.CurrentAmount
	r.RemainingAmount = round2(remaining)

	months := allocation.MonthsBetween(now, goal.TargetDate)
	r.MonthsRemaining = months
	if months == 0 {
		r.Status = StatusDeadlinePassed
		r.Deficit = round2(remaining)
		r.ProjectedAmount = goal.CurrentAmount
		return r
	}

	growth := 0.0
	if goal.Type.IsInvestmentFamily() {
		alloc := goal.Allocation
		if alloc.IsZero() {
			alloc = allocation.DefaultAllocation(goal.Type, months)
		}
		rate := allocation.ExpectedAnnualReturn(alloc)
		growth = goal.CurrentAmount*math.Pow(1+rate/12, float64(months)) - goal.CurrentAmount
		r.ExpectedAnnualReturn = rate
		r.ProjectedGrowth = round2(growth)
	}

	required := math.Max(0, remaining-growth) / float64(months)
	r.RequiredMonthly = round2(required)

	monthly := goal.MonthlyContribution()
	r.ProjectedAmount = round2(goal.CurrentAmount + growth + monthly*float64(months))
	if monthly >= required {
		r.IsAchievable = true
		r.Status = StatusOnTrack
		return r
	}
	r.Status = StatusNeedsAdjustment
	r.ContributionGap = round2(required - monthly)
	return r
}

func round2(f float64) float64 {
	v, _ := decimal.NewFromFloat(f).Round(2).Float64()
	return v
}

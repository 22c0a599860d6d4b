package portfolios

import (
	"math"
	"sort"
	"time"

	"pesaguru-backend/internal/domain"

	"github.com/shopspring/decimal"
)

// RebalanceThreshold is the smallest gap, in percentage points, worth acting on.
const RebalanceThreshold = 5.0

type Action string

const (
	ActionIncrease Action = "increase"
	ActionDecrease Action = "decrease"
)

// Suggestion moves one asset class toward its recommended share.
type Suggestion struct {
	AssetClass        domain.AssetClass `json:"asset_class"`
	Action            Action            `json:"action"`
	CurrentPercentage float64           `json:"current_percentage"`
	TargetPercentage  float64           `json:"target_percentage"`
	Difference        float64           `json:"difference"`
	Amount            float64           `json:"amount"`
}

// Suggestions compares the portfolio's current allocation with recommended
// and returns the classes that are off by at least RebalanceThreshold points,
// largest gap first.
func Suggestions(p *domain.Portfolio, recommended domain.Allocation) []Suggestion {
	current := CurrentAllocation(p)
	total := decimal.NewFromFloat(p.TotalValue)
	out := []Suggestion{}
	for _, c := range domain.AssetClasses {
		diff := recommended.Get(c) - current.Get(c)
		if math.Abs(diff) < RebalanceThreshold {
			continue
		}
		action := ActionIncrease
		if diff < 0 {
			action = ActionDecrease
		}
		amount := total.Mul(decimal.NewFromFloat(math.Abs(diff))).Div(decimal.NewFromInt(100)).Round(2)
		out = append(out, Suggestion{
			AssetClass:        c,
			Action:            action,
			CurrentPercentage: round2(current.Get(c)),
			TargetPercentage:  recommended.Get(c),
			Difference:        round2(math.Abs(diff)),
			Amount:            amount.InexactFloat64(),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Difference > out[j].Difference
	})
	return out
}

// RebalanceResult reports a rebalance request. No trades are placed: only
// the last-rebalanced timestamp moves.
type RebalanceResult struct {
	PortfolioID    string       `json:"portfolio_id"`
	RebalancedAt   time.Time    `json:"rebalanced_at"`
	Executed       bool         `json:"executed"`
	PendingChanges []Suggestion `json:"pending_changes"`
}

// Rebalance stamps the portfolio as rebalanced at now.
func Rebalance(p *domain.Portfolio, recommended domain.Allocation, now time.Time) RebalanceResult {
	t := now
	p.LastRebalancedAt = &t
	return RebalanceResult{
		PortfolioID:    p.PortfolioID.String(),
		RebalancedAt:   now,
		Executed:       false,
		PendingChanges: Suggestions(p, recommended),
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

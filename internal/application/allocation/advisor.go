package allocation

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"pesaguru-backend/internal/domain"

	"github.com/google/uuid"
)

// MarketData supplies the current market snapshot.
type MarketData interface {
	GetMarketData(ctx context.Context) (*domain.MarketFactors, error)
}

// RiskProfiler resolves a user's risk category.
type RiskProfiler interface {
	GetUserRiskProfile(ctx context.Context, userID uuid.UUID) (domain.RiskCategory, error)
}

// Advisor is the built-in investment provider. It starts from the default
// bands for the goal's horizon and tilts them by the owner's risk category and
// the current market snapshot.
type Advisor struct {
	Market MarketData
	Risk   RiskProfiler
}

const tiltStep = 5.0

func (a *Advisor) AdviseAllocation(ctx context.Context, goal *domain.FinancialGoal, now time.Time) (*Advice, error) {
	market, err := a.Market.GetMarketData(ctx)
	if err != nil {
		return nil, fmt.Errorf("market data: %w", err)
	}
	category := domain.RiskModerate
	if a.Risk != nil {
		if c, err := a.Risk.GetUserRiskProfile(ctx, goal.UserID); err == nil && c.Valid() {
			category = c
		}
	}

	months := MonthsBetween(now, goal.TargetDate)
	alloc := DefaultAllocation(goal.Type, months)
	var notes []string

	switch category {
	case domain.RiskConservative:
		shift(&alloc, domain.AssetEquity, domain.AssetBonds, 2*tiltStep)
		notes = append(notes, "conservative risk profile: reduced equity in favour of bonds")
	case domain.RiskAggressive:
		if months > 12 {
			shift(&alloc, domain.AssetBonds, domain.AssetEquity, 2*tiltStep)
			notes = append(notes, "aggressive risk profile: increased equity exposure")
		}
	}

	switch strings.ToLower(market.EquityMarketTrend) {
	case "bearish":
		shift(&alloc, domain.AssetEquity, domain.AssetMoneyMarket, tiltStep)
		notes = append(notes, "bearish equity market: moved part of equity to money market")
	case "bullish":
		if months > 36 {
			shift(&alloc, domain.AssetMoneyMarket, domain.AssetEquity, tiltStep)
			notes = append(notes, "bullish equity market and long horizon: added equity")
		}
	}

	switch strings.ToLower(market.InterestRateTrend) {
	case "rising":
		shift(&alloc, domain.AssetBonds, domain.AssetMoneyMarket, tiltStep)
		notes = append(notes, "rising interest rates: shortened duration via money market")
	case "falling":
		shift(&alloc, domain.AssetMoneyMarket, domain.AssetBonds, tiltStep)
		notes = append(notes, "falling interest rates: locked in yields with bonds")
	}

	if market.InflationRate > 7 && months > 12 {
		shift(&alloc, domain.AssetMoneyMarket, domain.AssetAlternative, tiltStep)
		notes = append(notes, fmt.Sprintf("inflation at %.1f%%: added real assets", market.InflationRate))
	}

	if strings.EqualFold(market.MarketVolatility, "high") && months <= 24 {
		shift(&alloc, domain.AssetEquity, domain.AssetMoneyMarket, tiltStep)
		notes = append(notes, "high volatility close to target date: de-risked")
	}

	summary := fmt.Sprintf("%s allocation for a %d-month horizon (%s profile, %s outlook)",
		goal.Type, months, category, orDefault(market.EconomicOutlook, "neutral"))
	if len(notes) > 0 {
		summary += "; " + strings.Join(notes, "; ")
	}

	return &Advice{
		Allocation:    alloc,
		Summary:       summary,
		MarketFactors: *market,
	}, nil
}

// shift moves up to pts percentage points from one class to another.
func shift(a *domain.Allocation, from, to domain.AssetClass, pts float64) {
	moved := math.Min(pts, a.Get(from))
	if moved <= 0 {
		return
	}
	a.Set(from, a.Get(from)-moved)
	a.Set(to, a.Get(to)+moved)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

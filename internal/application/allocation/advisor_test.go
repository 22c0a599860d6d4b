package allocation

import (
	"context"
	"errors"
	"testing"

	"pesaguru-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedMarket struct {
	f   domain.MarketFactors
	err error
}

func (m fixedMarket) GetMarketData(context.Context) (*domain.MarketFactors, error) {
	if m.err != nil {
		return nil, m.err
	}
	f := m.f
	return &f, nil
}

type fixedRisk domain.RiskCategory

func (r fixedRisk) GetUserRiskProfile(context.Context, uuid.UUID) (domain.RiskCategory, error) {
	return domain.RiskCategory(r), nil
}

func TestAdvisor_NeutralMarketKeepsDefaults(t *testing.T) {
	a := &Advisor{Market: fixedMarket{f: domain.MarketFactors{EquityMarketTrend: "neutral", InterestRateTrend: "stable", InflationRate: 5}}, Risk: fixedRisk(domain.RiskModerate)}
	goal := investmentGoal()

	advice, err := a.AdviseAllocation(context.Background(), goal, now)
	require.NoError(t, err)
	assert.Equal(t, DefaultAllocation(domain.GoalInvestment, 24), advice.Allocation)
	assert.Contains(t, advice.Summary, "24-month horizon")
}

func TestAdvisor_TiltsKeepTotalAt100(t *testing.T) {
	a := &Advisor{
		Market: fixedMarket{f: domain.MarketFactors{
			EquityMarketTrend: "bearish",
			InterestRateTrend: "rising",
			InflationRate:     8.5,
			MarketVolatility:  "high",
		}},
		Risk: fixedRisk(domain.RiskConservative),
	}
	goal := investmentGoal()

	advice, err := a.AdviseAllocation(context.Background(), goal, now)
	require.NoError(t, err)
	assert.InDelta(t, 100, advice.Allocation.Total(), 1e-9)
	assert.Less(t, advice.Allocation.Equity, 50.0)
	assert.Equal(t, 8.5, advice.MarketFactors.InflationRate)
	assert.Contains(t, advice.Summary, "conservative")
	for _, c := range domain.AssetClasses {
		assert.GreaterOrEqual(t, advice.Allocation.Get(c), 0.0)
	}
}

func TestAdvisor_MarketError(t *testing.T) {
	a := &Advisor{Market: fixedMarket{err: errors.New("timeout")}}
	_, err := a.AdviseAllocation(context.Background(), investmentGoal(), now)
	assert.ErrorContains(t, err, "market data")
}

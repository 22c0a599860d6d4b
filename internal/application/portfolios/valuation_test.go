package portfolios

import (
	"testing"
	"time"

	"pesaguru-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

var purchased = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func holdingInput(class domain.AssetClass, name string, invested, value float64) HoldingInput {
	return HoldingInput{
		AssetType:      class,
		Name:           name,
		AmountInvested: f(invested),
		PurchasePrice:  f(10),
		CurrentValue:   f(value),
		PurchaseDate:   &purchased,
	}
}

func TestRecalculate_TotalsAndReturn(t *testing.T) {
	p := &domain.Portfolio{
		InitialInvestment: 1000,
		Holdings: []domain.Holding{
			{CurrentValue: 600.10},
			{CurrentValue: 500.20},
		},
	}
	total := Recalculate(p)
	assert.Equal(t, 1100.30, total)
	assert.Equal(t, 100.30, p.ReturnAmount)
	assert.Equal(t, 10.03, p.ReturnPercentage)

	p.InitialInvestment = 0
	Recalculate(p)
	assert.Zero(t, p.ReturnPercentage)
}

func TestAddHolding_RequiresAllFields(t *testing.T) {
	p := &domain.Portfolio{PortfolioID: uuid.New()}
	in := holdingInput(domain.AssetEquity, "Safaricom", 1000, 1000)

	missingName := in
	missingName.Name = ""
	assert.Nil(t, AddHolding(p, missingName))

	missingDate := in
	missingDate.PurchaseDate = nil
	assert.Nil(t, AddHolding(p, missingDate))

	badType := in
	badType.AssetType = "crypto"
	assert.Nil(t, AddHolding(p, badType))

	assert.Empty(t, p.Holdings)
	assert.Zero(t, p.InitialInvestment)

	h := AddHolding(p, in)
	require.NotNil(t, h)
	assert.NotEqual(t, uuid.Nil, h.HoldingID)
	assert.Equal(t, p.PortfolioID, h.PortfolioID)
	assert.Equal(t, 1000.0, p.TotalValue)
	assert.Equal(t, 1000.0, p.InitialInvestment)
}

func TestAddThenRemove_RestoresTotals(t *testing.T) {
	p := &domain.Portfolio{PortfolioID: uuid.New()}
	AddHolding(p, holdingInput(domain.AssetBonds, "Infrastructure bond IFB1/2023", 50000, 52300.55))
	AddHolding(p, holdingInput(domain.AssetMoneyMarket, "CIC MMF", 20000, 20410.10))
	beforeTotal, beforeInitial := p.TotalValue, p.InitialInvestment

	h := AddHolding(p, holdingInput(domain.AssetEquity, "Equity Group", 15000.33, 14200.77))
	require.NotNil(t, h)
	assert.NotEqual(t, beforeTotal, p.TotalValue)

	removed := RemoveHolding(p, h.HoldingID)
	require.NotNil(t, removed)
	assert.Equal(t, beforeTotal, p.TotalValue)
	assert.Equal(t, beforeInitial, p.InitialInvestment)
	assert.Len(t, p.Holdings, 2)
}

func TestUpdateAndRemove_UnknownIDReturnsNil(t *testing.T) {
	p := &domain.Portfolio{}
	AddHolding(p, holdingInput(domain.AssetEquity, "KCB", 100, 100))
	assert.Nil(t, UpdateHolding(p, uuid.New(), HoldingInput{Name: "x"}))
	assert.Nil(t, RemoveHolding(p, uuid.New()))
	assert.Len(t, p.Holdings, 1)
}

func TestUpdateHolding_AdjustsInitialByDelta(t *testing.T) {
	p := &domain.Portfolio{}
	h := AddHolding(p, holdingInput(domain.AssetEquity, "KCB", 1000, 1000))
	require.NotNil(t, h)

	updated := UpdateHolding(p, h.HoldingID, HoldingInput{AmountInvested: f(1500), CurrentValue: f(1800)})
	require.NotNil(t, updated)
	assert.Equal(t, 1500.0, p.InitialInvestment)
	assert.Equal(t, 1800.0, p.TotalValue)
	assert.Equal(t, 20.0, p.ReturnPercentage)
}

func TestDiversificationScore(t *testing.T) {
	assert.Zero(t, DiversificationScore(&domain.Portfolio{}))
	assert.Zero(t, DiversificationScore(&domain.Portfolio{Holdings: []domain.Holding{{AssetType: domain.AssetEquity}}}))

	single := &domain.Portfolio{}
	AddHolding(single, holdingInput(domain.AssetEquity, "Safaricom", 4000, 4000))

	two := &domain.Portfolio{}
	AddHolding(two, holdingInput(domain.AssetEquity, "Safaricom", 2000, 2000))
	AddHolding(two, holdingInput(domain.AssetBonds, "T-bond", 2000, 2000))

	four := &domain.Portfolio{}
	for _, c := range domain.AssetClasses {
		AddHolding(four, holdingInput(c, string(c), 1000, 1000))
	}

	skewed := &domain.Portfolio{}
	AddHolding(skewed, holdingInput(domain.AssetEquity, "Safaricom", 9000, 9000))
	AddHolding(skewed, holdingInput(domain.AssetBonds, "T-bond", 1000, 1000))

	assert.Zero(t, single.DiversificationScore)
	assert.Less(t, single.DiversificationScore, four.DiversificationScore)
	assert.Equal(t, 100.0, two.DiversificationScore)
	assert.Equal(t, 100.0, four.DiversificationScore)
	assert.Less(t, skewed.DiversificationScore, two.DiversificationScore)
	for _, p := range []*domain.Portfolio{single, two, four, skewed} {
		assert.GreaterOrEqual(t, p.DiversificationScore, 0.0)
		assert.LessOrEqual(t, p.DiversificationScore, 100.0)
	}
}

func TestSuggestions_EquityHeavyAgainstBalanced(t *testing.T) {
	p := &domain.Portfolio{}
	AddHolding(p, holdingInput(domain.AssetEquity, "NSE basket", 90000, 90000))
	AddHolding(p, holdingInput(domain.AssetAlternative, "REIT", 10000, 10000))

	got := Suggestions(p, domain.Allocation{Equity: 50, Bonds: 50})
	require.Len(t, got, 3)

	assert.Equal(t, domain.AssetBonds, got[0].AssetClass)
	assert.Equal(t, ActionIncrease, got[0].Action)
	assert.Equal(t, 50.0, got[0].Difference)
	assert.Equal(t, 50000.0, got[0].Amount)

	assert.Equal(t, domain.AssetEquity, got[1].AssetClass)
	assert.Equal(t, ActionDecrease, got[1].Action)
	assert.Equal(t, 40.0, got[1].Difference)
	assert.Equal(t, 40000.0, got[1].Amount)

	assert.Equal(t, domain.AssetAlternative, got[2].AssetClass)
	assert.Equal(t, ActionDecrease, got[2].Action)
}

func TestSuggestions_IgnoresSmallGaps(t *testing.T) {
	p := &domain.Portfolio{}
	AddHolding(p, holdingInput(domain.AssetEquity, "Equity fund", 52, 52))
	AddHolding(p, holdingInput(domain.AssetBonds, "Bond fund", 48, 48))
	assert.Empty(t, Suggestions(p, domain.Allocation{Equity: 50, Bonds: 50}))
}

func TestRebalance_OnlyStampsTimestamp(t *testing.T) {
	p := &domain.Portfolio{PortfolioID: uuid.New()}
	AddHolding(p, holdingInput(domain.AssetEquity, "NSE basket", 900, 900))
	AddHolding(p, holdingInput(domain.AssetBonds, "T-bond", 100, 100))
	before := append([]domain.Holding(nil), p.Holdings...)
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	res := Rebalance(p, domain.Allocation{Equity: 50, Bonds: 50}, now)
	assert.False(t, res.Executed)
	assert.NotEmpty(t, res.PendingChanges)
	require.NotNil(t, p.LastRebalancedAt)
	assert.Equal(t, now, *p.LastRebalancedAt)
	assert.Equal(t, before, p.Holdings)
}

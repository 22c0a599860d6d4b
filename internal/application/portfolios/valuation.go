package portfolios

import (
	"math"
	"time"

	"pesaguru-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
)

const (
	diversityBonusPerType = 5.0
	diversityBonusMax     = 15.0
)

// HoldingInput carries the fields of a new or updated holding.
type HoldingInput struct {
	AssetType      domain.AssetClass
	Name           string
	AmountInvested *float64
	PurchasePrice  *float64
	CurrentValue   *float64
	PurchaseDate   *time.Time
}

// Recalculate sets total value and return metrics from the holdings and
// returns the new total value.
func Recalculate(p *domain.Portfolio) float64 {
	total := decimal.Zero
	for _, h := range p.Holdings {
		total = total.Add(decimal.NewFromFloat(h.CurrentValue))
	}
	initial := decimal.NewFromFloat(p.InitialInvestment)

	p.TotalValue = total.Round(2).InexactFloat64()
	p.ReturnAmount = total.Sub(initial).Round(2).InexactFloat64()
	if initial.GreaterThan(decimal.Zero) {
		p.ReturnPercentage = total.Sub(initial).Div(initial).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
	} else {
		p.ReturnPercentage = 0
	}
	return p.TotalValue
}

// AddHolding appends a holding built from in. It returns nil when a required
// field is missing.
func AddHolding(p *domain.Portfolio, in HoldingInput) *domain.Holding {
	if !in.AssetType.Valid() || in.Name == "" || in.AmountInvested == nil ||
		in.PurchasePrice == nil || in.CurrentValue == nil || in.PurchaseDate == nil {
		return nil
	}
	purchased := *in.PurchaseDate
	h := domain.Holding{
		HoldingID:      uuid.New(),
		PortfolioID:    p.PortfolioID,
		Position:       nextPosition(p),
		AssetType:      in.AssetType,
		Name:           in.Name,
		AmountInvested: *in.AmountInvested,
		PurchasePrice:  *in.PurchasePrice,
		CurrentValue:   *in.CurrentValue,
		PurchaseDate:   &purchased,
	}
	p.Holdings = append(p.Holdings, h)
	p.InitialInvestment = addMoney(p.InitialInvestment, h.AmountInvested)
	refresh(p)
	return &p.Holdings[len(p.Holdings)-1]
}

// UpdateHolding applies the non-empty fields of in to the holding with id.
// It returns nil when no such holding exists.
func UpdateHolding(p *domain.Portfolio, id uuid.UUID, in HoldingInput) *domain.Holding {
	i := indexOf(p, id)
	if i < 0 {
		return nil
	}
	h := &p.Holdings[i]
	if in.AssetType != "" && in.AssetType.Valid() {
		h.AssetType = in.AssetType
	}
	if in.Name != "" {
		h.Name = in.Name
	}
	if in.AmountInvested != nil {
		p.InitialInvestment = addMoney(p.InitialInvestment, *in.AmountInvested-h.AmountInvested)
		h.AmountInvested = *in.AmountInvested
	}
	if in.PurchasePrice != nil {
		h.PurchasePrice = *in.PurchasePrice
	}
	if in.CurrentValue != nil {
		h.CurrentValue = *in.CurrentValue
	}
	if in.PurchaseDate != nil {
		t := *in.PurchaseDate
		h.PurchaseDate = &t
	}
	refresh(p)
	return h
}

// RemoveHolding drops the holding with id and returns it, or nil when not found.
func RemoveHolding(p *domain.Portfolio, id uuid.UUID) *domain.Holding {
	i := indexOf(p, id)
	if i < 0 {
		return nil
	}
	removed := p.Holdings[i]
	p.Holdings = append(p.Holdings[:i:i], p.Holdings[i+1:]...)
	p.InitialInvestment = addMoney(p.InitialInvestment, -removed.AmountInvested)
	refresh(p)
	return &removed
}

// CurrentAllocation is the share of total value held in each asset class.
func CurrentAllocation(p *domain.Portfolio) domain.Allocation {
	var byClass domain.Allocation
	total := 0.0
	for _, h := range p.Holdings {
		byClass.Set(h.AssetType, byClass.Get(h.AssetType)+h.CurrentValue)
		total += h.CurrentValue
	}
	if total <= 0 {
		return domain.Allocation{}
	}
	var pct domain.Allocation
	for _, c := range domain.AssetClasses {
		pct.Set(c, byClass.Get(c)/total*100)
	}
	return pct
}

// DiversificationScore rates how evenly value is spread across the asset
// classes present, 0 to 100. Three or more classes earn a bonus.
func DiversificationScore(p *domain.Portfolio) float64 {
	current := CurrentAllocation(p)
	if current.IsZero() {
		return 0
	}
	var shares []float64
	for _, c := range domain.AssetClasses {
		if current.Get(c) > 0 {
			shares = append(shares, current.Get(c))
		}
	}
	n := float64(len(shares))
	if n < 2 {
		return 0
	}
	ideal := 100 / n
	deviations := make([]float64, len(shares))
	for i, s := range shares {
		deviations[i] = math.Abs(s - ideal)
	}
	maxDeviation := 2 * (100 - ideal)
	score := math.Max(0, 100-floats.Sum(deviations)/maxDeviation*100)
	if n >= 3 {
		score += math.Min(diversityBonusMax, (n-1)*diversityBonusPerType)
	}
	return math.Round(math.Min(100, score)*100) / 100
}

func refresh(p *domain.Portfolio) {
	Recalculate(p)
	p.DiversificationScore = DiversificationScore(p)
}

func indexOf(p *domain.Portfolio, id uuid.UUID) int {
	for i := range p.Holdings {
		if p.Holdings[i].HoldingID == id {
			return i
		}
	}
	return -1
}

func nextPosition(p *domain.Portfolio) int {
	pos := 0
	for _, h := range p.Holdings {
		if h.Position >= pos {
			pos = h.Position + 1
		}
	}
	return pos
}

func addMoney(a, b float64) float64 {
	return decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).Round(2).InexactFloat64()
}

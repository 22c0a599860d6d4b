package portfolios

import (
	"context"
	"errors"
	"strings"
	"time"

	"pesaguru-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var (
	ErrPortfolioNotFound   = errors.New("Portfolio not found")
	ErrHoldingNotFound     = errors.New("Holding not found")
	ErrNameRequired        = errors.New("Portfolio name is required")
	ErrInvalidRiskCategory = errors.New("Invalid risk category")
	ErrMissingHoldingField = errors.New("asset_type, name, amount_invested, purchase_price, current_value and purchase_date are required")
	ErrNegativeHolding     = errors.New("Holding amounts cannot be negative")
	ErrRiskProfileMissing  = errors.New("Risk profile not found")
)

// Service persists portfolios and their holdings.
type Service struct {
	DB  *gorm.DB
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

type CreateInput struct {
	Name         string              `json:"name"`
	RiskCategory domain.RiskCategory `json:"risk_category"`
}

// Create stores an empty portfolio. The risk category defaults to the owner's.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, in CreateInput) (*domain.Portfolio, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, ErrNameRequired
	}
	if in.RiskCategory == "" {
		var u domain.User
		if err := s.DB.WithContext(ctx).Select("user_id", "risk_category").Where("user_id = ?", userID).First(&u).Error; err == nil {
			in.RiskCategory = u.RiskCategory
		}
		if !in.RiskCategory.Valid() {
			in.RiskCategory = domain.RiskModerate
		}
	}
	if !in.RiskCategory.Valid() {
		return nil, ErrInvalidRiskCategory
	}
	p := domain.Portfolio{
		UserID:       userID,
		Name:         in.Name,
		RiskCategory: in.RiskCategory,
		Holdings:     []domain.Holding{},
	}
	if err := s.DB.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, err
	}
	log.Info().Str("portfolio_id", p.PortfolioID.String()).Str("user_id", userID.String()).Msg("portfolio created")
	return &p, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]domain.Portfolio, error) {
	var ps []domain.Portfolio
	if err := s.DB.WithContext(ctx).
		Preload("Holdings", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Where("user_id = ?", userID).
		Order(`"createdAt" desc`).
		Find(&ps).Error; err != nil {
		return nil, err
	}
	return ps, nil
}

// Get loads a portfolio owned by userID with its holdings in insertion order.
func (s *Service) Get(ctx context.Context, userID, portfolioID uuid.UUID) (*domain.Portfolio, error) {
	return loadPortfolio(s.DB.WithContext(ctx), userID, portfolioID)
}

func loadPortfolio(db *gorm.DB, userID, portfolioID uuid.UUID) (*domain.Portfolio, error) {
	var p domain.Portfolio
	err := db.
		Preload("Holdings", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Where("portfolio_id = ? AND user_id = ?", portfolioID, userID).
		First(&p).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrPortfolioNotFound
		}
		return nil, err
	}
	return &p, nil
}

func saveTotals(tx *gorm.DB, p *domain.Portfolio) error {
	return tx.Model(p).Select(
		"total_value", "initial_investment", "return_amount", "return_percentage", "diversification_score", "last_rebalanced_at",
	).Updates(p).Error
}

func checkAmounts(in HoldingInput) error {
	for _, v := range []*float64{in.AmountInvested, in.PurchasePrice, in.CurrentValue} {
		if v != nil && *v < 0 {
			return ErrNegativeHolding
		}
	}
	return nil
}

// AddHolding appends a holding and recomputes the portfolio's metrics.
func (s *Service) AddHolding(ctx context.Context, userID, portfolioID uuid.UUID, in HoldingInput) (*domain.Portfolio, *domain.Holding, error) {
	if err := checkAmounts(in); err != nil {
		return nil, nil, err
	}
	var p *domain.Portfolio
	var added domain.Holding
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if p, err = loadPortfolio(tx, userID, portfolioID); err != nil {
			return err
		}
		h := AddHolding(p, in)
		if h == nil {
			return ErrMissingHoldingField
		}
		added = *h
		if err := tx.Create(&added).Error; err != nil {
			return err
		}
		return saveTotals(tx, p)
	})
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("portfolio_id", p.PortfolioID.String()).Str("holding_id", added.HoldingID.String()).Float64("total_value", p.TotalValue).Msg("holding added")
	return p, &added, nil
}

// UpdateHolding changes the supplied fields of a holding.
func (s *Service) UpdateHolding(ctx context.Context, userID, portfolioID, holdingID uuid.UUID, in HoldingInput) (*domain.Portfolio, error) {
	if err := checkAmounts(in); err != nil {
		return nil, err
	}
	var p *domain.Portfolio
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if p, err = loadPortfolio(tx, userID, portfolioID); err != nil {
			return err
		}
		h := UpdateHolding(p, holdingID, in)
		if h == nil {
			return ErrHoldingNotFound
		}
		if err := tx.Save(h).Error; err != nil {
			return err
		}
		return saveTotals(tx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// RemoveHolding deletes a holding and recomputes the portfolio's metrics.
func (s *Service) RemoveHolding(ctx context.Context, userID, portfolioID, holdingID uuid.UUID) (*domain.Portfolio, error) {
	var p *domain.Portfolio
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if p, err = loadPortfolio(tx, userID, portfolioID); err != nil {
			return err
		}
		h := RemoveHolding(p, holdingID)
		if h == nil {
			return ErrHoldingNotFound
		}
		if err := tx.Delete(&domain.Holding{}, "holding_id = ?", h.HoldingID).Error; err != nil {
			return err
		}
		return saveTotals(tx, p)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("portfolio_id", p.PortfolioID.String()).Str("holding_id", holdingID.String()).Msg("holding removed")
	return p, nil
}

func (s *Service) recommended(db *gorm.DB, category domain.RiskCategory) (domain.Allocation, error) {
	var rp domain.RiskProfile
	if err := db.Where("category = ?", category).First(&rp).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Allocation{}, ErrRiskProfileMissing
		}
		return domain.Allocation{}, err
	}
	return rp.RecommendedAllocation, nil
}

// RebalancingSuggestions compares holdings with the risk profile's recommendation.
func (s *Service) RebalancingSuggestions(ctx context.Context, userID, portfolioID uuid.UUID) ([]Suggestion, error) {
	p, err := s.Get(ctx, userID, portfolioID)
	if err != nil {
		return nil, err
	}
	target, err := s.recommended(s.DB.WithContext(ctx), p.RiskCategory)
	if err != nil {
		return nil, err
	}
	return Suggestions(p, target), nil
}

// Rebalance records a rebalance request. Holdings are left untouched.
func (s *Service) Rebalance(ctx context.Context, userID, portfolioID uuid.UUID) (*RebalanceResult, error) {
	var res RebalanceResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := loadPortfolio(tx, userID, portfolioID)
		if err != nil {
			return err
		}
		target, err := s.recommended(tx, p.RiskCategory)
		if err != nil {
			return err
		}
		res = Rebalance(p, target, s.now())
		return tx.Model(p).Update("last_rebalanced_at", p.LastRebalancedAt).Error
	})
	if err != nil {
		return nil, err
	}
	log.Warn().Str("portfolio_id", res.PortfolioID).Int("pending_changes", len(res.PendingChanges)).Msg("rebalance recorded without trade execution")
	return &res, nil
}

// Summary is the portfolio overview served to the dashboard.
type Summary struct {
	PortfolioID           string              `json:"portfolio_id"`
	Name                  string              `json:"name"`
	RiskCategory          domain.RiskCategory `json:"risk_category"`
	TotalValue            float64             `json:"total_value"`
	InitialInvestment     float64             `json:"initial_investment"`
	ReturnAmount          float64             `json:"return_amount"`
	ReturnPercentage      float64             `json:"return_percentage"`
	DiversificationScore  float64             `json:"diversification_score"`
	HoldingsCount         int                 `json:"holdings_count"`
	CurrentAllocation     domain.Allocation   `json:"current_allocation"`
	RecommendedAllocation domain.Allocation   `json:"recommended_allocation"`
	LastRebalancedAt      *time.Time          `json:"last_rebalanced_at"`
}

func (s *Service) Summary(ctx context.Context, userID, portfolioID uuid.UUID) (*Summary, error) {
	p, err := s.Get(ctx, userID, portfolioID)
	if err != nil {
		return nil, err
	}
	target, err := s.recommended(s.DB.WithContext(ctx), p.RiskCategory)
	if err != nil && err != ErrRiskProfileMissing {
		return nil, err
	}
	current := CurrentAllocation(p)
	for _, c := range domain.AssetClasses {
		current.Set(c, round2(current.Get(c)))
	}
	return &Summary{
		PortfolioID:           p.PortfolioID.String(),
		Name:                  p.Name,
		RiskCategory:          p.RiskCategory,
		TotalValue:            p.TotalValue,
		InitialInvestment:     p.InitialInvestment,
		ReturnAmount:          p.ReturnAmount,
		ReturnPercentage:      p.ReturnPercentage,
		DiversificationScore:  p.DiversificationScore,
		HoldingsCount:         len(p.Holdings),
		CurrentAllocation:     current,
		RecommendedAllocation: target,
		LastRebalancedAt:      p.LastRebalancedAt,
	}, nil
}

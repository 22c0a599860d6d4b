package riskprofiles

import (
	"context"
	"errors"
	"math"

	"pesaguru-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInvalidCategory    = errors.New("Invalid risk category")
	ErrProfileNotFound    = errors.New("Risk profile not found")
	ErrUserNotFound       = errors.New("User not found")
	ErrAllocationNot100   = errors.New("Allocation must sum to 100")
	ErrNegativeAllocation = errors.New("Allocation percentages cannot be negative")
)

type Service struct {
	DB *gorm.DB
}

// DefaultProfiles are seeded on first migration.
var DefaultProfiles = []domain.RiskProfile{
	{
		Category:              domain.RiskConservative,
		Level:                 3,
		Description:           "Capital preservation with steady income from government paper and money market funds.",
		RecommendedAllocation: domain.Allocation{Equity: 20, Bonds: 50, MoneyMarket: 25, Alternative: 5},
	},
	{
		Category:              domain.RiskModerate,
		Level:                 6,
		Description:           "Balanced growth: NSE equities alongside treasury bonds and a cash buffer.",
		RecommendedAllocation: domain.Allocation{Equity: 50, Bonds: 35, MoneyMarket: 10, Alternative: 5},
	},
	{
		Category:              domain.RiskAggressive,
		Level:                 9,
		Description:           "Long-horizon growth led by equities and real-estate investment trusts.",
		RecommendedAllocation: domain.Allocation{Equity: 70, Bonds: 15, MoneyMarket: 5, Alternative: 10},
	},
}

// DefaultProducts is the seeded Kenyan product catalog.
var DefaultProducts = []domain.InvestmentProduct{
	{Name: "Money Market Fund", Provider: "CIC Asset Management", AssetClass: domain.AssetMoneyMarket, RiskLevel: 1, ExpectedReturn: 13.5, MinimumInvestment: 1000, Description: "Daily-accruing unit trust invested in short-term deposits and T-bills."},
	{Name: "91-day Treasury Bill", Provider: "Central Bank of Kenya", AssetClass: domain.AssetMoneyMarket, RiskLevel: 1, ExpectedReturn: 15.8, MinimumInvestment: 100000, Description: "Short-dated government paper bought through DhowCSD."},
	{Name: "M-Akiba Retail Bond", Provider: "National Treasury", AssetClass: domain.AssetBonds, RiskLevel: 2, ExpectedReturn: 10.0, MinimumInvestment: 3000, Description: "Mobile-traded retail government bond."},
	{Name: "Infrastructure Bond", Provider: "Central Bank of Kenya", AssetClass: domain.AssetBonds, RiskLevel: 3, ExpectedReturn: 17.9, MinimumInvestment: 50000, Description: "Tax-free long-dated treasury bond."},
	{Name: "SACCO Shares", Provider: "Stima SACCO", AssetClass: domain.AssetAlternative, RiskLevel: 3, ExpectedReturn: 12.0, MinimumInvestment: 5000, Description: "Member deposits earning annual dividends and loan access."},
	{Name: "Balanced Fund", Provider: "Britam Asset Managers", AssetClass: domain.AssetEquity, RiskLevel: 5, ExpectedReturn: 11.0, MinimumInvestment: 5000, Description: "Unit trust mixing NSE equities and fixed income."},
	{Name: "NSE Blue-chip Equities", Provider: "Nairobi Securities Exchange", AssetClass: domain.AssetEquity, RiskLevel: 7, ExpectedReturn: 14.0, MinimumInvestment: 1000, Description: "Direct shares in large caps such as Safaricom, Equity Group and KCB."},
	{Name: "Equity Fund", Provider: "Old Mutual Investment Group", AssetClass: domain.AssetEquity, RiskLevel: 7, ExpectedReturn: 13.0, MinimumInvestment: 1000, Description: "Actively managed NSE equity unit trust."},
	{Name: "Acorn I-REIT", Provider: "Acorn Holdings", AssetClass: domain.AssetAlternative, RiskLevel: 8, ExpectedReturn: 10.5, MinimumInvestment: 5000, Description: "Income REIT holding purpose-built student accommodation."},
	{Name: "Offshore Equity Feeder Fund", Provider: "Sanlam Investments", AssetClass: domain.AssetEquity, RiskLevel: 9, ExpectedReturn: 15.0, MinimumInvestment: 10000, Description: "USD-denominated global equity exposure."},
}

// Seed inserts the default profiles and catalog, leaving existing rows alone.
func Seed(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profiles := append([]domain.RiskProfile(nil), DefaultProfiles...)
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&profiles).Error; err != nil {
			return err
		}
		products := append([]domain.InvestmentProduct(nil), DefaultProducts...)
		if err := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).Create(&products).Error; err != nil {
			return err
		}
		log.Info().Int("profiles", len(profiles)).Int("products", len(products)).Msg("risk profiles seeded")
		return nil
	})
}

func (s *Service) List(ctx context.Context) ([]domain.RiskProfile, error) {
	var profiles []domain.RiskProfile
	if err := s.DB.WithContext(ctx).Order("level asc").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (s *Service) Get(ctx context.Context, category domain.RiskCategory) (*domain.RiskProfile, error) {
	if !category.Valid() {
		return nil, ErrInvalidCategory
	}
	var p domain.RiskProfile
	if err := s.DB.WithContext(ctx).Where("category = ?", category).First(&p).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Products lists catalog entries whose risk level fits the profile.
func (s *Service) Products(ctx context.Context, category domain.RiskCategory) ([]domain.InvestmentProduct, error) {
	p, err := s.Get(ctx, category)
	if err != nil {
		return nil, err
	}
	var products []domain.InvestmentProduct
	if err := s.DB.WithContext(ctx).
		Where("risk_level <= ?", p.Level).
		Order("risk_level asc, name asc").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// SetAllocation replaces a profile's recommended allocation.
func (s *Service) SetAllocation(ctx context.Context, category domain.RiskCategory, a domain.Allocation) (*domain.RiskProfile, error) {
	for _, c := range domain.AssetClasses {
		if a.Get(c) < 0 {
			return nil, ErrNegativeAllocation
		}
	}
	if math.Abs(a.Total()-100) > 0.01 {
		return nil, ErrAllocationNot100
	}
	p, err := s.Get(ctx, category)
	if err != nil {
		return nil, err
	}
	p.RecommendedAllocation = a
	if err := s.DB.WithContext(ctx).Model(p).Update("recommended_allocation", a).Error; err != nil {
		return nil, err
	}
	log.Info().Str("category", string(category)).Msg("risk profile allocation updated")
	return p, nil
}

// GetUserRiskProfile returns the user's risk category, defaulting to moderate.
func (s *Service) GetUserRiskProfile(ctx context.Context, userID uuid.UUID) (domain.RiskCategory, error) {
	var u domain.User
	if err := s.DB.WithContext(ctx).Select("user_id", "risk_category").Where("user_id = ?", userID).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", ErrUserNotFound
		}
		return "", err
	}
	if !u.RiskCategory.Valid() {
		return domain.RiskModerate, nil
	}
	return u.RiskCategory, nil
}

// SetUserRiskProfile records the user's chosen risk category.
func (s *Service) SetUserRiskProfile(ctx context.Context, userID uuid.UUID, category domain.RiskCategory) error {
	if !category.Valid() {
		return ErrInvalidCategory
	}
	res := s.DB.WithContext(ctx).Model(&domain.User{}).Where("user_id = ?", userID).Update("risk_category", category)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

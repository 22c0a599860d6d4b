package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RiskCategory is a user's or portfolio's appetite for risk.
type RiskCategory string

const (
	RiskConservative RiskCategory = "conservative"
	RiskModerate     RiskCategory = "moderate"
	RiskAggressive   RiskCategory = "aggressive"
)

var RiskCategories = []RiskCategory{RiskConservative, RiskModerate, RiskAggressive}

func (r RiskCategory) Valid() bool {
	for _, c := range RiskCategories {
		if c == r {
			return true
		}
	}
	return false
}

// RiskProfile holds the target allocation and maximum product risk level for a category.
type RiskProfile struct {
	Category              RiskCategory `gorm:"column:category;type:varchar(20);primaryKey" json:"category"`
	Level                 int          `gorm:"column:level;not null" json:"level"`
	Description           string       `gorm:"column:description" json:"description"`
	RecommendedAllocation Allocation   `gorm:"column:recommended_allocation;type:json;not null" json:"recommended_allocation"`
	UpdatedAt             time.Time    `gorm:"column:updatedAt" json:"updatedAt"`
}

func (RiskProfile) TableName() string {
	return "RiskProfiles"
}

// InvestmentProduct is a catalog entry recommended to users whose risk level allows it.
type InvestmentProduct struct {
	ProductID         uuid.UUID  `gorm:"column:product_id;type:uuid;primaryKey" json:"product_id"`
	Name              string     `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Provider          string     `gorm:"column:provider" json:"provider"`
	AssetClass        AssetClass `gorm:"column:asset_class;type:varchar(20);not null" json:"asset_class"`
	RiskLevel         int        `gorm:"column:risk_level;not null" json:"risk_level"`
	ExpectedReturn    float64    `gorm:"column:expected_return;type:decimal(5,2)" json:"expected_return"`
	MinimumInvestment float64    `gorm:"column:minimum_investment;type:decimal(18,2)" json:"minimum_investment"`
	Description       string     `gorm:"column:description" json:"description"`
}

func (InvestmentProduct) TableName() string {
	return "InvestmentProducts"
}

func (p *InvestmentProduct) BeforeCreate(tx *gorm.DB) error {
	if p.ProductID == uuid.Nil {
		p.ProductID = uuid.New()
	}
	return nil
}

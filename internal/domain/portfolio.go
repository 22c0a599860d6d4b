package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Portfolio is a user's collection of investment holdings.
type Portfolio struct {
	PortfolioID          uuid.UUID    `gorm:"column:portfolio_id;type:uuid;primaryKey" json:"portfolio_id"`
	UserID               uuid.UUID    `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Name                 string       `gorm:"column:name;not null" json:"name"`
	RiskCategory         RiskCategory `gorm:"column:risk_category;type:varchar(20);not null" json:"risk_category"`
	TotalValue           float64      `gorm:"column:total_value;type:decimal(18,2);not null;default:0" json:"total_value"`
	InitialInvestment    float64      `gorm:"column:initial_investment;type:decimal(18,2);not null;default:0" json:"initial_investment"`
	ReturnAmount         float64      `gorm:"column:return_amount;type:decimal(18,2);not null;default:0" json:"return_amount"`
	ReturnPercentage     float64      `gorm:"column:return_percentage;type:decimal(9,2);not null;default:0" json:"return_percentage"`
	DiversificationScore float64      `gorm:"column:diversification_score;type:decimal(5,2);not null;default:0" json:"diversification_score"`
	LastRebalancedAt     *time.Time   `gorm:"column:last_rebalanced_at" json:"last_rebalanced_at"`
	Holdings             []Holding    `gorm:"foreignKey:PortfolioID;references:PortfolioID" json:"holdings"`
	CreatedAt            time.Time    `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt            time.Time    `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Portfolio) TableName() string {
	return "Portfolios"
}

func (p *Portfolio) BeforeCreate(tx *gorm.DB) error {
	if p.PortfolioID == uuid.Nil {
		p.PortfolioID = uuid.New()
	}
	return nil
}

// Holding is one line-item investment within a portfolio.
type Holding struct {
	HoldingID      uuid.UUID  `gorm:"column:holding_id;type:uuid;primaryKey" json:"holding_id"`
	PortfolioID    uuid.UUID  `gorm:"column:portfolio_id;type:uuid;not null;index" json:"portfolio_id"`
	Position       int        `gorm:"column:position;not null;default:0" json:"-"`
	AssetType      AssetClass `gorm:"column:asset_type;type:varchar(20);not null" json:"asset_type"`
	Name           string     `gorm:"column:name;not null" json:"name"`
	AmountInvested float64    `gorm:"column:amount_invested;type:decimal(18,2);not null" json:"amount_invested"`
	PurchasePrice  float64    `gorm:"column:purchase_price;type:decimal(18,4);not null" json:"purchase_price"`
	CurrentValue   float64    `gorm:"column:current_value;type:decimal(18,2);not null" json:"current_value"`
	PurchaseDate   *time.Time `gorm:"column:purchase_date" json:"purchase_date"`
	CreatedAt      time.Time  `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt      time.Time  `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Holding) TableName() string {
	return "Holdings"
}

// BeforeCreate: never insert zero UUID for primary key; generate random when not set.
func (h *Holding) BeforeCreate(tx *gorm.DB) error {
	if h.HoldingID == uuid.Nil {
		h.HoldingID = uuid.New()
	}
	return nil
}

package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GoalType enumerates the kinds of financial goal a user can set.
type GoalType string

const (
	GoalSavings       GoalType = "savings"
	GoalInvestment    GoalType = "investment"
	GoalRetirement    GoalType = "retirement"
	GoalEducation     GoalType = "education"
	GoalDebtRepayment GoalType = "debt_repayment"
	GoalEmergencyFund GoalType = "emergency_fund"
)

var GoalTypes = []GoalType{GoalSavings, GoalInvestment, GoalRetirement, GoalEducation, GoalDebtRepayment, GoalEmergencyFund}

func (t GoalType) Valid() bool {
	for _, g := range GoalTypes {
		if g == t {
			return true
		}
	}
	return false
}

// IsInvestmentFamily reports whether goals of this type carry an asset allocation.
func (t GoalType) IsInvestmentFamily() bool {
	return t == GoalInvestment || t == GoalRetirement || t == GoalEducation
}

type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
)

// ContributionFrequency is how often the user pays into a goal.
type ContributionFrequency string

const (
	FrequencyWeekly    ContributionFrequency = "weekly"
	FrequencyBiweekly  ContributionFrequency = "biweekly"
	FrequencyMonthly   ContributionFrequency = "monthly"
	FrequencyQuarterly ContributionFrequency = "quarterly"
	FrequencyAnnually  ContributionFrequency = "annually"
)

// MonthlyFactor converts one contribution at this frequency into a monthly figure.
func (f ContributionFrequency) MonthlyFactor() float64 {
	switch f {
	case FrequencyWeekly:
		return 52.0 / 12.0
	case FrequencyBiweekly:
		return 26.0 / 12.0
	case FrequencyQuarterly:
		return 1.0 / 3.0
	case FrequencyAnnually:
		return 1.0 / 12.0
	case FrequencyMonthly, "":
		return 1
	}
	return 0
}

func (f ContributionFrequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly, FrequencyQuarterly, FrequencyAnnually:
		return true
	}
	return false
}

// ReviewState tracks when a goal's allocation was last reviewed. Reviews are
// allowed once per ReviewInterval.
type ReviewState struct {
	LastReviewedAt *time.Time `gorm:"column:last_allocation_review_at" json:"last_allocation_review_at"`
}

const ReviewInterval = 30 * 24 * time.Hour

// Due reports whether a review may run at now.
func (r ReviewState) Due(now time.Time) bool {
	if r.LastReviewedAt == nil {
		return true
	}
	return now.Sub(*r.LastReviewedAt) >= ReviewInterval
}

func (r *ReviewState) MarkReviewed(now time.Time) {
	t := now
	r.LastReviewedAt = &t
}

// AllocationReview records the outcome of the most recent allocation review.
type AllocationReview struct {
	ReviewedAt    time.Time     `json:"reviewed_at"`
	Previous      Allocation    `json:"previous"`
	Summary       string        `json:"summary"`
	MarketFactors MarketFactors `json:"market_factors"`
}

// MarketFactors is the market snapshot an allocation review considered.
type MarketFactors struct {
	EquityMarketTrend    string   `json:"equity_market_trend"`
	InterestRateTrend    string   `json:"interest_rate_trend"`
	EconomicOutlook      string   `json:"economic_outlook"`
	InflationRate        float64  `json:"inflation_rate"`
	MarketVolatility     string   `json:"market_volatility"`
	KenyaSpecificFactors []string `json:"kenya_specific_factors,omitempty"`
}

// GoalMetadata holds the optional per-goal records.
type GoalMetadata struct {
	DaysToComplete *int              `json:"days_to_complete,omitempty"`
	LastReview     *AllocationReview `json:"last_review,omitempty"`
	Notes          string            `json:"notes,omitempty"`
}

// FinancialGoal is a user's savings, investment or debt target.
type FinancialGoal struct {
	GoalID                uuid.UUID             `gorm:"column:goal_id;type:uuid;primaryKey" json:"goal_id"`
	UserID                uuid.UUID             `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Name                  string                `gorm:"column:name;not null" json:"name"`
	Type                  GoalType              `gorm:"column:type;type:varchar(20);not null" json:"type"`
	TargetAmount          float64               `gorm:"column:target_amount;type:decimal(18,2);not null" json:"target_amount"`
	CurrentAmount         float64               `gorm:"column:current_amount;type:decimal(18,2);not null;default:0" json:"current_amount"`
	StartDate             time.Time             `gorm:"column:start_date;not null" json:"start_date"`
	TargetDate            time.Time             `gorm:"column:target_date;not null" json:"target_date"`
	ContributionFrequency ContributionFrequency `gorm:"column:contribution_frequency;type:varchar(20);default:'monthly'" json:"contribution_frequency"`
	ContributionAmount    float64               `gorm:"column:contribution_amount;type:decimal(18,2);default:0" json:"contribution_amount"`
	ProgressPercentage    float64               `gorm:"column:progress_percentage;type:decimal(5,2);default:0" json:"progress_percentage"`
	Status                GoalStatus            `gorm:"column:status;type:varchar(20);default:'active'" json:"status"`
	Allocation            Allocation            `gorm:"column:investment_allocation;type:json" json:"investment_allocation,omitempty"`
	ReviewState
	LinkedLoanID *uuid.UUID                       `gorm:"column:linked_loan_id;type:uuid" json:"linked_loan_id,omitempty"`
	CompletedAt  *time.Time                       `gorm:"column:completed_at" json:"completed_at,omitempty"`
	Metadata     datatypes.JSONType[GoalMetadata] `gorm:"column:metadata;type:json" json:"metadata"`
	CreatedAt    time.Time                        `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt    time.Time                        `gorm:"column:updatedAt" json:"updatedAt"`
}

func (FinancialGoal) TableName() string {
	return "FinancialGoals"
}

func (g *FinancialGoal) BeforeCreate(tx *gorm.DB) error {
	if g.GoalID == uuid.Nil {
		g.GoalID = uuid.New()
	}
	return nil
}

// MonthlyContribution is the contribution normalised to one month.
func (g *FinancialGoal) MonthlyContribution() float64 {
	return g.ContributionAmount * g.ContributionFrequency.MonthlyFactor()
}

// RemainingAmount is never negative.
func (g *FinancialGoal) RemainingAmount() float64 {
	if g.CurrentAmount >= g.TargetAmount {
		return 0
	}
	return g.TargetAmount - g.CurrentAmount
}

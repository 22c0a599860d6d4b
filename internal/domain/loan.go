package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	LoanActive  = "active"
	LoanPaidOff = "paid_off"
)

// Loan is tracked so that debt-repayment goals can keep its balance in step.
type Loan struct {
	LoanID             uuid.UUID `gorm:"column:loan_id;type:uuid;primaryKey" json:"loan_id"`
	UserID             uuid.UUID `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Lender             string    `gorm:"column:lender;not null" json:"lender"`
	Principal          float64   `gorm:"column:principal;type:decimal(18,2);not null" json:"principal"`
	InterestRate       float64   `gorm:"column:interest_rate;type:decimal(5,2);default:0" json:"interest_rate"`
	AmountRepaid       float64   `gorm:"column:amount_repaid;type:decimal(18,2);not null;default:0" json:"amount_repaid"`
	OutstandingBalance float64   `gorm:"column:outstanding_balance;type:decimal(18,2);not null" json:"outstanding_balance"`
	Status             string    `gorm:"column:status;type:varchar(20);default:'active'" json:"status"`
	CreatedAt          time.Time `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt          time.Time `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Loan) TableName() string {
	return "Loans"
}

func (l *Loan) BeforeCreate(tx *gorm.DB) error {
	if l.LoanID == uuid.Nil {
		l.LoanID = uuid.New()
	}
	return nil
}

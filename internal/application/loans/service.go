package loans

import (
	"context"
	"errors"
	"math"

	"pesaguru-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var (
	ErrLenderRequired   = errors.New("Lender is required")
	ErrInvalidPrincipal = errors.New("Principal must be a positive number")
	ErrInvalidRepaid    = errors.New("Amount repaid cannot be negative")
	ErrLoanNotFound     = errors.New("Loan not found")
)

type Service struct {
	DB *gorm.DB
}

type CreateInput struct {
	Lender       string  `json:"lender"`
	Principal    float64 `json:"principal"`
	InterestRate float64 `json:"interest_rate"`
	AmountRepaid float64 `json:"amount_repaid"`
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, in CreateInput) (*domain.Loan, error) {
	if in.Lender == "" {
		return nil, ErrLenderRequired
	}
	if in.Principal <= 0 {
		return nil, ErrInvalidPrincipal
	}
	if in.AmountRepaid < 0 {
		return nil, ErrInvalidRepaid
	}
	loan := domain.Loan{
		UserID:       userID,
		Lender:       in.Lender,
		Principal:    in.Principal,
		InterestRate: in.InterestRate,
	}
	applyRepaid(&loan, in.AmountRepaid)
	if err := s.DB.WithContext(ctx).Create(&loan).Error; err != nil {
		return nil, err
	}
	return &loan, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]domain.Loan, error) {
	var loans []domain.Loan
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Order(`"createdAt" desc`).Find(&loans).Error; err != nil {
		return nil, err
	}
	return loans, nil
}

// Get returns a loan owned by userID.
func (s *Service) Get(ctx context.Context, userID, loanID uuid.UUID) (*domain.Loan, error) {
	var loan domain.Loan
	if err := s.DB.WithContext(ctx).Where("loan_id = ? AND user_id = ?", loanID, userID).First(&loan).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrLoanNotFound
		}
		return nil, err
	}
	return &loan, nil
}

// SyncFromGoal brings a debt-repayment goal's linked loan in line with the
// amount repaid so far. It must run on the goal update's transaction.
func SyncFromGoal(tx *gorm.DB, goal *domain.FinancialGoal) error {
	if goal.Type != domain.GoalDebtRepayment || goal.LinkedLoanID == nil {
		return nil
	}
	var loan domain.Loan
	if err := tx.Where("loan_id = ? AND user_id = ?", *goal.LinkedLoanID, goal.UserID).First(&loan).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			log.Warn().Str("goal_id", goal.GoalID.String()).Str("loan_id", goal.LinkedLoanID.String()).Msg("linked loan missing; skipping sync")
			return nil
		}
		return err
	}
	applyRepaid(&loan, goal.CurrentAmount)
	return tx.Model(&loan).Updates(map[string]interface{}{
		"amount_repaid":       loan.AmountRepaid,
		"outstanding_balance": loan.OutstandingBalance,
		"status":              loan.Status,
	}).Error
}

func applyRepaid(loan *domain.Loan, repaid float64) {
	loan.AmountRepaid = math.Round(repaid*100) / 100
	loan.OutstandingBalance = math.Max(0, math.Round((loan.Principal-loan.AmountRepaid)*100)/100)
	loan.Status = domain.LoanActive
	if loan.OutstandingBalance == 0 {
		loan.Status = domain.LoanPaidOff
	}
}

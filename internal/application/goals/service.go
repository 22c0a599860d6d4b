package goals

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"pesaguru-backend/internal/application/allocation"
	"pesaguru-backend/internal/application/emails"
	"pesaguru-backend/internal/application/feasibility"
	"pesaguru-backend/internal/application/loans"
	"pesaguru-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrGoalNotFound        = errors.New("Goal not found")
	ErrNameRequired        = errors.New("Goal name is required")
	ErrInvalidGoalType     = errors.New("Invalid goal type")
	ErrInvalidTarget       = errors.New("Target amount must be a positive number")
	ErrInvalidAmount       = errors.New("Amount must be a positive number")
	ErrNegativeAmount      = errors.New("Amount cannot be negative")
	ErrInvalidTargetDate   = errors.New("Target date must be after the start date")
	ErrInvalidFrequency    = errors.New("Invalid contribution frequency")
	ErrLoanLinkNotAllowed  = errors.New("Only debt repayment goals can be linked to a loan")
	ErrLinkedLoanNotFound  = errors.New("Linked loan not found")
	ErrAllocationNotUsed   = errors.New("Goal has no investment allocation")
	ErrReviewNotDue        = errors.New("Allocation was reviewed less than 30 days ago")
	ErrReviewUnavailable   = errors.New("Investment provider returned no advice")
	ErrCompletedGoalLocked = errors.New("Goal is already completed")
)

// Service owns goal persistence and the progress workflow.
type Service struct {
	DB       *gorm.DB
	Policy   *allocation.Policy
	Notifier emails.Sender
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

type CreateInput struct {
	Name                  string                       `json:"name"`
	Type                  domain.GoalType              `json:"type"`
	TargetAmount          float64                      `json:"target_amount"`
	CurrentAmount         float64                      `json:"current_amount"`
	StartDate             *time.Time                   `json:"start_date"`
	TargetDate            time.Time                    `json:"target_date"`
	ContributionFrequency domain.ContributionFrequency `json:"contribution_frequency"`
	ContributionAmount    float64                      `json:"contribution_amount"`
	LinkedLoanID          *uuid.UUID                   `json:"linked_loan_id"`
	Notes                 string                       `json:"notes"`
}

// Create validates and stores a new goal. Investment-family goals start on the
// default allocation for their horizon.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, in CreateInput) (*domain.FinancialGoal, error) {
	now := s.now()
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, ErrNameRequired
	}
	if !in.Type.Valid() {
		return nil, ErrInvalidGoalType
	}
	if in.TargetAmount <= 0 {
		return nil, ErrInvalidTarget
	}
	if in.CurrentAmount < 0 || in.ContributionAmount < 0 {
		return nil, ErrNegativeAmount
	}
	if in.ContributionFrequency == "" {
		in.ContributionFrequency = domain.FrequencyMonthly
	}
	if !in.ContributionFrequency.Valid() {
		return nil, ErrInvalidFrequency
	}
	start := now
	if in.StartDate != nil {
		start = *in.StartDate
	}
	if !in.TargetDate.After(start) {
		return nil, ErrInvalidTargetDate
	}
	if in.LinkedLoanID != nil && in.Type != domain.GoalDebtRepayment {
		return nil, ErrLoanLinkNotAllowed
	}

	goal := domain.FinancialGoal{
		UserID:                userID,
		Name:                  in.Name,
		Type:                  in.Type,
		TargetAmount:          in.TargetAmount,
		CurrentAmount:         in.CurrentAmount,
		StartDate:             start,
		TargetDate:            in.TargetDate,
		ContributionFrequency: in.ContributionFrequency,
		ContributionAmount:    in.ContributionAmount,
		ProgressPercentage:    Progress(in.CurrentAmount, in.TargetAmount),
		Status:                domain.GoalActive,
		LinkedLoanID:          in.LinkedLoanID,
		Metadata:              datatypes.NewJSONType(domain.GoalMetadata{Notes: in.Notes}),
	}
	if goal.Type.IsInvestmentFamily() {
		goal.Allocation = allocation.DefaultAllocation(goal.Type, allocation.MonthsBetween(now, goal.TargetDate))
	}
	if goal.ProgressPercentage >= 100 {
		goal.Status = domain.GoalCompleted
		goal.CompletedAt = &now
		days := 0
		meta := goal.Metadata.Data()
		meta.DaysToComplete = &days
		goal.Metadata = datatypes.NewJSONType(meta)
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if goal.LinkedLoanID != nil {
			var n int64
			if err := tx.Model(&domain.Loan{}).Where("loan_id = ? AND user_id = ?", *goal.LinkedLoanID, userID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return ErrLinkedLoanNotFound
			}
		}
		if err := tx.Create(&goal).Error; err != nil {
			return err
		}
		return loans.SyncFromGoal(tx, &goal)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("goal_id", goal.GoalID.String()).Str("user_id", userID.String()).Str("type", string(goal.Type)).Msg("goal created")
	return &goal, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]domain.FinancialGoal, error) {
	var goals []domain.FinancialGoal
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Order(`"createdAt" desc`).Find(&goals).Error; err != nil {
		return nil, err
	}
	return goals, nil
}

// Get returns a goal owned by userID.
func (s *Service) Get(ctx context.Context, userID, goalID uuid.UUID) (*domain.FinancialGoal, error) {
	return findGoal(s.DB.WithContext(ctx), userID, goalID)
}

func findGoal(db *gorm.DB, userID, goalID uuid.UUID) (*domain.FinancialGoal, error) {
	var goal domain.FinancialGoal
	if err := db.Where("goal_id = ? AND user_id = ?", goalID, userID).First(&goal).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}
	return &goal, nil
}

// ProgressOutcome is returned by Contribute and SetProgress.
type ProgressOutcome struct {
	Goal             *domain.FinancialGoal        `json:"goal"`
	Progress         ProgressResult               `json:"progress"`
	AllocationReview *allocation.AdjustmentResult `json:"allocation_review,omitempty"`
}

// Contribute adds amount to the goal's current amount.
func (s *Service) Contribute(ctx context.Context, userID, goalID uuid.UUID, amount float64) (*ProgressOutcome, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return s.applyProgress(ctx, userID, goalID, func(current float64) float64 {
		return current + amount
	})
}

// SetProgress replaces the goal's current amount.
func (s *Service) SetProgress(ctx context.Context, userID, goalID uuid.UUID, amount float64) (*ProgressOutcome, error) {
	if amount < 0 {
		return nil, ErrNegativeAmount
	}
	return s.applyProgress(ctx, userID, goalID, func(float64) float64 {
		return amount
	})
}

func (s *Service) applyProgress(ctx context.Context, userID, goalID uuid.UUID, next func(current float64) float64) (*ProgressOutcome, error) {
	now := s.now()
	var goal *domain.FinancialGoal
	var result ProgressResult

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		g, err := findGoal(tx, userID, goalID)
		if err != nil {
			return err
		}
		result = UpdateProgress(g, next(g.CurrentAmount), now)
		if err := tx.Save(g).Error; err != nil {
			return err
		}
		if err := loans.SyncFromGoal(tx, g); err != nil {
			return err
		}
		payload, err := json.Marshal(result)
		if err != nil {
			return err
		}
		if err := tx.Create(&domain.GoalEvent{
			GoalID:    g.GoalID,
			UserID:    g.UserID,
			EventType: domain.EventGoalProgressUpdated,
			EventData: datatypes.JSON(payload),
		}).Error; err != nil {
			return err
		}
		goal = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("goal_id", goal.GoalID.String()).
		Float64("old_amount", result.OldAmount).
		Float64("new_amount", result.NewAmount).
		Float64("progress", result.ProgressPercentage).
		Int("alerts", len(result.Alerts)).
		Msg("goal progress updated")

	out := &ProgressOutcome{Goal: goal, Progress: result}
	if goal.Status == domain.GoalActive && goal.Type.IsInvestmentFamily() {
		review, err := s.reviewAndSave(ctx, goal, now)
		if err != nil {
			log.Warn().Err(err).Str("goal_id", goal.GoalID.String()).Msg("allocation review after progress update failed")
		}
		out.AllocationReview = review
	}
	s.notify(ctx, goal, result)
	return out, nil
}

// notify hands the progress event to the notification collaborator. Failures
// are logged only.
func (s *Service) notify(ctx context.Context, goal *domain.FinancialGoal, result ProgressResult) {
	if s.Notifier == nil || (len(result.Alerts) == 0 && !result.Completed) {
		return
	}
	var user domain.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", goal.UserID).First(&user).Error; err != nil {
		log.Warn().Err(err).Str("goal_id", goal.GoalID.String()).Msg("goal notification: owner lookup failed")
		return
	}
	name := firstName(user.Fullname)
	if len(result.Alerts) > 0 {
		alerts := make([]emails.GoalAlert, len(result.Alerts))
		for i, a := range result.Alerts {
			alerts[i] = emails.GoalAlert{Type: string(a.Type), Message: a.Message}
		}
		if err := s.Notifier.SendGoalAlerts(ctx, user.Email, name, goal.Name, result.ProgressPercentage, alerts); err != nil {
			log.Error().Err(err).Str("goal_id", goal.GoalID.String()).Msg("goal alert email failed")
		}
	}
	if result.Completed {
		days := 0
		if d := goal.Metadata.Data().DaysToComplete; d != nil {
			days = *d
		}
		if err := s.Notifier.SendGoalCompleted(ctx, user.Email, name, goal.Name, days); err != nil {
			log.Error().Err(err).Str("goal_id", goal.GoalID.String()).Msg("goal completed email failed")
		}
	}
}

func firstName(full string) string {
	if f := strings.Fields(full); len(f) > 0 {
		return f[0]
	}
	return ""
}

// Feasibility reports whether the goal is on course.
func (s *Service) Feasibility(ctx context.Context, userID, goalID uuid.UUID) (*feasibility.Report, error) {
	goal, err := s.Get(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	r := feasibility.Calculate(goal, s.now())
	return &r, nil
}

// ReviewAllocation runs an on-demand allocation review, subject to the same
// rate limit as the scheduled sweep.
func (s *Service) ReviewAllocation(ctx context.Context, userID, goalID uuid.UUID) (*allocation.AdjustmentResult, error) {
	now := s.now()
	goal, err := s.Get(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	if goal.Status == domain.GoalCompleted {
		return nil, ErrCompletedGoalLocked
	}
	if !goal.Type.IsInvestmentFamily() || goal.Allocation.IsZero() {
		return nil, ErrAllocationNotUsed
	}
	if !goal.ReviewState.Due(now) {
		return nil, ErrReviewNotDue
	}
	res, err := s.reviewAndSave(ctx, goal, now)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, ErrReviewUnavailable
	}
	return res, nil
}

func (s *Service) reviewAndSave(ctx context.Context, goal *domain.FinancialGoal, now time.Time) (*allocation.AdjustmentResult, error) {
	if s.Policy == nil {
		return nil, nil
	}
	// goal only takes the new allocation once it is stored.
	reviewed := *goal
	res, err := s.Policy.AdjustAllocation(ctx, &reviewed, now)
	if err != nil || res == nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(&reviewed).
		Select("investment_allocation", "last_allocation_review_at", "metadata").
		Updates(&reviewed).Error; err != nil {
		return nil, err
	}
	*goal = reviewed
	log.Info().Str("goal_id", goal.GoalID.String()).Str("summary", res.Summary).Msg("allocation adjusted")
	return res, nil
}

// SweepResult summarises one pass of ReviewDueAllocations.
type SweepResult struct {
	Candidates int `json:"candidates"`
	Adjusted   int `json:"adjusted"`
	Failed     int `json:"failed"`
}

// ReviewDueAllocations reviews every active investment-family goal whose
// allocation review is due. A failing goal does not stop the sweep.
func (s *Service) ReviewDueAllocations(ctx context.Context) (SweepResult, error) {
	now := s.now()
	var candidates []domain.FinancialGoal
	err := s.DB.WithContext(ctx).
		Where("status = ?", domain.GoalActive).
		Where("type IN ?", []domain.GoalType{domain.GoalInvestment, domain.GoalRetirement, domain.GoalEducation}).
		Where("investment_allocation IS NOT NULL").
		Where("last_allocation_review_at IS NULL OR last_allocation_review_at <= ?", now.Add(-domain.ReviewInterval)).
		Find(&candidates).Error
	if err != nil {
		return SweepResult{}, err
	}

	res := SweepResult{Candidates: len(candidates)}
	for i := range candidates {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		adj, err := s.reviewAndSave(ctx, &candidates[i], now)
		switch {
		case err != nil:
			res.Failed++
			log.Warn().Err(err).Str("goal_id", candidates[i].GoalID.String()).Msg("scheduled allocation review failed")
		case adj != nil:
			res.Adjusted++
		}
	}
	return res, nil
}

// Events returns the goal's progress history, newest first.
func (s *Service) Events(ctx context.Context, userID, goalID uuid.UUID) ([]domain.GoalEvent, error) {
	if _, err := s.Get(ctx, userID, goalID); err != nil {
		return nil, err
	}
	var events []domain.GoalEvent
	if err := s.DB.WithContext(ctx).Where("goal_id = ?", goalID).Order(`"createdAt" desc`).Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

package goals

import (
	"fmt"
	"math"
	"time"

	"pesaguru-backend/internal/domain"

	"gorm.io/datatypes"
)

type AlertType string

const (
	AlertMilestone       AlertType = "milestone"
	AlertTimelineWarning AlertType = "timeline_warning"
	AlertBehindSchedule  AlertType = "behind_schedule"
)

// Alert is raised by a progress update for the notification collaborator.
type Alert struct {
	Type      AlertType `json:"type"`
	Message   string    `json:"message"`
	Milestone int       `json:"milestone,omitempty"`
}

var milestones = []int{25, 50, 75, 100}

const (
	timelineWarningDays   = 30
	timelineWarningBelow  = 90.0
	behindScheduleMargin  = 15.0
	behindScheduleMinDays = 30
)

// ProgressResult is what an update reports back to the caller.
type ProgressResult struct {
	OldAmount          float64 `json:"old_amount"`
	NewAmount          float64 `json:"new_amount"`
	ProgressPercentage float64 `json:"progress_percentage"`
	Alerts             []Alert `json:"alerts"`
	Completed          bool    `json:"completed"`
}

// Progress is current/target as a percentage, capped at 100.
func Progress(current, target float64) float64 {
	if target <= 0 {
		return 0
	}
	p := current / target * 100
	if p > 100 {
		p = 100
	}
	if p < 0 {
		p = 0
	}
	return math.Round(p*100) / 100
}

// UpdateProgress sets the goal's current amount to newAmount, recomputes its
// progress and completion state and returns the alerts raised by the change.
// Completion is one-way.
func UpdateProgress(goal *domain.FinancialGoal, newAmount float64, now time.Time) ProgressResult {
	oldAmount := goal.CurrentAmount
	oldProgress := Progress(oldAmount, goal.TargetAmount)

	goal.CurrentAmount = newAmount
	goal.ProgressPercentage = Progress(newAmount, goal.TargetAmount)

	res := ProgressResult{
		OldAmount:          oldAmount,
		NewAmount:          newAmount,
		ProgressPercentage: goal.ProgressPercentage,
		Alerts:             []Alert{},
	}

	if goal.ProgressPercentage >= 100 && goal.Status != domain.GoalCompleted {
		goal.Status = domain.GoalCompleted
		completedAt := now
		goal.CompletedAt = &completedAt
		days := int(now.Sub(goal.StartDate).Hours() / 24)
		if days < 0 {
			days = 0
		}
		meta := goal.Metadata.Data()
		meta.DaysToComplete = &days
		goal.Metadata = datatypes.NewJSONType(meta)
		res.Completed = true
	}

	for _, m := range milestones {
		if oldProgress < float64(m) && goal.ProgressPercentage >= float64(m) {
			res.Alerts = append(res.Alerts, Alert{
				Type:      AlertMilestone,
				Milestone: m,
				Message:   fmt.Sprintf("You've reached %d%% of your goal '%s'", m, goal.Name),
			})
		}
	}

	daysRemaining := daysBetween(now, goal.TargetDate)
	if daysRemaining > 0 && daysRemaining <= timelineWarningDays && goal.ProgressPercentage < timelineWarningBelow {
		res.Alerts = append(res.Alerts, Alert{
			Type:    AlertTimelineWarning,
			Message: fmt.Sprintf("Only %d days left to reach '%s' and you are at %.0f%%", daysRemaining, goal.Name, goal.ProgressPercentage),
		})
	}

	totalDays := daysBetween(goal.StartDate, goal.TargetDate)
	elapsedDays := daysBetween(goal.StartDate, now)
	if totalDays > 0 && elapsedDays > behindScheduleMinDays && goal.Status != domain.GoalCompleted {
		expected := float64(elapsedDays) / float64(totalDays) * 100
		if expected-goal.ProgressPercentage > behindScheduleMargin {
			res.Alerts = append(res.Alerts, Alert{
				Type:    AlertBehindSchedule,
				Message: fmt.Sprintf("'%s' is behind schedule: %.0f%% saved, %.0f%% expected by now", goal.Name, goal.ProgressPercentage, expected),
			})
		}
	}

	return res
}

// daysBetween counts whole days from a to b; negative when b is before a.
func daysBetween(a, b time.Time) int {
	return int(math.Floor(b.Sub(a).Hours() / 24))
}

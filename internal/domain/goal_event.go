package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const EventGoalProgressUpdated = "goal_progress_updated"

// GoalEvent is an append-only record of changes to a goal.
type GoalEvent struct {
	EventID   uuid.UUID      `gorm:"column:event_id;type:uuid;primaryKey" json:"event_id"`
	GoalID    uuid.UUID      `gorm:"column:goal_id;type:uuid;not null;index" json:"goal_id"`
	UserID    uuid.UUID      `gorm:"column:user_id;type:uuid;not null" json:"user_id"`
	EventType string         `gorm:"column:event_type;type:varchar(40);not null" json:"event_type"`
	EventData datatypes.JSON `gorm:"column:event_data;type:json" json:"event_data"`
	CreatedAt time.Time      `gorm:"column:createdAt" json:"createdAt"`
}

func (GoalEvent) TableName() string {
	return "GoalEvents"
}

func (e *GoalEvent) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == uuid.Nil {
		e.EventID = uuid.New()
	}
	return nil
}

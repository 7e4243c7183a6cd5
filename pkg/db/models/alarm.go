package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/elcilc/clicle/pkg/enums"
)

// AlarmArgs is the structured payload identifying the subject of an alarm:
// who triggered it and which post it concerns.
type AlarmArgs struct {
	FromUserID uuid.UUID `json:"fromUserId"`
	TargetID   uuid.UUID `json:"targetId"`
}

// Alarm stores one durable notification record. Rows are immutable once
// created; only the read marker may be set afterwards.
type Alarm struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_alarms_user_created"`
	Type      enums.AlarmType `gorm:"type:text;not null"`
	Args      AlarmArgs       `gorm:"type:jsonb;serializer:json"`
	ReadAt    *time.Time      `gorm:"type:timestamptz"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime;index:idx_alarms_user_created"`
}

func (a *Alarm) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

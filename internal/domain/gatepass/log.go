package gatepass

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const LogActionCreated = "CREATED"

// StatusChangedAction is the log action recorded for a transition into status.
func StatusChangedAction(status ApprovalStatus) string {
	return "STATUS_CHANGED_TO_" + string(status)
}

// GatePassLog is the append-only audit trail of a visitor pass.
type GatePassLog struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	VisitorPassID uuid.UUID      `gorm:"type:uuid;not null;column:visitor_pass_id;index" json:"visitor_pass_id"`
	Action        string         `gorm:"not null;column:action" json:"action"`
	Details       string         `gorm:"column:details" json:"details,omitempty"`
	ActorID       uuid.UUID      `gorm:"type:uuid;not null;column:actor_id" json:"actor_id"`
	Metadata      datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt     time.Time      `gorm:"not null;index" json:"created_at"`
}

func (GatePassLog) TableName() string { return "gatepass_log" }

func (l *GatePassLog) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

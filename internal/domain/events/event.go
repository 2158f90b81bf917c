package events

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventStatus string

const (
	EventStatusPlanned   EventStatus = "PLANNED"
	EventStatusOngoing   EventStatus = "ONGOING"
	EventStatusCompleted EventStatus = "COMPLETED"
	EventStatusCancelled EventStatus = "CANCELLED"
)

// Event is the slice of the campaign event directory that gate passes reference.
type Event struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string      `gorm:"not null;column:title" json:"title"`
	Description string      `gorm:"column:description" json:"description,omitempty"`
	Venue       string      `gorm:"column:venue" json:"venue,omitempty"`
	StartsAt    time.Time   `gorm:"not null;column:starts_at;index" json:"starts_at"`
	EndsAt      *time.Time  `gorm:"column:ends_at" json:"ends_at,omitempty"`
	Status      EventStatus `gorm:"not null;default:'PLANNED';column:status" json:"status"`
	CreatedBy   uuid.UUID   `gorm:"type:uuid;not null;column:created_by" json:"created_by"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Event) TableName() string { return "event" }

func (e *Event) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Status == "" {
		e.Status = EventStatusPlanned
	}
	return nil
}

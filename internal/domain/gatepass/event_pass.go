package gatepass

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AccessLevel string

const (
	AccessVIP       AccessLevel = "VIP"
	AccessGeneral   AccessLevel = "GENERAL"
	AccessVolunteer AccessLevel = "VOLUNTEER"
	AccessStaff     AccessLevel = "STAFF"
)

func (l AccessLevel) Valid() bool {
	switch l {
	case AccessVIP, AccessGeneral, AccessVolunteer, AccessStaff:
		return true
	default:
		return false
	}
}

// EventPass admits one attendee to one event inside [ValidFrom, ValidUntil).
// Once issued only the use flag changes.
type EventPass struct {
	ID         uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	EventID    uuid.UUID   `gorm:"type:uuid;not null;column:event_id;uniqueIndex:uniq_event_pass_attendee,priority:1" json:"event_id"`
	AttendeeID uuid.UUID   `gorm:"type:uuid;not null;column:attendee_id;uniqueIndex:uniq_event_pass_attendee,priority:2" json:"attendee_id"`
	Code       string      `gorm:"not null;uniqueIndex;column:code" json:"code"`
	Access     AccessLevel `gorm:"not null;default:'GENERAL';column:access_level" json:"access_level"`

	ValidFrom  time.Time  `gorm:"not null;column:valid_from" json:"valid_from"`
	ValidUntil time.Time  `gorm:"not null;column:valid_until" json:"valid_until"`
	IsUsed     bool       `gorm:"not null;default:false;column:is_used" json:"is_used"`
	UsedAt     *time.Time `gorm:"column:used_at" json:"used_at,omitempty"`
	EntryGate  string     `gorm:"column:entry_gate" json:"entry_gate,omitempty"`

	SpecialInstructions string `gorm:"column:special_instructions" json:"special_instructions,omitempty"`
	CompanionCount      int    `gorm:"not null;default:0;column:companion_count" json:"companion_count"`

	QRPayload string    `gorm:"column:qr_payload" json:"qr_payload"`
	QRCodeKey string    `gorm:"column:qr_code_key" json:"qr_code_key,omitempty"`
	IssuedBy  uuid.UUID `gorm:"type:uuid;not null;column:issued_by" json:"issued_by"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (EventPass) TableName() string { return "event_pass" }

func (p *EventPass) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// IsValid reports valid_from <= now < valid_until and not yet used.
func (p *EventPass) IsValid(now time.Time) bool {
	if p == nil || p.IsUsed {
		return false
	}
	return !now.Before(p.ValidFrom) && now.Before(p.ValidUntil)
}

func (p *EventPass) IsExpired(now time.Time) bool {
	return p != nil && now.After(p.ValidUntil)
}

// InvalidReason explains why IsValid is false; empty when the pass is valid.
func (p *EventPass) InvalidReason(now time.Time) string {
	switch {
	case p == nil:
		return "pass does not exist"
	case p.IsUsed:
		return "pass already used"
	case now.Before(p.ValidFrom):
		return "pass is not valid yet"
	case !now.Before(p.ValidUntil):
		return "pass has expired"
	default:
		return ""
	}
}

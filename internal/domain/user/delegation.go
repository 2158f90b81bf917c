package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GatePassDelegation lets an administrator grant gate-pass creation to a user
// whose role would not otherwise allow it.
type GatePassDelegation struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex;column:user_id" json:"user_id"`
	CanCreateGatePass bool       `gorm:"not null;default:false;column:can_create_gatepass" json:"can_create_gatepass"`
	GrantedBy         *uuid.UUID `gorm:"type:uuid;column:granted_by" json:"granted_by,omitempty"`
	GrantedAt         time.Time  `gorm:"not null;column:granted_at" json:"granted_at"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (GatePassDelegation) TableName() string { return "gatepass_delegation" }

func (d *GatePassDelegation) BeforeCreate(*gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

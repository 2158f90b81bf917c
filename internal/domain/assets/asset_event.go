package assets

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	AssetEventRegistered = "REGISTERED"
	AssetEventUpdated    = "UPDATED"
	AssetEventAssigned   = "ASSIGNED"
	AssetEventAccepted   = "ACCEPTED"
	AssetEventRejected   = "REJECTED"
	AssetEventInUse      = "IN_USE"
	AssetEventReturned   = "RETURNED"
	AssetEventLost       = "LOST"
	AssetEventMaintained = "MAINTAINED"
	AssetEventDeleted    = "DELETED"
)

// AssetEvent is an append-only ledger row written in the same transaction
// as the checkout or asset transition it records.
type AssetEvent struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AssetID    uuid.UUID  `gorm:"type:uuid;not null;column:asset_id;index" json:"asset_id"`
	CheckoutID *uuid.UUID `gorm:"type:uuid;column:checkout_id;index" json:"checkout_id,omitempty"`
	ActorID    uuid.UUID  `gorm:"type:uuid;not null;column:actor_id" json:"actor_id"`
	Action     string     `gorm:"not null;column:action" json:"action"`

	FromCheckoutStatus CheckoutStatus `gorm:"column:from_checkout_status" json:"from_checkout_status,omitempty"`
	ToCheckoutStatus   CheckoutStatus `gorm:"column:to_checkout_status" json:"to_checkout_status,omitempty"`
	FromAssetStatus    AssetStatus    `gorm:"column:from_asset_status" json:"from_asset_status,omitempty"`
	ToAssetStatus      AssetStatus    `gorm:"column:to_asset_status" json:"to_asset_status,omitempty"`

	Details  string         `gorm:"column:details" json:"details,omitempty"`
	Metadata datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (AssetEvent) TableName() string { return "asset_event" }

func (e *AssetEvent) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

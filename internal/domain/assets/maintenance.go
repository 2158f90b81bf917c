package assets

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssetMaintenance struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AssetID         uuid.UUID  `gorm:"type:uuid;not null;column:asset_id;index" json:"asset_id"`
	MaintenanceType string     `gorm:"not null;column:maintenance_type" json:"maintenance_type"`
	Description     string     `gorm:"column:description" json:"description,omitempty"`
	Cost            *float64   `gorm:"column:cost" json:"cost,omitempty"`
	PerformedBy     string     `gorm:"column:performed_by" json:"performed_by,omitempty"`
	PerformedAt     time.Time  `gorm:"not null;column:performed_at;index" json:"performed_at"`
	NextDue         *time.Time `gorm:"column:next_due" json:"next_due,omitempty"`
	RecordedBy      uuid.UUID  `gorm:"type:uuid;not null;column:recorded_by" json:"recorded_by"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (AssetMaintenance) TableName() string { return "asset_maintenance" }

func (m *AssetMaintenance) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

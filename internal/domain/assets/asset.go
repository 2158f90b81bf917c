package assets

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssetType string

const (
	AssetTypeVehicle     AssetType = "VEHICLE"
	AssetTypeEquipment   AssetType = "EQUIPMENT"
	AssetTypeElectronics AssetType = "ELECTRONICS"
	AssetTypeFurniture   AssetType = "FURNITURE"
	AssetTypeBoat        AssetType = "BOAT"
	AssetTypeSoundSystem AssetType = "SOUND_SYSTEM"
	AssetTypeTent        AssetType = "TENT"
	AssetTypeBanner      AssetType = "BANNER"
	AssetTypeOther       AssetType = "OTHER"
)

type AssetStatus string

const (
	AssetStatusAvailable   AssetStatus = "AVAILABLE"
	AssetStatusAssigned    AssetStatus = "ASSIGNED"
	AssetStatusInUse       AssetStatus = "IN_USE"
	AssetStatusMaintenance AssetStatus = "MAINTENANCE"
	AssetStatusDamaged     AssetStatus = "DAMAGED"
	AssetStatusRetired     AssetStatus = "RETIRED"
	AssetStatusLost        AssetStatus = "LOST"
)

type AssetCondition string

const (
	ConditionExcellent AssetCondition = "EXCELLENT"
	ConditionGood      AssetCondition = "GOOD"
	ConditionFair      AssetCondition = "FAIR"
	ConditionPoor      AssetCondition = "POOR"
	ConditionDamaged   AssetCondition = "DAMAGED"
)

var (
	assetTypes      = []AssetType{AssetTypeVehicle, AssetTypeEquipment, AssetTypeElectronics, AssetTypeFurniture, AssetTypeBoat, AssetTypeSoundSystem, AssetTypeTent, AssetTypeBanner, AssetTypeOther}
	assetStatuses   = []AssetStatus{AssetStatusAvailable, AssetStatusAssigned, AssetStatusInUse, AssetStatusMaintenance, AssetStatusDamaged, AssetStatusRetired, AssetStatusLost}
	assetConditions = []AssetCondition{ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor, ConditionDamaged}
)

func (t AssetType) Valid() bool {
	for _, v := range assetTypes {
		if v == t {
			return true
		}
	}
	return false
}

func (s AssetStatus) Valid() bool {
	for _, v := range assetStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func (c AssetCondition) Valid() bool {
	for _, v := range assetConditions {
		if v == c {
			return true
		}
	}
	return false
}

type Asset struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Code        string         `gorm:"not null;uniqueIndex;column:code" json:"code"`
	Name        string         `gorm:"not null;column:name" json:"name"`
	Description string         `gorm:"column:description" json:"description,omitempty"`
	AssetType   AssetType      `gorm:"not null;column:asset_type;index" json:"asset_type"`
	Status      AssetStatus    `gorm:"not null;default:'AVAILABLE';column:status;index" json:"status"`
	Condition   AssetCondition `gorm:"not null;default:'GOOD';column:condition" json:"condition"`

	PurchaseDate *time.Time `gorm:"column:purchase_date" json:"purchase_date,omitempty"`
	PurchaseCost *float64   `gorm:"column:purchase_cost" json:"purchase_cost,omitempty"`
	CurrentValue *float64   `gorm:"column:current_value" json:"current_value,omitempty"`

	Location     string `gorm:"column:location" json:"location,omitempty"`
	Constituency string `gorm:"column:constituency;index" json:"constituency,omitempty"`

	SerialNumber string `gorm:"column:serial_number" json:"serial_number,omitempty"`
	Model        string `gorm:"column:model" json:"model,omitempty"`
	Manufacturer string `gorm:"column:manufacturer" json:"manufacturer,omitempty"`

	LastMaintenanceDate *time.Time `gorm:"column:last_maintenance_date" json:"last_maintenance_date,omitempty"`
	NextMaintenanceDate *time.Time `gorm:"column:next_maintenance_date" json:"next_maintenance_date,omitempty"`
	WarrantyExpiry      *time.Time `gorm:"column:warranty_expiry" json:"warranty_expiry,omitempty"`

	Notes     string `gorm:"column:notes" json:"notes,omitempty"`
	QRCodeKey string `gorm:"column:qr_code_key" json:"qr_code_key,omitempty"`
	PhotoKey  string `gorm:"column:photo_key" json:"photo_key,omitempty"`

	CreatedBy uuid.UUID `gorm:"type:uuid;not null;column:created_by;index" json:"created_by"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Asset) TableName() string { return "asset" }

func (a *Asset) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = AssetStatusAvailable
	}
	if a.Condition == "" {
		a.Condition = ConditionGood
	}
	return nil
}

func (a *Asset) IsAvailable() bool {
	return a != nil && a.Status == AssetStatusAvailable
}

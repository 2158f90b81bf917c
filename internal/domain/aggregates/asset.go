package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/nishad-backend/internal/domain/access"
	"github.com/yungbote/nishad-backend/internal/domain/assets"
)

var AssetAggregateContract = Contract{
	Name:             "assets.registry",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Asset codes are counted per year and retried on unique conflicts; deletion is refused while a checkout is open.",
}

type RegisterAssetInput struct {
	Actor access.Actor
	Asset assets.Asset
	At    time.Time
}

type RegisterAssetResult struct {
	Asset    *assets.Asset `json:"asset"`
	Attempts int           `json:"attempts"`
}

// AssetPatch carries the descriptive fields an edit may change. Nil leaves a
// field untouched; status only moves through checkout and maintenance.
type AssetPatch struct {
	Name           *string
	Description    *string
	AssetType      *assets.AssetType
	Condition      *assets.AssetCondition
	PurchaseDate   *time.Time
	PurchaseCost   *float64
	CurrentValue   *float64
	Location       *string
	Constituency   *string
	SerialNumber   *string
	Model          *string
	Manufacturer   *string
	WarrantyExpiry *time.Time
	Notes          *string
}

type UpdateAssetInput struct {
	Actor   access.Actor
	AssetID uuid.UUID
	Patch   AssetPatch
}

type UpdateAssetResult struct {
	Asset   *assets.Asset      `json:"asset"`
	Changed []string           `json:"changed"`
	Event   *assets.AssetEvent `json:"event,omitempty"`
}

type DeleteAssetInput struct {
	Actor   access.Actor
	AssetID uuid.UUID
}

type RecordMaintenanceInput struct {
	Actor           access.Actor
	AssetID         uuid.UUID
	MaintenanceType string
	Description     string
	Cost            *float64
	PerformedBy     string
	PerformedAt     time.Time
	NextDue         *time.Time
	// StartMaintenance moves an AVAILABLE asset into MAINTENANCE; Complete moves it back.
	StartMaintenance bool
	Complete         bool
	Condition        assets.AssetCondition
}

type RecordMaintenanceResult struct {
	Record      *assets.AssetMaintenance `json:"record"`
	AssetStatus assets.AssetStatus       `json:"asset_status"`
	Event       *assets.AssetEvent       `json:"event,omitempty"`
}

type AssetAggregate interface {
	Aggregate
	Register(ctx context.Context, in RegisterAssetInput) (RegisterAssetResult, error)
	Update(ctx context.Context, in UpdateAssetInput) (UpdateAssetResult, error)
	Delete(ctx context.Context, in DeleteAssetInput) error
	RecordMaintenance(ctx context.Context, in RecordMaintenanceInput) (RecordMaintenanceResult, error)
}

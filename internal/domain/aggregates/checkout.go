package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/nishad-backend/internal/domain/access"
	"github.com/yungbote/nishad-backend/internal/domain/assets"
)

var CheckoutAggregateContract = Contract{
	Name:             "assets.checkout",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Checkout and asset status change together with one asset_event row; the asset row is locked before the checkout row.",
}

type AssignAssetInput struct {
	Actor          access.Actor
	AssetID        uuid.UUID
	AssigneeID     uuid.UUID
	ExpectedReturn time.Time
	Purpose        string
	Destination    string
	Notes          string
	At             time.Time
}

type CheckoutActionInput struct {
	Actor      access.Actor
	CheckoutID uuid.UUID
	Latitude   *float64
	Longitude  *float64
	Notes      string
	At         time.Time
}

type RejectCheckoutInput struct {
	Actor      access.Actor
	CheckoutID uuid.UUID
	Reason     string
	At         time.Time
}

type ReturnAssetInput struct {
	Actor             access.Actor
	CheckoutID        uuid.UUID
	Condition         assets.AssetCondition
	Notes             string
	Damaged           bool
	DamageDescription string
	DamageCost        *float64
	Latitude          *float64
	Longitude         *float64
	At                time.Time
}

type MarkLostInput struct {
	Actor      access.Actor
	CheckoutID uuid.UUID
	Notes      string
	At         time.Time
}

// CheckoutTransitionResult is returned by every checkout write: the new
// checkout status, the cascaded asset status and the ledger row.
type CheckoutTransitionResult struct {
	CheckoutID     uuid.UUID             `json:"checkout_id"`
	AssetID        uuid.UUID             `json:"asset_id"`
	CheckoutStatus assets.CheckoutStatus `json:"checkout_status"`
	AssetStatus    assets.AssetStatus    `json:"asset_status"`
	AssetCondition assets.AssetCondition `json:"asset_condition"`
	Changed        bool                  `json:"changed"`
	Checkout       *assets.AssetCheckout `json:"checkout,omitempty"`
	Event          *assets.AssetEvent    `json:"event,omitempty"`
}

type CheckoutAggregate interface {
	Aggregate
	Assign(ctx context.Context, in AssignAssetInput) (CheckoutTransitionResult, error)
	Accept(ctx context.Context, in CheckoutActionInput) (CheckoutTransitionResult, error)
	Reject(ctx context.Context, in RejectCheckoutInput) (CheckoutTransitionResult, error)
	MarkInUse(ctx context.Context, in CheckoutActionInput) (CheckoutTransitionResult, error)
	Return(ctx context.Context, in ReturnAssetInput) (CheckoutTransitionResult, error)
	MarkLost(ctx context.Context, in MarkLostInput) (CheckoutTransitionResult, error)
}

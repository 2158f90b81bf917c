package aggregates

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/nishad-backend/internal/data/repos"
	"github.com/yungbote/nishad-backend/internal/domain/access"
	domainagg "github.com/yungbote/nishad-backend/internal/domain/aggregates"
	"github.com/yungbote/nishad-backend/internal/domain/assets"
	"github.com/yungbote/nishad-backend/internal/platform/dbctx"
)

type CheckoutAggregateDeps struct {
	Base BaseDeps

	Users     repos.UserRepo
	Assets    repos.AssetRepo
	Checkouts repos.CheckoutRepo
	Events    repos.AssetEventRepo
}

type checkoutAggregate struct {
	deps CheckoutAggregateDeps
}

func NewCheckoutAggregate(deps CheckoutAggregateDeps) domainagg.CheckoutAggregate {
	deps.Base = deps.Base.withDefaults()
	return &checkoutAggregate{deps: deps}
}

func (a *checkoutAggregate) Contract() domainagg.Contract {
	return domainagg.CheckoutAggregateContract
}

func (a *checkoutAggregate) configured() bool {
	return a.deps.Users != nil && a.deps.Assets != nil && a.deps.Checkouts != nil && a.deps.Events != nil
}

func (a *checkoutAggregate) Assign(ctx context.Context, in domainagg.AssignAssetInput) (domainagg.CheckoutTransitionResult, error) {
	const op = "Assets.Checkout.Assign"
	var out domainagg.CheckoutTransitionResult
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "checkout aggregate repos not configured", nil)
	}
	if !access.CanManageAssets(in.Actor) {
		return out, domainagg.Forbidden(op, string(access.CapManageAssets))
	}
	if in.AssetID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing asset_id", nil)
	}
	if in.AssigneeID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing assignee_id", nil)
	}
	purpose := strings.TrimSpace(in.Purpose)
	if purpose == "" {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "purpose is required", nil)
	}
	now := a.deps.Base.now(in.At)
	expected := in.ExpectedReturn.UTC()
	if !expected.After(now) {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "expected_return_date must be in the future", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		assignee, err := a.deps.Users.GetByID(dbc, in.AssigneeID)
		if err != nil {
			return err
		}
		if assignee == nil {
			return NotFoundError(fmt.Sprintf("assignee not found: %s", in.AssigneeID))
		}

		asset, err := a.deps.Assets.LockByID(dbc, in.AssetID)
		if err != nil {
			return err
		}
		if asset == nil {
			return NotFoundError(fmt.Sprintf("asset not found: %s", in.AssetID))
		}
		if !asset.IsAvailable() {
			return ConflictError(fmt.Sprintf("asset %s is %s, only AVAILABLE assets can be assigned", asset.Code, asset.Status))
		}
		open, err := a.deps.Checkouts.GetOpenByAssetID(dbc, asset.ID)
		if err != nil {
			return err
		}
		if open != nil {
			return ConflictError(fmt.Sprintf("asset %s already has an open checkout", asset.Code))
		}

		created, err := a.deps.Checkouts.Create(dbc, []*assets.AssetCheckout{{
			AssetID:             asset.ID,
			AssigneeID:          assignee.ID,
			AssignedBy:          in.Actor.UserID,
			Status:              assets.CheckoutPending,
			AssignmentDate:      now,
			ExpectedReturnDate:  expected,
			Purpose:             purpose,
			Destination:         strings.TrimSpace(in.Destination),
			ConditionAtCheckout: asset.Condition,
			AdminNotes:          strings.TrimSpace(in.Notes),
		}})
		if err != nil {
			return err
		}
		if len(created) != 1 {
			return fmt.Errorf("checkout create returned %d rows", len(created))
		}
		checkout := created[0]

		ok, err := a.deps.Base.CASGuard.UpdateByStatus(dbc, "asset", asset.ID, []string{string(assets.AssetStatusAvailable)}, map[string]any{
			"status": assets.AssetStatusAssigned,
		})
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(ok, "asset changed while assigning"); err != nil {
			return err
		}

		ev, err := a.appendEvent(dbc, checkoutEvent{
			checkout:  checkout,
			actorID:   in.Actor.UserID,
			action:    assets.AssetEventAssigned,
			toStatus:  assets.CheckoutPending,
			fromAsset: asset.Status,
			toAsset:   assets.AssetStatusAssigned,
			details:   purpose,
			at:        now,
			meta: map[string]any{
				"expected_return_date": expected.Format(time.RFC3339),
				"destination":          checkout.Destination,
			},
		})
		if err != nil {
			return err
		}
		out = domainagg.CheckoutTransitionResult{
			CheckoutID:     checkout.ID,
			AssetID:        asset.ID,
			CheckoutStatus: checkout.Status,
			AssetStatus:    assets.AssetStatusAssigned,
			AssetCondition: asset.Condition,
			Changed:        true,
			Checkout:       checkout,
			Event:          ev,
		}
		return nil
	})
	return out, err
}

func (a *checkoutAggregate) Accept(ctx context.Context, in domainagg.CheckoutActionInput) (domainagg.CheckoutTransitionResult, error) {
	const op = "Assets.Checkout.Accept"
	now := a.deps.Base.now(in.At)
	return a.transition(ctx, op, in.CheckoutID, func(dbc dbctx.Context, checkout *assets.AssetCheckout, asset *assets.Asset) (*transition, error) {
		if checkout.AssigneeID != in.Actor.UserID {
			return nil, domainagg.Forbidden(op, string(access.CapActOnOwnAssignment))
		}
		if err := RequireStatusAllowed("checkout", string(checkout.Status), string(assets.CheckoutPending)); err != nil {
			return nil, err
		}
		updates := map[string]any{
			"status":          assets.CheckoutAccepted,
			"acceptance_date": now,
			"checkout_date":   now,
		}
		if in.Latitude != nil && in.Longitude != nil {
			updates["checkout_latitude"] = *in.Latitude
			updates["checkout_longitude"] = *in.Longitude
		}
		if notes := strings.TrimSpace(in.Notes); notes != "" {
			updates["checkout_notes"] = notes
		}
		return &transition{
			action:      assets.AssetEventAccepted,
			allowed:     []assets.CheckoutStatus{assets.CheckoutPending},
			toStatus:    assets.CheckoutAccepted,
			updates:     updates,
			assetStatus: assets.AssetStatusInUse,
			details:     strings.TrimSpace(in.Notes),
			actorID:     in.Actor.UserID,
			at:          now,
			latLng:      coords(in.Latitude, in.Longitude),
		}, nil
	})
}

func (a *checkoutAggregate) Reject(ctx context.Context, in domainagg.RejectCheckoutInput) (domainagg.CheckoutTransitionResult, error) {
	const op = "Assets.Checkout.Reject"
	// The reason is optional; an empty one is stored as given.
	reason := strings.TrimSpace(in.Reason)
	now := a.deps.Base.now(in.At)
	return a.transition(ctx, op, in.CheckoutID, func(dbc dbctx.Context, checkout *assets.AssetCheckout, asset *assets.Asset) (*transition, error) {
		if checkout.AssigneeID != in.Actor.UserID {
			return nil, domainagg.Forbidden(op, string(access.CapActOnOwnAssignment))
		}
		if err := RequireStatusAllowed("checkout", string(checkout.Status), string(assets.CheckoutPending)); err != nil {
			return nil, err
		}
		return &transition{
			action:   assets.AssetEventRejected,
			allowed:  []assets.CheckoutStatus{assets.CheckoutPending},
			toStatus: assets.CheckoutRejected,
			updates: map[string]any{
				"status":           assets.CheckoutRejected,
				"rejection_date":   now,
				"rejection_reason": reason,
			},
			assetStatus: assets.AssetStatusAvailable,
			details:     reason,
			actorID:     in.Actor.UserID,
			at:          now,
		}, nil
	})
}

func (a *checkoutAggregate) MarkInUse(ctx context.Context, in domainagg.CheckoutActionInput) (domainagg.CheckoutTransitionResult, error) {
	const op = "Assets.Checkout.MarkInUse"
	now := a.deps.Base.now(in.At)
	return a.transition(ctx, op, in.CheckoutID, func(dbc dbctx.Context, checkout *assets.AssetCheckout, asset *assets.Asset) (*transition, error) {
		if !access.CanActOnAssignment(in.Actor, checkout.AssigneeID) {
			return nil, domainagg.Forbidden(op, string(access.CapActOnOwnAssignment))
		}
		if checkout.Status == assets.CheckoutInUse {
			return nil, nil
		}
		if err := RequireStatusAllowed("checkout", string(checkout.Status), string(assets.CheckoutAccepted)); err != nil {
			return nil, err
		}
		return &transition{
			action:      assets.AssetEventInUse,
			allowed:     []assets.CheckoutStatus{assets.CheckoutAccepted},
			toStatus:    assets.CheckoutInUse,
			updates:     map[string]any{"status": assets.CheckoutInUse},
			assetStatus: assets.AssetStatusInUse,
			details:     strings.TrimSpace(in.Notes),
			actorID:     in.Actor.UserID,
			at:          now,
		}, nil
	})
}

func (a *checkoutAggregate) Return(ctx context.Context, in domainagg.ReturnAssetInput) (domainagg.CheckoutTransitionResult, error) {
	const op = "Assets.Checkout.Return"
	if in.Condition != "" && !in.Condition.Valid() {
		return domainagg.CheckoutTransitionResult{}, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("unknown condition %q", in.Condition), nil)
	}
	if in.DamageCost != nil && *in.DamageCost < 0 {
		return domainagg.CheckoutTransitionResult{}, domainagg.NewError(domainagg.CodeValidation, op, "damage_cost must not be negative", nil)
	}
	now := a.deps.Base.now(in.At)
	return a.transition(ctx, op, in.CheckoutID, func(dbc dbctx.Context, checkout *assets.AssetCheckout, asset *assets.Asset) (*transition, error) {
		if !access.CanActOnAssignment(in.Actor, checkout.AssigneeID) {
			return nil, domainagg.Forbidden(op, string(access.CapActOnOwnAssignment))
		}
		if err := RequireStatusAllowed("checkout", string(checkout.Status), string(assets.CheckoutAccepted), string(assets.CheckoutInUse)); err != nil {
			return nil, err
		}
		condition := in.Condition
		if condition == "" {
			condition = checkout.ConditionAtCheckout
			if in.Damaged {
				condition = assets.ConditionDamaged
			}
		}
		if condition == "" {
			condition = asset.Condition
		}
		assetStatus := assets.AssetStatusAvailable
		if in.Damaged {
			assetStatus = assets.AssetStatusDamaged
		}
		updates := map[string]any{
			"status":              assets.CheckoutReturned,
			"actual_return_date":  now,
			"condition_at_return": condition,
			"is_returned":         true,
			"damage_reported":     in.Damaged,
		}
		if notes := strings.TrimSpace(in.Notes); notes != "" {
			updates["return_notes"] = notes
		}
		if in.Damaged {
			updates["damage_description"] = strings.TrimSpace(in.DamageDescription)
			if in.DamageCost != nil {
				updates["damage_cost"] = *in.DamageCost
			}
		}
		if in.Latitude != nil && in.Longitude != nil {
			updates["return_latitude"] = *in.Latitude
			updates["return_longitude"] = *in.Longitude
		}
		meta := map[string]any{"condition_at_return": condition, "damaged": in.Damaged}
		if in.DamageCost != nil && in.Damaged {
			meta["damage_cost"] = *in.DamageCost
		}
		return &transition{
			action:         assets.AssetEventReturned,
			allowed:        []assets.CheckoutStatus{assets.CheckoutAccepted, assets.CheckoutInUse},
			toStatus:       assets.CheckoutReturned,
			updates:        updates,
			assetStatus:    assetStatus,
			assetCondition: condition,
			details:        strings.TrimSpace(in.Notes),
			actorID:        in.Actor.UserID,
			at:             now,
			meta:           meta,
			latLng:         coords(in.Latitude, in.Longitude),
		}, nil
	})
}

func (a *checkoutAggregate) MarkLost(ctx context.Context, in domainagg.MarkLostInput) (domainagg.CheckoutTransitionResult, error) {
	const op = "Assets.Checkout.MarkLost"
	if !access.CanManageAssets(in.Actor) {
		return domainagg.CheckoutTransitionResult{}, domainagg.Forbidden(op, string(access.CapManageAssets))
	}
	now := a.deps.Base.now(in.At)
	return a.transition(ctx, op, in.CheckoutID, func(dbc dbctx.Context, checkout *assets.AssetCheckout, asset *assets.Asset) (*transition, error) {
		if err := RequireStatusAllowed("checkout", string(checkout.Status), string(assets.CheckoutAccepted), string(assets.CheckoutInUse)); err != nil {
			return nil, err
		}
		updates := map[string]any{"status": assets.CheckoutLost}
		if notes := strings.TrimSpace(in.Notes); notes != "" {
			updates["admin_notes"] = notes
		}
		return &transition{
			action:      assets.AssetEventLost,
			allowed:     []assets.CheckoutStatus{assets.CheckoutAccepted, assets.CheckoutInUse},
			toStatus:    assets.CheckoutLost,
			updates:     updates,
			assetStatus: assets.AssetStatusLost,
			details:     strings.TrimSpace(in.Notes),
			actorID:     in.Actor.UserID,
			at:          now,
		}, nil
	})
}

// transition is what a guard decides; nil means "already there, nothing to write".
type transition struct {
	action         string
	allowed        []assets.CheckoutStatus
	toStatus       assets.CheckoutStatus
	updates        map[string]any
	assetStatus    assets.AssetStatus
	assetCondition assets.AssetCondition
	details        string
	actorID        uuid.UUID
	at             time.Time
	meta           map[string]any
	latLng         []float64
}

type guardFunc func(dbc dbctx.Context, checkout *assets.AssetCheckout, asset *assets.Asset) (*transition, error)

func (a *checkoutAggregate) transition(ctx context.Context, op string, checkoutID uuid.UUID, guard guardFunc) (domainagg.CheckoutTransitionResult, error) {
	var out domainagg.CheckoutTransitionResult
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "checkout aggregate repos not configured", nil)
	}
	if checkoutID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing checkout_id", nil)
	}
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		checkout, asset, err := a.lockPair(dbc, checkoutID)
		if err != nil {
			return err
		}
		t, err := guard(dbc, checkout, asset)
		if err != nil {
			return err
		}
		if t == nil {
			out = domainagg.CheckoutTransitionResult{
				CheckoutID:     checkout.ID,
				AssetID:        asset.ID,
				CheckoutStatus: checkout.Status,
				AssetStatus:    asset.Status,
				AssetCondition: asset.Condition,
				Checkout:       checkout,
			}
			return nil
		}

		allowed := make([]string, 0, len(t.allowed))
		for _, s := range t.allowed {
			allowed = append(allowed, string(s))
		}
		ok, err := a.deps.Base.CASGuard.UpdateByStatus(dbc, "asset_checkout", checkout.ID, allowed, t.updates)
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(ok, "checkout changed while applying "+strings.ToLower(t.action)); err != nil {
			return err
		}

		assetUpdates := map[string]interface{}{"status": t.assetStatus}
		condition := asset.Condition
		if t.assetCondition != "" {
			assetUpdates["condition"] = t.assetCondition
			condition = t.assetCondition
		}
		if err := a.deps.Assets.UpdateFields(dbc, asset.ID, assetUpdates); err != nil {
			return err
		}

		fresh, err := a.deps.Checkouts.GetByID(dbc, checkout.ID)
		if err != nil {
			return err
		}
		if fresh == nil {
			return fmt.Errorf("checkout %s vanished after update", checkout.ID)
		}
		meta := t.meta
		if len(t.latLng) == 2 {
			if meta == nil {
				meta = map[string]any{}
			}
			meta["latitude"] = t.latLng[0]
			meta["longitude"] = t.latLng[1]
		}
		ev, err := a.appendEvent(dbc, checkoutEvent{
			checkout:   fresh,
			actorID:    t.actorID,
			action:     t.action,
			fromStatus: checkout.Status,
			toStatus:   t.toStatus,
			fromAsset:  asset.Status,
			toAsset:    t.assetStatus,
			details:    t.details,
			at:         t.at,
			meta:       meta,
		})
		if err != nil {
			return err
		}
		out = domainagg.CheckoutTransitionResult{
			CheckoutID:     fresh.ID,
			AssetID:        asset.ID,
			CheckoutStatus: fresh.Status,
			AssetStatus:    t.assetStatus,
			AssetCondition: condition,
			Changed:        true,
			Checkout:       fresh,
			Event:          ev,
		}
		return nil
	})
	return out, err
}

// lockPair locks the asset row before the checkout row so every writer
// touching the same asset acquires locks in one order.
func (a *checkoutAggregate) lockPair(dbc dbctx.Context, checkoutID uuid.UUID) (*assets.AssetCheckout, *assets.Asset, error) {
	peek, err := a.deps.Checkouts.GetByID(dbc, checkoutID)
	if err != nil {
		return nil, nil, err
	}
	if peek == nil {
		return nil, nil, NotFoundError(fmt.Sprintf("checkout not found: %s", checkoutID))
	}
	asset, err := a.deps.Assets.LockByID(dbc, peek.AssetID)
	if err != nil {
		return nil, nil, err
	}
	if asset == nil {
		return nil, nil, NotFoundError(fmt.Sprintf("asset not found: %s", peek.AssetID))
	}
	checkout, err := a.deps.Checkouts.LockByID(dbc, checkoutID)
	if err != nil {
		return nil, nil, err
	}
	if checkout == nil {
		return nil, nil, NotFoundError(fmt.Sprintf("checkout not found: %s", checkoutID))
	}
	return checkout, asset, nil
}

type checkoutEvent struct {
	checkout   *assets.AssetCheckout
	actorID    uuid.UUID
	action     string
	fromStatus assets.CheckoutStatus
	toStatus   assets.CheckoutStatus
	fromAsset  assets.AssetStatus
	toAsset    assets.AssetStatus
	details    string
	at         time.Time
	meta       map[string]any
}

func (a *checkoutAggregate) appendEvent(dbc dbctx.Context, e checkoutEvent) (*assets.AssetEvent, error) {
	checkoutID := e.checkout.ID
	row := &assets.AssetEvent{
		AssetID:            e.checkout.AssetID,
		CheckoutID:         &checkoutID,
		ActorID:            e.actorID,
		Action:             e.action,
		FromCheckoutStatus: e.fromStatus,
		ToCheckoutStatus:   e.toStatus,
		FromAssetStatus:    e.fromAsset,
		ToAssetStatus:      e.toAsset,
		Details:            e.details,
		Metadata:           jsonMeta(e.meta),
		CreatedAt:          e.at,
	}
	return a.deps.Events.Append(dbc, row)
}

func jsonMeta(m map[string]any) datatypes.JSON {
	if len(m) == 0 {
		return nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}

func coords(lat, lng *float64) []float64 {
	if lat == nil || lng == nil {
		return nil
	}
	return []float64{*lat, *lng}
}

package aggregates

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/nishad-backend/internal/codegen"
	"github.com/yungbote/nishad-backend/internal/data/repos"
	"github.com/yungbote/nishad-backend/internal/domain/access"
	domainagg "github.com/yungbote/nishad-backend/internal/domain/aggregates"
	"github.com/yungbote/nishad-backend/internal/domain/assets"
	"github.com/yungbote/nishad-backend/internal/platform/dbctx"
)

type AssetAggregateDeps struct {
	Base BaseDeps

	Assets      repos.AssetRepo
	Checkouts   repos.CheckoutRepo
	Maintenance repos.MaintenanceRepo
	Events      repos.AssetEventRepo
}

type assetAggregate struct {
	deps AssetAggregateDeps
}

func NewAssetAggregate(deps AssetAggregateDeps) domainagg.AssetAggregate {
	deps.Base = deps.Base.withDefaults()
	return &assetAggregate{deps: deps}
}

func (a *assetAggregate) Contract() domainagg.Contract {
	return domainagg.AssetAggregateContract
}

func (a *assetAggregate) configured() bool {
	return a.deps.Assets != nil && a.deps.Checkouts != nil && a.deps.Maintenance != nil && a.deps.Events != nil
}

func (a *assetAggregate) Register(ctx context.Context, in domainagg.RegisterAssetInput) (domainagg.RegisterAssetResult, error) {
	const op = "Assets.Registry.Register"
	var out domainagg.RegisterAssetResult
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "asset aggregate repos not configured", nil)
	}
	if !access.CanManageAssets(in.Actor) {
		return out, domainagg.Forbidden(op, string(access.CapManageAssets))
	}
	tmpl := in.Asset
	tmpl.Name = strings.TrimSpace(tmpl.Name)
	if tmpl.Name == "" {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "name is required", nil)
	}
	if !tmpl.AssetType.Valid() {
		return out, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("unknown asset_type %q", tmpl.AssetType), nil)
	}
	if tmpl.Condition == "" {
		tmpl.Condition = assets.ConditionGood
	}
	if !tmpl.Condition.Valid() {
		return out, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("unknown condition %q", tmpl.Condition), nil)
	}
	if tmpl.PurchaseCost != nil && *tmpl.PurchaseCost < 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "purchase_cost must not be negative", nil)
	}
	now := a.deps.Base.now(in.At)

	attempts, err := executeWithCodeRetry(ctx, a.deps.Base, op, func(dbc dbctx.Context, attempt int) error {
		code, err := codegen.AssetCode.Next(now, attempt, func(from, to time.Time) (int64, error) {
			return a.deps.Assets.CountCreatedBetween(dbc, from, to)
		})
		if err != nil {
			return err
		}
		row := tmpl
		row.ID = uuid.New()
		row.Code = code
		row.QRCodeKey = codegen.AssetArtifactKey(code)
		row.Status = assets.AssetStatusAvailable
		row.CreatedBy = in.Actor.UserID
		row.CreatedAt = now
		row.UpdatedAt = now
		created, err := a.deps.Assets.Create(dbc, []*assets.Asset{&row})
		if err != nil {
			return err
		}
		if len(created) != 1 {
			return fmt.Errorf("asset create returned %d rows", len(created))
		}
		if _, err := a.deps.Events.Append(dbc, &assets.AssetEvent{
			AssetID:       row.ID,
			ActorID:       in.Actor.UserID,
			Action:        assets.AssetEventRegistered,
			ToAssetStatus: row.Status,
			Details:       code,
			CreatedAt:     now,
		}); err != nil {
			return err
		}
		out.Asset = created[0]
		return nil
	})
	out.Attempts = attempts
	if err != nil {
		out.Asset = nil
	}
	return out, err
}

func (a *assetAggregate) Update(ctx context.Context, in domainagg.UpdateAssetInput) (domainagg.UpdateAssetResult, error) {
	const op = "Assets.Registry.Update"
	var out domainagg.UpdateAssetResult
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "asset aggregate repos not configured", nil)
	}
	if !access.CanManageAssets(in.Actor) {
		return out, domainagg.Forbidden(op, string(access.CapManageAssets))
	}
	if in.AssetID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing asset_id", nil)
	}
	p := in.Patch
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "name must not be blank", nil)
	}
	if p.AssetType != nil && !p.AssetType.Valid() {
		return out, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("unknown asset_type %q", *p.AssetType), nil)
	}
	if p.Condition != nil && !p.Condition.Valid() {
		return out, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("unknown condition %q", *p.Condition), nil)
	}
	if (p.PurchaseCost != nil && *p.PurchaseCost < 0) || (p.CurrentValue != nil && *p.CurrentValue < 0) {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "costs must not be negative", nil)
	}
	now := a.deps.Base.now(time.Time{})

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		asset, err := a.deps.Assets.LockByID(dbc, in.AssetID)
		if err != nil {
			return err
		}
		if asset == nil {
			return NotFoundError(fmt.Sprintf("asset not found: %s", in.AssetID))
		}
		updates := assetPatchUpdates(asset, p)
		if len(updates) == 0 {
			out = domainagg.UpdateAssetResult{Asset: asset, Changed: []string{}}
			return nil
		}
		changed := slices.Sorted(maps.Keys(updates))
		updates["updated_at"] = now
		if err := a.deps.Assets.UpdateFields(dbc, asset.ID, updates); err != nil {
			return err
		}
		ev, err := a.deps.Events.Append(dbc, &assets.AssetEvent{
			AssetID:         asset.ID,
			ActorID:         in.Actor.UserID,
			Action:          assets.AssetEventUpdated,
			FromAssetStatus: asset.Status,
			ToAssetStatus:   asset.Status,
			Details:         strings.Join(changed, ","),
			Metadata:        jsonMeta(map[string]any{"fields": changed}),
			CreatedAt:       now,
		})
		if err != nil {
			return err
		}
		fresh, err := a.deps.Assets.GetByID(dbc, asset.ID)
		if err != nil {
			return err
		}
		out = domainagg.UpdateAssetResult{Asset: fresh, Changed: changed, Event: ev}
		return nil
	})
	return out, err
}

// assetPatchUpdates returns only the columns whose value actually differs.
func assetPatchUpdates(cur *assets.Asset, p domainagg.AssetPatch) map[string]interface{} {
	updates := map[string]interface{}{}
	text := func(col string, v *string, have string) {
		if v == nil {
			return
		}
		if t := strings.TrimSpace(*v); t != have {
			updates[col] = t
		}
	}
	amount := func(col string, v, have *float64) {
		if v != nil && (have == nil || *have != *v) {
			updates[col] = *v
		}
	}
	date := func(col string, v, have *time.Time) {
		if v != nil && (have == nil || !have.Equal(*v)) {
			updates[col] = v.UTC()
		}
	}

	text("name", p.Name, cur.Name)
	text("description", p.Description, cur.Description)
	text("location", p.Location, cur.Location)
	text("constituency", p.Constituency, cur.Constituency)
	text("serial_number", p.SerialNumber, cur.SerialNumber)
	text("model", p.Model, cur.Model)
	text("manufacturer", p.Manufacturer, cur.Manufacturer)
	text("notes", p.Notes, cur.Notes)
	if p.AssetType != nil && *p.AssetType != cur.AssetType {
		updates["asset_type"] = *p.AssetType
	}
	if p.Condition != nil && *p.Condition != cur.Condition {
		updates["condition"] = *p.Condition
	}
	amount("purchase_cost", p.PurchaseCost, cur.PurchaseCost)
	amount("current_value", p.CurrentValue, cur.CurrentValue)
	date("purchase_date", p.PurchaseDate, cur.PurchaseDate)
	date("warranty_expiry", p.WarrantyExpiry, cur.WarrantyExpiry)
	return updates
}

func (a *assetAggregate) Delete(ctx context.Context, in domainagg.DeleteAssetInput) error {
	const op = "Assets.Registry.Delete"
	if !a.configured() {
		return domainagg.NewError(domainagg.CodeInternal, op, "asset aggregate repos not configured", nil)
	}
	if !access.CanManageAssets(in.Actor) {
		return domainagg.Forbidden(op, string(access.CapManageAssets))
	}
	if in.AssetID == uuid.Nil {
		return domainagg.NewError(domainagg.CodeValidation, op, "missing asset_id", nil)
	}
	return executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		asset, err := a.deps.Assets.LockByID(dbc, in.AssetID)
		if err != nil {
			return err
		}
		if asset == nil {
			return NotFoundError(fmt.Sprintf("asset not found: %s", in.AssetID))
		}
		open, err := a.deps.Checkouts.CountOpenByAssetID(dbc, asset.ID)
		if err != nil {
			return err
		}
		if open > 0 || asset.Status == assets.AssetStatusAssigned || asset.Status == assets.AssetStatusInUse {
			return ConflictError(fmt.Sprintf("asset %s has an open checkout and cannot be deleted", asset.Code))
		}
		if _, err := a.deps.Events.Append(dbc, &assets.AssetEvent{
			AssetID:         asset.ID,
			ActorID:         in.Actor.UserID,
			Action:          assets.AssetEventDeleted,
			FromAssetStatus: asset.Status,
			ToAssetStatus:   asset.Status,
			Details:         asset.Code,
		}); err != nil {
			return err
		}
		return a.deps.Assets.SoftDelete(dbc, asset.ID)
	})
}

func (a *assetAggregate) RecordMaintenance(ctx context.Context, in domainagg.RecordMaintenanceInput) (domainagg.RecordMaintenanceResult, error) {
	const op = "Assets.Registry.RecordMaintenance"
	var out domainagg.RecordMaintenanceResult
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "asset aggregate repos not configured", nil)
	}
	if !access.CanManageAssets(in.Actor) {
		return out, domainagg.Forbidden(op, string(access.CapManageAssets))
	}
	if in.AssetID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing asset_id", nil)
	}
	mtype := strings.TrimSpace(in.MaintenanceType)
	if mtype == "" {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "maintenance_type is required", nil)
	}
	if in.StartMaintenance && in.Complete {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "start and complete are mutually exclusive", nil)
	}
	if in.Condition != "" && !in.Condition.Valid() {
		return out, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("unknown condition %q", in.Condition), nil)
	}
	if in.Cost != nil && *in.Cost < 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "cost must not be negative", nil)
	}
	performedAt := a.deps.Base.now(in.PerformedAt)

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		asset, err := a.deps.Assets.LockByID(dbc, in.AssetID)
		if err != nil {
			return err
		}
		if asset == nil {
			return NotFoundError(fmt.Sprintf("asset not found: %s", in.AssetID))
		}
		open, err := a.deps.Checkouts.CountOpenByAssetID(dbc, asset.ID)
		if err != nil {
			return err
		}
		if open > 0 {
			return ConflictError(fmt.Sprintf("asset %s has an open checkout; close it before recording maintenance", asset.Code))
		}
		next := asset.Status
		switch {
		case in.StartMaintenance:
			if err := RequireStatusAllowed("asset", string(asset.Status), string(assets.AssetStatusAvailable), string(assets.AssetStatusDamaged)); err != nil {
				return err
			}
			next = assets.AssetStatusMaintenance
		case in.Complete:
			if err := RequireStatusAllowed("asset", string(asset.Status), string(assets.AssetStatusMaintenance)); err != nil {
				return err
			}
			next = assets.AssetStatusAvailable
		}

		rec, err := a.deps.Maintenance.Create(dbc, &assets.AssetMaintenance{
			AssetID:         asset.ID,
			MaintenanceType: mtype,
			Description:     strings.TrimSpace(in.Description),
			Cost:            in.Cost,
			PerformedBy:     strings.TrimSpace(in.PerformedBy),
			PerformedAt:     performedAt,
			NextDue:         in.NextDue,
			RecordedBy:      in.Actor.UserID,
		})
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"status":                next,
			"last_maintenance_date": performedAt,
		}
		if in.NextDue != nil {
			updates["next_maintenance_date"] = in.NextDue.UTC()
		}
		if in.Condition != "" {
			updates["condition"] = in.Condition
		}
		if err := a.deps.Assets.UpdateFields(dbc, asset.ID, updates); err != nil {
			return err
		}
		ev, err := a.deps.Events.Append(dbc, &assets.AssetEvent{
			AssetID:         asset.ID,
			ActorID:         in.Actor.UserID,
			Action:          assets.AssetEventMaintained,
			FromAssetStatus: asset.Status,
			ToAssetStatus:   next,
			Details:         mtype,
			Metadata:        jsonMeta(map[string]any{"maintenance_id": rec.ID.String()}),
			CreatedAt:       performedAt,
		})
		if err != nil {
			return err
		}
		out = domainagg.RecordMaintenanceResult{Record: rec, AssetStatus: next, Event: ev}
		return nil
	})
	return out, err
}

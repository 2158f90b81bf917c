package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/nishad-backend/internal/codegen"
	"github.com/yungbote/nishad-backend/internal/data/repos"
	types "github.com/yungbote/nishad-backend/internal/domain"
	"github.com/yungbote/nishad-backend/internal/domain/access"
	domainagg "github.com/yungbote/nishad-backend/internal/domain/aggregates"
	"github.com/yungbote/nishad-backend/internal/domain/assets"
	"github.com/yungbote/nishad-backend/internal/platform/dbctx"
	"github.com/yungbote/nishad-backend/internal/platform/logger"
	"github.com/yungbote/nishad-backend/internal/platform/qrcode"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
	historyLimit    = 200
)

type AssetHistory struct {
	Asset     *types.Asset              `json:"asset"`
	Events    []*types.AssetEvent       `json:"events"`
	Checkouts []*CheckoutView           `json:"checkouts"`
	Upkeep    []*types.AssetMaintenance `json:"maintenance"`
}

// AssetDashboard is the asset landing view. Fleet figures are filled for
// asset managers only; Mine always describes the caller's own checkouts.
type AssetDashboard struct {
	Fleet *FleetSummary       `json:"fleet,omitempty"`
	Mine  MyAssignmentSummary `json:"mine"`
}

type FleetSummary struct {
	Total              int64                       `json:"total"`
	ByStatus           map[types.AssetStatus]int64 `json:"by_status"`
	PendingAssignments int64                       `json:"pending_assignments"`
	OverdueAssignments int64                       `json:"overdue_assignments"`
}

type MyAssignmentSummary struct {
	Pending  int64 `json:"pending"`
	Active   int64 `json:"active"`
	Returned int64 `json:"returned"`
}

type AssetService interface {
	Register(ctx context.Context, in types.Asset) (*types.Asset, error)
	Update(ctx context.Context, id uuid.UUID, patch domainagg.AssetPatch) (domainagg.UpdateAssetResult, error)
	Dashboard(ctx context.Context) (*AssetDashboard, error)
	List(ctx context.Context, f repos.AssetFilter) ([]*types.Asset, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Asset, error)
	Delete(ctx context.Context, id uuid.UUID) error
	History(ctx context.Context, id uuid.UUID) (*AssetHistory, error)
	QRCode(ctx context.Context, id uuid.UUID) ([]byte, error)
	RecordMaintenance(ctx context.Context, in domainagg.RecordMaintenanceInput) (domainagg.RecordMaintenanceResult, error)
	ListMaintenance(ctx context.Context, id uuid.UUID) ([]*types.AssetMaintenance, error)
}

type assetService struct {
	log         *logger.Logger
	agg         domainagg.AssetAggregate
	assets      repos.AssetRepo
	checkouts   repos.CheckoutRepo
	events      repos.AssetEventRepo
	maintenance repos.MaintenanceRepo
	artifacts   ArtifactService
	now         func() time.Time
}

func NewAssetService(
	log *logger.Logger,
	agg domainagg.AssetAggregate,
	set repos.Set,
	artifacts ArtifactService,
) AssetService {
	return &assetService{
		log:         log.With("service", "AssetService"),
		agg:         agg,
		assets:      set.Assets,
		checkouts:   set.Checkouts,
		events:      set.AssetEvents,
		maintenance: set.Maintenance,
		artifacts:   artifacts,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *assetService) Register(ctx context.Context, in types.Asset) (*types.Asset, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.agg.Register(ctx, domainagg.RegisterAssetInput{Actor: actor, Asset: in, At: s.now()})
	if err != nil {
		return nil, err
	}
	created := res.Asset
	s.log.Info("asset registered", "asset_id", created.ID, "code", created.Code, "attempts", res.Attempts)
	s.publishQR(ctx, created)
	return created, nil
}

// publishQR runs after commit and only uploads blobs; qr_code_key was set
// with the row. The asset stays valid without its blobs.
func (s *assetService) publishQR(ctx context.Context, a *types.Asset) {
	if s.artifacts == nil || a == nil {
		return
	}
	if _, err := s.artifacts.Publish(ctx, Artifact{Key: a.QRCodeKey, Card: assetCard(a)}); err != nil {
		s.log.Warn("asset QR publish failed", "asset_id", a.ID, "error", err)
	}
}

func (s *assetService) Update(ctx context.Context, id uuid.UUID, patch domainagg.AssetPatch) (domainagg.UpdateAssetResult, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return domainagg.UpdateAssetResult{}, err
	}
	res, err := s.agg.Update(ctx, domainagg.UpdateAssetInput{Actor: actor, AssetID: id, Patch: patch})
	if err != nil {
		return res, err
	}
	if len(res.Changed) > 0 {
		s.log.Info("asset updated", "asset_id", id, "fields", res.Changed)
		// The card and payload print name and location.
		s.publishQR(ctx, res.Asset)
	}
	return res, nil
}

func (s *assetService) Dashboard(ctx context.Context) (*AssetDashboard, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	out := &AssetDashboard{}

	mine, err := s.checkouts.CountByStatus(dbc, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to count assignments: %w", err)
	}
	out.Mine = MyAssignmentSummary{
		Pending:  mine[assets.CheckoutPending],
		Active:   mine[assets.CheckoutAccepted] + mine[assets.CheckoutInUse],
		Returned: mine[assets.CheckoutReturned],
	}
	if !access.CanManageAssets(actor) {
		return out, nil
	}

	byStatus, err := s.assets.CountByStatus(dbc)
	if err != nil {
		return nil, fmt.Errorf("failed to count assets: %w", err)
	}
	all, err := s.checkouts.CountByStatus(dbc, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count assignments: %w", err)
	}
	overdue, err := s.checkouts.CountOverdue(dbc, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to count overdue assignments: %w", err)
	}
	fleet := &FleetSummary{ByStatus: byStatus, PendingAssignments: all[assets.CheckoutPending], OverdueAssignments: overdue}
	for _, n := range byStatus {
		fleet.Total += n
	}
	out.Fleet = fleet
	return out, nil
}

func (s *assetService) List(ctx context.Context, f repos.AssetFilter) ([]*types.Asset, int64, error) {
	const op = "Assets.List"
	if _, err := actorFromContext(ctx); err != nil {
		return nil, 0, err
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, invalid(op, "unknown status %q", f.Status)
	}
	if f.AssetType != "" && !f.AssetType.Valid() {
		return nil, 0, invalid(op, "unknown asset_type %q", f.AssetType)
	}
	f.Search = strings.TrimSpace(f.Search)
	f.Limit, f.Offset = clampPage(f.Limit, f.Offset)
	return s.assets.List(dbctx.Context{Ctx: ctx}, f)
}

func (s *assetService) Get(ctx context.Context, id uuid.UUID) (*types.Asset, error) {
	if _, err := actorFromContext(ctx); err != nil {
		return nil, err
	}
	return s.load(ctx, "Assets.Get", id)
}

func (s *assetService) load(ctx context.Context, op string, id uuid.UUID) (*types.Asset, error) {
	a, err := s.assets.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load asset: %w", err)
	}
	if a == nil {
		return nil, notFound(op, "asset %s not found", id)
	}
	return a, nil
}

func (s *assetService) Delete(ctx context.Context, id uuid.UUID) error {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return err
	}
	if err := s.agg.Delete(ctx, domainagg.DeleteAssetInput{Actor: actor, AssetID: id}); err != nil {
		return err
	}
	s.log.Info("asset deleted", "asset_id", id, "by", actor.UserID)
	return nil
}

// History is visible to administrators and to anyone who has held the asset.
func (s *assetService) History(ctx context.Context, id uuid.UUID) (*AssetHistory, error) {
	const op = "Assets.History"
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	a, err := s.load(ctx, op, id)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	holders, err := s.checkouts.ListAssigneeIDs(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignees: %w", err)
	}
	if !access.CanViewAssetHistory(actor, holders) {
		return nil, domainagg.Forbidden(op, string(access.CapViewAssetHistory))
	}
	events, err := s.events.ListByAsset(dbc, id, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load asset events: %w", err)
	}
	checkouts, err := s.checkouts.ListByAsset(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load checkouts: %w", err)
	}
	upkeep, err := s.maintenance.ListByAsset(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load maintenance: %w", err)
	}
	return &AssetHistory{
		Asset:     a,
		Events:    events,
		Checkouts: checkoutViews(checkouts, s.now()),
		Upkeep:    upkeep,
	}, nil
}

func (s *assetService) QRCode(ctx context.Context, id uuid.UUID) ([]byte, error) {
	if _, err := actorFromContext(ctx); err != nil {
		return nil, err
	}
	a, err := s.load(ctx, "Assets.QRCode", id)
	if err != nil {
		return nil, err
	}
	return s.artifacts.QRCode(codegen.AssetPayload(a.Name, a.Code, a.Location))
}

func (s *assetService) RecordMaintenance(ctx context.Context, in domainagg.RecordMaintenanceInput) (domainagg.RecordMaintenanceResult, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return domainagg.RecordMaintenanceResult{}, err
	}
	in.Actor = actor
	if in.PerformedAt.IsZero() {
		in.PerformedAt = s.now()
	}
	res, err := s.agg.RecordMaintenance(ctx, in)
	if err != nil {
		return res, err
	}
	s.log.Info("maintenance recorded", "asset_id", in.AssetID, "asset_status", res.AssetStatus)
	return res, nil
}

func (s *assetService) ListMaintenance(ctx context.Context, id uuid.UUID) ([]*types.AssetMaintenance, error) {
	const op = "Assets.ListMaintenance"
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !access.CanManageAssets(actor) {
		return nil, domainagg.Forbidden(op, string(access.CapManageAssets))
	}
	if _, err := s.load(ctx, op, id); err != nil {
		return nil, err
	}
	return s.maintenance.ListByAsset(dbctx.Context{Ctx: ctx}, id)
}

func assetCard(a *types.Asset) qrcode.Card {
	return qrcode.Card{
		Title:    a.Name,
		Subtitle: a.Code,
		Payload:  codegen.AssetPayload(a.Name, a.Code, a.Location),
		Lines: []qrcode.CardLine{
			{Label: "Type", Value: string(a.AssetType)},
			{Label: "Location", Value: a.Location},
			{Label: "Constituency", Value: a.Constituency},
			{Label: "Serial", Value: a.SerialNumber},
		},
	}
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

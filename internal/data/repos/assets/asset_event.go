package assets

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/nishad-backend/internal/domain"
	"github.com/yungbote/nishad-backend/internal/platform/dbctx"
	"github.com/yungbote/nishad-backend/internal/platform/logger"
)

// AssetEventRepo is append-only: there is no update or delete.
type AssetEventRepo interface {
	Append(dbc dbctx.Context, row *types.AssetEvent) (*types.AssetEvent, error)
	ListByAsset(dbc dbctx.Context, assetID uuid.UUID, limit int) ([]*types.AssetEvent, error)
	ListByCheckout(dbc dbctx.Context, checkoutID uuid.UUID) ([]*types.AssetEvent, error)
}

type assetEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssetEventRepo(db *gorm.DB, baseLog *logger.Logger) AssetEventRepo {
	return &assetEventRepo{db: db, log: baseLog.With("repo", "AssetEventRepo")}
}

func (r *assetEventRepo) Append(dbc dbctx.Context, row *types.AssetEvent) (*types.AssetEvent, error) {
	if row == nil {
		return nil, nil
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if err := dbc.DB(r.db).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *assetEventRepo) ListByAsset(dbc dbctx.Context, assetID uuid.UUID, limit int) ([]*types.AssetEvent, error) {
	var out []*types.AssetEvent
	if assetID == uuid.Nil {
		return out, nil
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if err := dbc.DB(r.db).Where("asset_id = ?", assetID).Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assetEventRepo) ListByCheckout(dbc dbctx.Context, checkoutID uuid.UUID) ([]*types.AssetEvent, error) {
	var out []*types.AssetEvent
	if checkoutID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("checkout_id = ?", checkoutID).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

package assets

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/nishad-backend/internal/domain"
	"github.com/yungbote/nishad-backend/internal/platform/dbctx"
	"github.com/yungbote/nishad-backend/internal/platform/logger"
)

type MaintenanceRepo interface {
	Create(dbc dbctx.Context, row *types.AssetMaintenance) (*types.AssetMaintenance, error)
	ListByAsset(dbc dbctx.Context, assetID uuid.UUID) ([]*types.AssetMaintenance, error)
}

type maintenanceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMaintenanceRepo(db *gorm.DB, baseLog *logger.Logger) MaintenanceRepo {
	return &maintenanceRepo{db: db, log: baseLog.With("repo", "MaintenanceRepo")}
}

func (r *maintenanceRepo) Create(dbc dbctx.Context, row *types.AssetMaintenance) (*types.AssetMaintenance, error) {
	if row == nil {
		return nil, nil
	}
	if err := dbc.DB(r.db).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *maintenanceRepo) ListByAsset(dbc dbctx.Context, assetID uuid.UUID) ([]*types.AssetMaintenance, error) {
	var out []*types.AssetMaintenance
	if assetID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("asset_id = ?", assetID).Order("performed_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

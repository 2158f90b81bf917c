package assets

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/nishad-backend/internal/domain"
	domainassets "github.com/yungbote/nishad-backend/internal/domain/assets"
	"github.com/yungbote/nishad-backend/internal/platform/dbctx"
	"github.com/yungbote/nishad-backend/internal/platform/logger"
)

type CheckoutRepo interface {
	Create(dbc dbctx.Context, rows []*types.AssetCheckout) ([]*types.AssetCheckout, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.AssetCheckout, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.AssetCheckout, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error

	GetOpenByAssetID(dbc dbctx.Context, assetID uuid.UUID) (*types.AssetCheckout, error)
	CountOpenByAssetID(dbc dbctx.Context, assetID uuid.UUID) (int64, error)
	ListByAsset(dbc dbctx.Context, assetID uuid.UUID) ([]*types.AssetCheckout, error)
	ListByAssignee(dbc dbctx.Context, assigneeID uuid.UUID, openOnly bool) ([]*types.AssetCheckout, error)
	ListOverdue(dbc dbctx.Context, now time.Time) ([]*types.AssetCheckout, error)
	ListAssigneeIDs(dbc dbctx.Context, assetID uuid.UUID) ([]uuid.UUID, error)
	// CountByStatus groups checkouts by status; a zero assigneeID counts everyone's.
	CountByStatus(dbc dbctx.Context, assigneeID uuid.UUID) (map[types.CheckoutStatus]int64, error)
	CountOverdue(dbc dbctx.Context, now time.Time) (int64, error)
}

type checkoutRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCheckoutRepo(db *gorm.DB, baseLog *logger.Logger) CheckoutRepo {
	return &checkoutRepo{db: db, log: baseLog.With("repo", "CheckoutRepo")}
}

func (r *checkoutRepo) Create(dbc dbctx.Context, rows []*types.AssetCheckout) ([]*types.AssetCheckout, error) {
	if len(rows) == 0 {
		return []*types.AssetCheckout{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *checkoutRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.AssetCheckout, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.AssetCheckout
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *checkoutRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.AssetCheckout, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.AssetCheckout
	err := dbc.DB(r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *checkoutRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return dbc.DB(r.db).Model(&types.AssetCheckout{}).Where("id = ?", id).Updates(updates).Error
}

func (r *checkoutRepo) GetOpenByAssetID(dbc dbctx.Context, assetID uuid.UUID) (*types.AssetCheckout, error) {
	if assetID == uuid.Nil {
		return nil, nil
	}
	var row types.AssetCheckout
	err := dbc.DB(r.db).
		Where("asset_id = ? AND status IN ?", assetID, domainassets.OpenCheckoutStatusStrings()).
		Order("assignment_date DESC").
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *checkoutRepo) CountOpenByAssetID(dbc dbctx.Context, assetID uuid.UUID) (int64, error) {
	var count int64
	err := dbc.DB(r.db).
		Model(&types.AssetCheckout{}).
		Where("asset_id = ? AND status IN ?", assetID, domainassets.OpenCheckoutStatusStrings()).
		Count(&count).Error
	return count, err
}

func (r *checkoutRepo) ListByAsset(dbc dbctx.Context, assetID uuid.UUID) ([]*types.AssetCheckout, error) {
	var out []*types.AssetCheckout
	if assetID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("asset_id = ?", assetID).Order("assignment_date DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *checkoutRepo) ListByAssignee(dbc dbctx.Context, assigneeID uuid.UUID, openOnly bool) ([]*types.AssetCheckout, error) {
	var out []*types.AssetCheckout
	if assigneeID == uuid.Nil {
		return out, nil
	}
	q := dbc.DB(r.db).Where("assignee_id = ?", assigneeID)
	if openOnly {
		q = q.Where("status IN ?", domainassets.OpenCheckoutStatusStrings())
	}
	if err := q.Order("assignment_date DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *checkoutRepo) overdue(dbc dbctx.Context, now time.Time) *gorm.DB {
	return dbc.DB(r.db).
		Model(&types.AssetCheckout{}).
		Where("status IN ? AND is_returned = ? AND expected_return_date < ?",
			[]string{string(domainassets.CheckoutAccepted), string(domainassets.CheckoutInUse)}, false, now.UTC())
}

func (r *checkoutRepo) ListOverdue(dbc dbctx.Context, now time.Time) ([]*types.AssetCheckout, error) {
	var out []*types.AssetCheckout
	if err := r.overdue(dbc, now).Order("expected_return_date ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *checkoutRepo) CountOverdue(dbc dbctx.Context, now time.Time) (int64, error) {
	var count int64
	err := r.overdue(dbc, now).Count(&count).Error
	return count, err
}

func (r *checkoutRepo) CountByStatus(dbc dbctx.Context, assigneeID uuid.UUID) (map[types.CheckoutStatus]int64, error) {
	q := dbc.DB(r.db).Model(&types.AssetCheckout{})
	if assigneeID != uuid.Nil {
		q = q.Where("assignee_id = ?", assigneeID)
	}
	var rows []statusCount
	if err := q.Select("status, COUNT(*) AS total").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[types.CheckoutStatus]int64, len(rows))
	for _, row := range rows {
		out[types.CheckoutStatus(row.Status)] = row.Total
	}
	return out, nil
}

func (r *checkoutRepo) ListAssigneeIDs(dbc dbctx.Context, assetID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if assetID == uuid.Nil {
		return ids, nil
	}
	err := dbc.DB(r.db).
		Model(&types.AssetCheckout{}).
		Where("asset_id = ?", assetID).
		Distinct("assignee_id").
		Pluck("assignee_id", &ids).Error
	return ids, err
}

package assets

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/nishad-backend/internal/domain"
	"github.com/yungbote/nishad-backend/internal/platform/dbctx"
	"github.com/yungbote/nishad-backend/internal/platform/logger"
)

type AssetFilter struct {
	Status       types.AssetStatus
	AssetType    types.AssetType
	Constituency string
	Search       string
	Limit        int
	Offset       int
}

type AssetRepo interface {
	Create(dbc dbctx.Context, rows []*types.Asset) ([]*types.Asset, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Asset, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Asset, error)
	GetByCode(dbc dbctx.Context, code string) (*types.Asset, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Asset, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	List(dbc dbctx.Context, f AssetFilter) ([]*types.Asset, int64, error)
	// CountCreatedBetween includes soft-deleted rows; codes stay reserved after deletion.
	CountCreatedBetween(dbc dbctx.Context, from, to time.Time) (int64, error)
	CountByStatus(dbc dbctx.Context) (map[types.AssetStatus]int64, error)
	SoftDelete(dbc dbctx.Context, id uuid.UUID) error
}

type assetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssetRepo(db *gorm.DB, baseLog *logger.Logger) AssetRepo {
	return &assetRepo{db: db, log: baseLog.With("repo", "AssetRepo")}
}

func (r *assetRepo) Create(dbc dbctx.Context, rows []*types.Asset) ([]*types.Asset, error) {
	if len(rows) == 0 {
		return []*types.Asset{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *assetRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Asset, error) {
	var out []*types.Asset
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assetRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Asset, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *assetRepo) GetByCode(dbc dbctx.Context, code string) (*types.Asset, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, nil
	}
	var row types.Asset
	if err := dbc.DB(r.db).Where("code = ?", code).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *assetRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Asset, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Asset
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

func (r *assetRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return dbc.DB(r.db).Model(&types.Asset{}).Where("id = ?", id).Updates(updates).Error
}

func (r *assetRepo) List(dbc dbctx.Context, f AssetFilter) ([]*types.Asset, int64, error) {
	q := dbc.DB(r.db).Model(&types.Asset{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.AssetType != "" {
		q = q.Where("asset_type = ?", f.AssetType)
	}
	if c := strings.TrimSpace(f.Constituency); c != "" {
		q = q.Where("constituency = ?", c)
	}
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		like := "%" + s + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(code) LIKE ? OR LOWER(serial_number) LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []*types.Asset
	if err := q.Order("created_at DESC").Limit(limit).Offset(f.Offset).Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *assetRepo) CountCreatedBetween(dbc dbctx.Context, from, to time.Time) (int64, error) {
	var count int64
	err := dbc.DB(r.db).
		Unscoped().
		Model(&types.Asset{}).
		Where("created_at >= ? AND created_at < ?", from.UTC(), to.UTC()).
		Count(&count).Error
	return count, err
}

// statusCount is the row shape of a GROUP BY status count.
type statusCount struct {
	Status string
	Total  int64
}

func (r *assetRepo) CountByStatus(dbc dbctx.Context) (map[types.AssetStatus]int64, error) {
	var rows []statusCount
	err := dbc.DB(r.db).
		Model(&types.Asset{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[types.AssetStatus]int64, len(rows))
	for _, row := range rows {
		out[types.AssetStatus(row.Status)] = row.Total
	}
	return out, nil
}

func (r *assetRepo) SoftDelete(dbc dbctx.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	return dbc.DB(r.db).Where("id = ?", id).Delete(&types.Asset{}).Error
}

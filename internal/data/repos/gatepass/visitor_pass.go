package gatepass

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/nishad-backend/internal/domain"
	domaingatepass "github.com/yungbote/nishad-backend/internal/domain/gatepass"
	"github.com/yungbote/nishad-backend/internal/platform/dbctx"
	"github.com/yungbote/nishad-backend/internal/platform/logger"
)

type VisitorPassFilter struct {
	// CreatedBy restricts results to one creator; zero means all.
	CreatedBy uuid.UUID
	// Status filters by effective status relative to Now, matching Stats.
	Status   types.ApprovalStatus
	PassType types.PassType
	Search   string
	// ActiveAt keeps only approved passes whose window contains it.
	ActiveAt *time.Time
	// Now anchors the effective-status window; zero means the wall clock.
	Now    time.Time
	Limit  int
	Offset int
}

type VisitorPassStats struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
	Expired  int64 `json:"expired"`
	Active   int64 `json:"active"`
}

type VisitorPassRepo interface {
	Create(dbc dbctx.Context, row *types.VisitorPass) (*types.VisitorPass, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.VisitorPass, error)
	GetByPassNumber(dbc dbctx.Context, number string) (*types.VisitorPass, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.VisitorPass, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	List(dbc dbctx.Context, f VisitorPassFilter) ([]*types.VisitorPass, int64, error)
	Stats(dbc dbctx.Context, createdBy uuid.UUID, now time.Time) (VisitorPassStats, error)
	// CountCreatedBetween includes every pass ever created in [from, to).
	CountCreatedBetween(dbc dbctx.Context, from, to time.Time) (int64, error)
}

type visitorPassRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVisitorPassRepo(db *gorm.DB, baseLog *logger.Logger) VisitorPassRepo {
	return &visitorPassRepo{db: db, log: baseLog.With("repo", "VisitorPassRepo")}
}

func (r *visitorPassRepo) Create(dbc dbctx.Context, row *types.VisitorPass) (*types.VisitorPass, error) {
	if row == nil {
		return nil, nil
	}
	if err := dbc.DB(r.db).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *visitorPassRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.VisitorPass, error) {
	return r.first(dbc.DB(r.db), "id = ?", id)
}

func (r *visitorPassRepo) GetByPassNumber(dbc dbctx.Context, number string) (*types.VisitorPass, error) {
	number = strings.ToUpper(strings.TrimSpace(number))
	if number == "" {
		return nil, nil
	}
	return r.first(dbc.DB(r.db), "pass_number = ?", number)
}

func (r *visitorPassRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.VisitorPass, error) {
	return r.first(dbc.DB(r.db).Clauses(clause.Locking{Strength: "UPDATE"}), "id = ?", id)
}

func (r *visitorPassRepo) first(q *gorm.DB, where string, arg interface{}) (*types.VisitorPass, error) {
	if id, ok := arg.(uuid.UUID); ok && id == uuid.Nil {
		return nil, nil
	}
	var row types.VisitorPass
	if err := q.Where(where, arg).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *visitorPassRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return dbc.DB(r.db).Model(&types.VisitorPass{}).Where("id = ?", id).Updates(updates).Error
}

func (r *visitorPassRepo) List(dbc dbctx.Context, f VisitorPassFilter) ([]*types.VisitorPass, int64, error) {
	q := dbc.DB(r.db).Model(&types.VisitorPass{})
	if f.CreatedBy != uuid.Nil {
		q = q.Where("created_by = ?", f.CreatedBy)
	}
	if f.Status != "" {
		now := f.Now
		if now.IsZero() {
			now = time.Now()
		}
		q = whereEffectiveStatus(q, f.Status, now.UTC())
	}
	if f.PassType != "" {
		q = q.Where("pass_type = ?", f.PassType)
	}
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		like := "%" + s + "%"
		q = q.Where("LOWER(visitor_name) LIKE ? OR LOWER(pass_number) LIKE ? OR visitor_phone LIKE ?", like, like, like)
	}
	if f.ActiveAt != nil {
		at := f.ActiveAt.UTC()
		q = q.Where("status = ? AND valid_from <= ? AND valid_until >= ?", domaingatepass.ApprovalApproved, at, at)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []*types.VisitorPass
	if err := q.Order("created_at DESC").Limit(limit).Offset(f.Offset).Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Stats counts by effective status: PENDING and APPROVED passes whose
// window has closed are reported as expired.
func (r *visitorPassRepo) Stats(dbc dbctx.Context, createdBy uuid.UUID, now time.Time) (VisitorPassStats, error) {
	now = now.UTC()
	base := func() *gorm.DB {
		q := dbc.DB(r.db).Model(&types.VisitorPass{})
		if createdBy != uuid.Nil {
			q = q.Where("created_by = ?", createdBy)
		}
		return q
	}

	var st VisitorPassStats
	open := []string{string(domaingatepass.ApprovalPending), string(domaingatepass.ApprovalApproved)}

	if err := base().Count(&st.Total).Error; err != nil {
		return st, err
	}
	if err := base().Where("status = ? AND valid_until >= ?", domaingatepass.ApprovalPending, now).Count(&st.Pending).Error; err != nil {
		return st, err
	}
	if err := base().Where("status = ? AND valid_until >= ?", domaingatepass.ApprovalApproved, now).Count(&st.Approved).Error; err != nil {
		return st, err
	}
	if err := base().Where("status = ?", domaingatepass.ApprovalRejected).Count(&st.Rejected).Error; err != nil {
		return st, err
	}
	if err := base().Where("(status IN ? AND valid_until < ?) OR status = ?", open, now, domaingatepass.ApprovalExpired).Count(&st.Expired).Error; err != nil {
		return st, err
	}
	if err := base().Where("status = ? AND valid_from <= ? AND valid_until >= ?", domaingatepass.ApprovalApproved, now, now).Count(&st.Active).Error; err != nil {
		return st, err
	}
	return st, nil
}

// whereEffectiveStatus applies the same buckets Stats counts: open passes
// past valid_until read as EXPIRED.
func whereEffectiveStatus(q *gorm.DB, status types.ApprovalStatus, now time.Time) *gorm.DB {
	switch status {
	case domaingatepass.ApprovalPending, domaingatepass.ApprovalApproved:
		return q.Where("status = ? AND valid_until >= ?", status, now)
	case domaingatepass.ApprovalExpired:
		open := []string{string(domaingatepass.ApprovalPending), string(domaingatepass.ApprovalApproved)}
		return q.Where("((status IN ? AND valid_until < ?) OR status = ?)", open, now, domaingatepass.ApprovalExpired)
	default:
		return q.Where("status = ?", status)
	}
}

func (r *visitorPassRepo) CountCreatedBetween(dbc dbctx.Context, from, to time.Time) (int64, error) {
	var count int64
	err := dbc.DB(r.db).
		Model(&types.VisitorPass{}).
		Where("created_at >= ? AND created_at < ?", from.UTC(), to.UTC()).
		Count(&count).Error
	return count, err
}

package gatepass

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

type EventPassRepo interface {
	Create(dbc dbctx.Context, row *types.EventPass) (*types.EventPass, error)
	GetByCode(dbc dbctx.Context, code string) (*types.EventPass, error)
	LockByCode(dbc dbctx.Context, code string) (*types.EventPass, error)
	GetByEventAndAttendee(dbc dbctx.Context, eventID, attendeeID uuid.UUID) (*types.EventPass, error)
	ListByEvent(dbc dbctx.Context, eventID uuid.UUID) ([]*types.EventPass, error)
	ListByAttendee(dbc dbctx.Context, attendeeID uuid.UUID) ([]*types.EventPass, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	// CountCreatedBetween counts passes created in [from, to).
	CountCreatedBetween(dbc dbctx.Context, from, to time.Time) (int64, error)
}

type eventPassRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEventPassRepo(db *gorm.DB, baseLog *logger.Logger) EventPassRepo {
	return &eventPassRepo{db: db, log: baseLog.With("repo", "EventPassRepo")}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (r *eventPassRepo) Create(dbc dbctx.Context, row *types.EventPass) (*types.EventPass, error) {
	if row == nil {
		return nil, nil
	}
	if err := dbc.DB(r.db).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *eventPassRepo) GetByCode(dbc dbctx.Context, code string) (*types.EventPass, error) {
	return r.findByCode(dbc.DB(r.db), code)
}

func (r *eventPassRepo) LockByCode(dbc dbctx.Context, code string) (*types.EventPass, error) {
	return r.findByCode(dbc.DB(r.db).Clauses(clause.Locking{Strength: "UPDATE"}), code)
}

func (r *eventPassRepo) findByCode(q *gorm.DB, code string) (*types.EventPass, error) {
	code = normalizeCode(code)
	if code == "" {
		return nil, nil
	}
	var row types.EventPass
	if err := q.Where("code = ?", code).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *eventPassRepo) GetByEventAndAttendee(dbc dbctx.Context, eventID, attendeeID uuid.UUID) (*types.EventPass, error) {
	if eventID == uuid.Nil || attendeeID == uuid.Nil {
		return nil, nil
	}
	var row types.EventPass
	err := dbc.DB(r.db).
		Where("event_id = ? AND attendee_id = ?", eventID, attendeeID).
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

func (r *eventPassRepo) ListByEvent(dbc dbctx.Context, eventID uuid.UUID) ([]*types.EventPass, error) {
	var out []*types.EventPass
	if eventID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("event_id = ?", eventID).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *eventPassRepo) ListByAttendee(dbc dbctx.Context, attendeeID uuid.UUID) ([]*types.EventPass, error) {
	var out []*types.EventPass
	if attendeeID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("attendee_id = ?", attendeeID).Order("valid_from DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *eventPassRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return dbc.DB(r.db).Model(&types.EventPass{}).Where("id = ?", id).Updates(updates).Error
}

func (r *eventPassRepo) CountCreatedBetween(dbc dbctx.Context, from, to time.Time) (int64, error) {
	var count int64
	err := dbc.DB(r.db).
		Model(&types.EventPass{}).
		Where("created_at >= ? AND created_at < ?", from.UTC(), to.UTC()).
		Count(&count).Error
	return count, err
}

package events

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/nishad-backend/internal/domain"
	"github.com/yungbote/nishad-backend/internal/platform/dbctx"
	"github.com/yungbote/nishad-backend/internal/platform/logger"
)

type EventRepo interface {
	Create(dbc dbctx.Context, rows []*types.Event) ([]*types.Event, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Event, error)
	// LockByID serialises pass issuance per event.
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Event, error)
	// ListUpcoming returns events that start at or after since, soonest first.
	ListUpcoming(dbc dbctx.Context, since time.Time, limit int) ([]*types.Event, error)
}

type eventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEventRepo(db *gorm.DB, baseLog *logger.Logger) EventRepo {
	return &eventRepo{db: db, log: baseLog.With("repo", "EventRepo")}
}

func (r *eventRepo) Create(dbc dbctx.Context, rows []*types.Event) ([]*types.Event, error) {
	if len(rows) == 0 {
		return []*types.Event{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *eventRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Event, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Event
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *eventRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Event, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Event
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

func (r *eventRepo) ListUpcoming(dbc dbctx.Context, since time.Time, limit int) ([]*types.Event, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []*types.Event
	q := dbc.DB(r.db)
	if !since.IsZero() {
		q = q.Where("starts_at >= ?", since.UTC())
	}
	if err := q.Order("starts_at ASC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

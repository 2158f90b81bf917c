package gatepass

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/nishad-backend/internal/domain"
	"github.com/yungbote/nishad-backend/internal/platform/dbctx"
	"github.com/yungbote/nishad-backend/internal/platform/logger"
)

type GatePassLogRepo interface {
	Append(dbc dbctx.Context, row *types.GatePassLog) (*types.GatePassLog, error)
	ListByPass(dbc dbctx.Context, passID uuid.UUID) ([]*types.GatePassLog, error)
}

type gatePassLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGatePassLogRepo(db *gorm.DB, baseLog *logger.Logger) GatePassLogRepo {
	return &gatePassLogRepo{db: db, log: baseLog.With("repo", "GatePassLogRepo")}
}

func (r *gatePassLogRepo) Append(dbc dbctx.Context, row *types.GatePassLog) (*types.GatePassLog, error) {
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

func (r *gatePassLogRepo) ListByPass(dbc dbctx.Context, passID uuid.UUID) ([]*types.GatePassLog, error) {
	var out []*types.GatePassLog
	if passID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("visitor_pass_id = ?", passID).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/nishad-backend/internal/domain"
	"github.com/yungbote/nishad-backend/internal/platform/dbctx"
	"github.com/yungbote/nishad-backend/internal/platform/logger"
)

type DelegationRepo interface {
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.GatePassDelegation, error)
	LockByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.GatePassDelegation, error)
	Upsert(dbc dbctx.Context, row *types.GatePassDelegation) (*types.GatePassDelegation, error)
	List(dbc dbctx.Context) ([]*types.GatePassDelegation, error)
}

type delegationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDelegationRepo(db *gorm.DB, baseLog *logger.Logger) DelegationRepo {
	return &delegationRepo{db: db, log: baseLog.With("repo", "DelegationRepo")}
}

func (r *delegationRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.GatePassDelegation, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	var row types.GatePassDelegation
	if err := dbc.DB(r.db).Where("user_id = ?", userID).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *delegationRepo) LockByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.GatePassDelegation, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	var row types.GatePassDelegation
	err := dbc.DB(r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
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

// Upsert writes the delegation keyed by user_id.
func (r *delegationRepo) Upsert(dbc dbctx.Context, row *types.GatePassDelegation) (*types.GatePassDelegation, error) {
	if row == nil || row.UserID == uuid.Nil {
		return nil, nil
	}
	now := time.Now().UTC()
	if row.GrantedAt.IsZero() {
		row.GrantedAt = now
	}
	row.UpdatedAt = now
	err := dbc.DB(r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"can_create_gatepass", "granted_by", "granted_at", "updated_at"}),
	}).Create(row).Error
	if err != nil {
		return nil, err
	}
	return r.GetByUserID(dbc, row.UserID)
}

func (r *delegationRepo) List(dbc dbctx.Context) ([]*types.GatePassDelegation, error) {
	var out []*types.GatePassDelegation
	if err := dbc.DB(r.db).Order("granted_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/nishad-backend/internal/domain"
	"github.com/yungbote/nishad-backend/internal/platform/dbctx"
	"github.com/yungbote/nishad-backend/internal/platform/logger"
)

type UserRepo interface {
	Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.User, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.User, error)
	GetByEmail(dbc dbctx.Context, email string) (*types.User, error)
	EmailExists(dbc dbctx.Context, email string) (bool, error)
	ListByRoles(dbc dbctx.Context, roles []types.Role) ([]*types.User, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (r *userRepo) Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error) {
	if len(users) == 0 {
		return []*types.User{}, nil
	}
	for _, u := range users {
		u.Email = normalizeEmail(u.Email)
	}
	if err := dbc.DB(r.db).Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.User, error) {
	var out []*types.User
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.User, error) {
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

func (r *userRepo) GetByEmail(dbc dbctx.Context, email string) (*types.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, nil
	}
	var row types.User
	if err := dbc.DB(r.db).Where("email = ?", email).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *userRepo) EmailExists(dbc dbctx.Context, email string) (bool, error) {
	var count int64
	if err := dbc.DB(r.db).
		Model(&types.User{}).
		Where("email = ?", normalizeEmail(email)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepo) ListByRoles(dbc dbctx.Context, roles []types.Role) ([]*types.User, error) {
	var out []*types.User
	if len(roles) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("role IN ?", roles).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return dbc.DB(r.db).Model(&types.User{}).Where("id = ?", id).Updates(updates).Error
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

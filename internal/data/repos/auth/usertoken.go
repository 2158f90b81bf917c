package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/nishad-backend/internal/domain"
	"github.com/yungbote/nishad-backend/internal/platform/dbctx"
	"github.com/yungbote/nishad-backend/internal/platform/logger"
)

type UserTokenRepo interface {
	Create(dbc dbctx.Context, userTokens []*types.UserToken) ([]*types.UserToken, error)
	GetByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.UserToken, error)
	GetByAccessTokens(dbc dbctx.Context, accessTokens []string) ([]*types.UserToken, error)
	GetByRefreshTokens(dbc dbctx.Context, refreshTokens []string) ([]*types.UserToken, error)
	FullDeleteByIDs(dbc dbctx.Context, tokenIDs []uuid.UUID) error
	FullDeleteByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) error
	FullDeleteExpired(dbc dbctx.Context, now time.Time) (int64, error)
}

type userTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return &userTokenRepo{db: db, log: baseLog.With("repo", "UserTokenRepo")}
}

func (r *userTokenRepo) Create(dbc dbctx.Context, userTokens []*types.UserToken) ([]*types.UserToken, error) {
	if len(userTokens) == 0 {
		return []*types.UserToken{}, nil
	}
	if err := dbc.DB(r.db).Create(&userTokens).Error; err != nil {
		return nil, err
	}
	return userTokens, nil
}

func (r *userTokenRepo) GetByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.UserToken, error) {
	var out []*types.UserToken
	if len(userIDs) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("user_id IN ?", userIDs).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userTokenRepo) GetByAccessTokens(dbc dbctx.Context, accessTokens []string) ([]*types.UserToken, error) {
	var out []*types.UserToken
	if len(accessTokens) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("access_token IN ?", accessTokens).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userTokenRepo) GetByRefreshTokens(dbc dbctx.Context, refreshTokens []string) ([]*types.UserToken, error) {
	var out []*types.UserToken
	if len(refreshTokens) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("refresh_token IN ?", refreshTokens).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userTokenRepo) FullDeleteByIDs(dbc dbctx.Context, tokenIDs []uuid.UUID) error {
	if len(tokenIDs) == 0 {
		return nil
	}
	return dbc.DB(r.db).Unscoped().Where("id IN ?", tokenIDs).Delete(&types.UserToken{}).Error
}

func (r *userTokenRepo) FullDeleteByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	return dbc.DB(r.db).Unscoped().Where("user_id IN ?", userIDs).Delete(&types.UserToken{}).Error
}

func (r *userTokenRepo) FullDeleteExpired(dbc dbctx.Context, now time.Time) (int64, error) {
	res := dbc.DB(r.db).Unscoped().Where("expires_at < ?", now.UTC()).Delete(&types.UserToken{})
	return res.RowsAffected, res.Error
}

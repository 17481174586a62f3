package auth

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/materials-backend/internal/domain"
	"github.com/yungbote/materials-backend/internal/platform/dbctx"
	"github.com/yungbote/materials-backend/internal/platform/logger"
)

// UserTokenRepo stores login sessions. A row pairs one access token with the
// refresh token that can replace it.
type UserTokenRepo interface {
	Create(dbc dbctx.Context, row *types.UserToken) error
	GetByAccessToken(dbc dbctx.Context, accessToken string) (*types.UserToken, error)
	GetByRefreshToken(dbc dbctx.Context, refreshToken string) (*types.UserToken, error)
	CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	DeleteExpired(dbc dbctx.Context, userID uuid.UUID, now time.Time) (int64, error)
	Delete(dbc dbctx.Context, ids ...uuid.UUID) error
}

type userTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return &userTokenRepo{db: db, log: baseLog.With("repo", "UserTokenRepo")}
}

func (r *userTokenRepo) Create(dbc dbctx.Context, row *types.UserToken) error {
	if row == nil {
		return nil
	}
	return dbc.Resolve(r.db).Create(row).Error
}

func (r *userTokenRepo) GetByAccessToken(dbc dbctx.Context, accessToken string) (*types.UserToken, error) {
	return r.first(dbc, "access_token = ?", accessToken)
}

func (r *userTokenRepo) GetByRefreshToken(dbc dbctx.Context, refreshToken string) (*types.UserToken, error) {
	return r.first(dbc, "refresh_token = ?", refreshToken)
}

// first is nil, nil when nothing matches.
func (r *userTokenRepo) first(dbc dbctx.Context, query string, arg string) (*types.UserToken, error) {
	if arg == "" {
		return nil, nil
	}
	var row types.UserToken
	err := dbc.Resolve(r.db).Where(query, arg).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *userTokenRepo) CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.Resolve(r.db).Model(&types.UserToken{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

// DeleteExpired hard-deletes the sessions of userID whose refresh window
// closed before now.
func (r *userTokenRepo) DeleteExpired(dbc dbctx.Context, userID uuid.UUID, now time.Time) (int64, error) {
	res := dbc.Resolve(r.db).
		Unscoped().
		Where("user_id = ? AND expires_at < ?", userID, now).
		Delete(&types.UserToken{})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		r.log.Debug("Pruned expired sessions", "user_id", userID, "count", res.RowsAffected)
	}
	return res.RowsAffected, nil
}

func (r *userTokenRepo) Delete(dbc dbctx.Context, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return dbc.Resolve(r.db).
		Unscoped().
		Where("id IN ?", ids).
		Delete(&types.UserToken{}).Error
}

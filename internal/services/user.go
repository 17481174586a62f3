package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/materials-backend/internal/data/repos"
	types "github.com/yungbote/materials-backend/internal/domain"
	pkgerrors "github.com/yungbote/materials-backend/internal/pkg/errors"
	"github.com/yungbote/materials-backend/internal/platform/dbctx"
	"github.com/yungbote/materials-backend/internal/platform/logger"
)

type UserService interface {
	GetMe(ctx context.Context) (*types.User, error)
	UpdateProfile(ctx context.Context, firstName, lastName, institution string) (*types.User, error)
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo) UserService {
	serviceLog := log.With("service", "UserService")
	return &userService{db: db, log: serviceLog, userRepo: userRepo}
}

func (us *userService) load(dbc dbctx.Context, id uuid.UUID) (*types.User, error) {
	users, err := us.userRepo.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("user %s: %w", id, pkgerrors.ErrNotFound)
	}
	return users[0], nil
}

func (us *userService) GetMe(ctx context.Context) (*types.User, error) {
	actor, err := ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return us.load(dbctx.Context{Ctx: ctx}, actor.UserID)
}

func (us *userService) UpdateProfile(ctx context.Context, firstName, lastName, institution string) (*types.User, error) {
	actor, err := ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	firstName, lastName, institution = clean(firstName), clean(lastName), clean(institution)
	if firstName == "" || lastName == "" {
		return nil, fmt.Errorf("%w: first and last name are required", pkgerrors.ErrInvalidArgument)
	}
	var out *types.User
	err = us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := us.userRepo.UpdateProfile(dbc, actor.UserID, firstName, lastName, institution); err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
		out, err = us.load(dbc, actor.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/nishad-backend/internal/data/repos"
	types "github.com/yungbote/nishad-backend/internal/domain"
	"github.com/yungbote/nishad-backend/internal/domain/access"
	domainagg "github.com/yungbote/nishad-backend/internal/domain/aggregates"
	"github.com/yungbote/nishad-backend/internal/domain/user"
	"github.com/yungbote/nishad-backend/internal/platform/dbctx"
	"github.com/yungbote/nishad-backend/internal/platform/logger"
)

type UserService interface {
	GetMe(ctx context.Context) (*types.User, *types.GatePassDelegation, error)
	ListUsers(ctx context.Context, roles []string) ([]*types.User, error)
	ChangeRole(ctx context.Context, userID uuid.UUID, role string) (*types.User, error)
}

type userService struct {
	db          *gorm.DB
	log         *logger.Logger
	users       repos.UserRepo
	delegations repos.DelegationRepo
}

func NewUserService(db *gorm.DB, log *logger.Logger, users repos.UserRepo, delegations repos.DelegationRepo) UserService {
	return &userService{
		db:          db,
		log:         log.With("service", "UserService"),
		users:       users,
		delegations: delegations,
	}
}

func (s *userService) GetMe(ctx context.Context) (*types.User, *types.GatePassDelegation, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	u, err := s.users.GetByID(dbc, actor.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load user: %w", err)
	}
	if u == nil {
		return nil, nil, notFound("User.GetMe", "user %s not found", actor.UserID)
	}
	d, err := s.delegations.GetByUserID(dbc, actor.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load delegation: %w", err)
	}
	return u, d, nil
}

// ListUsers backs the assignee and attendee pickers, so any manager can read it.
func (s *userService) ListUsers(ctx context.Context, roles []string) ([]*types.User, error) {
	const op = "User.List"
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !access.CanViewAll(actor) {
		return nil, domainagg.Forbidden(op, string(access.CapViewAllGatePasses))
	}
	want := make([]types.Role, 0, len(roles))
	for _, raw := range roles {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		r, ok := user.ParseRole(raw)
		if !ok {
			return nil, invalid(op, "unknown role %q", raw)
		}
		want = append(want, r)
	}
	if len(want) == 0 {
		want = user.Roles()
	}
	return s.users.ListByRoles(dbctx.Context{Ctx: ctx}, want)
}

func (s *userService) ChangeRole(ctx context.Context, userID uuid.UUID, role string) (*types.User, error) {
	const op = "User.ChangeRole"
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !access.CanManagePermissions(actor) {
		return nil, domainagg.Forbidden(op, string(access.CapManagePermissions))
	}
	r, ok := user.ParseRole(role)
	if !ok {
		return nil, invalid(op, "unknown role %q", role)
	}
	var out *types.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		u, err := s.users.GetByID(dbc, userID)
		if err != nil {
			return fmt.Errorf("failed to load user: %w", err)
		}
		if u == nil {
			return notFound(op, "user %s not found", userID)
		}
		if err := s.users.UpdateFields(dbc, userID, map[string]interface{}{"role": r}); err != nil {
			return fmt.Errorf("failed to update role: %w", err)
		}
		u.Role = r
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("user role changed", "user_id", userID, "role", r, "by", actor.UserID)
	return out, nil
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/nishad-backend/internal/data/repos"
	types "github.com/yungbote/nishad-backend/internal/domain"
	"github.com/yungbote/nishad-backend/internal/domain/access"
	domainagg "github.com/yungbote/nishad-backend/internal/domain/aggregates"
	"github.com/yungbote/nishad-backend/internal/platform/dbctx"
	"github.com/yungbote/nishad-backend/internal/platform/logger"
)

type DelegationService interface {
	List(ctx context.Context) ([]*types.GatePassDelegation, error)
	Grant(ctx context.Context, userID uuid.UUID) (*types.GatePassDelegation, error)
	Revoke(ctx context.Context, userID uuid.UUID) (*types.GatePassDelegation, error)
	Toggle(ctx context.Context, userID uuid.UUID) (*types.GatePassDelegation, error)
}

type delegationService struct {
	db          *gorm.DB
	log         *logger.Logger
	users       repos.UserRepo
	delegations repos.DelegationRepo
	notify      Notifier
	now         func() time.Time
}

func NewDelegationService(db *gorm.DB, log *logger.Logger, set repos.Set, notify Notifier) DelegationService {
	return &delegationService{
		db:          db,
		log:         log.With("service", "DelegationService"),
		users:       set.Users,
		delegations: set.Delegations,
		notify:      notify,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *delegationService) List(ctx context.Context) ([]*types.GatePassDelegation, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !access.CanManagePermissions(actor) {
		return nil, domainagg.Forbidden("Delegation.List", string(access.CapManagePermissions))
	}
	return s.delegations.List(dbctx.Context{Ctx: ctx})
}

func (s *delegationService) Grant(ctx context.Context, userID uuid.UUID) (*types.GatePassDelegation, error) {
	return s.set(ctx, "Delegation.Grant", userID, func(bool) bool { return true })
}

func (s *delegationService) Revoke(ctx context.Context, userID uuid.UUID) (*types.GatePassDelegation, error) {
	return s.set(ctx, "Delegation.Revoke", userID, func(bool) bool { return false })
}

func (s *delegationService) Toggle(ctx context.Context, userID uuid.UUID) (*types.GatePassDelegation, error) {
	return s.set(ctx, "Delegation.Toggle", userID, func(cur bool) bool { return !cur })
}

// set locks the delegation row so concurrent toggles apply in sequence.
func (s *delegationService) set(ctx context.Context, op string, userID uuid.UUID, next func(current bool) bool) (*types.GatePassDelegation, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !access.CanManagePermissions(actor) {
		return nil, domainagg.Forbidden(op, string(access.CapManagePermissions))
	}
	if userID == uuid.Nil {
		return nil, invalid(op, "missing user_id")
	}
	var out *types.GatePassDelegation
	changed := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		u, err := s.users.GetByID(dbc, userID)
		if err != nil {
			return fmt.Errorf("failed to load user: %w", err)
		}
		if u == nil {
			return notFound(op, "user %s not found", userID)
		}
		cur, err := s.delegations.LockByUserID(dbc, userID)
		if err != nil {
			return fmt.Errorf("failed to lock delegation: %w", err)
		}
		row := cur
		if row == nil {
			row = &types.GatePassDelegation{UserID: userID}
		}
		want := next(row.CanCreateGatePass)
		if cur != nil && cur.CanCreateGatePass == want {
			out = cur
			return nil
		}
		grantedBy := actor.UserID
		row.CanCreateGatePass = want
		row.GrantedBy = &grantedBy
		row.GrantedAt = s.now()
		saved, err := s.delegations.Upsert(dbc, row)
		if err != nil {
			return fmt.Errorf("failed to save delegation: %w", err)
		}
		out = saved
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.log.Info("delegation changed", "user_id", userID, "can_create_gatepass", out.CanCreateGatePass, "by", actor.UserID)
		if s.notify != nil {
			s.notify.DelegationChanged(ctx, out)
		}
	}
	return out, nil
}

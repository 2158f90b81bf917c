package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/nishad-backend/internal/data/repos"
	types "github.com/yungbote/nishad-backend/internal/domain"
	"github.com/yungbote/nishad-backend/internal/domain/access"
	domainagg "github.com/yungbote/nishad-backend/internal/domain/aggregates"
	"github.com/yungbote/nishad-backend/internal/domain/assets"
	"github.com/yungbote/nishad-backend/internal/observability"
	"github.com/yungbote/nishad-backend/internal/platform/dbctx"
	"github.com/yungbote/nishad-backend/internal/platform/logger"
)

// CheckoutView adds the read-time fields that are never stored.
type CheckoutView struct {
	*types.AssetCheckout
	DisplayStatus assets.CheckoutStatus `json:"display_status"`
	IsOverdue     bool                  `json:"is_overdue"`
	DaysAssigned  int                   `json:"days_assigned"`
}

func newCheckoutView(c *types.AssetCheckout, now time.Time) *CheckoutView {
	if c == nil {
		return nil
	}
	return &CheckoutView{
		AssetCheckout: c,
		DisplayStatus: c.DisplayStatus(now),
		IsOverdue:     c.IsOverdue(now),
		DaysAssigned:  c.DaysAssigned(now),
	}
}

func checkoutViews(rows []*types.AssetCheckout, now time.Time) []*CheckoutView {
	out := make([]*CheckoutView, 0, len(rows))
	for _, c := range rows {
		out = append(out, newCheckoutView(c, now))
	}
	return out
}

type CheckoutService interface {
	Assign(ctx context.Context, in domainagg.AssignAssetInput) (domainagg.CheckoutTransitionResult, error)
	Accept(ctx context.Context, in domainagg.CheckoutActionInput) (domainagg.CheckoutTransitionResult, error)
	Reject(ctx context.Context, in domainagg.RejectCheckoutInput) (domainagg.CheckoutTransitionResult, error)
	MarkInUse(ctx context.Context, in domainagg.CheckoutActionInput) (domainagg.CheckoutTransitionResult, error)
	Return(ctx context.Context, in domainagg.ReturnAssetInput) (domainagg.CheckoutTransitionResult, error)
	MarkLost(ctx context.Context, in domainagg.MarkLostInput) (domainagg.CheckoutTransitionResult, error)
	Get(ctx context.Context, id uuid.UUID) (*CheckoutView, error)
	Mine(ctx context.Context, openOnly bool) ([]*CheckoutView, error)
	Overdue(ctx context.Context) ([]*CheckoutView, error)
}

type checkoutService struct {
	log       *logger.Logger
	agg       domainagg.CheckoutAggregate
	assets    repos.AssetRepo
	checkouts repos.CheckoutRepo
	notify    Notifier
	metrics   *observability.Metrics
	now       func() time.Time
}

func NewCheckoutService(
	log *logger.Logger,
	agg domainagg.CheckoutAggregate,
	set repos.Set,
	notify Notifier,
	metrics *observability.Metrics,
) CheckoutService {
	return &checkoutService{
		log:       log.With("service", "CheckoutService"),
		agg:       agg,
		assets:    set.Assets,
		checkouts: set.Checkouts,
		notify:    notify,
		metrics:   metrics,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *checkoutService) Assign(ctx context.Context, in domainagg.AssignAssetInput) (domainagg.CheckoutTransitionResult, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return domainagg.CheckoutTransitionResult{}, err
	}
	in.Actor = actor
	in.At = s.now()
	res, err := s.agg.Assign(ctx, in)
	if err != nil {
		return res, err
	}
	s.committed(ctx, assets.AssetEventAssigned, res)
	if s.notify != nil {
		asset, aerr := s.assets.GetByID(dbctx.Context{Ctx: ctx}, res.AssetID)
		if aerr != nil {
			s.log.Warn("failed to load asset for notification", "asset_id", res.AssetID, "error", aerr)
		}
		s.notify.AssignmentPending(ctx, res.Checkout, asset)
	}
	return res, nil
}

func (s *checkoutService) Accept(ctx context.Context, in domainagg.CheckoutActionInput) (domainagg.CheckoutTransitionResult, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return domainagg.CheckoutTransitionResult{}, err
	}
	in.Actor, in.At = actor, s.now()
	res, err := s.agg.Accept(ctx, in)
	return s.after(ctx, assets.AssetEventAccepted, res, err)
}

func (s *checkoutService) Reject(ctx context.Context, in domainagg.RejectCheckoutInput) (domainagg.CheckoutTransitionResult, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return domainagg.CheckoutTransitionResult{}, err
	}
	in.Actor, in.At = actor, s.now()
	res, err := s.agg.Reject(ctx, in)
	return s.after(ctx, assets.AssetEventRejected, res, err)
}

func (s *checkoutService) MarkInUse(ctx context.Context, in domainagg.CheckoutActionInput) (domainagg.CheckoutTransitionResult, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return domainagg.CheckoutTransitionResult{}, err
	}
	in.Actor, in.At = actor, s.now()
	res, err := s.agg.MarkInUse(ctx, in)
	return s.after(ctx, assets.AssetEventInUse, res, err)
}

func (s *checkoutService) Return(ctx context.Context, in domainagg.ReturnAssetInput) (domainagg.CheckoutTransitionResult, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return domainagg.CheckoutTransitionResult{}, err
	}
	in.Actor, in.At = actor, s.now()
	res, err := s.agg.Return(ctx, in)
	return s.after(ctx, assets.AssetEventReturned, res, err)
}

func (s *checkoutService) MarkLost(ctx context.Context, in domainagg.MarkLostInput) (domainagg.CheckoutTransitionResult, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return domainagg.CheckoutTransitionResult{}, err
	}
	in.Actor, in.At = actor, s.now()
	res, err := s.agg.MarkLost(ctx, in)
	return s.after(ctx, assets.AssetEventLost, res, err)
}

func (s *checkoutService) after(ctx context.Context, action string, res domainagg.CheckoutTransitionResult, err error) (domainagg.CheckoutTransitionResult, error) {
	if err != nil {
		return res, err
	}
	if !res.Changed {
		return res, nil
	}
	s.committed(ctx, action, res)
	if s.notify != nil {
		s.notify.CheckoutChanged(ctx, res.Checkout, action)
	}
	return res, nil
}

func (s *checkoutService) committed(ctx context.Context, action string, res domainagg.CheckoutTransitionResult) {
	s.metrics.IncCheckoutTransition(action, string(res.CheckoutStatus))
	s.log.Info("checkout transition",
		"action", action,
		"checkout_id", res.CheckoutID,
		"asset_id", res.AssetID,
		"checkout_status", res.CheckoutStatus,
		"asset_status", res.AssetStatus,
	)
}

func (s *checkoutService) Get(ctx context.Context, id uuid.UUID) (*CheckoutView, error) {
	const op = "Checkout.Get"
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.checkouts.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load checkout: %w", err)
	}
	if c == nil {
		return nil, notFound(op, "checkout %s not found", id)
	}
	if !access.CanActOnAssignment(actor, c.AssigneeID) {
		return nil, domainagg.Forbidden(op, string(access.CapActOnOwnAssignment))
	}
	return newCheckoutView(c, s.now()), nil
}

func (s *checkoutService) Mine(ctx context.Context, openOnly bool) ([]*CheckoutView, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.checkouts.ListByAssignee(dbctx.Context{Ctx: ctx}, actor.UserID, openOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkouts: %w", err)
	}
	return checkoutViews(rows, s.now()), nil
}

func (s *checkoutService) Overdue(ctx context.Context) ([]*CheckoutView, error) {
	const op = "Checkout.Overdue"
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !access.CanManageAssets(actor) {
		return nil, domainagg.Forbidden(op, string(access.CapManageAssets))
	}
	now := s.now()
	rows, err := s.checkouts.ListOverdue(dbctx.Context{Ctx: ctx}, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue checkouts: %w", err)
	}
	return checkoutViews(rows, now), nil
}

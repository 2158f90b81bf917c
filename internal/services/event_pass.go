package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/nishad-backend/internal/codegen"
	"github.com/yungbote/nishad-backend/internal/data/repos"
	types "github.com/yungbote/nishad-backend/internal/domain"
	"github.com/yungbote/nishad-backend/internal/domain/access"
	domainagg "github.com/yungbote/nishad-backend/internal/domain/aggregates"
	"github.com/yungbote/nishad-backend/internal/observability"
	"github.com/yungbote/nishad-backend/internal/platform/dbctx"
	"github.com/yungbote/nishad-backend/internal/platform/logger"
	"github.com/yungbote/nishad-backend/internal/platform/qrcode"
)

type EventPassService interface {
	Issue(ctx context.Context, in domainagg.IssueEventPassInput) (*types.EventPass, error)
	Get(ctx context.Context, code string) (*types.EventPass, error)
	ListForEvent(ctx context.Context, eventID uuid.UUID) ([]*types.EventPass, error)
	Mine(ctx context.Context) ([]*types.EventPass, error)
	Use(ctx context.Context, code, gate string) (domainagg.UseEventPassResult, error)
	QRCode(ctx context.Context, code string) ([]byte, error)
	Card(ctx context.Context, code string) ([]byte, error)
}

type eventPassService struct {
	log       *logger.Logger
	agg       domainagg.EventPassAggregate
	passes    repos.EventPassRepo
	events    repos.EventRepo
	users     repos.UserRepo
	artifacts ArtifactService
	notify    Notifier
	metrics   *observability.Metrics
	now       func() time.Time
}

func NewEventPassService(
	log *logger.Logger,
	agg domainagg.EventPassAggregate,
	set repos.Set,
	artifacts ArtifactService,
	notify Notifier,
	metrics *observability.Metrics,
) EventPassService {
	return &eventPassService{
		log:       log.With("service", "EventPassService"),
		agg:       agg,
		passes:    set.EventPasses,
		events:    set.Events,
		users:     set.Users,
		artifacts: artifacts,
		notify:    notify,
		metrics:   metrics,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *eventPassService) Issue(ctx context.Context, in domainagg.IssueEventPassInput) (*types.EventPass, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	in.Actor, in.At = actor, s.now()
	res, err := s.agg.Issue(ctx, in)
	if err != nil {
		return nil, err
	}
	pass := res.Pass
	s.log.Info("event pass issued", "pass_id", pass.ID, "event_id", pass.EventID, "attempts", res.Attempts)
	s.publish(ctx, pass)
	if s.notify != nil {
		s.notify.EventPassIssued(ctx, pass)
	}
	return pass, nil
}

func (s *eventPassService) publish(ctx context.Context, pass *types.EventPass) {
	if s.artifacts == nil {
		return
	}
	card, err := s.card(ctx, pass)
	if err != nil {
		s.log.Warn("event pass card data unavailable", "pass_id", pass.ID, "error", err)
		return
	}
	if _, err := s.artifacts.Publish(ctx, Artifact{Key: pass.QRCodeKey, Card: card}); err != nil {
		s.log.Warn("event pass publish failed", "pass_id", pass.ID, "error", err)
	}
}

// canSeeEventPass: the attendee, the issuer, and gate staff.
func canSeeEventPass(actor access.Actor, p *types.EventPass) bool {
	return actor.UserID == p.AttendeeID || actor.UserID == p.IssuedBy || access.CanScanPasses(actor)
}

func (s *eventPassService) Get(ctx context.Context, code string) (*types.EventPass, error) {
	const op = "GatePass.Event.Get"
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	pass, err := s.load(ctx, op, code)
	if err != nil {
		return nil, err
	}
	if !canSeeEventPass(actor, pass) {
		return nil, domainagg.Forbidden(op, string(access.CapScanPasses))
	}
	return pass, nil
}

func (s *eventPassService) load(ctx context.Context, op, code string) (*types.EventPass, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	pass, err := s.passes.GetByCode(dbctx.Context{Ctx: ctx}, code)
	if err != nil {
		return nil, fmt.Errorf("failed to load pass: %w", err)
	}
	if pass == nil {
		return nil, notFound(op, "pass not found: %s", code)
	}
	return pass, nil
}

func (s *eventPassService) ListForEvent(ctx context.Context, eventID uuid.UUID) ([]*types.EventPass, error) {
	const op = "GatePass.Event.ListForEvent"
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !access.CanScanPasses(actor) {
		return nil, domainagg.Forbidden(op, string(access.CapScanPasses))
	}
	return s.passes.ListByEvent(dbctx.Context{Ctx: ctx}, eventID)
}

func (s *eventPassService) Mine(ctx context.Context) ([]*types.EventPass, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.passes.ListByAttendee(dbctx.Context{Ctx: ctx}, actor.UserID)
}

func (s *eventPassService) Use(ctx context.Context, code, gate string) (domainagg.UseEventPassResult, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return domainagg.UseEventPassResult{}, err
	}
	res, err := s.agg.Use(ctx, domainagg.UseEventPassInput{Actor: actor, Code: code, Gate: gate, At: s.now()})
	switch {
	case err == nil:
		s.metrics.IncPassScan("admitted")
		s.log.Info("event pass used", "pass_id", res.PassID, "gate", res.EntryGate)
	case domainagg.IsCode(err, domainagg.CodeInvalidPass):
		s.metrics.IncPassScan("refused")
	case domainagg.IsCode(err, domainagg.CodeNotFound):
		s.metrics.IncPassScan("unknown")
	default:
		s.metrics.IncPassScan("error")
	}
	return res, err
}

func (s *eventPassService) QRCode(ctx context.Context, code string) ([]byte, error) {
	pass, err := s.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.artifacts.QRCode(pass.QRPayload)
}

func (s *eventPassService) Card(ctx context.Context, code string) ([]byte, error) {
	pass, err := s.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	card, err := s.card(ctx, pass)
	if err != nil {
		return nil, err
	}
	return s.artifacts.Card(ctx, Artifact{Key: codegen.EventPassArtifactKey(pass.Code), Card: card})
}

func (s *eventPassService) card(ctx context.Context, pass *types.EventPass) (qrcode.Card, error) {
	dbc := dbctx.Context{Ctx: ctx}
	event, err := s.events.GetByID(dbc, pass.EventID)
	if err != nil {
		return qrcode.Card{}, fmt.Errorf("failed to load event: %w", err)
	}
	attendee, err := s.users.GetByID(dbc, pass.AttendeeID)
	if err != nil {
		return qrcode.Card{}, fmt.Errorf("failed to load attendee: %w", err)
	}
	title := "Event pass"
	lines := []qrcode.CardLine{
		{Label: "Access", Value: string(pass.Access)},
		{Label: "Valid from", Value: pass.ValidFrom.Format(cardTimeLayout)},
		{Label: "Valid until", Value: pass.ValidUntil.Format(cardTimeLayout)},
	}
	if event != nil {
		title = event.Title
		lines = append(lines, qrcode.CardLine{Label: "Venue", Value: event.Venue})
	}
	if attendee != nil {
		lines = append([]qrcode.CardLine{{Label: "Attendee", Value: attendee.FullName()}}, lines...)
	}
	if pass.CompanionCount > 0 {
		lines = append(lines, qrcode.CardLine{Label: "Companions", Value: fmt.Sprintf("%d", pass.CompanionCount)})
	}
	return qrcode.Card{Title: title, Subtitle: pass.Code, Payload: pass.QRPayload, Lines: lines}, nil
}

const cardTimeLayout = "02 Jan 2006 15:04"

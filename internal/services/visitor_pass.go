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
	"github.com/yungbote/nishad-backend/internal/domain/gatepass"
	"github.com/yungbote/nishad-backend/internal/platform/dbctx"
	"github.com/yungbote/nishad-backend/internal/platform/logger"
	"github.com/yungbote/nishad-backend/internal/platform/qrcode"
)

// VisitorPassView reports the stored status and the read-time effective one.
type VisitorPassView struct {
	*types.VisitorPass
	EffectiveStatus gatepass.ApprovalStatus `json:"effective_status"`
}

func newVisitorPassView(p *types.VisitorPass, now time.Time) *VisitorPassView {
	if p == nil {
		return nil
	}
	return &VisitorPassView{VisitorPass: p, EffectiveStatus: p.EffectiveStatus(now)}
}

type VisitorPassService interface {
	Create(ctx context.Context, in types.VisitorPass) (*VisitorPassView, error)
	List(ctx context.Context, f repos.VisitorPassFilter) ([]*VisitorPassView, int64, error)
	Stats(ctx context.Context) (repos.VisitorPassStats, error)
	Get(ctx context.Context, id uuid.UUID) (*VisitorPassView, error)
	Approve(ctx context.Context, id uuid.UUID) (domainagg.VisitorPassResult, error)
	Reject(ctx context.Context, id uuid.UUID, reason string) (domainagg.VisitorPassResult, error)
	Logs(ctx context.Context, id uuid.UUID) ([]*types.GatePassLog, error)
	QRCode(ctx context.Context, id uuid.UUID) ([]byte, error)
	Card(ctx context.Context, id uuid.UUID) ([]byte, error)
}

type visitorPassService struct {
	log       *logger.Logger
	agg       domainagg.VisitorPassAggregate
	passes    repos.VisitorPassRepo
	logs      repos.GatePassLogRepo
	artifacts ArtifactService
	notify    Notifier
	now       func() time.Time
}

func NewVisitorPassService(
	log *logger.Logger,
	agg domainagg.VisitorPassAggregate,
	set repos.Set,
	artifacts ArtifactService,
	notify Notifier,
) VisitorPassService {
	return &visitorPassService{
		log:       log.With("service", "VisitorPassService"),
		agg:       agg,
		passes:    set.VisitorPasses,
		logs:      set.GatePassLogs,
		artifacts: artifacts,
		notify:    notify,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *visitorPassService) Create(ctx context.Context, in types.VisitorPass) (*VisitorPassView, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	res, err := s.agg.Create(ctx, domainagg.CreateVisitorPassInput{Actor: actor, Pass: in, At: now})
	if err != nil {
		return nil, err
	}
	s.log.Info("visitor pass created", "pass_id", res.Pass.ID, "pass_number", res.Pass.PassNumber)
	return newVisitorPassView(res.Pass, now), nil
}

// List shows managers every pass and everyone else only their own.
func (s *visitorPassService) List(ctx context.Context, f repos.VisitorPassFilter) ([]*VisitorPassView, int64, error) {
	const op = "GatePass.Visitor.List"
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, 0, err
	}
	if !access.CanViewAll(actor) {
		f.CreatedBy = actor.UserID
	}
	if f.PassType != "" && !f.PassType.Valid() {
		return nil, 0, invalid(op, "unknown pass_type %q", f.PassType)
	}
	now := s.now()
	switch f.Status {
	case "", gatepass.ApprovalPending, gatepass.ApprovalApproved, gatepass.ApprovalRejected, gatepass.ApprovalExpired:
	default:
		return nil, 0, invalid(op, "unknown status %q", f.Status)
	}
	f.Search = strings.TrimSpace(f.Search)
	f.Now = now
	f.Limit, f.Offset = clampPage(f.Limit, f.Offset)
	rows, total, err := s.passes.List(dbctx.Context{Ctx: ctx}, f)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list visitor passes: %w", err)
	}
	out := make([]*VisitorPassView, 0, len(rows))
	for _, p := range rows {
		out = append(out, newVisitorPassView(p, now))
	}
	return out, total, nil
}

func (s *visitorPassService) Stats(ctx context.Context) (repos.VisitorPassStats, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return repos.VisitorPassStats{}, err
	}
	createdBy := actor.UserID
	if access.CanViewAll(actor) {
		createdBy = uuid.Nil
	}
	return s.passes.Stats(dbctx.Context{Ctx: ctx}, createdBy, s.now())
}

func (s *visitorPassService) Get(ctx context.Context, id uuid.UUID) (*VisitorPassView, error) {
	const op = "GatePass.Visitor.Get"
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.loadVisible(ctx, op, actor, id)
	if err != nil {
		return nil, err
	}
	return newVisitorPassView(p, s.now()), nil
}

func (s *visitorPassService) loadVisible(ctx context.Context, op string, actor access.Actor, id uuid.UUID) (*types.VisitorPass, error) {
	p, err := s.passes.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load visitor pass: %w", err)
	}
	if p == nil {
		return nil, notFound(op, "visitor pass %s not found", id)
	}
	if !access.CanViewVisitorPass(actor, p.CreatedBy) {
		return nil, domainagg.Forbidden(op, string(access.CapViewAllGatePasses))
	}
	return p, nil
}

func (s *visitorPassService) Approve(ctx context.Context, id uuid.UUID) (domainagg.VisitorPassResult, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return domainagg.VisitorPassResult{}, err
	}
	res, err := s.agg.Approve(ctx, domainagg.VisitorPassDecisionInput{Actor: actor, PassID: id, At: s.now()})
	return s.decided(ctx, res, err)
}

func (s *visitorPassService) Reject(ctx context.Context, id uuid.UUID, reason string) (domainagg.VisitorPassResult, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return domainagg.VisitorPassResult{}, err
	}
	res, err := s.agg.Reject(ctx, domainagg.VisitorPassDecisionInput{Actor: actor, PassID: id, Reason: reason, At: s.now()})
	return s.decided(ctx, res, err)
}

func (s *visitorPassService) decided(ctx context.Context, res domainagg.VisitorPassResult, err error) (domainagg.VisitorPassResult, error) {
	if err != nil {
		return res, err
	}
	s.log.Info("visitor pass decided", "pass_id", res.Pass.ID, "status", res.Status)
	if s.notify != nil {
		s.notify.VisitorPassDecided(ctx, res.Pass)
	}
	return res, nil
}

func (s *visitorPassService) Logs(ctx context.Context, id uuid.UUID) ([]*types.GatePassLog, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.loadVisible(ctx, "GatePass.Visitor.Logs", actor, id); err != nil {
		return nil, err
	}
	return s.logs.ListByPass(dbctx.Context{Ctx: ctx}, id)
}

// QRCode encodes the current status, so it is always rendered on demand.
func (s *visitorPassService) QRCode(ctx context.Context, id uuid.UUID) ([]byte, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.loadVisible(ctx, "GatePass.Visitor.QRCode", actor, id)
	if err != nil {
		return nil, err
	}
	status := p.EffectiveStatus(s.now())
	return s.artifacts.QRCode(codegen.VisitorPassPayload(p.PassNumber, p.VisitorName, p.ValidFrom, p.ValidUntil, string(status)))
}

// Card is never cached: like the QR it carries the current status.
func (s *visitorPassService) Card(ctx context.Context, id uuid.UUID) ([]byte, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.loadVisible(ctx, "GatePass.Visitor.Card", actor, id)
	if err != nil {
		return nil, err
	}
	return s.artifacts.Card(ctx, Artifact{Card: visitorPassCard(p, s.now())})
}

func visitorPassCard(p *types.VisitorPass, now time.Time) qrcode.Card {
	status := p.EffectiveStatus(now)
	lines := []qrcode.CardLine{
		{Label: "Type", Value: string(p.PassType)},
		{Label: "Purpose", Value: p.Purpose},
		{Label: "Valid from", Value: p.ValidFrom.Format(cardTimeLayout)},
		{Label: "Valid until", Value: p.ValidUntil.Format(cardTimeLayout)},
		{Label: "Status", Value: string(status)},
	}
	if p.VisitorCompany != "" {
		lines = append(lines, qrcode.CardLine{Label: "Company", Value: p.VisitorCompany})
	}
	if p.EscortRequired {
		lines = append(lines, qrcode.CardLine{Label: "Escort", Value: p.EscortName})
	}
	return qrcode.Card{
		Title:    p.VisitorName,
		Subtitle: p.PassNumber,
		Payload:  codegen.VisitorPassPayload(p.PassNumber, p.VisitorName, p.ValidFrom, p.ValidUntil, string(status)),
		Lines:    lines,
	}
}

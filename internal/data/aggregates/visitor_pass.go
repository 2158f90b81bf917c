package aggregates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/nishad-backend/internal/codegen"
	"github.com/yungbote/nishad-backend/internal/data/repos"
	"github.com/yungbote/nishad-backend/internal/domain/access"
	domainagg "github.com/yungbote/nishad-backend/internal/domain/aggregates"
	"github.com/yungbote/nishad-backend/internal/domain/gatepass"
	"github.com/yungbote/nishad-backend/internal/platform/dbctx"
)

type VisitorPassAggregateDeps struct {
	Base BaseDeps

	Delegations repos.DelegationRepo
	Passes      repos.VisitorPassRepo
	Logs        repos.GatePassLogRepo
}

type visitorPassAggregate struct {
	deps VisitorPassAggregateDeps
}

func NewVisitorPassAggregate(deps VisitorPassAggregateDeps) domainagg.VisitorPassAggregate {
	deps.Base = deps.Base.withDefaults()
	return &visitorPassAggregate{deps: deps}
}

func (a *visitorPassAggregate) Contract() domainagg.Contract {
	return domainagg.VisitorPassAggregateContract
}

func (a *visitorPassAggregate) configured() bool {
	return a.deps.Delegations != nil && a.deps.Passes != nil && a.deps.Logs != nil
}

func (a *visitorPassAggregate) Create(ctx context.Context, in domainagg.CreateVisitorPassInput) (domainagg.VisitorPassResult, error) {
	const op = "GatePass.Visitor.Create"
	var out domainagg.VisitorPassResult
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "visitor pass aggregate repos not configured", nil)
	}
	tmpl, err := normalizeVisitorPass(in.Pass)
	if err != nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, err.Error(), nil)
	}
	if err := requireCanCreate(ctx, op, a.deps.Delegations, in.Actor); err != nil {
		return out, err
	}
	now := a.deps.Base.now(in.At)

	_, err = executeWithCodeRetry(ctx, a.deps.Base, op, func(dbc dbctx.Context, attempt int) error {
		from, to := codegen.SecondWindow(now)
		taken, err := a.deps.Passes.CountCreatedBetween(dbc, from, to)
		if err != nil {
			return err
		}
		row := tmpl
		row.ID = uuid.New()
		row.PassNumber = codegen.VisitorPassNumber(now, taken+int64(attempt))
		row.Status = gatepass.ApprovalPending
		row.ApprovedBy = nil
		row.ApprovedAt = nil
		row.RejectionReason = ""
		row.CreatedBy = in.Actor.UserID
		row.CreatedAt = now
		row.UpdatedAt = now
		created, err := a.deps.Passes.Create(dbc, &row)
		if err != nil {
			return err
		}
		log, err := a.deps.Logs.Append(dbc, &gatepass.GatePassLog{
			VisitorPassID: created.ID,
			Action:        gatepass.LogActionCreated,
			Details:       "Gate pass created",
			ActorID:       in.Actor.UserID,
			Metadata:      jsonMeta(map[string]any{"pass_number": created.PassNumber, "pass_type": created.PassType}),
			CreatedAt:     now,
		})
		if err != nil {
			return err
		}
		out = domainagg.VisitorPassResult{Pass: created, Status: created.Status, Log: log}
		return nil
	})
	if err != nil {
		return domainagg.VisitorPassResult{}, err
	}
	return out, nil
}

func (a *visitorPassAggregate) Approve(ctx context.Context, in domainagg.VisitorPassDecisionInput) (domainagg.VisitorPassResult, error) {
	return a.decide(ctx, "GatePass.Visitor.Approve", in, gatepass.ApprovalApproved)
}

func (a *visitorPassAggregate) Reject(ctx context.Context, in domainagg.VisitorPassDecisionInput) (domainagg.VisitorPassResult, error) {
	return a.decide(ctx, "GatePass.Visitor.Reject", in, gatepass.ApprovalRejected)
}

func (a *visitorPassAggregate) decide(ctx context.Context, op string, in domainagg.VisitorPassDecisionInput, to gatepass.ApprovalStatus) (domainagg.VisitorPassResult, error) {
	var out domainagg.VisitorPassResult
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "visitor pass aggregate repos not configured", nil)
	}
	if !access.CanApprove(in.Actor) {
		return out, domainagg.Forbidden(op, string(access.CapApproveGatePass))
	}
	if in.PassID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing pass id", nil)
	}
	now := a.deps.Base.now(in.At)
	reason := strings.TrimSpace(in.Reason)

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		pass, err := a.deps.Passes.LockByID(dbc, in.PassID)
		if err != nil {
			return err
		}
		if pass == nil {
			return NotFoundError(fmt.Sprintf("visitor pass not found: %s", in.PassID))
		}
		if err := RequireStatusAllowed("visitor pass", string(pass.Status), string(gatepass.ApprovalPending)); err != nil {
			return err
		}
		if to == gatepass.ApprovalApproved && pass.EffectiveStatus(now) == gatepass.ApprovalExpired {
			return StateError(fmt.Sprintf("visitor pass %s expired at %s", pass.PassNumber, pass.ValidUntil.UTC().Format(time.RFC3339)))
		}

		updates := map[string]any{"status": to}
		actorID := in.Actor.UserID
		switch to {
		case gatepass.ApprovalApproved:
			updates["approved_by"] = actorID
			updates["approved_at"] = now
		case gatepass.ApprovalRejected:
			updates["rejection_reason"] = reason
		}
		ok, err := a.deps.Base.CASGuard.UpdateByStatus(dbc, "visitor_pass", pass.ID, []string{string(gatepass.ApprovalPending)}, updates)
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(ok, "visitor pass changed while deciding"); err != nil {
			return err
		}

		details := "Status changed to " + statusLabel(to)
		meta := map[string]any{"from_status": pass.Status, "to_status": to}
		if reason != "" {
			meta["reason"] = reason
		}
		log, err := a.deps.Logs.Append(dbc, &gatepass.GatePassLog{
			VisitorPassID: pass.ID,
			Action:        gatepass.StatusChangedAction(to),
			Details:       details,
			ActorID:       actorID,
			Metadata:      jsonMeta(meta),
			CreatedAt:     now,
		})
		if err != nil {
			return err
		}
		fresh, err := a.deps.Passes.GetByID(dbc, pass.ID)
		if err != nil {
			return err
		}
		out = domainagg.VisitorPassResult{Pass: fresh, Status: to, Log: log}
		return nil
	})
	return out, err
}

func normalizeVisitorPass(p gatepass.VisitorPass) (gatepass.VisitorPass, error) {
	p.VisitorName = strings.TrimSpace(p.VisitorName)
	p.VisitorPhone = strings.TrimSpace(p.VisitorPhone)
	p.VisitorEmail = strings.TrimSpace(p.VisitorEmail)
	p.Purpose = strings.TrimSpace(p.Purpose)
	p.EscortName = strings.TrimSpace(p.EscortName)
	p.EscortPhone = strings.TrimSpace(p.EscortPhone)
	if p.PassType == "" {
		p.PassType = gatepass.PassTypeVisitor
	}
	switch {
	case p.VisitorName == "":
		return p, fmt.Errorf("visitor_name is required")
	case p.VisitorPhone == "":
		return p, fmt.Errorf("visitor_phone is required")
	case p.Purpose == "":
		return p, fmt.Errorf("purpose is required")
	case !p.PassType.Valid():
		return p, fmt.Errorf("unknown pass_type %q", p.PassType)
	case p.ValidFrom.IsZero() || p.ValidUntil.IsZero() || !p.ValidFrom.Before(p.ValidUntil):
		return p, fmt.Errorf("valid_from must be before valid_until")
	case p.EscortRequired && p.EscortName == "":
		return p, fmt.Errorf("escort_name is required when an escort is required")
	}
	p.ValidFrom = p.ValidFrom.UTC()
	p.ValidUntil = p.ValidUntil.UTC()
	return p, nil
}

func statusLabel(s gatepass.ApprovalStatus) string {
	v := strings.ToLower(string(s))
	if v == "" {
		return v
	}
	return strings.ToUpper(v[:1]) + v[1:]
}

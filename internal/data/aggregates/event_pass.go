package aggregates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/nishad-backend/internal/codegen"
	"github.com/yungbote/nishad-backend/internal/data/repos"
	"github.com/yungbote/nishad-backend/internal/domain/access"
	domainagg "github.com/yungbote/nishad-backend/internal/domain/aggregates"
	"github.com/yungbote/nishad-backend/internal/domain/gatepass"
	"github.com/yungbote/nishad-backend/internal/platform/dbctx"
)

type EventPassAggregateDeps struct {
	Base BaseDeps

	Users       repos.UserRepo
	Delegations repos.DelegationRepo
	Events      repos.EventRepo
	Passes      repos.EventPassRepo
	// Entropy feeds pass codes; nil means crypto/rand.
	Entropy io.Reader
}

type eventPassAggregate struct {
	deps EventPassAggregateDeps
}

func NewEventPassAggregate(deps EventPassAggregateDeps) domainagg.EventPassAggregate {
	deps.Base = deps.Base.withDefaults()
	return &eventPassAggregate{deps: deps}
}

func (a *eventPassAggregate) Contract() domainagg.Contract {
	return domainagg.EventPassAggregateContract
}

func (a *eventPassAggregate) configured() bool {
	return a.deps.Users != nil && a.deps.Delegations != nil && a.deps.Events != nil && a.deps.Passes != nil
}

func (a *eventPassAggregate) Issue(ctx context.Context, in domainagg.IssueEventPassInput) (domainagg.IssueEventPassResult, error) {
	const op = "GatePass.Event.Issue"
	var out domainagg.IssueEventPassResult
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "event pass aggregate repos not configured", nil)
	}
	if in.EventID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing event_id", nil)
	}
	if in.AttendeeID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing attendee_id", nil)
	}
	level := in.Access
	if level == "" {
		level = gatepass.AccessGeneral
	}
	if !level.Valid() {
		return out, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("unknown access_level %q", in.Access), nil)
	}
	if in.ValidFrom.IsZero() || in.ValidUntil.IsZero() || !in.ValidFrom.Before(in.ValidUntil) {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "valid_from must be before valid_until", nil)
	}
	if in.CompanionCount < 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "companion_count must not be negative", nil)
	}
	if err := requireCanCreate(ctx, op, a.deps.Delegations, in.Actor); err != nil {
		return out, err
	}
	now := a.deps.Base.now(in.At)

	attempts, err := executeWithCodeRetry(ctx, a.deps.Base, op, func(dbc dbctx.Context, attempt int) error {
		event, err := a.deps.Events.LockByID(dbc, in.EventID)
		if err != nil {
			return err
		}
		if event == nil {
			return NotFoundError(fmt.Sprintf("event not found: %s", in.EventID))
		}
		attendee, err := a.deps.Users.GetByID(dbc, in.AttendeeID)
		if err != nil {
			return err
		}
		if attendee == nil {
			return NotFoundError(fmt.Sprintf("attendee not found: %s", in.AttendeeID))
		}
		existing, err := a.deps.Passes.GetByEventAndAttendee(dbc, event.ID, attendee.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ConflictError(fmt.Sprintf("attendee already holds pass %s for this event", existing.Code))
		}

		code, err := codegen.EventPassCode(now, a.deps.Entropy)
		if err != nil {
			return err
		}
		row, err := a.deps.Passes.Create(dbc, &gatepass.EventPass{
			EventID:             event.ID,
			AttendeeID:          attendee.ID,
			Code:                code,
			Access:              level,
			ValidFrom:           in.ValidFrom.UTC(),
			ValidUntil:          in.ValidUntil.UTC(),
			SpecialInstructions: strings.TrimSpace(in.SpecialInstructions),
			CompanionCount:      in.CompanionCount,
			QRPayload:           codegen.EventPassPayload(code, event.Title, attendee.FullName(), string(level)),
			QRCodeKey:           codegen.EventPassArtifactKey(code),
			IssuedBy:            in.Actor.UserID,
			CreatedAt:           now,
			UpdatedAt:           now,
		})
		if err != nil {
			return err
		}
		out.Pass = row
		return nil
	})
	out.Attempts = attempts
	if err != nil {
		out.Pass = nil
	}
	return out, err
}

func (a *eventPassAggregate) Use(ctx context.Context, in domainagg.UseEventPassInput) (domainagg.UseEventPassResult, error) {
	const op = "GatePass.Event.Use"
	var out domainagg.UseEventPassResult
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "event pass aggregate repos not configured", nil)
	}
	if !access.CanScanPasses(in.Actor) {
		return out, domainagg.Forbidden(op, string(access.CapScanPasses))
	}
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if code == "" {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing pass code", nil)
	}
	now := a.deps.Base.now(in.At)
	gate := strings.TrimSpace(in.Gate)

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		pass, err := a.deps.Passes.LockByCode(dbc, code)
		if err != nil {
			return err
		}
		if pass == nil {
			return NotFoundError(fmt.Sprintf("pass not found: %s", code))
		}
		if reason := pass.InvalidReason(now); reason != "" {
			return InvalidPassError(reason)
		}
		updates := map[string]interface{}{
			"is_used": true,
			"used_at": now,
		}
		if gate != "" {
			updates["entry_gate"] = gate
		}
		if err := a.deps.Passes.UpdateFields(dbc, pass.ID, updates); err != nil {
			return err
		}
		out = domainagg.UseEventPassResult{PassID: pass.ID, Code: pass.Code, UsedAt: now, EntryGate: gate}
		return nil
	})
	return out, err
}

// requireCanCreate loads the actor's delegation only when the role alone
// does not already grant creation.
func requireCanCreate(ctx context.Context, op string, delegations repos.DelegationRepo, actor access.Actor) error {
	if access.CanCreate(actor, nil) {
		return nil
	}
	if actor.UserID == uuid.Nil {
		return domainagg.Forbidden(op, string(access.CapCreateGatePass))
	}
	d, err := delegations.GetByUserID(dbctx.Context{Ctx: ctx}, actor.UserID)
	if err != nil {
		return MapError(op, err)
	}
	if !access.CanCreate(actor, d) {
		return domainagg.Forbidden(op, string(access.CapCreateGatePass))
	}
	return nil
}

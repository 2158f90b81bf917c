package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/nishad-backend/internal/domain/access"
	"github.com/yungbote/nishad-backend/internal/domain/gatepass"
)

var EventPassAggregateContract = Contract{
	Name:             "gatepass.event",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "One pass per (event, attendee); use is a one-way flip under a row lock.",
}

var VisitorPassAggregateContract = Contract{
	Name:             "gatepass.visitor",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Every status write appends a gatepass_log row in the same transaction.",
}

type IssueEventPassInput struct {
	Actor               access.Actor
	EventID             uuid.UUID
	AttendeeID          uuid.UUID
	Access              gatepass.AccessLevel
	ValidFrom           time.Time
	ValidUntil          time.Time
	SpecialInstructions string
	CompanionCount      int
	At                  time.Time
}

type IssueEventPassResult struct {
	Pass     *gatepass.EventPass `json:"pass"`
	Attempts int                 `json:"attempts"`
}

type UseEventPassInput struct {
	Actor access.Actor
	Code  string
	Gate  string
	At    time.Time
}

type UseEventPassResult struct {
	PassID    uuid.UUID `json:"pass_id"`
	Code      string    `json:"code"`
	UsedAt    time.Time `json:"used_at"`
	EntryGate string    `json:"entry_gate,omitempty"`
}

type EventPassAggregate interface {
	Aggregate
	Issue(ctx context.Context, in IssueEventPassInput) (IssueEventPassResult, error)
	Use(ctx context.Context, in UseEventPassInput) (UseEventPassResult, error)
}

type CreateVisitorPassInput struct {
	Actor access.Actor
	Pass  gatepass.VisitorPass
	At    time.Time
}

type VisitorPassDecisionInput struct {
	Actor  access.Actor
	PassID uuid.UUID
	Reason string
	At     time.Time
}

type VisitorPassResult struct {
	Pass   *gatepass.VisitorPass   `json:"pass"`
	Status gatepass.ApprovalStatus `json:"status"`
	Log    *gatepass.GatePassLog   `json:"log"`
}

type VisitorPassAggregate interface {
	Aggregate
	Create(ctx context.Context, in CreateVisitorPassInput) (VisitorPassResult, error)
	Approve(ctx context.Context, in VisitorPassDecisionInput) (VisitorPassResult, error)
	Reject(ctx context.Context, in VisitorPassDecisionInput) (VisitorPassResult, error)
}

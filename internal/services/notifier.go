package services

import (
	"context"

	"github.com/google/uuid"

	types "github.com/yungbote/nishad-backend/internal/domain"
	"github.com/yungbote/nishad-backend/internal/domain/assets"
	"github.com/yungbote/nishad-backend/internal/domain/gatepass"
	"github.com/yungbote/nishad-backend/internal/realtime"
)

// Notifier is called only after the write it reports has committed.
type Notifier interface {
	AssignmentPending(ctx context.Context, checkout *types.AssetCheckout, asset *types.Asset)
	CheckoutChanged(ctx context.Context, checkout *types.AssetCheckout, action string)
	EventPassIssued(ctx context.Context, pass *types.EventPass)
	VisitorPassDecided(ctx context.Context, pass *types.VisitorPass)
	DelegationChanged(ctx context.Context, d *types.GatePassDelegation)
}

type notifier struct {
	emit SSEEmitter
}

func NewNotifier(emit SSEEmitter) Notifier {
	return &notifier{emit: emit}
}

func (n *notifier) send(ctx context.Context, userID uuid.UUID, event realtime.SSEEvent, data map[string]any) {
	if n == nil || n.emit == nil || userID == uuid.Nil {
		return
	}
	n.emit.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.UserChannel(userID),
		Event:   event,
		Data:    data,
	})
}

func (n *notifier) AssignmentPending(ctx context.Context, checkout *types.AssetCheckout, asset *types.Asset) {
	if checkout == nil {
		return
	}
	data := map[string]any{
		"checkout_id":          checkout.ID,
		"expected_return_date": checkout.ExpectedReturnDate,
		"purpose":              checkout.Purpose,
	}
	if asset != nil {
		data["asset_id"] = asset.ID
		data["asset_code"] = asset.Code
		data["asset_name"] = asset.Name
	}
	n.send(ctx, checkout.AssigneeID, realtime.SSEEventAssignmentPending, data)
}

// CheckoutChanged tells the assigning administrator what the assignee did.
func (n *notifier) CheckoutChanged(ctx context.Context, checkout *types.AssetCheckout, action string) {
	if checkout == nil {
		return
	}
	var event realtime.SSEEvent
	switch action {
	case assets.AssetEventAccepted:
		event = realtime.SSEEventAssignmentAccepted
	case assets.AssetEventRejected:
		event = realtime.SSEEventAssignmentRejected
	case assets.AssetEventReturned:
		event = realtime.SSEEventAssetReturned
	case assets.AssetEventLost:
		event = realtime.SSEEventAssetLost
	default:
		return
	}
	n.send(ctx, checkout.AssignedBy, event, map[string]any{
		"checkout_id": checkout.ID,
		"asset_id":    checkout.AssetID,
		"assignee_id": checkout.AssigneeID,
		"status":      checkout.Status,
		"reason":      checkout.RejectionReason,
	})
}

func (n *notifier) EventPassIssued(ctx context.Context, pass *types.EventPass) {
	if pass == nil {
		return
	}
	n.send(ctx, pass.AttendeeID, realtime.SSEEventEventPassIssued, map[string]any{
		"pass_id":     pass.ID,
		"code":        pass.Code,
		"event_id":    pass.EventID,
		"valid_from":  pass.ValidFrom,
		"valid_until": pass.ValidUntil,
	})
}

func (n *notifier) VisitorPassDecided(ctx context.Context, pass *types.VisitorPass) {
	if pass == nil || (pass.Status != gatepass.ApprovalApproved && pass.Status != gatepass.ApprovalRejected) {
		return
	}
	n.send(ctx, pass.CreatedBy, realtime.SSEEventVisitorPassDecided, map[string]any{
		"pass_id":          pass.ID,
		"pass_number":      pass.PassNumber,
		"status":           pass.Status,
		"rejection_reason": pass.RejectionReason,
	})
}

func (n *notifier) DelegationChanged(ctx context.Context, d *types.GatePassDelegation) {
	if d == nil {
		return
	}
	n.send(ctx, d.UserID, realtime.SSEEventDelegationChanged, map[string]any{
		"can_create_gatepass": d.CanCreateGatePass,
	})
}

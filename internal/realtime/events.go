package realtime

type SSEEvent string

const (
	SSEEventAssignmentPending  SSEEvent = "AssignmentPending"
	SSEEventAssignmentAccepted SSEEvent = "AssignmentAccepted"
	SSEEventAssignmentRejected SSEEvent = "AssignmentRejected"
	SSEEventAssetReturned      SSEEvent = "AssetReturned"
	SSEEventAssetLost          SSEEvent = "AssetLost"
	SSEEventEventPassIssued    SSEEvent = "EventPassIssued"
	SSEEventVisitorPassDecided SSEEvent = "VisitorPassDecided"
	SSEEventDelegationChanged  SSEEvent = "DelegationChanged"
)

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}

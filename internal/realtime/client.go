package realtime

import (
	"github.com/google/uuid"

	"github.com/yungbote/nishad-backend/internal/platform/logger"
)

type SSEClient struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Channels map[string]bool
	Outbound chan SSEMessage
	done     chan struct{}
	Logger   *logger.Logger
}

// UserChannel is the channel every stream of a user is subscribed to.
func UserChannel(userID uuid.UUID) string {
	return "user:" + userID.String()
}

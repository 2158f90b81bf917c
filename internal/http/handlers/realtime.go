package handlers

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/nishad-backend/internal/http/response"
	"github.com/yungbote/nishad-backend/internal/platform/ctxutil"
	"github.com/yungbote/nishad-backend/internal/platform/logger"
	"github.com/yungbote/nishad-backend/internal/realtime"
)

type RealtimeHandler struct {
	Log *logger.Logger
	Hub *realtime.SSEHub

	mu      sync.Mutex
	clients map[uuid.UUID]*realtime.SSEClient // key: SessionID (UserToken.ID)
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{
		Log:     log.With("handler", "RealtimeHandler"),
		Hub:     hub,
		clients: make(map[uuid.UUID]*realtime.SSEClient),
	}
}

// SSEStream subscribes the session to its user's channel. A second stream
// from the same session replaces the first.
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil || rd.SessionID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("not authenticated"))
		return
	}
	userID, sessionID := rd.UserID, rd.SessionID

	h.mu.Lock()
	if existing, ok := h.clients[sessionID]; ok {
		h.Hub.CloseClient(existing)
		delete(h.clients, sessionID)
	}
	client := h.Hub.NewSSEClient(userID)
	h.clients[sessionID] = client
	h.mu.Unlock()

	h.Log.Debug("sse stream open", "user_id", userID, "session_id", sessionID, "client_id", client.ID)
	h.Hub.AddChannel(client, realtime.UserChannel(userID))

	h.Hub.ServeHTTP(c.Writer, c.Request, client)

	h.mu.Lock()
	if h.clients[sessionID] == client {
		delete(h.clients, sessionID)
	}
	h.mu.Unlock()
	h.Hub.CloseClient(client)
}

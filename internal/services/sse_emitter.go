package services

import (
	"context"
	"time"

	"github.com/yungbote/nishad-backend/internal/observability"
	"github.com/yungbote/nishad-backend/internal/platform/logger"
	"github.com/yungbote/nishad-backend/internal/realtime"
	"github.com/yungbote/nishad-backend/internal/realtime/bus"
)

type SSEEmitter interface {
	Emit(ctx context.Context, msg realtime.SSEMessage)
}

type HubEmitter struct {
	Hub     *realtime.SSEHub
	Metrics *observability.Metrics
}

func (e *HubEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	if e == nil || e.Hub == nil {
		return
	}
	e.Hub.Broadcast(msg)
	e.Metrics.IncNotification(string(msg.Event), "local")
}

// RedisEmitter publishes through the bus so every API instance can deliver
// to its own clients. A failed publish falls back to the local hub.
type RedisEmitter struct {
	Bus      bus.Bus
	Fallback *realtime.SSEHub
	Log      *logger.Logger
	Metrics  *observability.Metrics
}

func (e *RedisEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	if e == nil || e.Bus == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	err := e.Bus.Publish(pctx, msg)
	if err == nil {
		e.Metrics.IncNotification(string(msg.Event), "published")
		return
	}
	e.Metrics.IncNotification(string(msg.Event), "publish_failed")
	if e.Log != nil {
		e.Log.Warn("notification publish failed", "event", msg.Event, "channel", msg.Channel, "error", err)
	}
	if e.Fallback != nil {
		e.Fallback.Broadcast(msg)
	}
}

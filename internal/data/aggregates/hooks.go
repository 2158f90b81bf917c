package aggregates

import (
	"strings"
	"time"

	"github.com/yungbote/nishad-backend/internal/observability"
	"github.com/yungbote/nishad-backend/internal/platform/logger"
)

// Hooks captures aggregate-level observability events.
type Hooks interface {
	ObserveOperation(name, status string, dur time.Duration)
	IncConflict(name string)
	IncRetry(name string)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncConflict(string)                             {}
func (noopHooks) IncRetry(string)                                {}

type observabilityHooks struct {
	metrics *observability.Metrics
}

// NewObservabilityHooks creates aggregate hooks backed by observability metrics.
func NewObservabilityHooks(metrics *observability.Metrics) Hooks {
	if metrics == nil {
		return noopHooks{}
	}
	return &observabilityHooks{metrics: metrics}
}

func (h *observabilityHooks) ObserveOperation(name, status string, dur time.Duration) {
	if h == nil || h.metrics == nil {
		return
	}
	h.metrics.ObserveAggregateOperation(strings.TrimSpace(name), strings.TrimSpace(status), dur)
}

func (h *observabilityHooks) IncConflict(name string) {
	if h == nil || h.metrics == nil {
		return
	}
	h.metrics.IncAggregateConflict(strings.TrimSpace(name))
}

func (h *observabilityHooks) IncRetry(name string) {
	if h == nil || h.metrics == nil {
		return
	}
	h.metrics.IncAggregateRetry(strings.TrimSpace(name))
}

type logHooks struct {
	log *logger.Logger
}

// NewLogHooks logs conflicts and code retries at debug level.
func NewLogHooks(log *logger.Logger) Hooks {
	if log == nil {
		return noopHooks{}
	}
	return &logHooks{log: log.With("component", "aggregates")}
}

func (h *logHooks) ObserveOperation(name, status string, dur time.Duration) {
	if status == "success" {
		return
	}
	h.log.Debug("aggregate write refused", "op", name, "status", status, "duration_ms", dur.Milliseconds())
}

func (h *logHooks) IncConflict(name string) { h.log.Debug("aggregate conflict", "op", name) }
func (h *logHooks) IncRetry(name string)    { h.log.Debug("aggregate retry", "op", name) }

type multiHooks []Hooks

// CombineHooks fans every signal out to each non-nil hook.
func CombineHooks(hooks ...Hooks) Hooks {
	out := make(multiHooks, 0, len(hooks))
	for _, h := range hooks {
		if h == nil {
			continue
		}
		if _, ok := h.(noopHooks); ok {
			continue
		}
		out = append(out, h)
	}
	switch len(out) {
	case 0:
		return noopHooks{}
	case 1:
		return out[0]
	}
	return out
}

func (m multiHooks) ObserveOperation(name, status string, dur time.Duration) {
	for _, h := range m {
		h.ObserveOperation(name, status, dur)
	}
}

func (m multiHooks) IncConflict(name string) {
	for _, h := range m {
		h.IncConflict(name)
	}
}

func (m multiHooks) IncRetry(name string) {
	for _, h := range m {
		h.IncRetry(name)
	}
}

package aggregates

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/nishad-backend/internal/domain/aggregates"
	"github.com/yungbote/nishad-backend/internal/observability"
	"github.com/yungbote/nishad-backend/internal/platform/dbctx"
	"github.com/yungbote/nishad-backend/internal/platform/logger"
)

type BaseDeps struct {
	DB       *gorm.DB
	Log      *logger.Logger
	Runner   TxRunner
	Hooks    Hooks
	CASGuard CASGuard
	// Clock defaults to time.Now in UTC.
	Clock func() time.Time
	// MaxCodeAttempts bounds re-counting after a generated code collides.
	MaxCodeAttempts int
}

const defaultMaxCodeAttempts = 5

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.CASGuard.db == nil {
		d.CASGuard = NewCASGuard(d.DB)
	}
	if d.Clock == nil {
		d.Clock = func() time.Time { return time.Now().UTC() }
	}
	if d.MaxCodeAttempts <= 0 {
		d.MaxCodeAttempts = defaultMaxCodeAttempts
	}
	return d
}

func (d BaseDeps) now(at time.Time) time.Time {
	if !at.IsZero() {
		return at.UTC()
	}
	if d.Clock == nil {
		return time.Now().UTC()
	}
	return d.Clock().UTC()
}

func executeWrite(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	start := time.Now()
	deps = deps.withDefaults()
	op = strings.TrimSpace(op)
	if op == "" {
		op = "aggregate.write"
	}
	ctx, span := observability.StartSpan(ctx, op, attribute.String("aggregate.op", op))
	defer span.End()

	err := deps.Runner.InTx(ctx, fn)
	mapped := MapError(op, err)

	status := "success"
	if mapped != nil {
		status = aggregateErrorStatus(mapped)
		span.SetStatus(codes.Error, status)
		span.SetAttributes(attribute.String("aggregate.error_code", status))
		if domainagg.IsCode(mapped, domainagg.CodeConflict) {
			deps.Hooks.IncConflict(op)
		}
		if domainagg.IsCode(mapped, domainagg.CodeRetryable) {
			deps.Hooks.IncRetry(op)
		}
		if deps.Log != nil && status == string(domainagg.CodeInternal) {
			deps.Log.Error("aggregate write failed", "op", op, "error", err)
		}
	}
	deps.Hooks.ObserveOperation(op, status, time.Since(start))
	return mapped
}

// executeWithCodeRetry runs one executeWrite per attempt, retrying only when
// the previous attempt lost a unique-index race on a generated code.
func executeWithCodeRetry(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context, attempt int) error) (int, error) {
	deps = deps.withDefaults()
	return retryCodes(ctx, deps, op, func(attempt int) error {
		return executeWrite(ctx, deps, op, func(dbc dbctx.Context) error {
			return fn(dbc, attempt)
		})
	})
}

func aggregateErrorStatus(err error) string {
	if err == nil {
		return "success"
	}
	code := strings.TrimSpace(string(domainagg.CodeOf(err)))
	if code == "" {
		code = strings.TrimSpace(string(domainagg.CodeOf(MapError("aggregate.status", err))))
	}
	if code == "" {
		return "failure"
	}
	return code
}

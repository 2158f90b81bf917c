package aggregates

import (
	"context"
	"fmt"

	"github.com/yungbote/nishad-backend/internal/codegen"
	domainagg "github.com/yungbote/nishad-backend/internal/domain/aggregates"
)

func retryCodes(ctx context.Context, deps BaseDeps, op string, fn func(attempt int) error) (int, error) {
	n, err := codegen.Retry(ctx, deps.MaxCodeAttempts, func(err error) bool {
		if !isStoreConflict(err) {
			return false
		}
		deps.Hooks.IncRetry(op)
		return true
	}, fn)
	if err != nil && n >= deps.MaxCodeAttempts && isStoreConflict(err) {
		msg := fmt.Sprintf("generated code is not unique after %d attempts; retry the request", n)
		return n, domainagg.NewError(domainagg.CodeConflict, op, msg, err)
	}
	return n, err
}

package aggregates

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/nishad-backend/internal/domain/aggregates"
)

var (
	// ErrValidation indicates caller input validation failure.
	ErrValidation = errors.New("aggregate validation")
	// ErrNotFound indicates a referenced row does not exist.
	ErrNotFound = errors.New("aggregate not found")
	// ErrConflict indicates a domain rule rejected the write because of current state elsewhere.
	ErrConflict = errors.New("aggregate conflict")
	// ErrInvalidState indicates the entity is not in a state that allows the transition.
	ErrInvalidState = errors.New("aggregate invalid state")
	// ErrInvalidPass indicates a gate pass is not currently valid.
	ErrInvalidPass = errors.New("aggregate invalid pass")
	// ErrRetryable indicates transient retryable failure.
	ErrRetryable = errors.New("aggregate retryable")
)

// ValidationError tags an error as validation failure.
func ValidationError(msg string) error {
	return errors.Join(ErrValidation, errors.New(strings.TrimSpace(msg)))
}

// NotFoundError tags an error as a missing row.
func NotFoundError(msg string) error {
	return errors.Join(ErrNotFound, errors.New(strings.TrimSpace(msg)))
}

// ConflictError tags an error as conflict failure.
func ConflictError(msg string) error {
	return errors.Join(ErrConflict, errors.New(strings.TrimSpace(msg)))
}

// StateError tags an error as a disallowed state transition.
func StateError(msg string) error {
	return errors.Join(ErrInvalidState, errors.New(strings.TrimSpace(msg)))
}

// InvalidPassError tags a refused gate scan.
func InvalidPassError(msg string) error {
	return errors.Join(ErrInvalidPass, errors.New(strings.TrimSpace(msg)))
}

// RetryableError tags an error as retryable failure.
func RetryableError(msg string) error {
	return errors.Join(ErrRetryable, errors.New(strings.TrimSpace(msg)))
}

// MapError maps infrastructure/domain failures into aggregate error codes.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var aggErr *domainagg.Error
	if errors.As(err, &aggErr) {
		return err
	}
	switch {
	case errors.Is(err, ErrValidation):
		return newTagged(domainagg.CodeValidation, op, err, ErrValidation)
	case errors.Is(err, ErrNotFound):
		return newTagged(domainagg.CodeNotFound, op, err, ErrNotFound)
	case errors.Is(err, ErrConflict):
		return newTagged(domainagg.CodeConflict, op, err, ErrConflict)
	case errors.Is(err, ErrInvalidState):
		return newTagged(domainagg.CodeInvalidState, op, err, ErrInvalidState)
	case errors.Is(err, ErrInvalidPass):
		return newTagged(domainagg.CodeInvalidPass, op, err, ErrInvalidPass)
	case errors.Is(err, ErrRetryable):
		return newTagged(domainagg.CodeRetryable, op, err, ErrRetryable)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domainagg.Wrap(domainagg.CodeNotFound, op, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domainagg.Wrap(domainagg.CodeConflict, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domainagg.Wrap(domainagg.CodeRetryable, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return domainagg.Wrap(domainagg.CodeConflict, op, err) // unique_violation
		case "23503":
			return domainagg.Wrap(domainagg.CodePreconditionFailed, op, err) // foreign_key_violation
		case "40001", "40P01", "55P03":
			return domainagg.Wrap(domainagg.CodeRetryable, op, err) // serialization/deadlock/lock_not_available
		}
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "duplicate key"),
		strings.Contains(msg, "unique constraint failed"),
		strings.Contains(msg, "already exists"):
		return domainagg.Wrap(domainagg.CodeConflict, op, err)
	case strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "serialization"),
		strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "temporar"):
		return domainagg.Wrap(domainagg.CodeRetryable, op, err)
	default:
		return domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
}

// newTagged drops the sentinel text from the message so clients see only
// the rule that was violated.
func newTagged(code domainagg.ErrorCode, op string, err error, sentinel error) error {
	msg := strings.TrimSpace(strings.TrimPrefix(err.Error(), sentinel.Error()))
	return domainagg.NewError(code, op, msg, err)
}

// isStoreConflict reports a conflict raised by a unique index rather than by
// an explicit domain check. Only those are worth re-counting a code for.
func isStoreConflict(err error) bool {
	if err == nil || errors.Is(err, ErrConflict) {
		return false
	}
	return domainagg.IsCode(MapError("aggregate.retry", err), domainagg.CodeConflict)
}

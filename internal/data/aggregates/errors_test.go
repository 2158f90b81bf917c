package aggregates

import (
	"errors"
	"fmt"
	"testing"

	domainagg "github.com/yungbote/nishad-backend/internal/domain/aggregates"
	"gorm.io/gorm"
)

func TestMapError_Validation(t *testing.T) {
	err := MapError("op", ValidationError("bad input"))
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_Conflict(t *testing.T) {
	err := MapError("op", ConflictError("stale"))
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("expected conflict code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_NotFound(t *testing.T) {
	err := MapError("op", gorm.ErrRecordNotFound)
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_PassthroughAggregateError(t *testing.T) {
	in := domainagg.NewError(domainagg.CodeRetryable, "op", "retry", errors.New("boom"))
	out := MapError("other", in)
	if out != in {
		t.Fatalf("expected passthrough aggregate error")
	}
}

func TestMapError_TaggedCodes(t *testing.T) {
	cases := []struct {
		err  error
		want domainagg.ErrorCode
	}{
		{StateError("checkout is RETURNED"), domainagg.CodeInvalidState},
		{InvalidPassError("pass already used"), domainagg.CodeInvalidPass},
		{NotFoundError("asset not found"), domainagg.CodeNotFound},
		{RetryableError("lock timeout"), domainagg.CodeRetryable},
		{errors.New("UNIQUE constraint failed: asset.code"), domainagg.CodeConflict},
		{errors.New("database is locked"), domainagg.CodeRetryable},
		{gorm.ErrDuplicatedKey, domainagg.CodeConflict},
		{errors.New("boom"), domainagg.CodeInternal},
	}
	for _, tc := range cases {
		if got := domainagg.CodeOf(MapError("op", tc.err)); got != tc.want {
			t.Fatalf("MapError(%v): want=%s got=%s", tc.err, tc.want, got)
		}
	}
}

func TestMapError_PassthroughWrappedAggregateError(t *testing.T) {
	in := domainagg.Forbidden("op", "manage_assets")
	out := MapError("other", fmt.Errorf("wrapped: %w", in))
	if !domainagg.IsCode(out, domainagg.CodeForbidden) {
		t.Fatalf("expected forbidden to survive, got=%v", out)
	}
}

func TestIsStoreConflict(t *testing.T) {
	if !isStoreConflict(errors.New("UNIQUE constraint failed: visitor_pass.pass_number")) {
		t.Fatalf("unique index failure should be a store conflict")
	}
	if !isStoreConflict(MapError("op", errors.New(`ERROR: duplicate key value violates unique constraint "idx_asset_code"`))) {
		t.Fatalf("mapped duplicate key should be a store conflict")
	}
	if isStoreConflict(MapError("op", ConflictError("asset already has an open checkout"))) {
		t.Fatalf("domain conflict must not be retried")
	}
	if isStoreConflict(StateError("x")) || isStoreConflict(nil) {
		t.Fatalf("non-conflicts are not store conflicts")
	}
}

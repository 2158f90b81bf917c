package testutil

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/yungbote/nishad-backend/internal/data/aggregates"
	"github.com/yungbote/nishad-backend/internal/platform/dbctx"
)

// InjectedTxRunner is a test helper for aggregate integration tests.
// With DB set the body runs inside a real transaction, so an injected commit
// failure rolls back every row the body wrote, audit rows included.
type InjectedTxRunner struct {
	mu sync.Mutex

	DB *gorm.DB

	FailBegin      error
	FailBeforeBody error
	FailCommit     error

	BeginCalls    int
	CommitCalls   int
	RollbackCalls int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.BeginCalls++
	failBegin := r.FailBegin
	failBeforeBody := r.FailBeforeBody
	failCommit := r.FailCommit
	db := r.DB
	r.mu.Unlock()

	if failBegin != nil {
		return failBegin
	}
	if failBeforeBody != nil {
		r.count(&r.RollbackCalls)
		return failBeforeBody
	}
	if fn == nil {
		r.count(&r.CommitCalls)
		return nil
	}
	body := func(dbc dbctx.Context) error {
		if err := fn(dbc); err != nil {
			return err
		}
		return failCommit
	}
	var err error
	if db != nil {
		err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return body(dbctx.Context{Ctx: ctx, Tx: tx})
		})
	} else {
		err = body(dbctx.Context{Ctx: ctx})
	}
	if err != nil {
		r.count(&r.RollbackCalls)
		return err
	}
	r.count(&r.CommitCalls)
	return nil
}

func (r *InjectedTxRunner) count(n *int) {
	r.mu.Lock()
	*n++
	r.mu.Unlock()
}

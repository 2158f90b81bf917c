package aggregates_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/nishad-backend/internal/data/aggregates"
	aggtestutil "github.com/yungbote/nishad-backend/internal/data/aggregates/testutil"
	"github.com/yungbote/nishad-backend/internal/data/repos"
	repotestutil "github.com/yungbote/nishad-backend/internal/data/repos/testutil"
	types "github.com/yungbote/nishad-backend/internal/domain"
	"github.com/yungbote/nishad-backend/internal/domain/access"
	domainagg "github.com/yungbote/nishad-backend/internal/domain/aggregates"
	"github.com/yungbote/nishad-backend/internal/domain/user"
	"github.com/yungbote/nishad-backend/internal/platform/dbctx"
)

var testNow = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	ctx   context.Context
	db    *gorm.DB
	repos repos.Set
	hooks *aggtestutil.HooksRecorder
	base  aggregates.BaseDeps
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := repotestutil.DB(t)
	log := repotestutil.Logger(t)
	hooks := &aggtestutil.HooksRecorder{}
	return &fixture{
		ctx:   context.Background(),
		db:    db,
		repos: repos.NewSet(db, log),
		hooks: hooks,
		base: aggregates.BaseDeps{
			DB:    db,
			Log:   log,
			Hooks: hooks,
			Clock: func() time.Time { return testNow },
		},
	}
}

func (f *fixture) user(t *testing.T, role user.Role) (*types.User, access.Actor) {
	t.Helper()
	u := repotestutil.SeedUser(t, f.ctx, f.db, role)
	return u, access.Actor{UserID: u.ID, Role: u.Role}
}

func (f *fixture) checkoutAgg(base aggregates.BaseDeps) domainagg.CheckoutAggregate {
	return aggregates.NewCheckoutAggregate(aggregates.CheckoutAggregateDeps{
		Base:      base,
		Users:     f.repos.Users,
		Assets:    f.repos.Assets,
		Checkouts: f.repos.Checkouts,
		Events:    f.repos.AssetEvents,
	})
}

func (f *fixture) assetAgg() domainagg.AssetAggregate {
	return aggregates.NewAssetAggregate(aggregates.AssetAggregateDeps{
		Base:        f.base,
		Assets:      f.repos.Assets,
		Checkouts:   f.repos.Checkouts,
		Maintenance: f.repos.Maintenance,
		Events:      f.repos.AssetEvents,
	})
}

func (f *fixture) eventPassAgg(entropy io.Reader) domainagg.EventPassAggregate {
	return aggregates.NewEventPassAggregate(aggregates.EventPassAggregateDeps{
		Base:        f.base,
		Users:       f.repos.Users,
		Delegations: f.repos.Delegations,
		Events:      f.repos.Events,
		Passes:      f.repos.EventPasses,
		Entropy:     entropy,
	})
}

func (f *fixture) visitorPassAgg() domainagg.VisitorPassAggregate {
	return aggregates.NewVisitorPassAggregate(aggregates.VisitorPassAggregateDeps{
		Base:        f.base,
		Delegations: f.repos.Delegations,
		Passes:      f.repos.VisitorPasses,
		Logs:        f.repos.GatePassLogs,
	})
}

func (f *fixture) asset(t *testing.T, id uuid.UUID) *types.Asset {
	t.Helper()
	a, err := f.repos.Assets.GetByID(dbctx.Context{Ctx: f.ctx}, id)
	if err != nil || a == nil {
		t.Fatalf("load asset %s: %v", id, err)
	}
	return a
}

func (f *fixture) count(t *testing.T, model any, where string, args ...any) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(model).Where(where, args...).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func requireCode(t *testing.T, err error, want domainagg.ErrorCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	if got := domainagg.CodeOf(err); got != want {
		t.Fatalf("error code: want=%s got=%s (%v)", want, got, err)
	}
}

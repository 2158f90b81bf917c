package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/nishad-backend/internal/data/aggregates"
	"github.com/yungbote/nishad-backend/internal/data/repos"
	repotestutil "github.com/yungbote/nishad-backend/internal/data/repos/testutil"
	types "github.com/yungbote/nishad-backend/internal/domain"
	"github.com/yungbote/nishad-backend/internal/domain/access"
	domainagg "github.com/yungbote/nishad-backend/internal/domain/aggregates"
	"github.com/yungbote/nishad-backend/internal/domain/user"
	"github.com/yungbote/nishad-backend/internal/platform/ctxutil"
	"github.com/yungbote/nishad-backend/internal/platform/gcp"
	"github.com/yungbote/nishad-backend/internal/platform/logger"
	"github.com/yungbote/nishad-backend/internal/platform/qrcode"
	"github.com/yungbote/nishad-backend/internal/realtime"
)

type recordingEmitter struct {
	mu   sync.Mutex
	msgs []realtime.SSEMessage
}

func (e *recordingEmitter) Emit(_ context.Context, msg realtime.SSEMessage) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.msgs = append(e.msgs, msg)
}

func (e *recordingEmitter) events(channel string) []realtime.SSEEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []realtime.SSEEvent
	for _, m := range e.msgs {
		if m.Channel == channel {
			out = append(out, m.Event)
		}
	}
	return out
}

type svcFixture struct {
	db        *gorm.DB
	log       *logger.Logger
	repos     repos.Set
	bucket    gcp.BucketService
	artifacts ArtifactService
	emitter   *recordingEmitter
	notify    Notifier
}

func newSvcFixture(t *testing.T) *svcFixture {
	t.Helper()
	db := repotestutil.DB(t)
	log := repotestutil.Logger(t)
	bucket, err := gcp.NewLocalBucketService(log, t.TempDir())
	if err != nil {
		t.Fatalf("local bucket: %v", err)
	}
	renderer, err := qrcode.NewCardRenderer("")
	if err != nil {
		t.Fatalf("card renderer: %v", err)
	}
	emitter := &recordingEmitter{}
	return &svcFixture{
		db:        db,
		log:       log,
		repos:     repos.NewSet(db, log),
		bucket:    bucket,
		artifacts: NewArtifactService(log, bucket, renderer),
		emitter:   emitter,
		notify:    NewNotifier(emitter),
	}
}

func (f *svcFixture) base() aggregates.BaseDeps {
	return aggregates.BaseDeps{DB: f.db, Log: f.log}
}

func (f *svcFixture) user(t *testing.T, role user.Role) (*types.User, context.Context) {
	t.Helper()
	u := repotestutil.SeedUser(t, context.Background(), f.db, role)
	return u, actorCtx(u)
}

func actorCtx(u *types.User) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{
		UserID:    u.ID,
		Role:      string(u.Role),
		SessionID: uuid.New(),
	})
}

func (f *svcFixture) checkoutService() CheckoutService {
	agg := aggregates.NewCheckoutAggregate(aggregates.CheckoutAggregateDeps{
		Base:      f.base(),
		Users:     f.repos.Users,
		Assets:    f.repos.Assets,
		Checkouts: f.repos.Checkouts,
		Events:    f.repos.AssetEvents,
	})
	return NewCheckoutService(f.log, agg, f.repos, f.notify, nil)
}

func (f *svcFixture) assetService() AssetService {
	agg := aggregates.NewAssetAggregate(aggregates.AssetAggregateDeps{
		Base:        f.base(),
		Assets:      f.repos.Assets,
		Checkouts:   f.repos.Checkouts,
		Maintenance: f.repos.Maintenance,
		Events:      f.repos.AssetEvents,
	})
	return NewAssetService(f.log, agg, f.repos, f.artifacts)
}

func (f *svcFixture) eventPassService() EventPassService {
	agg := aggregates.NewEventPassAggregate(aggregates.EventPassAggregateDeps{
		Base:        f.base(),
		Users:       f.repos.Users,
		Delegations: f.repos.Delegations,
		Events:      f.repos.Events,
		Passes:      f.repos.EventPasses,
	})
	return NewEventPassService(f.log, agg, f.repos, f.artifacts, f.notify, nil)
}

func (f *svcFixture) visitorPassService() VisitorPassService {
	agg := aggregates.NewVisitorPassAggregate(aggregates.VisitorPassAggregateDeps{
		Base:        f.base(),
		Delegations: f.repos.Delegations,
		Passes:      f.repos.VisitorPasses,
		Logs:        f.repos.GatePassLogs,
	})
	return NewVisitorPassService(f.log, agg, f.repos, f.artifacts, f.notify)
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

func TestActorFromContextRequiresAuthentication(t *testing.T) {
	_, err := actorFromContext(context.Background())
	if !errors.Is(err, errUnauthenticated) {
		t.Fatalf("want errUnauthenticated, got %v", err)
	}
	id := uuid.New()
	ctx := ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: id, Role: "coordinator"})
	got, err := actorFromContext(ctx)
	if err != nil {
		t.Fatalf("actorFromContext: %v", err)
	}
	if got != (access.Actor{UserID: id, Role: user.RoleCoordinator}) {
		t.Fatalf("actor: got=%+v", got)
	}
}

var pngMagic = []byte("\x89PNG")

func soon() time.Time { return time.Now().UTC().Add(72 * time.Hour) }

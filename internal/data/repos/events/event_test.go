package events

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/nishad-backend/internal/data/repos/testutil"
	domainuser "github.com/yungbote/nishad-backend/internal/domain/user"
	"github.com/yungbote/nishad-backend/internal/platform/dbctx"
)

func TestEventRepoListUpcoming(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	admin := testutil.SeedUser(t, ctx, tx, domainuser.RoleAdministrator)
	now := time.Now().UTC()
	past := testutil.SeedEvent(t, ctx, tx, admin.ID, now.Add(-48*time.Hour))
	later := testutil.SeedEvent(t, ctx, tx, admin.ID, now.Add(72*time.Hour))
	soon := testutil.SeedEvent(t, ctx, tx, admin.ID, now.Add(2*time.Hour))

	repo := NewEventRepo(db, testutil.Logger(t))

	got, err := repo.ListUpcoming(dbc, now, 10)
	if err != nil {
		t.Fatalf("ListUpcoming: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListUpcoming: want=2 got=%d", len(got))
	}
	if got[0].ID != soon.ID || got[1].ID != later.ID {
		t.Fatalf("ListUpcoming: wrong order")
	}

	row, err := repo.GetByID(dbc, past.ID)
	if err != nil || row == nil {
		t.Fatalf("GetByID: row=%v err=%v", row, err)
	}
	missing, err := repo.GetByID(dbc, uuid.New())
	if err != nil || missing != nil {
		t.Fatalf("GetByID (missing): row=%v err=%v", missing, err)
	}
}

package assets

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/nishad-backend/internal/data/repos/testutil"
	types "github.com/yungbote/nishad-backend/internal/domain"
	domainassets "github.com/yungbote/nishad-backend/internal/domain/assets"
	domainuser "github.com/yungbote/nishad-backend/internal/domain/user"
	"github.com/yungbote/nishad-backend/internal/platform/dbctx"
)

func TestCheckoutRepoOpenAndOverdue(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	log := testutil.Logger(t)

	admin := testutil.SeedUser(t, ctx, tx, domainuser.RoleAdministrator)
	member := testutil.SeedUser(t, ctx, tx, domainuser.RoleMember)
	asset := testutil.SeedAsset(t, ctx, tx, admin.ID, domainassets.AssetStatusAssigned)

	repo := NewCheckoutRepo(db, log)
	now := time.Now().UTC()

	closed := &types.AssetCheckout{
		AssetID:            asset.ID,
		AssigneeID:         member.ID,
		AssignedBy:         admin.ID,
		Status:             domainassets.CheckoutReturned,
		AssignmentDate:     now.Add(-72 * time.Hour),
		ExpectedReturnDate: now.Add(-48 * time.Hour),
		Purpose:            "rally",
		IsReturned:         true,
	}
	open := &types.AssetCheckout{
		AssetID:            asset.ID,
		AssigneeID:         member.ID,
		AssignedBy:         admin.ID,
		Status:             domainassets.CheckoutInUse,
		AssignmentDate:     now.Add(-24 * time.Hour),
		ExpectedReturnDate: now.Add(-time.Hour),
		Purpose:            "door to door",
	}
	if _, err := repo.Create(dbc, []*types.AssetCheckout{closed, open}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetOpenByAssetID(dbc, asset.ID)
	if err != nil {
		t.Fatalf("GetOpenByAssetID: %v", err)
	}
	if got == nil || got.ID != open.ID {
		t.Fatalf("GetOpenByAssetID: want=%s got=%+v", open.ID, got)
	}

	n, err := repo.CountOpenByAssetID(dbc, asset.ID)
	if err != nil || n != 1 {
		t.Fatalf("CountOpenByAssetID: n=%d err=%v", n, err)
	}

	overdue, err := repo.ListOverdue(dbc, now)
	if err != nil {
		t.Fatalf("ListOverdue: %v", err)
	}
	if len(overdue) != 1 || overdue[0].ID != open.ID {
		t.Fatalf("ListOverdue: unexpected %+v", overdue)
	}

	late, err := repo.CountOverdue(dbc, now)
	if err != nil || late != 1 {
		t.Fatalf("CountOverdue: n=%d err=%v", late, err)
	}
	byStatus, err := repo.CountByStatus(dbc, member.ID)
	if err != nil {
		t.Fatalf("CountByStatus: %v", err)
	}
	if byStatus[domainassets.CheckoutReturned] != 1 || byStatus[domainassets.CheckoutInUse] != 1 || byStatus[domainassets.CheckoutPending] != 0 {
		t.Fatalf("CountByStatus: %v", byStatus)
	}
	if none, err := repo.CountByStatus(dbc, admin.ID); err != nil || len(none) != 0 {
		t.Fatalf("CountByStatus(admin): %v err=%v", none, err)
	}

	ids, err := repo.ListAssigneeIDs(dbc, asset.ID)
	if err != nil {
		t.Fatalf("ListAssigneeIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != member.ID {
		t.Fatalf("ListAssigneeIDs: unexpected %v", ids)
	}

	mine, err := repo.ListByAssignee(dbc, member.ID, true)
	if err != nil || len(mine) != 1 {
		t.Fatalf("ListByAssignee(open): n=%d err=%v", len(mine), err)
	}

	locked, err := repo.LockByID(dbc, uuid.New())
	if err != nil || locked != nil {
		t.Fatalf("LockByID (missing): row=%v err=%v", locked, err)
	}
}

func TestCheckoutRepoSingleOpenIndex(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	admin := testutil.SeedUser(t, ctx, tx, domainuser.RoleAdministrator)
	asset := testutil.SeedAsset(t, ctx, tx, admin.ID, domainassets.AssetStatusAssigned)
	repo := NewCheckoutRepo(db, testutil.Logger(t))

	mk := func() *types.AssetCheckout {
		return &types.AssetCheckout{
			AssetID:            asset.ID,
			AssigneeID:         admin.ID,
			AssignedBy:         admin.ID,
			Status:             domainassets.CheckoutPending,
			AssignmentDate:     time.Now().UTC(),
			ExpectedReturnDate: time.Now().UTC().Add(time.Hour),
			Purpose:            "test",
		}
	}
	if _, err := repo.Create(dbc, []*types.AssetCheckout{mk()}); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	// Run the second insert in a savepoint so the outer tx stays usable on Postgres.
	err := tx.Transaction(func(inner *gorm.DB) error {
		_, err := repo.Create(dbctx.Context{Ctx: ctx, Tx: inner}, []*types.AssetCheckout{mk()})
		return err
	})
	if err == nil {
		t.Fatalf("second open checkout for the same asset should violate uniq_asset_checkout_open")
	}
}

func TestAssetRepoListAndCount(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	admin := testutil.SeedUser(t, ctx, tx, domainuser.RoleAdministrator)
	a1 := testutil.SeedAsset(t, ctx, tx, admin.ID, domainassets.AssetStatusAvailable)
	testutil.SeedAsset(t, ctx, tx, admin.ID, domainassets.AssetStatusMaintenance)

	repo := NewAssetRepo(db, testutil.Logger(t))

	rows, total, err := repo.List(dbc, AssetFilter{Status: domainassets.AssetStatusAvailable})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].ID != a1.ID {
		t.Fatalf("List: total=%d rows=%d", total, len(rows))
	}

	byCode, err := repo.GetByCode(dbc, a1.Code)
	if err != nil || byCode == nil || byCode.ID != a1.ID {
		t.Fatalf("GetByCode: row=%v err=%v", byCode, err)
	}
	if got, err := repo.GetByCode(dbc, " "+strings.ToLower(a1.Code)+" "); err != nil || got == nil || got.ID != a1.ID {
		t.Fatalf("GetByCode lowercase: row=%v err=%v", got, err)
	}

	byStatus, err := repo.CountByStatus(dbc)
	if err != nil {
		t.Fatalf("CountByStatus: %v", err)
	}
	if byStatus[domainassets.AssetStatusAvailable] != 1 || byStatus[domainassets.AssetStatusMaintenance] != 1 {
		t.Fatalf("CountByStatus: %v", byStatus)
	}

	if err := repo.SoftDelete(dbc, a1.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if after, err := repo.CountByStatus(dbc); err != nil || after[domainassets.AssetStatusAvailable] != 0 {
		t.Fatalf("CountByStatus after delete: %v err=%v", after, err)
	}
	gone, err := repo.GetByID(dbc, a1.ID)
	if err != nil || gone != nil {
		t.Fatalf("GetByID after delete: row=%v err=%v", gone, err)
	}

	now := time.Now().UTC()
	n, err := repo.CountCreatedBetween(dbc, now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("CountCreatedBetween: %v", err)
	}
	if n != 2 {
		t.Fatalf("CountCreatedBetween should include soft-deleted rows: want=2 got=%d", n)
	}
}

func TestAssetEventRepoAppend(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	admin := testutil.SeedUser(t, ctx, tx, domainuser.RoleAdministrator)
	asset := testutil.SeedAsset(t, ctx, tx, admin.ID, domainassets.AssetStatusAvailable)
	repo := NewAssetEventRepo(db, testutil.Logger(t))

	for _, action := range []string{domainassets.AssetEventAssigned, domainassets.AssetEventAccepted} {
		if _, err := repo.Append(dbc, &types.AssetEvent{AssetID: asset.ID, ActorID: admin.ID, Action: action}); err != nil {
			t.Fatalf("Append %s: %v", action, err)
		}
	}
	rows, err := repo.ListByAsset(dbc, asset.ID, 0)
	if err != nil {
		t.Fatalf("ListByAsset: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("ListByAsset: want=2 got=%d", len(rows))
	}
}

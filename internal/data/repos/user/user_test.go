package user

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/nishad-backend/internal/data/repos/testutil"
	types "github.com/yungbote/nishad-backend/internal/domain"
	domainuser "github.com/yungbote/nishad-backend/internal/domain/user"
	"github.com/yungbote/nishad-backend/internal/platform/dbctx"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	repo := NewUserRepo(db, testutil.Logger(t))

	created, err := repo.Create(dbc, []*types.User{
		{
			Email:     " Coordinator@Example.com ",
			Password:  "pw",
			FirstName: "Asha",
			LastName:  "K",
			Role:      domainuser.RoleCoordinator,
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 || created[0].ID == uuid.Nil {
		t.Fatalf("Create: unexpected result: %+v", created)
	}

	got, err := repo.GetByEmail(dbc, "coordinator@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got == nil || got.ID != created[0].ID {
		t.Fatalf("GetByEmail: unexpected result: %+v", got)
	}
	if got.Role != domainuser.RoleCoordinator {
		t.Fatalf("role: want=%s got=%s", domainuser.RoleCoordinator, got.Role)
	}

	missing, err := repo.GetByID(dbc, uuid.New())
	if err != nil {
		t.Fatalf("GetByID (missing): %v", err)
	}
	if missing != nil {
		t.Fatalf("GetByID (missing): expected nil, got %+v", missing)
	}

	exists, err := repo.EmailExists(dbc, "COORDINATOR@example.com")
	if err != nil {
		t.Fatalf("EmailExists: %v", err)
	}
	if !exists {
		t.Fatalf("EmailExists: expected true")
	}

	managers, err := repo.ListByRoles(dbc, []types.Role{domainuser.RoleCoordinator, domainuser.RoleAdministrator})
	if err != nil {
		t.Fatalf("ListByRoles: %v", err)
	}
	if len(managers) != 1 {
		t.Fatalf("ListByRoles: want=1 got=%d", len(managers))
	}
}

func TestDelegationRepoUpsert(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	admin := testutil.SeedUser(t, ctx, tx, domainuser.RoleAdministrator)
	member := testutil.SeedUser(t, ctx, tx, domainuser.RoleMember)

	repo := NewDelegationRepo(db, testutil.Logger(t))

	row, err := repo.Upsert(dbc, &types.GatePassDelegation{
		UserID:            member.ID,
		CanCreateGatePass: true,
		GrantedBy:         testutil.PtrUUID(admin.ID),
	})
	if err != nil {
		t.Fatalf("Upsert grant: %v", err)
	}
	if row == nil || !row.CanCreateGatePass {
		t.Fatalf("Upsert grant: unexpected %+v", row)
	}

	row, err = repo.Upsert(dbc, &types.GatePassDelegation{
		UserID:            member.ID,
		CanCreateGatePass: false,
		GrantedBy:         testutil.PtrUUID(admin.ID),
	})
	if err != nil {
		t.Fatalf("Upsert revoke: %v", err)
	}
	if row.CanCreateGatePass {
		t.Fatalf("Upsert revoke: expected can_create=false")
	}

	all, err := repo.List(dbc)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("List: want=1 got=%d", len(all))
	}
}

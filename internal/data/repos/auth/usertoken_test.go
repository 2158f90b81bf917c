package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/nishad-backend/internal/data/repos/testutil"
	types "github.com/yungbote/nishad-backend/internal/domain"
	domainuser "github.com/yungbote/nishad-backend/internal/domain/user"
	"github.com/yungbote/nishad-backend/internal/platform/dbctx"
)

func TestUserTokenRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	u := testutil.SeedUser(t, ctx, tx, domainuser.RoleMember)
	repo := NewUserTokenRepo(db, testutil.Logger(t))

	now := time.Now().UTC()
	live := &types.UserToken{UserID: u.ID, AccessToken: "a-live", RefreshToken: "r-live", ExpiresAt: now.Add(time.Hour)}
	stale := &types.UserToken{UserID: u.ID, AccessToken: "a-stale", RefreshToken: "r-stale", ExpiresAt: now.Add(-time.Hour)}
	if _, err := repo.Create(dbc, []*types.UserToken{live, stale}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	byRefresh, err := repo.GetByRefreshTokens(dbc, []string{"r-live"})
	if err != nil {
		t.Fatalf("GetByRefreshTokens: %v", err)
	}
	if len(byRefresh) != 1 || byRefresh[0].ID != live.ID {
		t.Fatalf("GetByRefreshTokens: unexpected %+v", byRefresh)
	}

	n, err := repo.FullDeleteExpired(dbc, now)
	if err != nil {
		t.Fatalf("FullDeleteExpired: %v", err)
	}
	if n != 1 {
		t.Fatalf("FullDeleteExpired: want=1 got=%d", n)
	}

	if err := repo.FullDeleteByUserIDs(dbc, []uuid.UUID{u.ID}); err != nil {
		t.Fatalf("FullDeleteByUserIDs: %v", err)
	}
	left, err := repo.GetByUserIDs(dbc, []uuid.UUID{u.ID})
	if err != nil {
		t.Fatalf("GetByUserIDs: %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("expected no tokens left, got %d", len(left))
	}
}

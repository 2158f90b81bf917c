package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/nishad-backend/internal/domain"
	"github.com/yungbote/nishad-backend/internal/domain/assets"
	"github.com/yungbote/nishad-backend/internal/domain/user"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, role user.Role) *types.User {
	tb.Helper()
	id := uuid.New()
	u := &types.User{
		ID:        id,
		Email:     fmt.Sprintf("%s@example.com", id.String()[:8]),
		Password:  "pw",
		FirstName: "Test",
		LastName:  string(role),
		Role:      role,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedAsset(tb testing.TB, ctx context.Context, tx *gorm.DB, createdBy uuid.UUID, status assets.AssetStatus) *types.Asset {
	tb.Helper()
	id := uuid.New()
	a := &types.Asset{
		ID:        id,
		Code:      "TEST" + strings.ToUpper(id.String()[:8]),
		Name:      "Sound system",
		AssetType: assets.AssetTypeSoundSystem,
		Status:    status,
		Condition: assets.ConditionGood,
		Location:  "Ward 4 office",
		CreatedBy: createdBy,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed asset: %v", err)
	}
	return a
}

func SeedEvent(tb testing.TB, ctx context.Context, tx *gorm.DB, createdBy uuid.UUID, startsAt time.Time) *types.Event {
	tb.Helper()
	e := &types.Event{
		ID:        uuid.New(),
		Title:     "Town hall",
		Venue:     "Community centre",
		StartsAt:  startsAt.UTC(),
		CreatedBy: createdBy,
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed event: %v", err)
	}
	return e
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

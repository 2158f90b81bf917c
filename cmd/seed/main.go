package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/nishad-backend/internal/app"
	types "github.com/yungbote/nishad-backend/internal/domain"
	"github.com/yungbote/nishad-backend/internal/domain/assets"
	"github.com/yungbote/nishad-backend/internal/domain/user"
	"github.com/yungbote/nishad-backend/internal/platform/ctxutil"
	"github.com/yungbote/nishad-backend/internal/platform/dbctx"
)

func main() {
	var path string
	var dryRun bool
	flag.StringVar(&path, "file", "seed.yaml", "YAML fixture with users, assets and events")
	flag.BoolVar(&dryRun, "dry-run", false, "validate the fixture without writing")
	flag.Parse()

	_ = godotenv.Load()

	f, err := loadFixture(path)
	if err != nil {
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}
	if dryRun {
		fmt.Printf("fixture ok: %d users, %d assets, %d events\n", len(f.Users), len(f.Assets), len(f.Events))
		return
	}

	application, err := app.New()
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	if err := seed(context.Background(), application, f); err != nil {
		application.Log.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func seed(ctx context.Context, a *app.App, f *fixture) error {
	dbc := dbctx.Context{Ctx: ctx}
	var admin *types.User
	for _, fu := range f.Users {
		email := strings.ToLower(strings.TrimSpace(fu.Email))
		u, err := a.Repos.Users.GetByEmail(dbc, email)
		if err != nil {
			return fmt.Errorf("lookup %s: %w", email, err)
		}
		if u == nil {
			hash, err := bcrypt.GenerateFromPassword([]byte(fu.Password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash password for %s: %w", email, err)
			}
			created, err := a.Repos.Users.Create(dbc, []*types.User{{
				Email:     email,
				FirstName: fu.FirstName,
				LastName:  fu.LastName,
				Phone:     fu.Phone,
				Role:      user.Role(fu.Role),
				Password:  string(hash),
			}})
			if err != nil {
				return fmt.Errorf("create %s: %w", email, err)
			}
			u = created[0]
			a.Log.Info("seeded user", "user_id", u.ID, "role", u.Role)
		}
		if fu.GatePass {
			if _, err := a.Repos.Delegations.Upsert(dbc, &types.GatePassDelegation{
				UserID:            u.ID,
				CanCreateGatePass: true,
				GrantedAt:         time.Now().UTC(),
			}); err != nil {
				return fmt.Errorf("delegate %s: %w", email, err)
			}
		}
		if admin == nil && u.Role == user.RoleAdministrator {
			admin = u
		}
	}

	if len(f.Assets) == 0 && len(f.Events) == 0 {
		return nil
	}
	if admin == nil {
		return fmt.Errorf("assets and events need at least one ADMINISTRATOR user in the fixture")
	}
	actx := ctxutil.WithRequestData(ctx, &ctxutil.RequestData{UserID: admin.ID, Role: string(admin.Role)})

	for _, fa := range f.Assets {
		asset, err := a.Services.Asset.Register(actx, types.Asset{
			Name:         fa.Name,
			AssetType:    assets.AssetType(strings.ToUpper(fa.Type)),
			Condition:    assets.AssetCondition(strings.ToUpper(fa.Condition)),
			Location:     fa.Location,
			Constituency: fa.Constituency,
			SerialNumber: fa.SerialNumber,
			Notes:        fa.Notes,
		})
		if err != nil {
			return fmt.Errorf("register asset %q: %w", fa.Name, err)
		}
		a.Log.Info("seeded asset", "asset_id", asset.ID, "code", asset.Code)
	}

	for _, fe := range f.Events {
		in := types.Event{Title: fe.Title, Venue: fe.Venue, StartsAt: fe.StartsAt}
		if fe.Hours > 0 {
			ends := fe.StartsAt.Add(time.Duration(fe.Hours) * time.Hour)
			in.EndsAt = &ends
		}
		e, err := a.Services.Event.Create(actx, in)
		if err != nil {
			return fmt.Errorf("create event %q: %w", fe.Title, err)
		}
		a.Log.Info("seeded event", "event_id", e.ID)
	}
	return nil
}

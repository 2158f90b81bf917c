package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/nishad-backend/internal/data/repos/assets"
	"github.com/yungbote/nishad-backend/internal/data/repos/auth"
	"github.com/yungbote/nishad-backend/internal/data/repos/events"
	"github.com/yungbote/nishad-backend/internal/data/repos/gatepass"
	"github.com/yungbote/nishad-backend/internal/data/repos/user"
	"github.com/yungbote/nishad-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type DelegationRepo = user.DelegationRepo
type UserTokenRepo = auth.UserTokenRepo

type AssetRepo = assets.AssetRepo
type AssetFilter = assets.AssetFilter
type CheckoutRepo = assets.CheckoutRepo
type MaintenanceRepo = assets.MaintenanceRepo
type AssetEventRepo = assets.AssetEventRepo

type EventRepo = events.EventRepo

type EventPassRepo = gatepass.EventPassRepo
type VisitorPassRepo = gatepass.VisitorPassRepo
type VisitorPassFilter = gatepass.VisitorPassFilter
type VisitorPassStats = gatepass.VisitorPassStats
type GatePassLogRepo = gatepass.GatePassLogRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }
func NewDelegationRepo(db *gorm.DB, baseLog *logger.Logger) DelegationRepo {
	return user.NewDelegationRepo(db, baseLog)
}
func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, baseLog)
}

func NewAssetRepo(db *gorm.DB, baseLog *logger.Logger) AssetRepo {
	return assets.NewAssetRepo(db, baseLog)
}
func NewCheckoutRepo(db *gorm.DB, baseLog *logger.Logger) CheckoutRepo {
	return assets.NewCheckoutRepo(db, baseLog)
}
func NewMaintenanceRepo(db *gorm.DB, baseLog *logger.Logger) MaintenanceRepo {
	return assets.NewMaintenanceRepo(db, baseLog)
}
func NewAssetEventRepo(db *gorm.DB, baseLog *logger.Logger) AssetEventRepo {
	return assets.NewAssetEventRepo(db, baseLog)
}

func NewEventRepo(db *gorm.DB, baseLog *logger.Logger) EventRepo {
	return events.NewEventRepo(db, baseLog)
}

func NewEventPassRepo(db *gorm.DB, baseLog *logger.Logger) EventPassRepo {
	return gatepass.NewEventPassRepo(db, baseLog)
}
func NewVisitorPassRepo(db *gorm.DB, baseLog *logger.Logger) VisitorPassRepo {
	return gatepass.NewVisitorPassRepo(db, baseLog)
}
func NewGatePassLogRepo(db *gorm.DB, baseLog *logger.Logger) GatePassLogRepo {
	return gatepass.NewGatePassLogRepo(db, baseLog)
}

// Set bundles every repository over one database handle.
type Set struct {
	Users         UserRepo
	Delegations   DelegationRepo
	UserTokens    UserTokenRepo
	Assets        AssetRepo
	Checkouts     CheckoutRepo
	Maintenance   MaintenanceRepo
	AssetEvents   AssetEventRepo
	Events        EventRepo
	EventPasses   EventPassRepo
	VisitorPasses VisitorPassRepo
	GatePassLogs  GatePassLogRepo
}

func NewSet(db *gorm.DB, baseLog *logger.Logger) Set {
	return Set{
		Users:         NewUserRepo(db, baseLog),
		Delegations:   NewDelegationRepo(db, baseLog),
		UserTokens:    NewUserTokenRepo(db, baseLog),
		Assets:        NewAssetRepo(db, baseLog),
		Checkouts:     NewCheckoutRepo(db, baseLog),
		Maintenance:   NewMaintenanceRepo(db, baseLog),
		AssetEvents:   NewAssetEventRepo(db, baseLog),
		Events:        NewEventRepo(db, baseLog),
		EventPasses:   NewEventPassRepo(db, baseLog),
		VisitorPasses: NewVisitorPassRepo(db, baseLog),
		GatePassLogs:  NewGatePassLogRepo(db, baseLog),
	}
}

package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/nishad-backend/internal/data/aggregates"
	"github.com/yungbote/nishad-backend/internal/data/repos"
	"github.com/yungbote/nishad-backend/internal/observability"
	"github.com/yungbote/nishad-backend/internal/platform/logger"
	"github.com/yungbote/nishad-backend/internal/realtime"
	"github.com/yungbote/nishad-backend/internal/services"
)

type Services struct {
	Auth        services.AuthService
	User        services.UserService
	Asset       services.AssetService
	Checkout    services.CheckoutService
	Event       services.EventService
	EventPass   services.EventPassService
	VisitorPass services.VisitorPassService
	Delegation  services.DelegationService
}

func wireEmitter(log *logger.Logger, clients Clients, hub *realtime.SSEHub, metrics *observability.Metrics) services.SSEEmitter {
	if clients.Bus != nil {
		return &services.RedisEmitter{Bus: clients.Bus, Fallback: hub, Log: log.With("component", "RedisEmitter"), Metrics: metrics}
	}
	return &services.HubEmitter{Hub: hub, Metrics: metrics}
}

func wireServices(
	db *gorm.DB,
	log *logger.Logger,
	cfg Config,
	set repos.Set,
	clients Clients,
	emitter services.SSEEmitter,
	metrics *observability.Metrics,
) Services {
	log.Info("Wiring services...")

	base := aggregates.BaseDeps{
		DB:              db,
		Log:             log,
		Runner:          aggregates.NewGormTxRunnerWithTimeout(db, cfg.TxTimeout),
		Hooks:           aggregates.CombineHooks(aggregates.NewObservabilityHooks(metrics), aggregates.NewLogHooks(log)),
		CASGuard:        aggregates.NewCASGuard(db),
		MaxCodeAttempts: cfg.MaxCodeAttempts,
	}

	assetAgg := aggregates.NewAssetAggregate(aggregates.AssetAggregateDeps{
		Base:        base,
		Assets:      set.Assets,
		Checkouts:   set.Checkouts,
		Maintenance: set.Maintenance,
		Events:      set.AssetEvents,
	})
	checkoutAgg := aggregates.NewCheckoutAggregate(aggregates.CheckoutAggregateDeps{
		Base:      base,
		Users:     set.Users,
		Assets:    set.Assets,
		Checkouts: set.Checkouts,
		Events:    set.AssetEvents,
	})
	eventPassAgg := aggregates.NewEventPassAggregate(aggregates.EventPassAggregateDeps{
		Base:        base,
		Users:       set.Users,
		Delegations: set.Delegations,
		Events:      set.Events,
		Passes:      set.EventPasses,
	})
	visitorAgg := aggregates.NewVisitorPassAggregate(aggregates.VisitorPassAggregateDeps{
		Base:        base,
		Delegations: set.Delegations,
		Passes:      set.VisitorPasses,
		Logs:        set.GatePassLogs,
	})

	notify := services.NewNotifier(emitter)
	artifacts := services.NewArtifactService(log, clients.Bucket, clients.Renderer)

	return Services{
		Auth:        services.NewAuthService(db, log, set.Users, set.UserTokens, cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		User:        services.NewUserService(db, log, set.Users, set.Delegations),
		Asset:       services.NewAssetService(log, assetAgg, set, artifacts),
		Checkout:    services.NewCheckoutService(log, checkoutAgg, set, notify, metrics),
		Event:       services.NewEventService(log, set.Events),
		EventPass:   services.NewEventPassService(log, eventPassAgg, set, artifacts, notify, metrics),
		VisitorPass: services.NewVisitorPassService(log, visitorAgg, set, artifacts, notify),
		Delegation:  services.NewDelegationService(db, log, set, notify),
	}
}

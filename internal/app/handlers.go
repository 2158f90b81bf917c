package app

import (
	"gorm.io/gorm"

	httpapi "github.com/yungbote/nishad-backend/internal/http"
	httpH "github.com/yungbote/nishad-backend/internal/http/handlers"
	httpMW "github.com/yungbote/nishad-backend/internal/http/middleware"
	"github.com/yungbote/nishad-backend/internal/observability"
	"github.com/yungbote/nishad-backend/internal/platform/logger"
	"github.com/yungbote/nishad-backend/internal/realtime"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health      *httpH.HealthHandler
	Auth        *httpH.AuthHandler
	User        *httpH.UserHandler
	Realtime    *httpH.RealtimeHandler
	Asset       *httpH.AssetHandler
	Checkout    *httpH.CheckoutHandler
	Event       *httpH.EventHandler
	Pass        *httpH.PassHandler
	VisitorPass *httpH.VisitorPassHandler
	Delegation  *httpH.DelegationHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services, sseHub *realtime.SSEHub, metrics *observability.Metrics) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:      httpH.NewHealthHandler(db, metrics),
		Auth:        httpH.NewAuthHandler(services.Auth),
		User:        httpH.NewUserHandler(services.User),
		Realtime:    httpH.NewRealtimeHandler(log, sseHub),
		Asset:       httpH.NewAssetHandler(services.Asset, services.Checkout),
		Checkout:    httpH.NewCheckoutHandler(services.Checkout),
		Event:       httpH.NewEventHandler(services.Event, services.EventPass),
		Pass:        httpH.NewPassHandler(services.EventPass),
		VisitorPass: httpH.NewVisitorPassHandler(services.VisitorPass),
		Delegation:  httpH.NewDelegationHandler(services.Delegation),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *httpapi.Server {
	return httpapi.NewServer(httpapi.RouterConfig{
		Log:                log,
		Metrics:            metrics,
		ServiceName:        "nishad-backend",
		CORSOrigins:        cfg.CORSOrigins,
		HealthHandler:      handlers.Health,
		AuthHandler:        handlers.Auth,
		AuthMiddleware:     middleware.Auth,
		UserHandler:        handlers.User,
		RealtimeHandler:    handlers.Realtime,
		AssetHandler:       handlers.Asset,
		CheckoutHandler:    handlers.Checkout,
		EventHandler:       handlers.Event,
		PassHandler:        handlers.Pass,
		VisitorPassHandler: handlers.VisitorPass,
		DelegationHandler:  handlers.Delegation,
	})
}

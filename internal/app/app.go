package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/nishad-backend/internal/data/db"
	"github.com/yungbote/nishad-backend/internal/data/repos"
	httpapi "github.com/yungbote/nishad-backend/internal/http"
	"github.com/yungbote/nishad-backend/internal/observability"
	"github.com/yungbote/nishad-backend/internal/platform/logger"
	"github.com/yungbote/nishad-backend/internal/realtime"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *httpapi.Server
	Cfg      Config
	Repos    repos.Set
	Services Services
	Clients  Clients
	SSEHub   *realtime.SSEHub
	Metrics  *observability.Metrics

	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "nishad-backend",
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})
	metrics := observability.Init(log)

	theDB, err := db.Open(log, cfg.DBDriver, cfg.SQLitePath)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := db.AutoMigrateAll(theDB); err != nil {
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}

	clients, err := wireClients(log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}

	ssehub := realtime.NewSSEHub(log)
	reposet := repos.NewSet(theDB, log)
	emitter := wireEmitter(log, clients, ssehub, metrics)
	serviceset := wireServices(theDB, log, cfg, reposet, clients, emitter, metrics)

	handlerset := wireHandlers(log, theDB, serviceset, ssehub, metrics)
	middleware := wireMiddleware(log, serviceset)
	server := wireServer(log, cfg, metrics, handlerset, middleware)

	return &App{
		Log:          log,
		DB:           theDB,
		Server:       server,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Clients:      clients,
		SSEHub:       ssehub,
		Metrics:      metrics,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches background loops: the Redis forwarder that feeds the local
// SSE hub, the pool/redis metric collectors and the optional scrape listener.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Clients.Bus != nil {
		if err := a.Clients.Bus.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
			return fmt.Errorf("start notification forwarder: %w", err)
		}
	}
	a.Metrics.StartPostgresCollector(ctx, a.Log, a.DB)
	if a.Cfg.RedisAddr != "" {
		a.Metrics.StartRedisCollector(ctx, a.Log, a.Cfg.RedisAddr)
	}
	a.Metrics.StartServer(ctx, a.Log, a.Cfg.MetricsAddr)
	return nil
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("Server listening", "port", a.Cfg.Port)
	return a.Server.Run(":" + a.Cfg.Port)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			a.Log.Warn("http shutdown", "error", err)
		}
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Clients.Close()
	if a.otelShutdown != nil {
		_ = a.otelShutdown(ctx)
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}

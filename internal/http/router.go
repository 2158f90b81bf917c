package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/nishad-backend/internal/http/handlers"
	httpMW "github.com/yungbote/nishad-backend/internal/http/middleware"
	"github.com/yungbote/nishad-backend/internal/observability"
	"github.com/yungbote/nishad-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	AuthHandler     *httpH.AuthHandler
	AuthMiddleware  *httpMW.AuthMiddleware
	UserHandler     *httpH.UserHandler
	RealtimeHandler *httpH.RealtimeHandler

	AssetHandler       *httpH.AssetHandler
	CheckoutHandler    *httpH.CheckoutHandler
	EventHandler       *httpH.EventHandler
	PassHandler        *httpH.PassHandler
	VisitorPassHandler *httpH.VisitorPassHandler
	DelegationHandler  *httpH.DelegationHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	httpH.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/metrics", cfg.HealthHandler.Metrics)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/refresh", cfg.AuthHandler.Refresh)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.AuthHandler != nil {
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			protected.GET("/sse/stream", cfg.RealtimeHandler.SSEStream)
		}

		// Users
		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
			protected.GET("/users", cfg.UserHandler.ListUsers)
			protected.PATCH("/users/:id/role", cfg.UserHandler.ChangeRole)
		}

		// Assets
		if cfg.AssetHandler != nil {
			protected.POST("/assets", cfg.AssetHandler.Create)
			protected.GET("/assets", cfg.AssetHandler.List)
			protected.GET("/assets/dashboard", cfg.AssetHandler.Dashboard)
			protected.GET("/assets/:id", cfg.AssetHandler.Get)
			protected.PATCH("/assets/:id", cfg.AssetHandler.Update)
			protected.DELETE("/assets/:id", cfg.AssetHandler.Delete)
			protected.GET("/assets/:id/history", cfg.AssetHandler.History)
			protected.GET("/assets/:id/qr", cfg.AssetHandler.QR)
			protected.POST("/assets/:id/maintenance", cfg.AssetHandler.RecordMaintenance)
			protected.GET("/assets/:id/maintenance", cfg.AssetHandler.ListMaintenance)
			protected.POST("/assets/:id/assign", cfg.AssetHandler.Assign)
		}

		// Checkouts
		if cfg.CheckoutHandler != nil {
			protected.GET("/checkouts/mine", cfg.CheckoutHandler.Mine)
			protected.GET("/checkouts/overdue", cfg.CheckoutHandler.Overdue)
			protected.GET("/checkouts/:id", cfg.CheckoutHandler.Get)
			protected.POST("/checkouts/:id/accept", cfg.CheckoutHandler.Accept)
			protected.POST("/checkouts/:id/reject", cfg.CheckoutHandler.Reject)
			protected.POST("/checkouts/:id/in-use", cfg.CheckoutHandler.InUse)
			protected.POST("/checkouts/:id/return", cfg.CheckoutHandler.Return)
			protected.POST("/checkouts/:id/lost", cfg.CheckoutHandler.Lost)
		}

		// Events
		if cfg.EventHandler != nil {
			protected.POST("/events", cfg.EventHandler.Create)
			protected.GET("/events", cfg.EventHandler.List)
			protected.GET("/events/:id", cfg.EventHandler.Get)
			protected.POST("/events/:id/passes", cfg.EventHandler.IssuePass)
			protected.GET("/events/:id/passes", cfg.EventHandler.ListPasses)
		}

		// Event passes
		if cfg.PassHandler != nil {
			protected.GET("/me/passes", cfg.PassHandler.Mine)
			protected.GET("/passes/:code", cfg.PassHandler.Get)
			protected.POST("/passes/:code/use", cfg.PassHandler.Use)
			protected.GET("/passes/:code/qr", cfg.PassHandler.QR)
			protected.GET("/passes/:code/card", cfg.PassHandler.Card)
		}

		// Visitor passes
		if cfg.VisitorPassHandler != nil {
			protected.POST("/visitor-passes", cfg.VisitorPassHandler.Create)
			protected.GET("/visitor-passes", cfg.VisitorPassHandler.List)
			protected.GET("/visitor-passes/stats", cfg.VisitorPassHandler.Stats)
			protected.GET("/visitor-passes/:id", cfg.VisitorPassHandler.Get)
			protected.POST("/visitor-passes/:id/approve", cfg.VisitorPassHandler.Approve)
			protected.POST("/visitor-passes/:id/reject", cfg.VisitorPassHandler.Reject)
			protected.GET("/visitor-passes/:id/logs", cfg.VisitorPassHandler.Logs)
			protected.GET("/visitor-passes/:id/qr", cfg.VisitorPassHandler.QR)
			protected.GET("/visitor-passes/:id/card", cfg.VisitorPassHandler.Card)
		}

		// Delegations
		if cfg.DelegationHandler != nil {
			protected.GET("/delegations", cfg.DelegationHandler.List)
			protected.POST("/delegations/:user_id", cfg.DelegationHandler.Grant)
			protected.DELETE("/delegations/:user_id", cfg.DelegationHandler.Revoke)
			protected.POST("/delegations/:user_id/toggle", cfg.DelegationHandler.Toggle)
		}
	}

	return r
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/nishad-backend/internal/observability"
)

type HealthHandler struct {
	db      *gorm.DB
	metrics *observability.Metrics
}

func NewHealthHandler(db *gorm.DB, metrics *observability.Metrics) *HealthHandler {
	return &HealthHandler{db: db, metrics: metrics}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	if h.db != nil {
		sqlDB, err := h.db.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.String(http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	c.String(http.StatusOK, "ok")
}

func (h *HealthHandler) Metrics(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusNotFound)
		return
	}
	h.metrics.WriteHTTP(c.Writer, c.Request)
}

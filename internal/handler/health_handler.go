package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// HealthHandler reports liveness and basic runtime identity.
type HealthHandler struct {
	db          *sqlx.DB
	version     string
	environment string
	startedAt   time.Time
}

// NewHealthHandler constructs a health handler.
func NewHealthHandler(db *sqlx.DB, version, environment string) *HealthHandler {
	return &HealthHandler{db: db, version: version, environment: environment, startedAt: time.Now()}
}

// Health godoc
// @Summary Service health
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	status := "ok"
	code := http.StatusOK
	if h.db != nil {
		if err := h.db.PingContext(c.Request.Context()); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}

	c.JSON(code, gin.H{
		"status":      status,
		"uptime":      time.Since(h.startedAt).Round(time.Second).String(),
		"version":     h.version,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": h.environment,
	})
}

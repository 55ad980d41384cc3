package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kalyxon/progress-server/internal/logger"
)

const healthCheckTimeout = 2 * time.Second

// Pinger is a dependency whose reachability is reported by /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports the state of the configured dependencies. A failing
// dependency marks the service degraded; progress keeps flowing to the local
// backend.
type HealthHandler struct {
	checks map[string]Pinger
	logger *logger.Logger
}

func NewHealthHandler(checks map[string]Pinger, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{checks: checks, logger: logger}
}

// GET /healthz
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	status := "ok"
	code := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			h.logger.Warn("Health: dependency unreachable",
				"dependency", name,
				"error", err.Error())
			deps[name] = "unreachable"
			status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	c.JSON(code, gin.H{"status": status, "dependencies": deps})
}

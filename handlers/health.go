package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/accounthub/account-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

// Check probes one dependency; nil means healthy.
type Check func(ctx context.Context) error

// HealthHandler serves liveness and readiness.
type HealthHandler struct {
	started time.Time
	checks  map[string]Check
	timeout time.Duration
}

// NewHealthHandler creates the handler. Each named check must pass for /ready to return 200.
func NewHealthHandler(checks map[string]Check) *HealthHandler {
	return &HealthHandler{started: time.Now(), checks: checks, timeout: 2 * time.Second}
}

func (h *HealthHandler) Register(r gin.IRouter) {
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(h.started).Seconds(),
	})
}

func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	ready := true
	deps := map[string]bool{}
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			logger.Warnf("readiness check %s failed: %v", name, err)
			deps[name] = false
			ready = false
			continue
		}
		deps[name] = true
	}

	uptime := time.Since(h.started).String()
	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": uptime})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": uptime})
}

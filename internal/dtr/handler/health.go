package handler

import (
	"context"
	"net/http"

	"github.com/dtrkit/dtr-backend/pkg/httputil"
)

// HealthChecker reports the status of one dependency.
type HealthChecker func(ctx context.Context) map[string]string

// HealthHandler reports service and dependency health.
type HealthHandler struct {
	checks map[string]HealthChecker
}

// NewHealthHandler creates a health handler over named dependency checks.
func NewHealthHandler(checks map[string]HealthChecker) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Health handles GET /health. The endpoint returns 200 with per-dependency
// statuses; a down dependency flips the top-level status but keeps the 200
// so orchestrators can read the detail.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status": "up",
	}

	deps := make(map[string]map[string]string, len(h.checks))
	for name, check := range h.checks {
		status := check(r.Context())
		deps[name] = status
		if status["status"] != "up" {
			response["status"] = "degraded"
		}
	}
	if len(deps) > 0 {
		response["dependencies"] = deps
	}

	httputil.JSON(w, http.StatusOK, response)
}

package handlers

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"finrag/internal/contextutil"
)

const healthCheckTimeout = 5 * time.Second

// HealthCheck checks one dependency. A failing required check makes the
// service unhealthy; any other failure only degrades it.
type HealthCheck struct {
	Name     string
	Required bool
	Check    func(ctx context.Context) error
}

// HealthHandler runs the registered checks in parallel on every request.
type HealthHandler struct {
	checks  []HealthCheck
	timeout time.Duration
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: healthCheckTimeout}
}

// HealthResponse represents the health check response.
//
// swagger:model HealthResponse
type HealthResponse struct {
	// Overall health status: "healthy", "degraded", or "unhealthy"
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Per-dependency results keyed by check name
	Checks map[string]CheckResult `json:"checks"`

	// Failed checks as "<name>_unavailable", sorted
	Issues []string `json:"issues,omitempty"`
}

// CheckResult is the outcome of one dependency check.
//
// swagger:model CheckResult
type CheckResult struct {
	// "ok" or "error"
	Status    string `json:"status"`
	Required  bool   `json:"required"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// ServeHTTP handles HTTP requests for health checks.
//
// swagger:route GET /api/health healthCheck
//
// # Health check endpoint
//
// Returns the health status of the record store, the index tiers and their
// circuit breakers. Returns 503 when a required dependency is down.
//
// ---
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: System is healthy or degraded
//	  schema:
//	    "$ref": "#/definitions/HealthResponse"
//	'503':
//	  description: System is unhealthy
//	  schema:
//	    "$ref": "#/definitions/HealthResponse"
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodGet {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	resp := h.run(ctx)

	httpStatus := http.StatusOK
	if resp.Status == "unhealthy" {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(ctx, w, httpStatus, resp)
}

func (h *HealthHandler) run(ctx context.Context) HealthResponse {
	logger := contextutil.LoggerFromContext(ctx)

	checkCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	results := make([]CheckResult, len(h.checks))
	var wg sync.WaitGroup
	for i, c := range h.checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			started := time.Now()
			err := c.Check(checkCtx)
			results[i] = CheckResult{
				Status:    "ok",
				Required:  c.Required,
				LatencyMS: time.Since(started).Milliseconds(),
			}
			if err != nil {
				results[i].Status = "error"
				results[i].Error = err.Error()
			}
		}()
	}
	wg.Wait()

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    make(map[string]CheckResult, len(h.checks)),
	}
	for i, c := range h.checks {
		res := results[i]
		resp.Checks[c.Name] = res
		if res.Status == "ok" {
			continue
		}

		logger.WarnContext(ctx, "health check failed", "check", c.Name, "required", c.Required, "error", res.Error)
		resp.Issues = append(resp.Issues, c.Name+"_unavailable")
		switch {
		case c.Required:
			resp.Status = "unhealthy"
		case resp.Status == "healthy":
			resp.Status = "degraded"
		}
	}
	sort.Strings(resp.Issues)
	return resp
}

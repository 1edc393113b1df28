package handlers

import (
	"net/http"

	"finrag/internal/contextutil"
	"finrag/internal/service"
)

// StatsHandler serves index statistics.
type StatsHandler struct {
	ingestService service.IngestService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(ingestService service.IngestService) *StatsHandler {
	return &StatsHandler{ingestService: ingestService}
}

// ServeHTTP handles HTTP requests for index statistics.
//
// swagger:route GET /api/v1/stats indexStats
//
// # Index statistics
//
// Returns document and chunk counts, chunk size distribution, the critical
// chunk share and the index version. Use `company_id` to restrict to one company.
//
// ---
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Index statistics
//	'502':
//	  description: Record store unavailable
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	stats, err := h.ingestService.Stats(ctx, r.URL.Query().Get("company_id"))
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to compute index statistics")
		return
	}

	writeJSON(ctx, w, http.StatusOK, stats)
}

package handlers

import (
	"encoding/json"
	"net/http"

	"finrag/internal/contextutil"
	"finrag/internal/rag"
	"finrag/internal/service"
)

// RetrieveHandler handles HTTP requests for retrieval queries.
type RetrieveHandler struct {
	retrievalService service.RetrievalService
}

// NewRetrieveHandler creates a new RetrieveHandler.
func NewRetrieveHandler(retrievalService service.RetrievalService) *RetrieveHandler {
	return &RetrieveHandler{retrievalService: retrievalService}
}

// RetrieveRequest represents the HTTP request payload for retrieval.
//
// swagger:model RetrieveRequest
type RetrieveRequest struct {
	// The question to search for
	Query string `json:"query"`

	// Company whose reports are searched
	CompanyID string `json:"company_id"`

	// Number of results wanted (default from tuning, max 100)
	TopK int `json:"top_k,omitempty"`

	// Optional metadata filters applied to both tiers
	Filters FiltersRequest `json:"filters,omitempty"`

	// Skip near-duplicate removal and the per-page cap
	DisableDedup bool `json:"disable_dedup,omitempty"`

	// Overrides the near-duplicate similarity threshold when > 0
	SimilarityThreshold float64 `json:"similarity_threshold,omitempty"`

	// Derive statement type and note number filters from the query text
	InferFilters bool `json:"infer_filters,omitempty"`
}

// FiltersRequest restricts retrieval candidates.
//
// swagger:model FiltersRequest
type FiltersRequest struct {
	StatementType string   `json:"statement_type,omitempty"`
	NoteNumber    string   `json:"note_number,omitempty"`
	SectionTypes  []string `json:"section_types,omitempty"`
}

// RetrieveResponse represents the HTTP response payload for retrieval.
//
// swagger:model RetrieveResponse
type RetrieveResponse struct {
	// Ranked chunks, best first
	Results []rag.RetrievalResult `json:"results"`

	// Number of results returned
	Count int `json:"count"`
}

// ServeHTTP handles HTTP requests for retrieval.
//
// swagger:route POST /api/v1/retrieve retrieveChunks
//
// # Retrieve report chunks
//
// Runs hybrid vector and keyword retrieval over a company's indexed reports.
// Returns the ranked, de-duplicated chunks with their metadata.
//
// ---
// consumes:
// - application/json
// produces:
// - application/json
// parameters:
//   - in: body
//     name: body
//     required: true
//     schema:
//     "$ref": "#/definitions/RetrieveRequest"
//
// responses:
//
//	'200':
//	  description: Ranked chunks
//	  schema:
//	    "$ref": "#/definitions/RetrieveResponse"
//	'400':
//	  description: Bad request
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'500':
//	  description: Internal server error
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *RetrieveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req RetrieveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	svcResp, err := h.retrievalService.Retrieve(ctx, rag.Request{
		Query:     req.Query,
		CompanyID: req.CompanyID,
		TopK:      req.TopK,
		Filters: rag.Filters{
			StatementType: req.Filters.StatementType,
			NoteNumber:    req.Filters.NoteNumber,
			SectionTypes:  req.Filters.SectionTypes,
		},
		DisableDedup:        req.DisableDedup,
		SimilarityThreshold: req.SimilarityThreshold,
		InferFilters:        req.InferFilters,
	})
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to process retrieval request")
		return
	}

	writeJSON(ctx, w, http.StatusOK, RetrieveResponse{
		Results: svcResp.Results,
		Count:   len(svcResp.Results),
	})
}

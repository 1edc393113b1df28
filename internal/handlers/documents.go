package handlers

import (
	"encoding/json"
	"net/http"

	"finrag/internal/contextutil"
	"finrag/internal/indexer"
	"finrag/internal/service"
)

// maxDocumentBytes caps the size of an ingest request body.
const maxDocumentBytes = 64 << 20

// DocumentsHandler handles HTTP requests for ingesting report pages.
type DocumentsHandler struct {
	ingestService service.IngestService
}

// NewDocumentsHandler creates a new DocumentsHandler.
func NewDocumentsHandler(ingestService service.IngestService) *DocumentsHandler {
	return &DocumentsHandler{ingestService: ingestService}
}

// PageRequest is one report page.
//
// swagger:model PageRequest
type PageRequest struct {
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
}

// DocumentRequest represents the HTTP request payload for ingestion.
//
// swagger:model DocumentRequest
type DocumentRequest struct {
	// Company the report belongs to
	CompanyID string `json:"company_id"`

	// Stable identifier of the source file; re-posting the same path replaces its chunks
	SourcePath string `json:"source_path"`

	// Optional document title
	Title string `json:"title,omitempty"`

	// Extracted page texts in page order
	Pages []PageRequest `json:"pages"`
}

// DocumentResponse represents the outcome of an ingestion.
//
// swagger:model DocumentResponse
type DocumentResponse struct {
	DocumentID string `json:"document_id"`
	Chunks     int    `json:"chunks"`
	Skipped    bool   `json:"skipped"`
}

// ServeHTTP handles HTTP requests for ingestion.
//
// swagger:route POST /api/v1/documents ingestDocument
//
// # Ingest a report
//
// Chunks, classifies, embeds and indexes the posted pages. A document whose
// pages are unchanged since the last ingestion is skipped.
//
// ---
// consumes:
// - application/json
// produces:
// - application/json
// responses:
//
//	'201':
//	  description: Document indexed
//	  schema:
//	    "$ref": "#/definitions/DocumentResponse"
//	'200':
//	  description: Document unchanged and skipped
//	  schema:
//	    "$ref": "#/definitions/DocumentResponse"
//	'400':
//	  description: Bad request
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'502':
//	  description: Embedding service or index unavailable
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *DocumentsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req DocumentRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDocumentBytes)).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	pages := make([]indexer.Page, len(req.Pages))
	for i, p := range req.Pages {
		pages[i] = indexer.Page{Number: p.PageNumber, Text: p.Text}
	}

	res, err := h.ingestService.Ingest(ctx, service.IngestRequest{
		CompanyID:  req.CompanyID,
		SourcePath: req.SourcePath,
		Title:      req.Title,
		Pages:      pages,
	})
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to ingest document")
		return
	}

	status := http.StatusCreated
	if res.Skipped {
		status = http.StatusOK
	}
	writeJSON(ctx, w, status, DocumentResponse{
		DocumentID: res.DocumentID,
		Chunks:     res.Chunks,
		Skipped:    res.Skipped,
	})
}

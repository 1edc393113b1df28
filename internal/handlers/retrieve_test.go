package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"finrag/internal/rag"
	"finrag/internal/service"
	service_mocks "finrag/internal/service/mocks"

	"go.uber.org/mock/gomock"
)

func TestRetrieveHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := service_mocks.NewMockRetrievalService(ctrl)
	handler := NewRetrieveHandler(mockService)

	mockService.EXPECT().
		Retrieve(gomock.Any(), rag.Request{
			Query:     "What are the contingent liabilities?",
			CompanyID: "acme",
			TopK:      3,
			Filters: rag.Filters{
				StatementType: "standalone",
				SectionTypes:  []string{"contingent_liabilities"},
			},
			InferFilters: true,
		}).
		Return(service.RetrieveResponse{Results: []rag.RetrievalResult{
			{ChunkID: "c1", ChunkText: "Note 32 Contingent liabilities", PageNumbers: []int{88}, Score: 0.91, RetrievalTier: rag.TierReranked},
			{ChunkID: "c2", ChunkText: "Guarantees given", PageNumbers: []int{89}, Score: 0.7, RetrievalTier: rag.TierReranked},
		}}, nil)

	body := `{"query":"What are the contingent liabilities?","company_id":"acme","top_k":3,` +
		`"filters":{"statement_type":"standalone","section_types":["contingent_liabilities"]},"infer_filters":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/retrieve", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp RetrieveResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 2 || len(resp.Results) != 2 {
		t.Fatalf("response = %+v, want 2 results", resp)
	}
	if resp.Results[0].ChunkID != "c1" || resp.Results[0].RetrievalTier != rag.TierReranked {
		t.Errorf("first result = %+v", resp.Results[0])
	}
}

func TestRetrieveHandler_EmptyResultsEncodeAsArray(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := service_mocks.NewMockRetrievalService(ctrl)
	handler := NewRetrieveHandler(mockService)

	mockService.EXPECT().Retrieve(gomock.Any(), gomock.Any()).
		Return(service.RetrieveResponse{Results: []rag.RetrievalResult{}}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/retrieve",
		strings.NewReader(`{"query":"goodwill","company_id":"acme"}`))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if !strings.Contains(w.Body.String(), `"results":[]`) {
		t.Errorf("body = %s, want an empty results array", w.Body.String())
	}
}

func TestRetrieveHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		body       string
		setup      func(m *service_mocks.MockRetrievalService)
		wantStatus int
	}{
		{
			name:       "method not allowed",
			method:     http.MethodGet,
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "malformed body",
			method:     http.MethodPost,
			body:       `{"query":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "validation error",
			method: http.MethodPost,
			body:   `{"query":"","company_id":"acme"}`,
			setup: func(m *service_mocks.MockRetrievalService) {
				m.EXPECT().Retrieve(gomock.Any(), gomock.Any()).
					Return(service.RetrieveResponse{}, &service.ValidationError{Field: "query", Message: "cannot be empty"})
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "unexpected error",
			method: http.MethodPost,
			body:   `{"query":"revenue","company_id":"acme"}`,
			setup: func(m *service_mocks.MockRetrievalService) {
				m.EXPECT().Retrieve(gomock.Any(), gomock.Any()).
					Return(service.RetrieveResponse{}, errors.New("boom"))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockService := service_mocks.NewMockRetrievalService(ctrl)
			if tt.setup != nil {
				tt.setup(mockService)
			}
			handler := NewRetrieveHandler(mockService)

			req := httptest.NewRequest(tt.method, "/api/v1/retrieve", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusMethodNotAllowed {
				var errResp ErrorResponse
				if err := json.NewDecoder(w.Body).Decode(&errResp); err != nil || errResp.Error == "" {
					t.Errorf("expected ErrorResponse body, got %q", w.Body.String())
				}
			}
		})
	}
}

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation error", &service.ValidationError{Field: "top_k", Message: "too large"}, http.StatusBadRequest},
		{"invalid input", fmt.Errorf("bad filter: %w", service.ErrInvalidInput), http.StatusBadRequest},
		{"external service", fmt.Errorf("qdrant down: %w", service.ErrExternalService), http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			w := httptest.NewRecorder()

			handleServiceError(req.Context(), w, tt.err, "failed")

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"finrag/internal/rag"
	rag_mocks "finrag/internal/rag/mocks"
	"finrag/internal/service"

	"go.uber.org/mock/gomock"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testContext() context.Context {
	return context.Background()
}

func TestRetrievalService_Retrieve(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockEngine := rag_mocks.NewMockEngine(ctrl)
	svc := service.NewRetrievalService(mockEngine)

	want := []rag.RetrievalResult{
		{ChunkID: "c1", ChunkText: "Trade receivables 1,204.11", Score: 1.3, RetrievalTier: rag.TierReranked},
	}

	mockEngine.EXPECT().
		Retrieve(gomock.Any(), rag.Request{Query: "trade receivables", CompanyID: "acme", TopK: 5}).
		Return(want)

	resp, err := svc.Retrieve(testContext(), rag.Request{Query: "  trade receivables ", CompanyID: " acme", TopK: 5})
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].ChunkID != "c1" {
		t.Errorf("Retrieve() results = %+v, want %+v", resp.Results, want)
	}
}

func TestRetrievalService_Retrieve_EmptyResultsNotNil(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockEngine := rag_mocks.NewMockEngine(ctrl)
	svc := service.NewRetrievalService(mockEngine)

	mockEngine.EXPECT().Retrieve(gomock.Any(), gomock.Any()).Return(nil)

	resp, err := svc.Retrieve(testContext(), rag.Request{Query: "goodwill", CompanyID: "acme"})
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if resp.Results == nil {
		t.Error("Retrieve() results should be an empty slice, got nil")
	}
}

func TestRetrievalService_Retrieve_Validation(t *testing.T) {
	tests := []struct {
		name      string
		req       rag.Request
		wantField string
	}{
		{
			name:      "empty query",
			req:       rag.Request{Query: "", CompanyID: "acme"},
			wantField: "query",
		},
		{
			name:      "whitespace query",
			req:       rag.Request{Query: "   \n", CompanyID: "acme"},
			wantField: "query",
		},
		{
			name:      "missing company",
			req:       rag.Request{Query: "revenue"},
			wantField: "company_id",
		},
		{
			name:      "negative top_k",
			req:       rag.Request{Query: "revenue", CompanyID: "acme", TopK: -1},
			wantField: "top_k",
		},
		{
			name:      "top_k too large",
			req:       rag.Request{Query: "revenue", CompanyID: "acme", TopK: service.MaxTopK + 1},
			wantField: "top_k",
		},
		{
			name:      "threshold above one",
			req:       rag.Request{Query: "revenue", CompanyID: "acme", SimilarityThreshold: 1.2},
			wantField: "similarity_threshold",
		},
		{
			name: "unknown statement type",
			req: rag.Request{Query: "revenue", CompanyID: "acme",
				Filters: rag.Filters{StatementType: "both"}},
			wantField: "filters.statement_type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockEngine := rag_mocks.NewMockEngine(ctrl)
			svc := service.NewRetrievalService(mockEngine)

			_, err := svc.Retrieve(testContext(), tt.req)
			if err == nil {
				t.Fatal("Retrieve() expected error, got nil")
			}
			if !errors.Is(err, service.ErrInvalidInput) {
				t.Errorf("Retrieve() error should match ErrInvalidInput, got %v", err)
			}
			var validationErr *service.ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("Retrieve() error should be ValidationError, got %T", err)
			}
			if validationErr.Field != tt.wantField {
				t.Errorf("ValidationError.Field = %q, want %q", validationErr.Field, tt.wantField)
			}
		})
	}
}

func TestRetrievalService_Retrieve_StatementFilters(t *testing.T) {
	for _, statement := range []string{"standalone", "consolidated"} {
		t.Run(statement, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockEngine := rag_mocks.NewMockEngine(ctrl)
			svc := service.NewRetrievalService(mockEngine)

			mockEngine.EXPECT().Retrieve(gomock.Any(), gomock.Any()).Return([]rag.RetrievalResult{})

			_, err := svc.Retrieve(testContext(), rag.Request{
				Query:     "balance sheet",
				CompanyID: "acme",
				Filters:   rag.Filters{StatementType: statement},
			})
			if err != nil {
				t.Errorf("Retrieve() error = %v", err)
			}
		})
	}
}

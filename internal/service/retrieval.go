package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_retrieval_service.go -package=mocks finrag/internal/service RetrievalService

import (
	"context"
	"strings"

	"finrag/internal/classifier"
	"finrag/internal/contextutil"
	"finrag/internal/rag"
)

// MaxTopK bounds the number of results one request may ask for.
const MaxTopK = 100

// RetrieveResponse holds the ranked chunks for a query.
type RetrieveResponse struct {
	Results []rag.RetrievalResult
}

// RetrievalService answers retrieval queries over indexed reports.
type RetrievalService interface {
	// Retrieve validates req and runs it through the hybrid engine.
	Retrieve(ctx context.Context, req rag.Request) (RetrieveResponse, error)
}

type retrievalService struct {
	engine rag.Engine
}

// NewRetrievalService creates a new RetrievalService.
func NewRetrievalService(engine rag.Engine) RetrievalService {
	return &retrievalService{engine: engine}
}

// Retrieve validates the request and returns the engine's results. Backend
// outages reduce the result count, they never fail the request.
func (s *retrievalService) Retrieve(ctx context.Context, req rag.Request) (RetrieveResponse, error) {
	req.Query = strings.TrimSpace(req.Query)
	req.CompanyID = strings.TrimSpace(req.CompanyID)

	ctx = contextutil.With(ctx, "company_id", req.CompanyID)
	logger := contextutil.LoggerFromContext(ctx)

	if err := validateRetrieveRequest(req); err != nil {
		logger.WarnContext(ctx, "invalid retrieval request", "error", err)
		return RetrieveResponse{}, err
	}

	results := s.engine.Retrieve(ctx, req)
	if results == nil {
		results = []rag.RetrievalResult{}
	}

	logger.InfoContext(ctx, "retrieval request processed", "top_k", req.TopK, "results", len(results))
	return RetrieveResponse{Results: results}, nil
}

func validateRetrieveRequest(req rag.Request) error {
	if req.Query == "" {
		return invalidField("query", "cannot be empty")
	}
	if req.CompanyID == "" {
		return invalidField("company_id", "cannot be empty")
	}
	if req.TopK < 0 || req.TopK > MaxTopK {
		return invalidField("top_k", "must be between 0 and %d", MaxTopK)
	}
	if req.SimilarityThreshold < 0 || req.SimilarityThreshold > 1 {
		return invalidField("similarity_threshold", "must be between 0 and 1")
	}
	switch req.Filters.StatementType {
	case "", classifier.StatementStandalone, classifier.StatementConsolidated:
	default:
		return invalidField("filters.statement_type", "must be standalone or consolidated")
	}
	return nil
}

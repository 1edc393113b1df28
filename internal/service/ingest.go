package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_indexer.go -package=mocks finrag/internal/service Indexer
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_ingest_service.go -package=mocks finrag/internal/service IngestService

import (
	"context"
	"fmt"
	"strings"

	"finrag/internal/contextutil"
	"finrag/internal/indexer"
	"finrag/internal/pages"
)

// Indexer is the ingestion pipeline as seen by the service layer.
// Implemented by indexer.Pipeline.
type Indexer interface {
	IndexDocument(ctx context.Context, doc indexer.Document) (*indexer.IndexResult, error)
	Stats(ctx context.Context, companyID string) (*indexer.IndexStats, error)
}

// IngestRequest carries the pages of one report.
type IngestRequest struct {
	CompanyID  string
	SourcePath string
	Title      string
	Pages      []indexer.Page
}

// IngestSummary reports the outcome of ingesting a directory.
type IngestSummary struct {
	Files   int         `json:"files"`
	Indexed int         `json:"indexed"`
	Skipped int         `json:"skipped"`
	Failed  int         `json:"failed"`
	Chunks  int         `json:"chunks"`
	Errors  []FileError `json:"errors,omitempty"`
}

// FileError is a per-file ingestion failure.
type FileError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// IngestService indexes reports and reports index statistics.
type IngestService interface {
	// Ingest indexes the pages of one report.
	Ingest(ctx context.Context, req IngestRequest) (*indexer.IndexResult, error)
	// IngestPath loads and indexes every report file under path.
	IngestPath(ctx context.Context, companyID, path string) (*IngestSummary, error)
	// Stats returns index statistics, optionally for one company.
	Stats(ctx context.Context, companyID string) (*indexer.IndexStats, error)
}

type ingestService struct {
	indexer Indexer
}

// NewIngestService creates a new IngestService.
func NewIngestService(idx Indexer) IngestService {
	return &ingestService{indexer: idx}
}

// Ingest validates the request and indexes the pages.
func (s *ingestService) Ingest(ctx context.Context, req IngestRequest) (*indexer.IndexResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	req.CompanyID = strings.TrimSpace(req.CompanyID)
	req.SourcePath = strings.TrimSpace(req.SourcePath)

	if err := validateIngestRequest(req); err != nil {
		logger.WarnContext(ctx, "invalid ingest request", "error", err)
		return nil, err
	}

	res, err := s.indexer.IndexDocument(ctx, indexer.Document{
		CompanyID:  req.CompanyID,
		SourcePath: req.SourcePath,
		Title:      req.Title,
		Pages:      req.Pages,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to index document", "source_path", req.SourcePath, "error", err)
		return nil, externalError(err, "failed to index document")
	}

	return res, nil
}

func validateIngestRequest(req IngestRequest) error {
	if req.CompanyID == "" {
		return invalidField("company_id", "cannot be empty")
	}
	if req.SourcePath == "" {
		return invalidField("source_path", "cannot be empty")
	}
	if len(req.Pages) == 0 {
		return invalidField("pages", "at least one page is required")
	}
	for i, p := range req.Pages {
		if p.Number <= 0 {
			return invalidField(fmt.Sprintf("pages[%d].page_number", i), "must be greater than 0")
		}
	}
	return nil
}

// IngestPath scans path for report files and indexes each one. A failing
// file is recorded in the summary and does not stop the others.
func (s *ingestService) IngestPath(ctx context.Context, companyID, path string) (*IngestSummary, error) {
	logger := contextutil.LoggerFromContext(ctx)

	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return nil, invalidField("company_id", "cannot be empty")
	}
	if path == "" {
		return nil, invalidField("path", "cannot be empty")
	}

	files, err := pages.Scan(ctx, path)
	if err != nil {
		return nil, invalidField("path", "%v", err)
	}
	if len(files) == 0 {
		return nil, invalidField("path", "no supported report files found")
	}

	ctx = contextutil.With(ctx, "company_id", companyID)
	logger = contextutil.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "starting ingestion", "total_files", len(files))

	summary := &IngestSummary{Files: len(files)}
	for _, file := range files {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		if err := s.ingestFile(contextutil.With(ctx, "rel_path", file.RelPath), companyID, file, summary); err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, FileError{Path: file.RelPath, Error: err.Error()})
			logger.ErrorContext(ctx, "failed to ingest file", "rel_path", file.RelPath, "error", err)
		}
	}

	logger.InfoContext(ctx, "ingestion completed",
		"total_files", summary.Files,
		"indexed", summary.Indexed,
		"skipped", summary.Skipped,
		"errors", summary.Failed)

	if summary.Failed > 0 {
		return summary, fmt.Errorf("ingestion completed with %d errors", summary.Failed)
	}
	return summary, nil
}

func (s *ingestService) ingestFile(ctx context.Context, companyID string, file pages.ScannedFile, summary *IngestSummary) error {
	doc, err := pages.Load(file.AbsPath)
	if err != nil {
		return err
	}

	res, err := s.indexer.IndexDocument(ctx, indexer.Document{
		CompanyID:  companyID,
		SourcePath: file.RelPath,
		Title:      doc.Title,
		Pages:      doc.Pages,
	})
	if err != nil {
		return externalError(err, "failed to index document")
	}

	if res.Skipped {
		summary.Skipped++
	} else {
		summary.Indexed++
		summary.Chunks += res.Chunks
	}
	return nil
}

// Stats returns index statistics.
func (s *ingestService) Stats(ctx context.Context, companyID string) (*indexer.IndexStats, error) {
	stats, err := s.indexer.Stats(ctx, strings.TrimSpace(companyID))
	if err != nil {
		return nil, externalError(err, "failed to compute index stats")
	}
	return stats, nil
}

package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks finrag/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// DocumentStore defines the interface for document storage operations.
type DocumentStore interface {
	// GetBySource gets a document by company and source path.
	// Returns nil and ErrNotFound if not found.
	GetBySource(ctx context.Context, companyID, sourcePath string) (*DocumentRecord, error)
	// Upsert inserts a new document or updates an existing one.
	Upsert(ctx context.Context, doc *DocumentRecord) error
	// Count returns the number of documents, optionally for one company.
	Count(ctx context.Context, companyID string) (int, error)
	// CountWithoutChunks returns the number of documents that have no chunks.
	CountWithoutChunks(ctx context.Context, companyID string) (int, error)
}

// DocumentRepo provides methods for document operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// GetBySource gets a document by company and source path.
func (r *DocumentRepo) GetBySource(ctx context.Context, companyID, sourcePath string) (*DocumentRecord, error) {
	var doc DocumentRecord
	var title sql.NullString
	var updatedAtStr string

	err := r.db.QueryRowContext(ctx,
		"SELECT id, company_id, source_path, title, hash, page_count, updated_at FROM documents WHERE company_id = ? AND source_path = ?",
		companyID, sourcePath,
	).Scan(&doc.ID, &doc.CompanyID, &doc.SourcePath, &title, &doc.Hash, &doc.PageCount, &updatedAtStr)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}
	doc.Title = title.String

	doc.UpdatedAt, err = parseTimestamp(updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse updated_at timestamp: %w", err)
	}

	return &doc, nil
}

// Upsert inserts a new document or updates an existing one.
// A new document gets a UUID; an existing one keeps its ID.
func (r *DocumentRepo) Upsert(ctx context.Context, doc *DocumentRecord) error {
	existing, err := r.GetBySource(ctx, doc.CompanyID, doc.SourcePath)
	if err != nil && err != ErrNotFound {
		return fmt.Errorf("failed to check existing document: %w", err)
	}

	if existing == nil && doc.ID == "" {
		doc.ID = uuid.New().String()
	} else if existing != nil {
		doc.ID = existing.ID
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO documents (id, company_id, source_path, title, hash, page_count, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (company_id, source_path) DO UPDATE SET
		 title = excluded.title, hash = excluded.hash, page_count = excluded.page_count, updated_at = CURRENT_TIMESTAMP`,
		doc.ID, doc.CompanyID, doc.SourcePath, doc.Title, doc.Hash, doc.PageCount,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}

	return nil
}

// Count returns the number of documents. An empty companyID counts all.
func (r *DocumentRepo) Count(ctx context.Context, companyID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM documents WHERE ? = '' OR company_id = ?",
		companyID, companyID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to query document count: %w", err)
	}
	return count, nil
}

// CountWithoutChunks returns the number of documents that produced no chunks.
func (r *DocumentRepo) CountWithoutChunks(ctx context.Context, companyID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents d
		 WHERE (? = '' OR d.company_id = ?)
		 AND NOT EXISTS (SELECT 1 FROM chunks c WHERE c.document_id = d.id)`,
		companyID, companyID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to query documents without chunks: %w", err)
	}
	return count, nil
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err == nil {
		return t, nil
	}
	// SQLite may hand back RFC3339 depending on how the value was written.
	return time.Parse(time.RFC3339, s)
}

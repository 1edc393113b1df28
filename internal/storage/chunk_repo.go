package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chunk_store.go -package=mocks finrag/internal/storage ChunkStore

import (
	"context"
	"database/sql"
	"fmt"
)

const chunkColumns = `id, document_id, company_id, chunk_index, chunk_type, text, page_numbers, char_count,
	is_critical, note_number, sub_note, note_title, parent_note, hierarchy_level, statement_type,
	section_types, content_types, confidence`

// ChunkStore defines the interface for chunk storage operations.
type ChunkStore interface {
	// InsertBatch inserts chunks in one transaction. Every chunk.ID must be set.
	InsertBatch(ctx context.Context, chunks []*ChunkRecord) error
	// DeleteByDocument deletes all chunks for a given document ID.
	DeleteByDocument(ctx context.Context, documentID string) error
	// ListIDsByDocument returns all chunk IDs of a document, ordered by chunk_index.
	ListIDsByDocument(ctx context.Context, documentID string) ([]string, error)
	// GetByID gets a chunk by its ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*ChunkRecord, error)
	// ListSizes returns the size and criticality of every chunk, optionally
	// for one company.
	ListSizes(ctx context.Context, companyID string) ([]ChunkSize, error)
}

// ChunkRepo provides methods for chunk operations.
// It implements the ChunkStore interface.
type ChunkRepo struct {
	db *sql.DB
}

// NewChunkRepo creates a new ChunkRepo.
func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// InsertBatch inserts chunks in one transaction.
func (r *ChunkRepo) InsertBatch(ctx context.Context, chunks []*ChunkRecord) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO chunks ("+chunkColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare chunk insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, chunk := range chunks {
		pages, err := encodeJSON(nonNilInts(chunk.PageNumbers))
		if err != nil {
			return fmt.Errorf("failed to encode page numbers: %w", err)
		}
		sectionTypes, err := encodeJSON(nonNilStrings(chunk.SectionTypes))
		if err != nil {
			return fmt.Errorf("failed to encode section types: %w", err)
		}
		contentTypes, err := encodeJSON(nonNilStrings(chunk.ContentTypes))
		if err != nil {
			return fmt.Errorf("failed to encode content types: %w", err)
		}

		_, err = stmt.ExecContext(ctx,
			chunk.ID, chunk.DocumentID, chunk.CompanyID, chunk.ChunkIndex, chunk.ChunkType, chunk.Text,
			pages, chunk.CharCount, chunk.IsCritical, chunk.NoteNumber, chunk.SubNote, chunk.NoteTitle,
			chunk.ParentNote, chunk.HierarchyLevel, chunk.StatementType, sectionTypes, contentTypes,
			chunk.Confidence,
		)
		if err != nil {
			return fmt.Errorf("failed to insert chunk %s: %w", chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chunks: %w", err)
	}
	return nil
}

// DeleteByDocument deletes all chunks for a given document ID.
// Used when re-indexing a document to remove old chunks before inserting new ones.
func (r *ChunkRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID)
	if err != nil {
		return fmt.Errorf("failed to delete chunks by document: %w", err)
	}
	return nil
}

// ListIDsByDocument returns all chunk IDs for a document, ordered by chunk_index.
// Returns an empty slice if no chunks exist (not an error).
func (r *ChunkRepo) ListIDsByDocument(ctx context.Context, documentID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id FROM chunks WHERE document_id = ? ORDER BY chunk_index",
		documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk IDs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan chunk ID: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return ids, nil
}

// GetByID gets a chunk by its ID. Returns ErrNotFound if not found.
func (r *ChunkRepo) GetByID(ctx context.Context, id string) (*ChunkRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+chunkColumns+" FROM chunks WHERE id = ?", id)
	chunk, err := scanChunk(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk: %w", err)
	}
	return chunk, nil
}

// ListSizes returns the size and criticality of every chunk.
func (r *ChunkRepo) ListSizes(ctx context.Context, companyID string) ([]ChunkSize, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT char_count, is_critical FROM chunks WHERE ? = '' OR company_id = ?",
		companyID, companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk sizes: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var sizes []ChunkSize
	for rows.Next() {
		var s ChunkSize
		if err := rows.Scan(&s.CharCount, &s.IsCritical); err != nil {
			return nil, fmt.Errorf("failed to scan chunk size: %w", err)
		}
		sizes = append(sizes, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return sizes, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChunk(row rowScanner) (*ChunkRecord, error) {
	var chunk ChunkRecord
	var pages, sectionTypes, contentTypes string
	err := row.Scan(
		&chunk.ID, &chunk.DocumentID, &chunk.CompanyID, &chunk.ChunkIndex, &chunk.ChunkType, &chunk.Text,
		&pages, &chunk.CharCount, &chunk.IsCritical, &chunk.NoteNumber, &chunk.SubNote, &chunk.NoteTitle,
		&chunk.ParentNote, &chunk.HierarchyLevel, &chunk.StatementType, &sectionTypes, &contentTypes,
		&chunk.Confidence,
	)
	if err != nil {
		return nil, err
	}
	if err := decodeJSON(pages, &chunk.PageNumbers); err != nil {
		return nil, fmt.Errorf("failed to decode page numbers: %w", err)
	}
	if err := decodeJSON(sectionTypes, &chunk.SectionTypes); err != nil {
		return nil, fmt.Errorf("failed to decode section types: %w", err)
	}
	if err := decodeJSON(contentTypes, &chunk.ContentTypes); err != nil {
		return nil, fmt.Errorf("failed to decode content types: %w", err)
	}
	return &chunk, nil
}

func nonNilInts(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

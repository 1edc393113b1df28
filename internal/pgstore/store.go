// Package pgstore is the Postgres index backend. One document_chunks table
// holds chunk text and metadata, a generated tsvector for keyword search and
// a pgvector embedding for similarity search.
package pgstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"finrag/internal/contextutil"
	"finrag/internal/storage"
)

// Store owns the connection pool and writes chunks.
type Store struct {
	db *sqlx.DB
}

// Open connects to Postgres using dsn.
func Open(dsn string) (*Store, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	return New(db), nil
}

// New wraps an existing connection.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the vector extension, the document_chunks table and its
// indexes. dims is the embedding dimension.
func (s *Store) Migrate(ctx context.Context, dims int) error {
	if dims <= 0 {
		return fmt.Errorf("embedding dimension must be positive, got %d", dims)
	}
	schema := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS document_chunks (
			id TEXT PRIMARY KEY,
			document_id TEXT NOT NULL,
			company_id TEXT NOT NULL,
			chunk_type TEXT NOT NULL,
			content TEXT NOT NULL,
			page_numbers INTEGER[] NOT NULL DEFAULT '{}',
			note_number TEXT NOT NULL DEFAULT '',
			sub_note TEXT NOT NULL DEFAULT '',
			statement_type TEXT NOT NULL DEFAULT '',
			section_types TEXT[] NOT NULL DEFAULT '{}',
			embedding vector(%d),
			content_tsv tsvector GENERATED ALWAYS AS (to_tsvector('english', content)) STORED
		)`, dims),
		`CREATE INDEX IF NOT EXISTS document_chunks_company_idx ON document_chunks (company_id, statement_type)`,
		`CREATE INDEX IF NOT EXISTS document_chunks_tsv_idx ON document_chunks USING GIN (content_tsv)`,
		`CREATE INDEX IF NOT EXISTS document_chunks_document_idx ON document_chunks (document_id)`,
	}
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate postgres schema: %w", err)
		}
	}
	return nil
}

const upsertChunk = `
	INSERT INTO document_chunks (
		id, document_id, company_id, chunk_type, content, page_numbers,
		note_number, sub_note, statement_type, section_types, embedding
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (id) DO UPDATE SET
		content = EXCLUDED.content,
		page_numbers = EXCLUDED.page_numbers,
		note_number = EXCLUDED.note_number,
		sub_note = EXCLUDED.sub_note,
		statement_type = EXCLUDED.statement_type,
		section_types = EXCLUDED.section_types,
		embedding = EXCLUDED.embedding`

// UpsertChunks writes chunks with their embeddings in one transaction.
// vectors[i] belongs to chunks[i].
func (s *Store) UpsertChunks(ctx context.Context, chunks []*storage.ChunkRecord, vectors [][]float32) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(chunks) != len(vectors) {
		return fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i, c := range chunks {
		_, err := tx.ExecContext(ctx, upsertChunk,
			c.ID, c.DocumentID, c.CompanyID, c.ChunkType, c.Text, intArray(c.PageNumbers),
			c.NoteNumber, c.SubNote, c.StatementType, stringArray(c.SectionTypes),
			pgvector.NewVector(vectors[i]),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert chunk %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chunks: %w", err)
	}
	logger.InfoContext(ctx, "upserted chunks to postgres", "count", len(chunks))
	return nil
}

// DeleteChunks removes chunks by ID.
func (s *Store) DeleteChunks(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM document_chunks WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func intArray(v []int) pq.Int64Array {
	out := make(pq.Int64Array, len(v))
	for i, n := range v {
		out[i] = int64(n)
	}
	return out
}

// stringArray never returns nil so the driver sends '{}' instead of NULL.
func stringArray(v []string) pq.StringArray {
	if v == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(v)
}

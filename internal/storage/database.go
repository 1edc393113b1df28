package storage

import (
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// New opens the SQLite record store at path. Pragmas are set through the DSN
// so every pooled connection gets them: foreign keys for the chunk cascade,
// WAL so retrieval reads proceed during ingestion, and a busy timeout for
// concurrent writers.
func New(path string) (*sql.DB, error) {
	params := url.Values{}
	params.Set("_foreign_keys", "on")
	params.Set("_journal_mode", "WAL")
	params.Set("_busy_timeout", "5000")

	db, err := sql.Open("sqlite3", "file:"+path+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database %s: %w", path, err)
	}

	return db, nil
}

// Migrate creates the documents and chunks tables and the chunks_fts
// full-text index. It is idempotent.
func Migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			company_id TEXT NOT NULL,
			source_path TEXT NOT NULL,
			title TEXT,
			hash TEXT NOT NULL,
			page_count INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (company_id, source_path)
		);`,
		`CREATE TABLE IF NOT EXISTS chunks (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			document_id TEXT NOT NULL,
			company_id TEXT NOT NULL,
			chunk_index INTEGER NOT NULL,
			chunk_type TEXT NOT NULL,
			text TEXT NOT NULL,
			page_numbers TEXT NOT NULL DEFAULT '[]',
			char_count INTEGER NOT NULL,
			is_critical INTEGER NOT NULL DEFAULT 0,
			note_number TEXT NOT NULL DEFAULT '',
			sub_note TEXT NOT NULL DEFAULT '',
			note_title TEXT NOT NULL DEFAULT '',
			parent_note TEXT NOT NULL DEFAULT '',
			hierarchy_level INTEGER NOT NULL DEFAULT 0,
			statement_type TEXT NOT NULL DEFAULT '',
			section_types TEXT NOT NULL DEFAULT '[]',
			content_types TEXT NOT NULL DEFAULT '[]',
			confidence REAL NOT NULL DEFAULT 0,
			FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document_id, chunk_index);`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_company ON chunks(company_id, statement_type, note_number);`,
		// External-content FTS4 table over chunks.text keyed by chunks.seq, kept
		// in sync by triggers.
		`CREATE VIRTUAL TABLE IF NOT EXISTS chunks_fts USING fts4(content="chunks", text, tokenize=unicode61);`,
		`CREATE TRIGGER IF NOT EXISTS chunks_fts_ai AFTER INSERT ON chunks BEGIN
			INSERT INTO chunks_fts(docid, text) VALUES (new.seq, new.text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS chunks_fts_bd BEFORE DELETE ON chunks BEGIN
			DELETE FROM chunks_fts WHERE docid = old.seq;
		END;`,
		`CREATE TRIGGER IF NOT EXISTS chunks_fts_bu BEFORE UPDATE ON chunks BEGIN
			DELETE FROM chunks_fts WHERE docid = old.seq;
		END;`,
		`CREATE TRIGGER IF NOT EXISTS chunks_fts_au AFTER UPDATE ON chunks BEGIN
			INSERT INTO chunks_fts(docid, text) VALUES (new.seq, new.text);
		END;`,
	}

	for i, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration step %d failed: %w", i+1, err)
		}
	}

	return nil
}

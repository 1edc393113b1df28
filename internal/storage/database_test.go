package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
)

// newTestDB opens and migrates a database under t.TempDir().
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return db
}

func TestNew_Pragmas(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	// Pin two connections so both are checked, not just the pooled one.
	for i := 0; i < 2; i++ {
		conn, err := db.Conn(ctx)
		if err != nil {
			t.Fatalf("Conn() error = %v", err)
		}
		defer func() { _ = conn.Close() }()

		var fk, busy int
		var journal string
		if err := conn.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk); err != nil {
			t.Fatalf("PRAGMA foreign_keys: %v", err)
		}
		if err := conn.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&busy); err != nil {
			t.Fatalf("PRAGMA busy_timeout: %v", err)
		}
		if err := conn.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&journal); err != nil {
			t.Fatalf("PRAGMA journal_mode: %v", err)
		}
		if fk != 1 || busy != 5000 || !strings.EqualFold(journal, "wal") {
			t.Errorf("connection %d: foreign_keys=%d busy_timeout=%d journal_mode=%s", i, fk, busy, journal)
		}
	}

	if db.Stats().MaxOpenConnections != 25 {
		t.Errorf("MaxOpenConnections = %d, want 25", db.Stats().MaxOpenConnections)
	}
}

func TestNew_InvalidPath(t *testing.T) {
	db, err := New("/invalid/path/to/db.db")
	if err == nil {
		_ = db.Close()
		t.Fatal("New() expected error for an unreachable path")
	}
	if !strings.Contains(err.Error(), "/invalid/path/to/db.db") {
		t.Errorf("error %q should name the path", err)
	}
}

func TestMigrate(t *testing.T) {
	db := newTestDB(t)

	// Second run must be a no-op.
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() second run error = %v", err)
	}

	objects := map[string][]string{
		"table":   {"documents", "chunks", "chunks_fts"},
		"index":   {"idx_chunks_document", "idx_chunks_company"},
		"trigger": {"chunks_fts_ai", "chunks_fts_bd", "chunks_fts_bu", "chunks_fts_au"},
	}
	for kind, names := range objects {
		for _, name := range names {
			var count int
			err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type=? AND name=?", kind, name).Scan(&count)
			if err != nil {
				t.Fatalf("failed to look up %s %s: %v", kind, name, err)
			}
			if count != 1 {
				t.Errorf("Migrate() did not create %s %s", kind, name)
			}
		}
	}
}

func TestMigrate_DocumentDeleteCascades(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	doc := insertDocument(t, NewDocumentRepo(db), "acme", "fy24.json")
	chunk := &ChunkRecord{
		ID: "chunk-1", DocumentID: doc.ID, CompanyID: "acme",
		ChunkType: "paragraph", Text: "Deferred tax liabilities", CharCount: 24,
	}
	if err := NewChunkRepo(db).InsertBatch(ctx, []*ChunkRecord{chunk}); err != nil {
		t.Fatalf("InsertBatch() error = %v", err)
	}

	if _, err := db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", doc.ID); err != nil {
		t.Fatalf("delete document: %v", err)
	}

	var chunks, fts int
	if err := db.QueryRow("SELECT COUNT(*) FROM chunks").Scan(&chunks); err != nil {
		t.Fatal(err)
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM chunks_fts WHERE chunks_fts MATCH 'deferred'").Scan(&fts); err != nil {
		t.Fatal(err)
	}
	if chunks != 0 || fts != 0 {
		t.Errorf("after deleting the document: %d chunks, %d full-text rows; want 0 and 0", chunks, fts)
	}
}

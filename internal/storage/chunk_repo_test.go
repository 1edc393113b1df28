package storage

import (
	"context"
	"reflect"
	"testing"
)

func insertDocument(t *testing.T, repo *DocumentRepo, companyID, path string) *DocumentRecord {
	t.Helper()
	doc := &DocumentRecord{CompanyID: companyID, SourcePath: path, Hash: "hash"}
	if err := repo.Upsert(context.Background(), doc); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	return doc
}

func TestChunkRepo_InsertBatchAndGet(t *testing.T) {
	db := newTestDB(t)
	doc := insertDocument(t, NewDocumentRepo(db), "acme", "fy24.json")
	repo := NewChunkRepo(db)
	ctx := context.Background()

	want := &ChunkRecord{
		ID:             "chunk-1",
		DocumentID:     doc.ID,
		CompanyID:      "acme",
		ChunkIndex:     0,
		ChunkType:      "note_section",
		Text:           "Note 12 - Borrowings\n\nTerm loans from banks 1,504.69",
		PageNumbers:    []int{41, 42},
		CharCount:      51,
		IsCritical:     true,
		NoteNumber:     "Note 12",
		SubNote:        "12.1",
		NoteTitle:      "Borrowings",
		ParentNote:     "Note 12",
		HierarchyLevel: 1,
		StatementType:  "standalone",
		SectionTypes:   []string{"notes", "borrowings"},
		ContentTypes:   []string{"numerical", "paragraph"},
		Confidence:     0.9,
	}
	if err := repo.InsertBatch(ctx, []*ChunkRecord{want}); err != nil {
		t.Fatalf("InsertBatch() error = %v", err)
	}

	got, err := repo.GetByID(ctx, "chunk-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetByID() = %+v\nwant %+v", got, want)
	}
}

func TestChunkRepo_InsertBatch_RollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	doc := insertDocument(t, NewDocumentRepo(db), "acme", "fy24.json")
	repo := NewChunkRepo(db)
	ctx := context.Background()

	err := repo.InsertBatch(ctx, []*ChunkRecord{
		{ID: "dup", DocumentID: doc.ID, CompanyID: "acme", ChunkType: "paragraph", Text: "one", CharCount: 3},
		{ID: "dup", DocumentID: doc.ID, CompanyID: "acme", ChunkType: "paragraph", Text: "two", CharCount: 3},
	})
	if err == nil {
		t.Fatal("InsertBatch() with duplicate IDs should fail")
	}

	ids, err := repo.ListIDsByDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("ListIDsByDocument() error = %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("failed batch left %d chunks behind", len(ids))
	}
}

func TestChunkRepo_InsertBatch_UnknownDocument(t *testing.T) {
	repo := NewChunkRepo(newTestDB(t))
	err := repo.InsertBatch(context.Background(), []*ChunkRecord{
		{ID: "c1", DocumentID: "missing", CompanyID: "acme", ChunkType: "paragraph", Text: "x", CharCount: 1},
	})
	if err == nil {
		t.Error("InsertBatch() should enforce the documents foreign key")
	}
}

func TestChunkRepo_ListAndDelete(t *testing.T) {
	db := newTestDB(t)
	docs := NewDocumentRepo(db)
	doc := insertDocument(t, docs, "acme", "fy24.json")
	other := insertDocument(t, docs, "acme", "fy23.json")
	repo := NewChunkRepo(db)
	ctx := context.Background()

	chunks := []*ChunkRecord{
		{ID: "c3", DocumentID: doc.ID, CompanyID: "acme", ChunkIndex: 2, ChunkType: "paragraph", Text: "three", CharCount: 5},
		{ID: "c1", DocumentID: doc.ID, CompanyID: "acme", ChunkIndex: 0, ChunkType: "paragraph", Text: "one", CharCount: 3},
		{ID: "c2", DocumentID: doc.ID, CompanyID: "acme", ChunkIndex: 1, ChunkType: "table", Text: "| a | b |", CharCount: 9, IsCritical: true},
		{ID: "o1", DocumentID: other.ID, CompanyID: "acme", ChunkIndex: 0, ChunkType: "paragraph", Text: "other", CharCount: 5},
	}
	if err := repo.InsertBatch(ctx, chunks); err != nil {
		t.Fatalf("InsertBatch() error = %v", err)
	}

	ids, err := repo.ListIDsByDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("ListIDsByDocument() error = %v", err)
	}
	if !reflect.DeepEqual(ids, []string{"c1", "c2", "c3"}) {
		t.Errorf("ListIDsByDocument() = %v, want ordered by chunk_index", ids)
	}

	sizes, err := repo.ListSizes(ctx, "acme")
	if err != nil {
		t.Fatalf("ListSizes() error = %v", err)
	}
	if len(sizes) != 4 {
		t.Errorf("ListSizes() returned %d entries, want 4", len(sizes))
	}

	if err := repo.DeleteByDocument(ctx, doc.ID); err != nil {
		t.Fatalf("DeleteByDocument() error = %v", err)
	}
	ids, err = repo.ListIDsByDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("ListIDsByDocument() error = %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("DeleteByDocument() left %d chunks", len(ids))
	}
	if _, err := repo.GetByID(ctx, "o1"); err != nil {
		t.Errorf("DeleteByDocument() removed chunks of another document: %v", err)
	}

	if err := repo.DeleteByDocument(ctx, "non-existent-id"); err != nil {
		t.Errorf("DeleteByDocument() with unknown document should not error, got: %v", err)
	}
}

func TestChunkRepo_GetByID_NotFound(t *testing.T) {
	repo := NewChunkRepo(newTestDB(t))
	if _, err := repo.GetByID(context.Background(), "missing"); err != ErrNotFound {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

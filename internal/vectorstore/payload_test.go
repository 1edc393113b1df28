package vectorstore

import (
	"reflect"
	"testing"

	"github.com/qdrant/go-client/qdrant"

	"finrag/internal/storage"
)

func sampleRecord() *storage.ChunkRecord {
	return &storage.ChunkRecord{
		ID:            "5d1e7c9e-3f0a-4a55-9b7e-0c7f8f0d1a11",
		DocumentID:    "doc-1",
		CompanyID:     "acme",
		ChunkIndex:    4,
		ChunkType:     "note_section",
		Text:          "Note 12 - Borrowings\n\nTerm loans 1,504.69",
		PageNumbers:   []int{41, 42},
		IsCritical:    true,
		NoteNumber:    "Note 12",
		SubNote:       "12.1",
		StatementType: "standalone",
		SectionTypes:  []string{"notes", "borrowings"},
	}
}

func TestChunkPayload_RoundTrip(t *testing.T) {
	rec := sampleRecord()
	payload := chunkPayload(rec)

	if got := payload[payloadNoteNumbers]; !reflect.DeepEqual(got, []any{"Note 12", "Note 12.1"}) {
		t.Errorf("note_numbers = %v", got)
	}

	// Through the qdrant value encoding and back.
	meta := decodePayload(qdrant.NewValueMap(payload))
	got := candidateFromPayload(ScoredPoint{PointID: rec.ID, Score: 0.5, Payload: meta})

	want := rec.Candidate(0.5)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("candidateFromPayload() = %+v\nwant %+v", got, want)
	}
}

package indexer

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_pipeline.go -package=mocks finrag/internal/indexer BatchEmbedder,VectorSink

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"finrag/internal/classifier"
	"finrag/internal/contextutil"
	"finrag/internal/sections"
	"finrag/internal/storage"
)

// DefaultEmbedBatchSize is the number of chunk texts sent per embeddings request.
const DefaultEmbedBatchSize = 32

// BatchEmbedder embeds chunk texts. Implemented by llm.EmbeddingsClient.
type BatchEmbedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorSink stores chunk embeddings for the vector tier. Implemented by
// vectorstore.Index and pgstore.Store.
type VectorSink interface {
	UpsertChunks(ctx context.Context, chunks []*storage.ChunkRecord, vectors [][]float32) error
	DeleteChunks(ctx context.Context, ids []string) error
}

// Document is one report submitted for indexing.
type Document struct {
	CompanyID  string
	SourcePath string
	Title      string
	Pages      []Page
}

// IndexResult describes the outcome of IndexDocument.
type IndexResult struct {
	DocumentID string `json:"document_id"`
	Chunks     int    `json:"chunks"`
	Skipped    bool   `json:"skipped"` // Content unchanged since the last run
}

// Pipeline orchestrates the indexing of report pages into the record store
// and the vector tier.
type Pipeline struct {
	documents storage.DocumentStore
	chunks    storage.ChunkStore
	embedder  BatchEmbedder
	sink      VectorSink
	chunker   *HierarchicalChunker
	oracle    classifier.Oracle
	batchSize int
	model     string
}

// NewPipeline creates a new indexing pipeline. embeddingModel only feeds the
// index version reported by Stats.
func NewPipeline(
	documents storage.DocumentStore,
	chunks storage.ChunkStore,
	embedder BatchEmbedder,
	sink VectorSink,
	chunker *HierarchicalChunker,
	oracle classifier.Oracle,
	embeddingModel string,
) *Pipeline {
	return &Pipeline{
		documents: documents,
		chunks:    chunks,
		embedder:  embedder,
		sink:      sink,
		chunker:   chunker,
		oracle:    oracle,
		batchSize: DefaultEmbedBatchSize,
		model:     embeddingModel,
	}
}

// SetBatchSize changes how many texts go into one embeddings request.
func (p *Pipeline) SetBatchSize(n int) {
	if n > 0 {
		p.batchSize = n
	}
}

// IndexDocument indexes the pages of one report.
// It skips documents whose content hash is unchanged, otherwise it chunks and
// classifies the pages, embeds the chunks and replaces whatever the previous
// run stored for the same company and source path.
func (p *Pipeline) IndexDocument(ctx context.Context, doc Document) (*IndexResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if doc.CompanyID == "" {
		return nil, fmt.Errorf("company ID is required")
	}
	if doc.SourcePath == "" {
		return nil, fmt.Errorf("source path is required")
	}

	hash := hashPages(doc.Pages)

	existing, err := p.documents.GetBySource(ctx, doc.CompanyID, doc.SourcePath)
	if err != nil && err != storage.ErrNotFound {
		return nil, fmt.Errorf("failed to check existing document: %w", err)
	}

	if existing != nil && existing.Hash == hash {
		logger.DebugContext(ctx, "skipping unchanged document", "source_path", doc.SourcePath, "hash", hash)
		return &IndexResult{DocumentID: existing.ID, Skipped: true}, nil
	}

	chunks := p.chunker.ChunkDocument(doc.Pages)
	statements := sections.NewMap(JoinText(doc.Pages))

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := p.embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}

	// The hash is only written once every chunk is stored, so an interrupted
	// run is retried instead of skipped.
	record := &storage.DocumentRecord{
		CompanyID:  doc.CompanyID,
		SourcePath: doc.SourcePath,
		Title:      doc.Title,
		PageCount:  len(doc.Pages),
	}
	if existing != nil {
		record.ID = existing.ID
	}
	if err := p.documents.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to upsert document: %w", err)
	}

	if existing != nil {
		if err := p.removeChunks(ctx, record.ID); err != nil {
			return nil, err
		}
	}

	records := make([]*storage.ChunkRecord, len(chunks))
	for i, c := range chunks {
		records[i] = p.chunkRecord(record, i, c, statements.StatementType(c.SourceStart, c.SourceEnd))
	}

	if err := p.chunks.InsertBatch(ctx, records); err != nil {
		return nil, fmt.Errorf("failed to insert chunks: %w", err)
	}

	if len(records) > 0 {
		if err := p.sink.UpsertChunks(ctx, records, vectors); err != nil {
			return nil, fmt.Errorf("failed to upsert vectors: %w", err)
		}
	} else {
		logger.WarnContext(ctx, "no chunks generated", "source_path", doc.SourcePath)
	}

	record.Hash = hash
	if err := p.documents.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to record document hash: %w", err)
	}

	logger.InfoContext(ctx, "indexed document",
		"company_id", doc.CompanyID,
		"source_path", doc.SourcePath,
		"pages", len(doc.Pages),
		"chunks", len(records))

	return &IndexResult{DocumentID: record.ID, Chunks: len(records)}, nil
}

// removeChunks deletes the previous chunks of a document from both stores.
func (p *Pipeline) removeChunks(ctx context.Context, documentID string) error {
	logger := contextutil.LoggerFromContext(ctx)

	oldIDs, err := p.chunks.ListIDsByDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("failed to list old chunk IDs: %w", err)
	}
	if len(oldIDs) == 0 {
		return nil
	}

	if err := p.sink.DeleteChunks(ctx, oldIDs); err != nil {
		logger.WarnContext(ctx, "failed to delete old vectors", "error", err, "count", len(oldIDs))
	}

	if err := p.chunks.DeleteByDocument(ctx, documentID); err != nil {
		return fmt.Errorf("failed to delete old chunks: %w", err)
	}
	return nil
}

// embed sends texts to the embedder in batches.
func (p *Pipeline) embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += p.batchSize {
		end := min(start+p.batchSize, len(texts))

		batch, err := p.embedder.EmbedTexts(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("embedding count mismatch: expected %d, got %d", end-start, len(batch))
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

func (p *Pipeline) chunkRecord(doc *storage.DocumentRecord, index int, c Chunk, statementContext string) *storage.ChunkRecord {
	cls := p.oracle.Classify(c.Text, statementContext)

	noteNumber := c.NoteNumber
	if noteNumber == "" {
		noteNumber = cls.NoteNumber
	}

	return &storage.ChunkRecord{
		ID:             stableChunkID(doc.ID, index, c.Text),
		DocumentID:     doc.ID,
		CompanyID:      doc.CompanyID,
		ChunkIndex:     index,
		ChunkType:      string(c.ChunkType),
		Text:           c.Text,
		PageNumbers:    c.PageNumbers,
		CharCount:      c.CharCount,
		IsCritical:     c.IsCritical,
		NoteNumber:     noteNumber,
		SubNote:        c.SubNote,
		NoteTitle:      c.NoteTitle,
		ParentNote:     c.ParentNote,
		HierarchyLevel: c.HierarchyLevel,
		StatementType:  cls.StatementType,
		SectionTypes:   cls.SectionTypes,
		ContentTypes:   c.ContentTypes,
		Confidence:     cls.Confidence,
	}
}

// stableChunkID derives a UUID from the chunk's document, position and text,
// so re-indexing identical content yields identical point IDs.
func stableChunkID(documentID string, index int, text string) string {
	name := documentID + "\x00" + strconv.Itoa(index) + "\x00" + text
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

// hashPages returns the SHA256 hex digest of the page numbers and texts.
func hashPages(pages []Page) string {
	h := sha256.New()
	for _, p := range pages {
		_, _ = fmt.Fprintf(h, "%d\x00%d\x00", p.Number, len(p.Text))
		_, _ = h.Write([]byte(p.Text))
	}
	return hex.EncodeToString(h.Sum(nil))
}

package vectorstore

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/qdrant/go-client/qdrant"

	"finrag/internal/contextutil"
	"finrag/internal/rag"
)

const (
	defaultGRPCPort = 6334
	// upsertBatchSize bounds the points sent in one gRPC request; a long
	// annual report produces several hundred chunks.
	upsertBatchSize = 128
)

// QdrantStore implements VectorStore using Qdrant.
type QdrantStore struct {
	client *qdrant.Client
}

// NewQdrantStore connects to Qdrant. rawURL is the REST address
// ("http://localhost:6333"); the gRPC port is derived from it. apiKey may be
// empty for an unsecured instance.
func NewQdrantStore(rawURL, apiKey string) (*QdrantStore, error) {
	cfg, err := clientConfig(rawURL)
	if err != nil {
		return nil, err
	}
	cfg.APIKey = apiKey

	client, err := qdrant.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}
	return &QdrantStore{client: client}, nil
}

// clientConfig maps the REST URL onto the gRPC endpoint: the port is the REST
// port + 1 and https selects TLS.
func clientConfig(rawURL string) (*qdrant.Config, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}
	switch u.Scheme {
	case "", "http", "https":
	default:
		return nil, fmt.Errorf("invalid Qdrant URL scheme %q", u.Scheme)
	}

	cfg := &qdrant.Config{
		Host:   u.Hostname(),
		Port:   defaultGRPCPort,
		UseTLS: u.Scheme == "https",
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if p := u.Port(); p != "" {
		restPort, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid Qdrant port %q: %w", p, err)
		}
		cfg.Port = restPort + 1
	}
	return cfg, nil
}

// Upsert writes points in batches and waits for each batch to be applied, so
// a search issued after ingestion sees the new chunks.
func (s *QdrantStore) Upsert(ctx context.Context, collection string, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	logger := contextutil.LoggerFromContext(ctx)

	for start := 0; start < len(points); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(points))

		batch := make([]*qdrant.PointStruct, 0, end-start)
		for _, p := range points[start:end] {
			ps := &qdrant.PointStruct{
				Id:      qdrant.NewID(p.ID),
				Vectors: qdrant.NewVectors(p.Vec...),
			}
			if len(p.Payload) > 0 {
				ps.Payload = qdrant.NewValueMap(p.Payload)
			}
			batch = append(batch, ps)
		}

		_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: collection,
			Wait:           qdrant.PtrOf(true),
			Points:         batch,
		})
		if err != nil {
			logger.ErrorContext(ctx, "failed to upsert chunk points",
				"collection", collection, "offset", start, "batch", len(batch), "error", err)
			return fmt.Errorf("failed to upsert points %d-%d: %w", start, end, err)
		}
	}

	logger.DebugContext(ctx, "upserted chunk points", "collection", collection, "count", len(points))
	return nil
}

// Search returns the k nearest points that satisfy filters.
func (s *QdrantStore) Search(ctx context.Context, collection string, query []float32, k int, filters rag.Filters) ([]ScoredPoint, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	limit := uint64(k)
	req := &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(query...),
		Limit:          &limit,
		Filter:         buildFilter(filters),
		WithPayload:    qdrant.NewWithPayload(true),
	}

	points, err := s.client.Query(ctx, req)
	if err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "vector query failed",
			"collection", collection, "k", k, "company_id", filters.CompanyID, "error", err)
		return nil, fmt.Errorf("failed to search points: %w", err)
	}

	results := make([]ScoredPoint, 0, len(points))
	for _, p := range points {
		results = append(results, ScoredPoint{
			PointID: p.GetId().GetUuid(),
			Score:   p.GetScore(),
			Payload: decodePayload(p.GetPayload()),
		})
	}
	return results, nil
}

// Delete removes points by their IDs.
func (s *QdrantStore) Delete(ctx context.Context, collection string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	pointIDs := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = qdrant.NewID(id)
	}

	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collection,
		Wait:           qdrant.PtrOf(true),
		Points:         qdrant.NewPointsSelector(pointIDs...),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %d points: %w", len(ids), err)
	}

	contextutil.LoggerFromContext(ctx).DebugContext(ctx, "deleted chunk points", "collection", collection, "count", len(ids))
	return nil
}

// buildFilter turns retrieval filters into qdrant Must conditions on the
// chunk payload. It returns nil when nothing is filtered.
func buildFilter(filters rag.Filters) *qdrant.Filter {
	var must []*qdrant.Condition
	if filters.CompanyID != "" {
		must = append(must, qdrant.NewMatch(payloadCompanyID, filters.CompanyID))
	}
	if filters.StatementType != "" {
		must = append(must, qdrant.NewMatch(payloadStatementType, filters.StatementType))
	}
	if filters.NoteNumber != "" {
		// note_numbers holds both the main note and the sub-note label.
		must = append(must, qdrant.NewMatch(payloadNoteNumbers, filters.NoteNumber))
	}
	if len(filters.SectionTypes) > 0 {
		must = append(must, qdrant.NewMatchKeywords(payloadSectionTypes, filters.SectionTypes...))
	}
	if len(must) == 0 {
		return nil
	}
	return &qdrant.Filter{Must: must}
}

// Close releases the underlying gRPC connection.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}

// CollectionExists checks if a collection exists.
func (s *QdrantStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	exists, err := s.client.CollectionExists(ctx, collection)
	if err != nil {
		return false, fmt.Errorf("failed to check collection existence: %w", err)
	}
	return exists, nil
}

// EnsureCollection creates the chunk collection with keyword indexes on the
// filterable payload fields, or checks that an existing one was built for
// vectors of vectorSize.
func (s *QdrantStore) EnsureCollection(ctx context.Context, collection string, vectorSize int) error {
	logger := contextutil.LoggerFromContext(ctx)

	exists, err := s.CollectionExists(ctx, collection)
	if err != nil {
		return err
	}

	if exists {
		info, err := s.client.GetCollectionInfo(ctx, collection)
		if err != nil {
			return fmt.Errorf("failed to get collection info: %w", err)
		}
		actual, err := collectionVectorSize(info)
		if err != nil {
			return err
		}
		if actual != vectorSize {
			return fmt.Errorf("collection %s holds %d-dimensional vectors, embeddings are %d", collection, actual, vectorSize)
		}
		logger.InfoContext(ctx, "collection validated", "collection", collection, "vector_size", vectorSize)
		return nil
	}

	logger.InfoContext(ctx, "creating collection", "collection", collection, "vector_size", vectorSize)
	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(vectorSize),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	for _, field := range keywordPayloadFields {
		_, err := s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: collection,
			FieldName:      field,
			FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		})
		if err != nil {
			return fmt.Errorf("failed to create payload index %s: %w", field, err)
		}
	}
	return nil
}

// collectionVectorSize reads the single unnamed vector size of a collection.
func collectionVectorSize(info *qdrant.CollectionInfo) (int, error) {
	size := info.GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize()
	if size == 0 {
		return 0, fmt.Errorf("could not determine collection vector size")
	}
	return int(size), nil
}

// decodePayload converts a point payload into plain Go values. Integers come
// back as int64 and lists as []any.
func decodePayload(payload map[string]*qdrant.Value) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		if v != nil {
			out[k] = decodeValue(v)
		}
	}
	return out
}

func decodeValue(v *qdrant.Value) any {
	switch kind := v.GetKind().(type) {
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_ListValue:
		list := make([]any, len(kind.ListValue.GetValues()))
		for i, item := range kind.ListValue.GetValues() {
			list[i] = decodeValue(item)
		}
		return list
	case *qdrant.Value_StructValue:
		return decodePayload(kind.StructValue.GetFields())
	default:
		return nil
	}
}

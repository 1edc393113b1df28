// Package app assembles the retrieval stack from configuration.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"finrag/internal/classifier"
	"finrag/internal/config"
	"finrag/internal/contextutil"
	"finrag/internal/handlers"
	"finrag/internal/indexer"
	"finrag/internal/llm"
	"finrag/internal/pgstore"
	"finrag/internal/rag"
	"finrag/internal/service"
	"finrag/internal/storage"
	"finrag/internal/vectorstore"
)

// App holds the wired services and the resources they own.
type App struct {
	Retrieval    service.RetrievalService
	Ingest       service.IngestService
	HealthChecks []handlers.HealthCheck
	Embedder     *llm.EmbeddingsClient

	closers []func() error
}

// backend is the index pair plus the sink that receives chunk vectors.
type backend struct {
	vectors  rag.VectorIndex
	keywords rag.FullTextIndex
	sink     indexer.VectorSink
	checks   []handlers.HealthCheck
}

// New opens the record store and the configured index backend and wires the
// ingestion pipeline and retrieval engine on top of them. The caller must
// Close the returned App.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := contextutil.LoggerFromContext(ctx)
	a := &App{}

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a.closers = append(a.closers, db.Close)

	if err := storage.Migrate(db); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.InfoContext(ctx, "database initialized", "path", cfg.DBPath)

	var be *backend
	switch cfg.IndexBackend {
	case config.BackendPostgres:
		be, err = a.postgresBackend(ctx, cfg)
	default:
		be, err = a.localBackend(ctx, cfg, db)
	}
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	embedder, err := llm.NewEmbeddingsClient(
		cfg.EmbeddingBaseURL,
		cfg.EmbeddingAPIKey,
		cfg.EmbeddingModelName,
		cfg.QdrantVectorSize,
		llm.Options{
			Timeout:    cfg.EmbeddingTimeout,
			MaxRetries: cfg.EmbeddingMaxRetries,
			CacheSize:  cfg.EmbeddingCacheSize,
		},
	)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to create embeddings client: %w", err)
	}
	a.Embedder = embedder

	breakers := rag.BreakerSettings{
		MaxFailures: cfg.Tuning.BreakerMaxFailures,
		OpenTimeout: cfg.Tuning.BreakerOpenTimeout,
	}
	vectors := rag.NewBreakerVectorIndex(be.vectors, breakers)
	keywords := rag.NewBreakerFullTextIndex(be.keywords, breakers)

	oracle := classifier.NewKeyword()
	chunker := indexer.NewHierarchicalChunker(oracle, cfg.Tuning.MaxChunkSize)
	pipeline := indexer.NewPipeline(
		storage.NewDocumentRepo(db),
		storage.NewChunkRepo(db),
		embedder,
		be.sink,
		chunker,
		oracle,
		cfg.EmbeddingModelName,
	)
	pipeline.SetBatchSize(cfg.Tuning.EmbedBatchSize)

	engine := rag.NewEngine(embedder, vectors, keywords, rag.Options{
		DefaultTopK:         cfg.Tuning.DefaultTopK,
		SimilarityThreshold: cfg.Tuning.SimilarityThreshold,
		MaxPerPage:          cfg.Tuning.MaxPerPage,
	})

	a.Retrieval = service.NewRetrievalService(engine)
	a.Ingest = service.NewIngestService(pipeline)

	a.HealthChecks = append([]handlers.HealthCheck{
		{Name: "database", Required: true, Check: func(ctx context.Context) error { return db.PingContext(ctx) }},
	}, be.checks...)
	a.HealthChecks = append(a.HealthChecks,
		breakerCheck("vector_breaker", vectors.State),
		breakerCheck("keyword_breaker", keywords.State),
	)

	logger.InfoContext(ctx, "retrieval stack initialized",
		"backend", cfg.IndexBackend,
		"max_chunk_size", chunker.MaxChunkSize(),
		"embedding_model", cfg.EmbeddingModelName)

	return a, nil
}

func (a *App) localBackend(ctx context.Context, cfg *config.Config, db *sql.DB) (*backend, error) {
	logger := contextutil.LoggerFromContext(ctx)

	store, err := vectorstore.NewQdrantStore(cfg.QdrantURL, cfg.QdrantAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}
	a.closers = append(a.closers, store.Close)

	if err := store.EnsureCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
		return nil, fmt.Errorf("failed to ensure Qdrant collection: %w", err)
	}
	logger.InfoContext(ctx, "qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.QdrantVectorSize)

	index := vectorstore.NewIndex(store, cfg.QdrantCollection)
	return &backend{
		vectors:  index,
		keywords: storage.NewFullTextIndex(db),
		sink:     index,
		checks: []handlers.HealthCheck{{
			Name:     "vector_store",
			Required: true,
			Check: func(ctx context.Context) error {
				exists, err := store.CollectionExists(ctx, cfg.QdrantCollection)
				if err != nil {
					return err
				}
				if !exists {
					return fmt.Errorf("collection %s does not exist", cfg.QdrantCollection)
				}
				return nil
			},
		}},
	}, nil
}

func (a *App) postgresBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	logger := contextutil.LoggerFromContext(ctx)

	store, err := pgstore.Open(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.Close)

	if err := store.Migrate(ctx, cfg.QdrantVectorSize); err != nil {
		return nil, fmt.Errorf("failed to migrate postgres index: %w", err)
	}
	logger.InfoContext(ctx, "postgres index ready", "vector_size", cfg.QdrantVectorSize)

	return &backend{
		vectors:  store.VectorIndex(),
		keywords: store.FullTextIndex(),
		sink:     store,
		checks: []handlers.HealthCheck{
			{Name: "postgres", Required: true, Check: store.Ping},
		},
	}, nil
}

func breakerCheck(name string, state func() string) handlers.HealthCheck {
	return handlers.HealthCheck{
		Name: name,
		Check: func(context.Context) error {
			if s := state(); s == "open" {
				return fmt.Errorf("circuit breaker %s", s)
			}
			return nil
		},
	}
}

// CheckEmbeddings embeds a sample text and verifies the vector size matches
// the configured index dimension.
func (a *App) CheckEmbeddings(ctx context.Context) error {
	vectors, err := a.Embedder.EmbedTexts(ctx, []string{"test"})
	if err != nil {
		return fmt.Errorf("failed to validate embedding client: %w", err)
	}
	if len(vectors) == 0 {
		return fmt.Errorf("embedding client returned no vectors")
	}
	if got := len(vectors[0]); got != a.Embedder.ExpectedSize {
		return fmt.Errorf("embedding vector size mismatch: expected %d, got %d", a.Embedder.ExpectedSize, got)
	}
	return nil
}

// Close releases every resource opened by New, newest first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

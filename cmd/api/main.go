package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finrag/internal/app"
	"finrag/internal/config"
	"finrag/internal/contextutil"
	"finrag/internal/http"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API indexes annual reports and retrieves the passages that answer
// questions about a company's financial statements and notes to accounts.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: finrag API
//   description: |
//     Hybrid vector and keyword retrieval over chunked annual reports.
//     Ingest report pages, then query them with optional statement, note and section filters.
//   version: 1.0.0
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
// produces:
//   - application/json

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := app.NewLogger(cfg, os.Stdout)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel, "format", cfg.LogFormat)

	if err := run(cfg, logger); err != nil {
		slog.Error("API server exited", "error", err)
		os.Exit(1)
	}
}

// run serves until SIGINT or SIGTERM, then drains in-flight requests.
func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = contextutil.WithLogger(ctx, logger)

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			slog.Error("Failed to close resources", "error", err)
		}
	}()

	// Fail fast when the embeddings service disagrees with the index dimension
	if err := a.CheckEmbeddings(ctx); err != nil {
		return fmt.Errorf("embedding client validation failed: %w", err)
	}
	slog.Info("Embedding client validated", "vector_size", cfg.QdrantVectorSize)

	server := &nethttp.Server{
		Addr: ":" + cfg.APIPort,
		Handler: http.NewRouter(&http.Deps{
			RetrievalService: a.Retrieval,
			IngestService:    a.Ingest,
			HealthChecks:     a.HealthChecks,
			AllowedOrigins:   cfg.CORSAllowedOrigins,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		// Ingesting a full report embeds hundreds of chunks.
		WriteTimeout: 10 * time.Minute,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("Starting API server", "addr", server.Addr, "backend", cfg.IndexBackend)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, nethttp.ErrServerClosed) {
			return fmt.Errorf("API server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	slog.Info("API server stopped")
	return nil
}

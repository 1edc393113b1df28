package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	lru "github.com/hashicorp/golang-lru/v2"

	"finrag/internal/contextutil"
	"finrag/internal/rag"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 3
)

// EmbeddingsClient is a client for an OpenAI-compatible embeddings API.
type EmbeddingsClient struct {
	BaseURL      string
	APIKey       string
	Model        string
	ExpectedSize int // Expected vector size for validation
	MaxRetries   int

	client          *http.Client
	cache           *lru.Cache[string, []float32]
	initialInterval time.Duration
}

var _ rag.Embedder = (*EmbeddingsClient)(nil)

// Options tunes an EmbeddingsClient. Zero values select the defaults.
type Options struct {
	Timeout    time.Duration
	MaxRetries int
	// CacheSize is the number of query embeddings kept in memory. Zero
	// disables the cache.
	CacheSize int
}

// NewEmbeddingsClient creates a new embeddings client.
// expectedSize is the vector size of the index; every returned embedding is
// validated against it.
func NewEmbeddingsClient(baseURL, apiKey, model string, expectedSize int, opts Options) (*EmbeddingsClient, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxRetries < 0 {
		return nil, fmt.Errorf("max retries must not be negative")
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = defaultMaxRetries
	}

	c := &EmbeddingsClient{
		BaseURL:         baseURL,
		APIKey:          apiKey,
		Model:           model,
		ExpectedSize:    expectedSize,
		MaxRetries:      opts.MaxRetries,
		client:          &http.Client{Timeout: opts.Timeout},
		initialInterval: 250 * time.Millisecond,
	}

	if opts.CacheSize > 0 {
		cache, err := lru.New[string, []float32](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create embedding cache: %w", err)
		}
		c.cache = cache
	}

	return c, nil
}

// EmbeddingsRequest represents the request payload for embeddings API.
type EmbeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// EmbeddingData represents a single embedding in the response.
type EmbeddingData struct {
	Embedding []float64 `json:"embedding"`
}

// EmbeddingsResponse represents the response from the embeddings API.
type EmbeddingsResponse struct {
	Data []EmbeddingData `json:"data"`
}

// StatusError is returned when the API answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the request may succeed if sent again.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Embed returns the embedding of a single query text. Results are cached by
// text when the client has a cache.
func (c *EmbeddingsClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if c.cache != nil {
		if vec, ok := c.cache.Get(text); ok {
			return vec, nil
		}
	}

	vecs, err := c.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.Add(text, vecs[0])
	}
	return vecs[0], nil
}

// EmbedTexts generates embeddings for the given texts.
// Returns a slice of float32 vectors, one per input text.
// Transport failures, 429 and 5xx answers are retried with exponential backoff.
func (c *EmbeddingsClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("empty input array")
	}

	logger := contextutil.LoggerFromContext(ctx)

	body, err := json.Marshal(EmbeddingsRequest{Model: c.Model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = 0

	var result [][]float32
	attempt := 0
	operation := func() error {
		attempt++
		vecs, err := c.post(ctx, body, len(texts))
		if err != nil {
			var statusErr *StatusError
			if errors.As(err, &statusErr) && !statusErr.Retryable() {
				return backoff.Permanent(err)
			}
			if errors.Is(err, errInvalidResponse) || ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			logger.WarnContext(ctx, "embedding request failed", "attempt", attempt, "error", err)
			return err
		}
		result = vecs
		return nil
	}

	maxRetries := c.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(maxRetries-1)), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("embedding request failed after %d attempt(s): %w", attempt, err)
	}

	return result, nil
}

var errInvalidResponse = errors.New("invalid embeddings response")

func (c *EmbeddingsClient) post(ctx context.Context, body []byte, want int) ([][]float32, error) {
	url := fmt.Sprintf("%s/v1/embeddings", c.BaseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.APIKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	}
	req.Header.Set("Content-Type", "application/json")

	client := c.client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var embeddingsResp EmbeddingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&embeddingsResp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", errInvalidResponse, err)
	}

	if len(embeddingsResp.Data) != want {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", errInvalidResponse, want, len(embeddingsResp.Data))
	}

	result := make([][]float32, len(embeddingsResp.Data))
	for i, data := range embeddingsResp.Data {
		if len(data.Embedding) != c.ExpectedSize {
			return nil, fmt.Errorf("%w: embedding %d has size %d, expected %d",
				errInvalidResponse, i, len(data.Embedding), c.ExpectedSize)
		}

		vec := make([]float32, len(data.Embedding))
		for j, v := range data.Embedding {
			vec[j] = float32(v)
		}
		result[i] = vec
	}

	return result, nil
}

package rag

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerSettings configures the circuit breakers wrapped around index tiers.
type BreakerSettings struct {
	// MaxFailures is the number of consecutive failures that opens the breaker.
	MaxFailures uint32
	// OpenTimeout is how long an open breaker rejects calls before probing.
	OpenTimeout time.Duration
}

func (s BreakerSettings) build(name string) *gobreaker.CircuitBreaker {
	failures := s.MaxFailures
	if failures == 0 {
		failures = 5
	}
	timeout := s.OpenTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
	})
}

// BreakerVectorIndex stops calling a failing vector backend until it
// recovers. An open breaker surfaces as gobreaker.ErrOpenState, which the
// engine treats like any other tier failure.
type BreakerVectorIndex struct {
	next VectorIndex
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerVectorIndex wraps next in a circuit breaker.
func NewBreakerVectorIndex(next VectorIndex, settings BreakerSettings) *BreakerVectorIndex {
	return &BreakerVectorIndex{next: next, cb: settings.build("vector-index")}
}

// TopK implements VectorIndex.
func (b *BreakerVectorIndex) TopK(ctx context.Context, vec []float32, k int, filters Filters) ([]Candidate, error) {
	out, err := b.cb.Execute(func() (any, error) {
		return b.next.TopK(ctx, vec, k, filters)
	})
	if err != nil {
		return nil, err
	}
	return out.([]Candidate), nil
}

// State reports the breaker state, e.g. "closed" or "open".
func (b *BreakerVectorIndex) State() string {
	return b.cb.State().String()
}

// BreakerFullTextIndex is the FullTextIndex counterpart of BreakerVectorIndex.
type BreakerFullTextIndex struct {
	next FullTextIndex
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerFullTextIndex wraps next in a circuit breaker.
func NewBreakerFullTextIndex(next FullTextIndex, settings BreakerSettings) *BreakerFullTextIndex {
	return &BreakerFullTextIndex{next: next, cb: settings.build("fulltext-index")}
}

// TopK implements FullTextIndex.
func (b *BreakerFullTextIndex) TopK(ctx context.Context, query string, k int, filters Filters) ([]Candidate, error) {
	out, err := b.cb.Execute(func() (any, error) {
		return b.next.TopK(ctx, query, k, filters)
	})
	if err != nil {
		return nil, err
	}
	return out.([]Candidate), nil
}

// State reports the breaker state.
func (b *BreakerFullTextIndex) State() string {
	return b.cb.State().String()
}

package services

import (
	"context"
	"errors"
	"time"

	"finance-ledger/internal/suggest"
)

// guardedProvider trips a circuit breaker after repeated upstream failures
// so a dead suggestion service is not called for every queued item
type guardedProvider struct {
	provider suggest.Provider
	breaker  CircuitBreakerInterface
	metrics  MetricsRecorderInterface
}

func newGuardedProvider(provider suggest.Provider, breaker CircuitBreakerInterface, metrics MetricsRecorderInterface) *guardedProvider {
	return &guardedProvider{
		provider: provider,
		breaker:  breaker,
		metrics:  metrics,
	}
}

func (g *guardedProvider) Name() string {
	return g.provider.Name()
}

func (g *guardedProvider) SuggestCategory(ctx context.Context, req suggest.Request) ([]suggest.Suggestion, error) {
	if g.breaker.IsOpen() {
		g.record("rejected")
		return nil, ErrCircuitBreakerOpen
	}

	start := time.Now()
	suggestions, err := g.provider.SuggestCategory(ctx, req)
	g.metrics.RecordProcessingTime("suggestion.request", time.Since(start))

	switch {
	case err == nil:
		g.breaker.RecordSuccess()
		g.record("success")
	case countsAsOutage(err):
		g.breaker.RecordFailure()
		g.record("failed")
	default:
		g.record("rejected")
	}

	return suggestions, err
}

func (g *guardedProvider) record(status string) {
	g.metrics.IncrementCounter("suggestion.request", map[string]string{
		"provider": g.provider.Name(),
		"status":   status,
	})
}

// countsAsOutage is false for errors caused by the request or local setup
func countsAsOutage(err error) bool {
	switch {
	case errors.Is(err, suggest.ErrNotConfigured),
		errors.Is(err, suggest.ErrEmptyRequest),
		errors.Is(err, context.Canceled):
		return false
	}
	return true
}

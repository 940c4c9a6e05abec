package suggest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const DefaultBatchSize = 5

// Item is one transaction submitted for batch processing
type Item struct {
	ID      string
	Request Request
}

// ItemResult is the outcome for one item, reported in input order
type ItemResult struct {
	ID          string       `json:"id"`
	Suggestions []Suggestion `json:"suggestions,omitempty"`
	Error       string       `json:"error,omitempty"`
}

// ItemError records why an item failed
type ItemError struct {
	ID    string
	Index int
	Err   error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("item %s: %v", e.ID, e.Err)
}

func (e ItemError) Unwrap() error {
	return e.Err
}

// BatchResult is a partial-success result: every item has an entry in
// Results, and failed items are also listed in Errors
type BatchResult struct {
	Results   []ItemResult `json:"results"`
	Errors    []ItemError  `json:"-"`
	Batches   int          `json:"batches"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
}

// BatchProcessor sends items to a provider in fixed-size batches. Items in a
// batch run concurrently; consecutive batches are at least delay apart.
type BatchProcessor struct {
	provider  Provider
	batchSize int
	limiter   *rate.Limiter
	logger    *slog.Logger
}

func NewBatchProcessor(provider Provider, batchSize int, delay time.Duration, logger *slog.Logger) *BatchProcessor {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}

	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}

	return &BatchProcessor{
		provider:  provider,
		batchSize: batchSize,
		limiter:   rate.NewLimiter(limit, 1),
		logger:    logger,
	}
}

// Process runs every item and never fails as a whole. A failing item,
// including one whose provider call panics, only affects its own entry.
func (p *BatchProcessor) Process(ctx context.Context, items []Item) *BatchResult {
	result := &BatchResult{Results: make([]ItemResult, len(items))}
	errs := make([]error, len(items))

	for start := 0; start < len(items); start += p.batchSize {
		end := start + p.batchSize
		if end > len(items) {
			end = len(items)
		}

		if err := p.limiter.Wait(ctx); err != nil {
			for i := start; i < len(items); i++ {
				result.Results[i].ID = items[i].ID
				errs[i] = fmt.Errorf("batch not started: %w", err)
			}
			break
		}
		result.Batches++

		p.logger.InfoContext(ctx, "processing suggestion batch",
			slog.String("provider", p.provider.Name()),
			slog.Int("batch", result.Batches),
			slog.Int("size", end-start))

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				result.Results[i].ID = items[i].ID
				result.Results[i].Suggestions, errs[i] = p.suggest(ctx, items[i].Request)
			}(i)
		}
		wg.Wait()
	}

	for i, err := range errs {
		if err == nil {
			result.Succeeded++
			continue
		}
		result.Failed++
		result.Results[i].Error = err.Error()
		result.Errors = append(result.Errors, ItemError{ID: items[i].ID, Index: i, Err: err})
	}

	if result.Failed > 0 {
		p.logger.WarnContext(ctx, "suggestion batch finished with failures",
			slog.Int("succeeded", result.Succeeded),
			slog.Int("failed", result.Failed))
	}

	return result
}

func (p *BatchProcessor) suggest(ctx context.Context, req Request) (suggestions []Suggestion, err error) {
	defer func() {
		if r := recover(); r != nil {
			suggestions = nil
			err = fmt.Errorf("provider panic: %v", r)
		}
	}()
	return p.provider.SuggestCategory(ctx, req)
}

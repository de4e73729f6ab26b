package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arl-connect/gold-news/app/database"
)

type BatchResult struct {
	Total  int      `json:"total"`
	Errors []string `json:"errors"`
}

// BatchRunner ingests sources one after another. A failing source is recorded
// on its row and in the result; it never stops the rest of the batch.
type BatchRunner struct {
	sourceRepo database.SourceRepository
	ingester   IngesterInterface
	cache      CacheInvalidator
	now        func() time.Time
}

// NewBatchRunner creates a runner; cache may be nil
func NewBatchRunner(sourceRepo database.SourceRepository, ingester IngesterInterface, cache CacheInvalidator) *BatchRunner {
	return &BatchRunner{
		sourceRepo: sourceRepo,
		ingester:   ingester,
		cache:      cache,
		now:        time.Now,
	}
}

// Run processes every active source. It fails only when the source list cannot be loaded.
func (b *BatchRunner) Run(ctx context.Context) (*BatchResult, error) {
	sources, err := b.sourceRepo.ListActiveSources()
	if err != nil {
		return nil, fmt.Errorf("failed to load active sources: %w", err)
	}

	return b.process(ctx, sources), nil
}

// RunDue processes the active sources whose fetch interval has elapsed
func (b *BatchRunner) RunDue(ctx context.Context) (*BatchResult, error) {
	sources, err := b.sourceRepo.ListActiveSources()
	if err != nil {
		return nil, fmt.Errorf("failed to load active sources: %w", err)
	}

	now := b.now()
	due := make([]database.Source, 0, len(sources))
	for _, source := range sources {
		if source.IsDue(now) {
			due = append(due, source)
		} else {
			slog.Debug("Source not due for refresh yet", "source", source.Name, "last_fetched_at", source.LastFetchedAt)
		}
	}

	return b.process(ctx, due), nil
}

func (b *BatchRunner) process(ctx context.Context, sources []database.Source) *BatchResult {
	result := &BatchResult{Errors: []string{}}

	for idx, source := range sources {
		if err := ctx.Err(); err != nil {
			slog.Warn("Batch interrupted", "remaining", len(sources)-idx, "error", err)
			break
		}

		count, err := b.runSource(ctx, source)
		result.Total += count

		if err != nil {
			message := err.Error()
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", source.Name, message))
			slog.Warn("Source fetch failed", "source", source.Name, "error", message)

			if markErr := b.sourceRepo.MarkFetched(source.ID, b.now(), message); markErr != nil {
				slog.Error("Failed to record source error", "source", source.Name, "error", markErr)
			}
		}
	}

	if result.Total > 0 && b.cache != nil {
		if err := b.cache.Invalidate(context.WithoutCancel(ctx)); err != nil {
			slog.Warn("Failed to invalidate response cache", "error", err)
		}
	}

	return result
}

func (b *BatchRunner) runSource(ctx context.Context, source database.Source) (count int, err error) {
	defer func() {
		if r := recover(); r != nil {
			count = 0
			err = fmt.Errorf("panic while processing source: %v", r)
		}
	}()

	return b.ingester.Run(ctx, source)
}

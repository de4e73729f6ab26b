package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arl-connect/gold-news/app/database"
	"github.com/arl-connect/gold-news/app/feed"
)

// Ingester runs the fetch, parse, hash and store pipeline for a single source.
// Running it twice against an unchanged feed stores nothing the second time.
type Ingester struct {
	fetcher    FetcherInterface
	parser     feed.FeedParser
	sourceRepo database.SourceRepository
	itemRepo   database.ItemRepository
	now        func() time.Time
}

func NewIngester(fetcher FetcherInterface, parser feed.FeedParser, sourceRepo database.SourceRepository, itemRepo database.ItemRepository) *Ingester {
	return &Ingester{
		fetcher:    fetcher,
		parser:     parser,
		sourceRepo: sourceRepo,
		itemRepo:   itemRepo,
		now:        time.Now,
	}
}

// Run returns the number of newly stored items. Fetch and parse failures are
// returned to the caller, which owns recording them on the source.
func (i *Ingester) Run(ctx context.Context, source database.Source) (int, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}

	// No API adapters are configured; the attempt is still recorded
	if source.Kind == database.SourceKindAPI {
		slog.Debug("API source has no adapter, skipping fetch", "source", source.Name)
		if err := i.sourceRepo.MarkFetched(source.ID, i.now(), ""); err != nil {
			return 0, fmt.Errorf("failed to update source bookkeeping: %w", err)
		}
		return 0, nil
	}

	data, err := i.fetcher.Run(ctx, source.URL)
	if err != nil {
		return 0, err
	}

	items, err := i.parser.Run(data)
	if err != nil {
		return 0, err
	}

	duplicateCount := 0
	failedCount := 0
	newCount := 0

	for _, raw := range items {
		hash := feed.Hash(raw.Title, source.Name)

		exists, err := i.itemRepo.ItemExists(hash)
		if err != nil {
			slog.Warn("Failed to check item, skipping", "source", source.Name, "title", raw.Title, "error", err)
			failedCount++
			continue
		}
		if exists {
			duplicateCount++
			continue
		}

		inserted, err := i.itemRepo.InsertItemIfAbsent(&database.NewsItem{
			Title:       raw.Title,
			Source:      source.Name,
			SourceURL:   source.URL,
			URL:         raw.URL,
			Summary:     raw.Summary,
			ImageURL:    raw.ImageURL,
			PublishedAt: raw.PublishedAt,
			Region:      source.Region,
			Category:    source.Category,
			Hash:        hash,
		})
		if err != nil {
			slog.Warn("Failed to store item, skipping", "source", source.Name, "title", raw.Title, "error", err)
			failedCount++
			continue
		}

		// Lost a race with a concurrent batch
		if !inserted {
			duplicateCount++
			continue
		}

		newCount++
	}

	if err := i.sourceRepo.MarkFetched(source.ID, i.now(), ""); err != nil {
		return newCount, fmt.Errorf("failed to update source bookkeeping: %w", err)
	}

	slog.Info("Source ingested",
		"source", source.Name,
		"total", len(items),
		"duplicates", duplicateCount,
		"failed", failedCount,
		"new", newCount)

	return newCount, nil
}

package tasks

import (
	"context"

	"github.com/arl-connect/gold-news/app/database"
	"github.com/arl-connect/gold-news/app/feed"
)

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application to manage background task processing.
// Example usage:
//
//	scheduler := NewScheduler(configCache, sourceRepo, batchRunner, cleaner, settings)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewFetchSourcesTask(batchRunner))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// FetcherInterface retrieves the raw body of a feed
type FetcherInterface interface {
	Run(ctx context.Context, url string) ([]byte, error)
}

// IngesterInterface processes one source and reports how many new items it stored
type IngesterInterface interface {
	Run(ctx context.Context, source database.Source) (int, error)
}

// BatchRunnerInterface is implemented by BatchRunner; the API and the fetch task depend on it
type BatchRunnerInterface interface {
	Run(ctx context.Context) (*BatchResult, error)
	RunDue(ctx context.Context) (*BatchResult, error)
}

// CleanerInterface is implemented by Cleaner
type CleanerInterface interface {
	Run(ctx context.Context, days int) (int64, error)
}

// CacheInvalidator drops cached API responses after the stored item set changes
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

var (
	_ TaskSchedulerInterface = (*Scheduler)(nil)
	_ FetcherInterface       = (*feed.Fetcher)(nil)
	_ IngesterInterface      = (*Ingester)(nil)
	_ BatchRunnerInterface   = (*BatchRunner)(nil)
	_ CleanerInterface       = (*Cleaner)(nil)
)

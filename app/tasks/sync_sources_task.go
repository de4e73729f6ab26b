package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arl-connect/gold-news/app/database"
	"github.com/arl-connect/gold-news/app/feed"
)

// SyncSourceTask inserts one seed configuration into the source table when its URL is new
type SyncSourceTask struct {
	Task
	SourceConfig *feed.SourceConfig
	sourceRepo   database.SourceRepository
}

func NewSyncSourceTask(sourceConfig *feed.SourceConfig, sourceRepo database.SourceRepository) *SyncSourceTask {
	return &SyncSourceTask{
		Task:         NewTask(TaskTypeSyncSources, sourceConfig.Name),
		SourceConfig: sourceConfig,
		sourceRepo:   sourceRepo,
	}
}

func (t *SyncSourceTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	created, err := t.sourceRepo.SeedSource(t.SourceConfig.ToSource())
	if err != nil {
		return fmt.Errorf("failed to sync source config to database: %w", err)
	}

	slog.Info("Task completed",
		"type", "SyncSource",
		"source", t.Target,
		"created", created,
		"duration", t.GetDuration())

	return nil
}

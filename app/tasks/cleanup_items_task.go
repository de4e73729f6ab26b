package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

type CleanupItemsTask struct {
	Task
	RetentionDays int
	cleaner       CleanerInterface
}

func NewCleanupItemsTask(retentionDays int, cleaner CleanerInterface) *CleanupItemsTask {
	return &CleanupItemsTask{
		Task:          NewTask(TaskTypeCleanupItems, "external news"),
		RetentionDays: retentionDays,
		cleaner:       cleaner,
	}
}

func (t *CleanupItemsTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	deleted, err := t.cleaner.Run(ctx, t.RetentionDays)
	if err != nil {
		return fmt.Errorf("failed to clean up items: %w", err)
	}

	slog.Info("Task completed",
		"type", "CleanupItems",
		"duration", t.GetDuration(),
		"retention_days", t.RetentionDays,
		"deleted", deleted)

	return nil
}

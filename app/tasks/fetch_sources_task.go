package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

type FetchSourcesTask struct {
	Task
	batchRunner BatchRunnerInterface
}

func NewFetchSourcesTask(batchRunner BatchRunnerInterface) *FetchSourcesTask {
	return &FetchSourcesTask{
		Task:        NewTask(TaskTypeFetchSources, "due sources"),
		batchRunner: batchRunner,
	}
}

func (t *FetchSourcesTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	result, err := t.batchRunner.RunDue(ctx)
	if err != nil {
		return fmt.Errorf("failed to run batch: %w", err)
	}

	slog.Info("Task completed",
		"type", "FetchSources",
		"duration", t.GetDuration(),
		"new", result.Total,
		"errors", len(result.Errors))

	return nil
}

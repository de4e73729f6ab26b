package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/arl-connect/gold-news/app/database"
	"github.com/arl-connect/gold-news/app/feed"
)

const (
	DefaultFetchInterval   = 5 * time.Minute
	DefaultCleanupInterval = 24 * time.Hour
)

type SchedulerSettings struct {
	FetchInterval   time.Duration
	CleanupInterval time.Duration
	RetentionDays   int
	WorkerCount     int
}

type Scheduler struct {
	configCache     *feed.ConfigCache
	sourceRepo      database.SourceRepository
	batchRunner     BatchRunnerInterface
	cleaner         CleanerInterface
	fetchInterval   time.Duration
	cleanupInterval time.Duration
	retentionDays   int
	workerCount     int
	ctx             context.Context
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	taskQueue       chan TaskInterface
}

func NewScheduler(configCache *feed.ConfigCache, sourceRepo database.SourceRepository,
	batchRunner BatchRunnerInterface, cleaner CleanerInterface, settings SchedulerSettings) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	workerCount := settings.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
	}
	fetchInterval := settings.FetchInterval
	if fetchInterval <= 0 {
		fetchInterval = DefaultFetchInterval
	}
	cleanupInterval := settings.CleanupInterval
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}

	return &Scheduler{
		configCache:     configCache,
		sourceRepo:      sourceRepo,
		batchRunner:     batchRunner,
		cleaner:         cleaner,
		fetchInterval:   fetchInterval,
		cleanupInterval: cleanupInterval,
		retentionDays:   settings.RetentionDays,
		workerCount:     workerCount,
		ctx:             ctx,
		cancel:          cancel,
		taskQueue:       make(chan TaskInterface, 300),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		fetchTicker := time.NewTicker(s.fetchInterval)
		defer fetchTicker.Stop()

		cleanupTicker := time.NewTicker(s.cleanupInterval)
		defer cleanupTicker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-fetchTicker.C:
				s.enqueue(NewFetchSourcesTask(s.batchRunner))
			case <-cleanupTicker.C:
				s.enqueue(NewCleanupItemsTask(s.retentionDays, s.cleaner))
			}
		}
	}()
}

// Stop cancels pending work and waits for workers. The queue is left open so
// that delayed retries racing with shutdown never send on a closed channel.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueue(task TaskInterface) {
	if err := s.EnqueueTask(task); err != nil {
		slog.Warn("Failed to enqueue task", "type", string(task.GetType()), "target", task.GetTarget(), "error", err)
	}
}

// Seed configs are synced inline so the first fetch sees them
func (s *Scheduler) enqueueStartupTasks() {
	sourceConfigs := s.configCache.GetConfigs()
	if len(sourceConfigs) == 0 {
		slog.Debug("No source configurations found")
	} else {
		slog.Debug("Syncing source configurations", "count", len(sourceConfigs))
	}

	for _, sourceConfig := range sourceConfigs {
		s.executeTask(-1, NewSyncSourceTask(sourceConfig, s.sourceRepo))
	}

	s.enqueue(NewFetchSourcesTask(s.batchRunner))
	s.enqueue(NewCleanupItemsTask(s.retentionDays, s.cleaner))
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

	if s.ctx.Err() != nil {
		return
	}

	if !task.CanRetry() {
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		return
	}

	task.IncrementRetryCount()
	retryDelay := task.RetryDelay()

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "target", task.GetTarget(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

	go func() {
		timer := time.NewTimer(retryDelay)
		defer timer.Stop()

		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
		case <-timer.C:
			if retryErr := s.EnqueueTask(task); retryErr != nil {
				slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
			}
		}
	}()
}

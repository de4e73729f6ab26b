package tasks

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TaskType string

const (
	TaskTypeFetchSources TaskType = "fetch_sources"
	TaskTypeCleanupItems TaskType = "cleanup_items"
	TaskTypeSyncSources  TaskType = "sync_sources"
)

const (
	DefaultMaxRetries = 3
)

// retryPolicy bounds retries of a failed task and the exponential delay between them
type retryPolicy struct {
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// Cleanup runs again on the next tick, so it retries once. Seed sync must
// land before the first fetch reads the source table.
var retryPolicies = map[TaskType]retryPolicy{
	TaskTypeFetchSources: {maxRetries: DefaultMaxRetries, baseDelay: time.Second, maxDelay: 30 * time.Second},
	TaskTypeCleanupItems: {maxRetries: 1, baseDelay: time.Minute, maxDelay: time.Minute},
	TaskTypeSyncSources:  {maxRetries: 5, baseDelay: 500 * time.Millisecond, maxDelay: 10 * time.Second},
}

func policyFor(taskType TaskType) retryPolicy {
	if policy, ok := retryPolicies[taskType]; ok {
		return policy
	}
	return retryPolicy{maxRetries: DefaultMaxRetries, baseDelay: time.Second, maxDelay: 30 * time.Second}
}

type TaskInterface interface {
	Execute(ctx context.Context) error
	GetID() string
	GetType() TaskType
	GetTarget() string
	GetRetryCount() int
	GetMaxRetries() int
	IncrementRetryCount()
	CanRetry() bool
	RetryDelay() time.Duration
	Start()
	GetDuration() time.Duration
}

type Task struct {
	ID         string
	Type       TaskType
	Target     string // What the task operates on, for logs
	RetryCount int
	MaxRetries int
	StartedAt  *time.Time

	baseDelay time.Duration
	maxDelay  time.Duration
}

func (t *Task) GetID() string {
	return t.ID
}

func (t *Task) GetType() TaskType {
	return t.Type
}

func (t *Task) GetTarget() string {
	return t.Target
}

func (t *Task) GetRetryCount() int {
	return t.RetryCount
}

func (t *Task) GetMaxRetries() int {
	return t.MaxRetries
}

func (t *Task) IncrementRetryCount() {
	t.RetryCount++
}

func (t *Task) CanRetry() bool {
	return t.RetryCount < t.MaxRetries
}

// RetryDelay is the wait before the current retry: baseDelay doubled per
// earlier retry, capped at maxDelay
func (t *Task) RetryDelay() time.Duration {
	if t.RetryCount <= 1 {
		return t.baseDelay
	}
	delay := t.baseDelay << (t.RetryCount - 1)
	if delay <= 0 || delay > t.maxDelay {
		return t.maxDelay
	}
	return delay
}

func (t *Task) Start() {
	now := time.Now()
	t.StartedAt = &now
}

func (t *Task) GetDuration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	return time.Since(*t.StartedAt)
}

func NewTask(taskType TaskType, target string) Task {
	policy := policyFor(taskType)

	return Task{
		ID:         uuid.NewString(),
		Type:       taskType,
		Target:     target,
		MaxRetries: policy.maxRetries,
		baseDelay:  policy.baseDelay,
		maxDelay:   policy.maxDelay,
	}
}

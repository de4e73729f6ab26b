package tasks

import (
	"context"
	"testing"
	"time"
)

func TestCleanerUsesRetentionWindow(t *testing.T) {
	now := time.Date(2024, 5, 31, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		days     int
		expected time.Time
	}{
		{"explicit window", 7, time.Date(2024, 5, 24, 12, 0, 0, 0, time.UTC)},
		{"default window", 0, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		{"negative uses default", -3, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			itemRepo := newMockItemRepository()
			cleaner := NewCleaner(itemRepo, nil)
			cleaner.now = func() time.Time { return now }

			if _, err := cleaner.Run(context.Background(), tt.days); err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			if !itemRepo.cutoff.Equal(tt.expected) {
				t.Errorf("Expected cutoff %v, got %v", tt.expected, itemRepo.cutoff)
			}
		})
	}
}

func TestCleanerInvalidatesCacheOnDelete(t *testing.T) {
	itemRepo := newMockItemRepository()
	cache := &mockCache{}
	cleaner := NewCleaner(itemRepo, cache)

	if _, err := cleaner.Run(context.Background(), 30); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if cache.invalidations != 0 {
		t.Errorf("Expected no invalidation when nothing was deleted, got %d", cache.invalidations)
	}

	itemRepo.deleted = 5
	deleted, err := cleaner.Run(context.Background(), 30)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if deleted != 5 {
		t.Errorf("Expected 5 deleted, got %d", deleted)
	}
	if cache.invalidations != 1 {
		t.Errorf("Expected 1 invalidation, got %d", cache.invalidations)
	}
}

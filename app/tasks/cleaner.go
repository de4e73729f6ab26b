package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arl-connect/gold-news/app/database"
)

const DefaultRetentionDays = 30

// Cleaner removes items published before the retention window
type Cleaner struct {
	itemRepo database.ItemRepository
	cache    CacheInvalidator
	now      func() time.Time
}

// NewCleaner creates a cleaner; cache may be nil
func NewCleaner(itemRepo database.ItemRepository, cache CacheInvalidator) *Cleaner {
	return &Cleaner{
		itemRepo: itemRepo,
		cache:    cache,
		now:      time.Now,
	}
}

// Run deletes items published more than days ago. Non-positive days use the default window.
func (c *Cleaner) Run(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		days = DefaultRetentionDays
	}

	cutoff := c.now().AddDate(0, 0, -days)
	deleted, err := c.itemRepo.DeleteOlderThan(cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old items: %w", err)
	}

	if deleted > 0 && c.cache != nil {
		if err := c.cache.Invalidate(ctx); err != nil {
			slog.Warn("Failed to invalidate response cache", "error", err)
		}
	}

	return deleted, nil
}

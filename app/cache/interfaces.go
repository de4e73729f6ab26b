package cache

import (
	"context"
	"time"
)

// CacheInterface defines the interface for API response caching
type CacheInterface interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	NewsKey(ctx context.Context, kind, query string) (string, error)
	Invalidate(ctx context.Context) error
	Health(ctx context.Context) map[string]interface{}
	Close() error
}

var _ CacheInterface = (*Cache)(nil)

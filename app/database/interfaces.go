package database

import (
	"time"
)

type SourceRepository interface {
	GetSource(id string) (*Source, error)
	GetSourceByURL(url string) (*Source, error)
	ListSources() ([]Source, error)
	ListActiveSources() ([]Source, error)
	GetSourceStats() (*SourceStats, error)

	CreateSource(source *Source) error
	UpdateSource(source *Source) error
	SeedSource(source *Source) (bool, error)
	DeleteSource(id string) (bool, error)

	MarkFetched(id string, fetchedAt time.Time, fetchError string) error
}

type ItemRepository interface {
	ItemExists(hash string) (bool, error)
	InsertItemIfAbsent(item *NewsItem) (bool, error)

	ListItems(filter ItemFilter) ([]NewsItem, int, error)
	GetItemStats(todayStart time.Time) (*ItemStats, error)

	DeleteItem(id string) (bool, error)
	DeleteOlderThan(cutoff time.Time) (int64, error)
}

var (
	_ SourceRepository = (*SQLiteSourceRepository)(nil)
	_ ItemRepository   = (*SQLiteItemRepository)(nil)
)

package database

import (
	"time"
)

const (
	SourceKindRSS = "rss"
	SourceKindAPI = "api"

	RegionGhana = "ghana"
	RegionWorld = "world"

	DefaultFetchInterval = 3600 // seconds
)

type Source struct {
	ID            string // Database UUID
	Name          string
	URL           string
	Kind          string // rss, api
	Region        string // ghana, world
	Category      string
	IsActive      bool
	FetchInterval int // seconds
	LastFetchedAt *time.Time
	LastError     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsDue reports whether the source's fetch interval has elapsed at now
func (s Source) IsDue(now time.Time) bool {
	if s.LastFetchedAt == nil {
		return true
	}
	interval := time.Duration(s.FetchInterval) * time.Second
	return !s.LastFetchedAt.Add(interval).After(now)
}

type NewsItem struct {
	ID          string
	Title       string
	Source      string // Source name at ingestion time, not a foreign key
	SourceURL   string
	URL         string
	Summary     string
	ImageURL    string
	PublishedAt time.Time
	Region      string
	Category    string
	Hash        string
	CreatedAt   time.Time
}

type ItemFilter struct {
	Region   string
	Category string
	Search   string
	Page     int
	Limit    int
}

func (f ItemFilter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

type ItemStats struct {
	Total int
	Ghana int
	World int
	Today int
}

type SourceStats struct {
	Total  int
	Active int
}

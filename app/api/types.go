package api

import (
	"time"

	"github.com/arl-connect/gold-news/app/cache"
	"github.com/arl-connect/gold-news/app/database"
	"github.com/arl-connect/gold-news/app/feed"
	"github.com/arl-connect/gold-news/app/tasks"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 50
)

type Handler struct {
	sourceRepo  database.SourceRepository
	itemRepo    database.ItemRepository
	batchRunner tasks.BatchRunnerInterface
	cleaner     tasks.CleanerInterface
	configCache *feed.ConfigCache
	cache       cache.CacheInterface // nil when caching is disabled
	cacheTTL    time.Duration
	now         func() time.Time
}

type NewsItemResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	SourceURL   string    `json:"source_url"`
	URL         string    `json:"url"`
	Summary     string    `json:"summary,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	Region      string    `json:"region"`
	Category    string    `json:"category,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type NewsListResponse struct {
	Items      []NewsItemResponse `json:"items"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

type NewsStatsResponse struct {
	Total         int `json:"total"`
	Ghana         int `json:"ghana"`
	World         int `json:"world"`
	Today         int `json:"today"`
	Sources       int `json:"sources"`
	ActiveSources int `json:"active_sources"`
}

// ActionRequest is accepted as a form, as JSON, or as query parameters
type ActionRequest struct {
	Intent string `form:"intent" json:"intent"`
	Days   int    `form:"days" json:"days"`
}

type SourceRequest struct {
	Name          string `json:"name" binding:"required"`
	URL           string `json:"url" binding:"required,url"`
	Kind          string `json:"kind" binding:"omitempty,oneof=rss api"`
	Region        string `json:"region" binding:"required,oneof=ghana world"`
	Category      string `json:"category"`
	IsActive      *bool  `json:"is_active"`
	FetchInterval int    `json:"fetch_interval" binding:"omitempty,min=60"`
}

type SourceResponse struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	URL           string     `json:"url"`
	Kind          string     `json:"kind"`
	Region        string     `json:"region"`
	Category      string     `json:"category,omitempty"`
	IsActive      bool       `json:"is_active"`
	FetchInterval int        `json:"fetch_interval"`
	LastFetchedAt *time.Time `json:"last_fetched_at"`
	LastError     string     `json:"last_error,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func newNewsItemResponse(item database.NewsItem) NewsItemResponse {
	return NewsItemResponse{
		ID:          item.ID,
		Title:       item.Title,
		Source:      item.Source,
		SourceURL:   item.SourceURL,
		URL:         item.URL,
		Summary:     item.Summary,
		ImageURL:    item.ImageURL,
		PublishedAt: item.PublishedAt,
		Region:      item.Region,
		Category:    item.Category,
		CreatedAt:   item.CreatedAt,
	}
}

func newSourceResponse(source database.Source) SourceResponse {
	return SourceResponse{
		ID:            source.ID,
		Name:          source.Name,
		URL:           source.URL,
		Kind:          source.Kind,
		Region:        source.Region,
		Category:      source.Category,
		IsActive:      source.IsActive,
		FetchInterval: source.FetchInterval,
		LastFetchedAt: source.LastFetchedAt,
		LastError:     source.LastError,
		CreatedAt:     source.CreatedAt,
		UpdatedAt:     source.UpdatedAt,
	}
}

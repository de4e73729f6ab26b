package feed

import (
	"time"
)

// RawItem is a normalized feed entry before hashing and storage
type RawItem struct {
	Title       string
	URL         string
	Summary     string
	PublishedAt time.Time
	ImageURL    string
}

// FeedParser turns raw feed bytes into normalized items
type FeedParser interface {
	Run(data []byte) ([]RawItem, error)
}

var (
	_ FeedParser = (*Parser)(nil)
	_ FeedParser = (*GofeedParser)(nil)
)

// Source configuration types

type SourceConfig struct {
	Name     string               `yaml:"name"` // Defaults to the filename (without .yml extension)
	URL      string               `yaml:"url"`
	Kind     string               `yaml:"kind"`
	Region   string               `yaml:"region"`
	Category string               `yaml:"category"`
	Settings SourceConfigSettings `yaml:"settings"`
}

type SourceConfigSettings struct {
	Enabled       *bool `yaml:"enabled"`
	FetchInterval int   `yaml:"fetch_interval"` // seconds
}

func (s SourceConfigSettings) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

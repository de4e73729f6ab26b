package feed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arl-connect/gold-news/app/database"
)

func writeSourceFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestConfigCacheLoadValidConfig(t *testing.T) {
	tempDir := t.TempDir()

	writeSourceFile(t, tempDir, "ghana-business.yml", `
name: "Ghana Business News"
url: "https://example.com/feed.xml"
kind: rss
region: ghana
category: mining

settings:
  enabled: false
  fetch_interval: 1800
`)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 1 {
		t.Errorf("Expected 1 source config, got %d", configCache.GetConfigCount())
	}

	sourceConfig, err := configCache.GetConfig("ghana-business")
	if err != nil {
		t.Fatal(err)
	}

	if sourceConfig.Name != "Ghana Business News" {
		t.Errorf("Expected name 'Ghana Business News', got '%s'", sourceConfig.Name)
	}
	if sourceConfig.URL != "https://example.com/feed.xml" {
		t.Errorf("Expected URL 'https://example.com/feed.xml', got '%s'", sourceConfig.URL)
	}
	if sourceConfig.Region != database.RegionGhana {
		t.Errorf("Expected region 'ghana', got '%s'", sourceConfig.Region)
	}
	if sourceConfig.Category != "mining" {
		t.Errorf("Expected category 'mining', got '%s'", sourceConfig.Category)
	}
	if sourceConfig.Settings.IsEnabled() {
		t.Error("Expected source to be disabled")
	}
	if sourceConfig.Settings.FetchInterval != 1800 {
		t.Errorf("Expected fetch interval 1800, got %d", sourceConfig.Settings.FetchInterval)
	}
}

func TestConfigCacheDefaults(t *testing.T) {
	tempDir := t.TempDir()

	writeSourceFile(t, tempDir, "kitco.yml", `
url: "https://example.com/kitco.xml"
region: world
`)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	sourceConfig, err := configCache.GetConfig("kitco")
	if err != nil {
		t.Fatal(err)
	}

	if sourceConfig.Name != "kitco" {
		t.Errorf("Expected name from filename 'kitco', got '%s'", sourceConfig.Name)
	}
	if sourceConfig.Kind != database.SourceKindRSS {
		t.Errorf("Expected default kind 'rss', got '%s'", sourceConfig.Kind)
	}
	if !sourceConfig.Settings.IsEnabled() {
		t.Error("Expected source to be enabled by default")
	}
	if sourceConfig.Settings.FetchInterval != database.DefaultFetchInterval {
		t.Errorf("Expected default fetch interval %d, got %d", database.DefaultFetchInterval, sourceConfig.Settings.FetchInterval)
	}
}

func TestConfigCacheInvalidConfigs(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errText string
	}{
		{
			name:    "missing url",
			content: "region: world\n",
			errText: "source URL is required",
		},
		{
			name:    "missing region",
			content: "url: https://example.com/feed.xml\n",
			errText: "region is required",
		},
		{
			name:    "unknown region",
			content: "url: https://example.com/feed.xml\nregion: mars\n",
			errText: "invalid region",
		},
		{
			name:    "unknown kind",
			content: "url: https://example.com/feed.xml\nregion: world\nkind: scraper\n",
			errText: "invalid kind",
		},
		{
			name:    "negative interval",
			content: "url: https://example.com/feed.xml\nregion: world\nsettings:\n  fetch_interval: -5\n",
			errText: "fetch interval must be non-negative",
		},
		{
			name:    "malformed yaml",
			content: "url: [unterminated\n",
			errText: "failed to parse YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			writeSourceFile(t, tempDir, "broken.yml", tt.content)

			err := NewConfigCache(tempDir).Run()
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errText) {
				t.Errorf("Expected error containing %q, got %q", tt.errText, err.Error())
			}
		})
	}
}

func TestConfigCacheMissingDirectory(t *testing.T) {
	configCache := NewConfigCache(filepath.Join(t.TempDir(), "does-not-exist"))
	if err := configCache.Run(); err != nil {
		t.Fatalf("Expected no error for missing directory, got %v", err)
	}
	if configCache.GetConfigCount() != 0 {
		t.Errorf("Expected 0 configs, got %d", configCache.GetConfigCount())
	}
}

func TestConfigCacheGetConfigNotFound(t *testing.T) {
	configCache := NewConfigCache(t.TempDir())
	if _, err := configCache.GetConfig("missing"); err == nil {
		t.Error("Expected error for unknown config")
	}
}

func TestConfigCacheIgnoresOtherFiles(t *testing.T) {
	tempDir := t.TempDir()
	writeSourceFile(t, tempDir, "a.yml", "url: https://example.com/a.xml\nregion: world\n")
	writeSourceFile(t, tempDir, "b.yml", "url: https://example.com/b.xml\nregion: ghana\n")
	writeSourceFile(t, tempDir, "notes.txt", "not a source")

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	configs := configCache.GetConfigs()
	if len(configs) != 2 {
		t.Fatalf("Expected 2 configs, got %d", len(configs))
	}
	if _, ok := configs["a"]; !ok {
		t.Error("Expected config 'a'")
	}
	if _, ok := configs["b"]; !ok {
		t.Error("Expected config 'b'")
	}
}

func TestSourceConfigToSource(t *testing.T) {
	disabled := false
	sourceConfig := &SourceConfig{
		Name:     "Mining Weekly",
		URL:      "https://example.com/mw.xml",
		Kind:     database.SourceKindRSS,
		Region:   database.RegionWorld,
		Category: "mining",
		Settings: SourceConfigSettings{Enabled: &disabled, FetchInterval: 7200},
	}

	source := sourceConfig.ToSource()

	if source.Name != "Mining Weekly" || source.URL != "https://example.com/mw.xml" {
		t.Errorf("Expected name and URL to carry over, got %+v", source)
	}
	if source.Region != database.RegionWorld || source.Category != "mining" {
		t.Errorf("Expected region and category to carry over, got %+v", source)
	}
	if source.IsActive {
		t.Error("Expected source to be inactive")
	}
	if source.FetchInterval != 7200 {
		t.Errorf("Expected fetch interval 7200, got %d", source.FetchInterval)
	}
}

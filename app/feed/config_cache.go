package feed

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/arl-connect/gold-news/app/database"
	"gopkg.in/yaml.v3"
)

// ConfigCache holds the news sources declared as <name>.yml files in a directory.
// They seed the source table at startup; admins manage everything else through the API.
type ConfigCache struct {
	sourcesDir string
	cache      map[string]*SourceConfig
	mu         sync.RWMutex
}

func NewConfigCache(sourcesDir string) *ConfigCache {
	return &ConfigCache{
		sourcesDir: sourcesDir,
		cache:      make(map[string]*SourceConfig),
	}
}

func (cc *ConfigCache) Run() error {
	if _, err := os.Stat(cc.sourcesDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(cc.sourcesDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		configName := strings.TrimSuffix(filepath.Base(file), ".yml")

		config, err := cc.LoadConfig(configName)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Source configuration loaded", "source", config.Name, "url", config.URL, "enabled", config.Settings.IsEnabled())
	}

	return nil
}

func (cc *ConfigCache) LoadConfig(configName string) (*SourceConfig, error) {
	configFile := filepath.Join(cc.sourcesDir, configName+".yml")
	sourceConfig, err := cc.parseConfig(configFile)
	if err != nil {
		return nil, err
	}

	if sourceConfig.Name == "" {
		sourceConfig.Name = configName
	}

	if err := cc.validateConfig(sourceConfig); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[configName] = sourceConfig

	return sourceConfig, nil
}

func (cc *ConfigCache) GetConfig(configName string) (*SourceConfig, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	sourceConfig, ok := cc.cache[configName]
	if !ok {
		return nil, fmt.Errorf("source config with name '%s' not found", configName)
	}
	return sourceConfig, nil
}

func (cc *ConfigCache) GetConfigs() map[string]*SourceConfig {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	configsCopy := make(map[string]*SourceConfig, len(cc.cache))
	for k, v := range cc.cache {
		configsCopy[k] = v
	}
	return configsCopy
}

func (cc *ConfigCache) GetConfigCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

// ToSource converts a configuration into a source record ready for upsert
func (c *SourceConfig) ToSource() *database.Source {
	return &database.Source{
		Name:          c.Name,
		URL:           c.URL,
		Kind:          c.Kind,
		Region:        c.Region,
		Category:      c.Category,
		IsActive:      c.Settings.IsEnabled(),
		FetchInterval: c.Settings.FetchInterval,
	}
}

func (cc *ConfigCache) parseConfig(configFile string) (*SourceConfig, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var sourceConfig SourceConfig
	if err := yaml.Unmarshal(data, &sourceConfig); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if sourceConfig.Kind == "" {
		sourceConfig.Kind = database.SourceKindRSS
	}
	if sourceConfig.Settings.FetchInterval == 0 {
		sourceConfig.Settings.FetchInterval = database.DefaultFetchInterval
	}

	return &sourceConfig, nil
}

func (cc *ConfigCache) validateConfig(sourceConfig *SourceConfig) error {
	if sourceConfig == nil {
		return fmt.Errorf("sourceConfig is nil")
	}

	requiredFields := map[string]string{
		"source name": sourceConfig.Name,
		"source URL":  sourceConfig.URL,
		"region":      sourceConfig.Region,
	}

	for fieldName, fieldValue := range requiredFields {
		if fieldValue == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
	}

	switch sourceConfig.Kind {
	case database.SourceKindRSS, database.SourceKindAPI:
	default:
		return fmt.Errorf("invalid kind: %s", sourceConfig.Kind)
	}

	switch sourceConfig.Region {
	case database.RegionGhana, database.RegionWorld:
	default:
		return fmt.Errorf("invalid region: %s", sourceConfig.Region)
	}

	if sourceConfig.Settings.FetchInterval < 0 {
		return fmt.Errorf("fetch interval must be non-negative")
	}

	return nil
}

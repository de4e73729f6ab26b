package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/arl-connect/gold-news/app/database"
)

type mockSourceRepository struct {
	mu      sync.Mutex
	sources map[string]*database.Source
	order   []string
	listErr error
	markErr error
	seeded  []database.Source
}

func newMockSourceRepository(sources ...database.Source) *mockSourceRepository {
	repo := &mockSourceRepository{sources: make(map[string]*database.Source)}
	for _, source := range sources {
		s := source
		repo.sources[s.ID] = &s
		repo.order = append(repo.order, s.ID)
	}
	return repo
}

func (m *mockSourceRepository) get(id string) database.Source {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.sources[id]
}

func (m *mockSourceRepository) GetSource(id string) (*database.Source, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sources[id]; ok {
		found := *s
		return &found, nil
	}
	return nil, nil
}

func (m *mockSourceRepository) GetSourceByURL(url string) (*database.Source, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sources {
		if s.URL == url {
			found := *s
			return &found, nil
		}
	}
	return nil, nil
}

func (m *mockSourceRepository) ListSources() ([]database.Source, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sources []database.Source
	for _, id := range m.order {
		sources = append(sources, *m.sources[id])
	}
	return sources, nil
}

func (m *mockSourceRepository) ListActiveSources() ([]database.Source, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var sources []database.Source
	for _, id := range m.order {
		if m.sources[id].IsActive {
			sources = append(sources, *m.sources[id])
		}
	}
	return sources, nil
}

func (m *mockSourceRepository) GetSourceStats() (*database.SourceStats, error) {
	active, _ := m.ListActiveSources()
	m.mu.Lock()
	defer m.mu.Unlock()
	return &database.SourceStats{Total: len(m.sources), Active: len(active)}, nil
}

func (m *mockSourceRepository) CreateSource(source *database.Source) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	source.ID = fmt.Sprintf("source-%d", len(m.order)+1)
	s := *source
	m.sources[s.ID] = &s
	m.order = append(m.order, s.ID)
	return nil
}

func (m *mockSourceRepository) UpdateSource(source *database.Source) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sources[source.ID]; !ok {
		return fmt.Errorf("source %s not found", source.ID)
	}
	s := *source
	m.sources[s.ID] = &s
	return nil
}

func (m *mockSourceRepository) SeedSource(source *database.Source) (bool, error) {
	m.mu.Lock()
	m.seeded = append(m.seeded, *source)
	m.mu.Unlock()

	existing, _ := m.GetSourceByURL(source.URL)
	if existing != nil {
		return false, nil
	}
	return true, m.CreateSource(source)
}

func (m *mockSourceRepository) DeleteSource(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sources[id]; !ok {
		return false, nil
	}
	delete(m.sources, id)
	return true, nil
}

func (m *mockSourceRepository) MarkFetched(id string, fetchedAt time.Time, fetchError string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.markErr != nil {
		return m.markErr
	}
	if s, ok := m.sources[id]; ok {
		s.LastFetchedAt = &fetchedAt
		s.LastError = fetchError
	}
	return nil
}

type mockItemRepository struct {
	mu        sync.Mutex
	items     map[string]database.NewsItem
	insertErr map[string]error // by title
	cutoff    time.Time
	deleted   int64
}

func newMockItemRepository() *mockItemRepository {
	return &mockItemRepository{
		items:     make(map[string]database.NewsItem),
		insertErr: make(map[string]error),
	}
}

func (m *mockItemRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *mockItemRepository) ItemExists(hash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[hash]
	return ok, nil
}

func (m *mockItemRepository) InsertItemIfAbsent(item *database.NewsItem) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.insertErr[item.Title]; err != nil {
		return false, err
	}
	if _, ok := m.items[item.Hash]; ok {
		return false, nil
	}
	m.items[item.Hash] = *item
	return true, nil
}

func (m *mockItemRepository) ListItems(filter database.ItemFilter) ([]database.NewsItem, int, error) {
	return nil, 0, nil
}

func (m *mockItemRepository) GetItemStats(todayStart time.Time) (*database.ItemStats, error) {
	return &database.ItemStats{Total: m.count()}, nil
}

func (m *mockItemRepository) DeleteItem(id string) (bool, error) {
	return false, nil
}

func (m *mockItemRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cutoff = cutoff
	return m.deleted, nil
}

type mockFetcher struct {
	mu        sync.Mutex
	responses map[string][]byte
	errors    map[string]error
	calls     []string
}

func newMockFetcher() *mockFetcher {
	return &mockFetcher{
		responses: make(map[string][]byte),
		errors:    make(map[string]error),
	}
}

func (m *mockFetcher) Run(ctx context.Context, url string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, url)
	if err := m.errors[url]; err != nil {
		return nil, err
	}
	return m.responses[url], nil
}

type mockCache struct {
	mu            sync.Mutex
	invalidations int
}

func (m *mockCache) Invalidate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidations++
	return nil
}

func rssSource(id, name, url string) database.Source {
	return database.Source{
		ID:            id,
		Name:          name,
		URL:           url,
		Kind:          database.SourceKindRSS,
		Region:        database.RegionWorld,
		Category:      "markets",
		IsActive:      true,
		FetchInterval: database.DefaultFetchInterval,
	}
}

const twoItemFeed = `<rss><channel>
<item><title>Gold price rises</title><link>https://example.com/1</link><description>Up</description></item>
<item><title>Silver follows</title><link>https://example.com/2</link></item>
</channel></rss>`

package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const sourceColumns = `id, name, url, kind, region, COALESCE(category, ''), is_active, fetch_interval,
	last_fetched_at, COALESCE(last_error, ''), created_at, updated_at`

type SQLiteSourceRepository struct {
	db *DB
}

func NewSourceRepository(db *DB) *SQLiteSourceRepository {
	return &SQLiteSourceRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSource(row rowScanner) (*Source, error) {
	var source Source
	var isActive int
	var lastFetched sql.NullInt64
	var createdAt, updatedAt int64

	err := row.Scan(
		&source.ID, &source.Name, &source.URL, &source.Kind, &source.Region, &source.Category,
		&isActive, &source.FetchInterval, &lastFetched, &source.LastError, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	source.IsActive = isActive == 1
	source.LastFetchedAt = fromNullUnix(lastFetched)
	source.CreatedAt = fromUnix(createdAt)
	source.UpdatedAt = fromUnix(updatedAt)

	return &source, nil
}

func (r *SQLiteSourceRepository) GetSource(id string) (*Source, error) {
	source, err := scanSource(r.db.QueryRow(`SELECT `+sourceColumns+` FROM news_sources WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get source: %w", err)
	}
	return source, nil
}

func (r *SQLiteSourceRepository) GetSourceByURL(url string) (*Source, error) {
	source, err := scanSource(r.db.QueryRow(`SELECT `+sourceColumns+` FROM news_sources WHERE url = ?`, url))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get source by URL: %w", err)
	}
	return source, nil
}

func (r *SQLiteSourceRepository) ListSources() ([]Source, error) {
	return r.querySources(`SELECT ` + sourceColumns + ` FROM news_sources ORDER BY region, name`)
}

func (r *SQLiteSourceRepository) ListActiveSources() ([]Source, error) {
	return r.querySources(`SELECT ` + sourceColumns + ` FROM news_sources WHERE is_active = 1 ORDER BY region, name`)
}

func (r *SQLiteSourceRepository) querySources(query string, args ...any) ([]Source, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	sources := []Source{}
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source row: %w", err)
		}
		sources = append(sources, *source)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating source rows: %w", err)
	}

	return sources, nil
}

func (r *SQLiteSourceRepository) GetSourceStats() (*SourceStats, error) {
	var stats SourceStats
	err := r.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN is_active = 1 THEN 1 ELSE 0 END), 0)
		FROM news_sources
	`).Scan(&stats.Total, &stats.Active)
	if err != nil {
		return nil, fmt.Errorf("failed to get source stats: %w", err)
	}
	return &stats, nil
}

// CreateSource inserts a new source and fills in its ID and timestamps
func (r *SQLiteSourceRepository) CreateSource(source *Source) error {
	now := time.Now()
	source.ID = uuid.NewString()
	source.CreatedAt = now
	source.UpdatedAt = now
	if source.FetchInterval == 0 {
		source.FetchInterval = DefaultFetchInterval
	}

	_, err := r.db.Exec(`
		INSERT INTO news_sources (id, name, url, kind, region, category, is_active, fetch_interval, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, source.ID, source.Name, source.URL, source.Kind, source.Region, nullString(source.Category),
		boolToInt(source.IsActive), source.FetchInterval, toUnix(now), toUnix(now))

	if isUniqueViolation(err) {
		return ErrDuplicateSource
	}
	if err != nil {
		return fmt.Errorf("failed to create source: %w", err)
	}

	return nil
}

// UpdateSource updates the editable fields of an existing source. A changed URL
// retires the old one so seed sync does not bring it back.
func (r *SQLiteSourceRepository) UpdateSource(source *Source) error {
	now := time.Now()
	if source.FetchInterval == 0 {
		source.FetchInterval = DefaultFetchInterval
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO news_source_tombstones (url, removed_at)
		SELECT url, ? FROM news_sources WHERE id = ? AND url <> ?
		ON CONFLICT(url) DO NOTHING
	`, toUnix(now), source.ID, source.URL)
	if err != nil {
		return fmt.Errorf("failed to retire source URL: %w", err)
	}

	result, err := tx.Exec(`
		UPDATE news_sources
		SET name = ?, url = ?, kind = ?, region = ?, category = ?, is_active = ?, fetch_interval = ?, updated_at = ?
		WHERE id = ?
	`, source.Name, source.URL, source.Kind, source.Region, nullString(source.Category),
		boolToInt(source.IsActive), source.FetchInterval, toUnix(now), source.ID)

	if isUniqueViolation(err) {
		return ErrDuplicateSource
	}
	if err != nil {
		return fmt.Errorf("failed to update source: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update source: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit source update: %w", err)
	}

	source.UpdatedAt = now
	return nil
}

// SeedSource inserts a configured source unless its URL is already present or
// was removed by an administrator. Existing rows are never modified.
// Reports whether a new row was created.
func (r *SQLiteSourceRepository) SeedSource(source *Source) (bool, error) {
	now := time.Now()
	id := uuid.NewString()
	if source.FetchInterval == 0 {
		source.FetchInterval = DefaultFetchInterval
	}

	result, err := r.db.Exec(`
		INSERT INTO news_sources (id, name, url, kind, region, category, is_active, fetch_interval, created_at, updated_at)
		SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
		WHERE NOT EXISTS (SELECT 1 FROM news_source_tombstones WHERE url = ?)
		ON CONFLICT(url) DO NOTHING
	`, id, source.Name, source.URL, source.Kind, source.Region, nullString(source.Category),
		boolToInt(source.IsActive), source.FetchInterval, toUnix(now), toUnix(now), source.URL)
	if err != nil {
		return false, fmt.Errorf("failed to seed source: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to seed source: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	source.ID = id
	source.CreatedAt = now
	source.UpdatedAt = now
	return true, nil
}

// DeleteSource removes the source and retires its URL from seed sync
func (r *SQLiteSourceRepository) DeleteSource(id string) (bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO news_source_tombstones (url, removed_at)
		SELECT url, ? FROM news_sources WHERE id = ?
		ON CONFLICT(url) DO NOTHING
	`, toUnix(time.Now()), id)
	if err != nil {
		return false, fmt.Errorf("failed to retire source URL: %w", err)
	}

	result, err := tx.Exec(`DELETE FROM news_sources WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete source: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete source: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit source delete: %w", err)
	}

	return affected > 0, nil
}

// MarkFetched records a fetch attempt. An empty fetchError clears last_error.
func (r *SQLiteSourceRepository) MarkFetched(id string, fetchedAt time.Time, fetchError string) error {
	_, err := r.db.Exec(`
		UPDATE news_sources
		SET last_fetched_at = ?, last_error = ?
		WHERE id = ?
	`, toUnix(fetchedAt), nullString(fetchError), id)

	if err != nil {
		return fmt.Errorf("failed to mark source fetched: %w", err)
	}

	return nil
}

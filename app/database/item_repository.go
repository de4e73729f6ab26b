package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const itemColumns = `id, title, source, source_url, url, COALESCE(summary, ''), COALESCE(image_url, ''),
	published_at, region, COALESCE(category, ''), hash, created_at`

// SQLiteItemRepository handles database operations for external news items
type SQLiteItemRepository struct {
	db *DB
}

func NewItemRepository(db *DB) *SQLiteItemRepository {
	return &SQLiteItemRepository{db: db}
}

func scanItem(row rowScanner) (*NewsItem, error) {
	var item NewsItem
	var publishedAt, createdAt int64

	err := row.Scan(
		&item.ID, &item.Title, &item.Source, &item.SourceURL, &item.URL, &item.Summary, &item.ImageURL,
		&publishedAt, &item.Region, &item.Category, &item.Hash, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	item.PublishedAt = fromUnix(publishedAt)
	item.CreatedAt = fromUnix(createdAt)

	return &item, nil
}

// ItemExists checks if an item with the given dedup hash is already stored
func (r *SQLiteItemRepository) ItemExists(hash string) (bool, error) {
	var id string
	err := r.db.QueryRow(`SELECT id FROM external_news WHERE hash = ? LIMIT 1`, hash).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check item existence: %w", err)
	}
	return true, nil
}

// InsertItemIfAbsent stores the item unless one with the same hash exists.
// Reports whether a row was inserted; a hash collision is not an error.
func (r *SQLiteItemRepository) InsertItemIfAbsent(item *NewsItem) (bool, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}

	result, err := r.db.Exec(`
		INSERT INTO external_news (
			id, title, source, source_url, url, summary, image_url,
			published_at, region, category, hash, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (hash) DO NOTHING
	`, item.ID, item.Title, item.Source, item.SourceURL, item.URL, nullString(item.Summary),
		nullString(item.ImageURL), toUnix(item.PublishedAt), item.Region, nullString(item.Category),
		item.Hash, toUnix(item.CreatedAt))

	if err != nil {
		return false, fmt.Errorf("failed to insert item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to insert item: %w", err)
	}

	return affected > 0, nil
}

// ListItems returns one page of items matching the filter, newest first, and the total match count
func (r *SQLiteItemRepository) ListItems(filter ItemFilter) ([]NewsItem, int, error) {
	where, args := buildItemWhere(filter)

	var total int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM external_news`+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count items: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = -1
	}

	pageArgs := append(append([]any{}, args...), limit, filter.Offset())
	rows, err := r.db.Query(`
		SELECT `+itemColumns+`
		FROM external_news`+where+`
		ORDER BY published_at DESC, created_at DESC, id
		LIMIT ? OFFSET ?
	`, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := []NewsItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan item row: %w", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating item rows: %w", err)
	}

	return items, total, nil
}

func buildItemWhere(filter ItemFilter) (string, []any) {
	var clauses []string
	var args []any

	if filter.Region != "" {
		clauses = append(clauses, "region = ?")
		args = append(args, filter.Region)
	}

	if filter.Category != "" {
		clauses = append(clauses, "fold(category) = ?")
		args = append(args, strings.ToLower(strings.TrimSpace(filter.Category)))
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
		clauses = append(clauses, `(fold(title) LIKE ? ESCAPE '\' OR fold(COALESCE(summary, '')) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}

	if len(clauses) == 0 {
		return "", nil
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// GetItemStats returns aggregate counts; Today counts items published at or after todayStart
func (r *SQLiteItemRepository) GetItemStats(todayStart time.Time) (*ItemStats, error) {
	var stats ItemStats
	err := r.db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN region = 'ghana' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN region = 'world' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN published_at >= ? THEN 1 ELSE 0 END), 0)
		FROM external_news
	`, toUnix(todayStart)).Scan(&stats.Total, &stats.Ghana, &stats.World, &stats.Today)

	if err != nil {
		return nil, fmt.Errorf("failed to get item stats: %w", err)
	}

	return &stats, nil
}

func (r *SQLiteItemRepository) DeleteItem(id string) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM external_news WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete item: %w", err)
	}

	return affected > 0, nil
}

// DeleteOlderThan removes items published before cutoff and returns how many were deleted
func (r *SQLiteItemRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM external_news WHERE published_at < ?`, toUnix(cutoff))
	if err != nil {
		return 0, fmt.Errorf("failed to delete old items: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to delete old items: %w", err)
	}

	return deleted, nil
}

package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// itemRepository implements ItemRepository on SQLite.
type itemRepository struct {
	db *DB
}

var _ ItemRepository = (*itemRepository)(nil)

// NewItemRepository creates a new item repository
func NewItemRepository(db *DB) ItemRepository {
	return &itemRepository{db: db}
}

const itemColumns = `items.id, items.feed_id, items.guid, items.link, items.title,
       items.description, items.content, items.extracted_content,
       items.published_at, items.updated_at, items.authors, items.categories,
       items.is_filtered, items.filter_reason, items.content_hash, items.created_at,
       items.content_extracted_at, items.content_extraction_status,
       items.content_extraction_error, items.extraction_attempts,
       items.enclosure_url, items.enclosure_length, items.enclosure_type`

// GetVisibleItems returns the newest unfiltered items for a feed, the
// set the generated output is built from.
func (r *itemRepository) GetVisibleItems(feedName string, limit int) ([]Item, error) {
	rows, err := r.db.Query(`
		SELECT `+itemColumns+`
		FROM items
		JOIN feeds ON feeds.id = items.feed_id
		WHERE feeds.name = ? AND items.is_filtered = FALSE
		ORDER BY items.published_at DESC
		LIMIT ?
	`, feedName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get visible items: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// GetAllItems returns every stored item for a feed, filtered ones
// included. Used for refiltering after a configuration change.
func (r *itemRepository) GetAllItems(feedName string) ([]Item, error) {
	rows, err := r.db.Query(`
		SELECT `+itemColumns+`
		FROM items
		JOIN feeds ON feeds.id = items.feed_id
		WHERE feeds.name = ?
		ORDER BY items.published_at DESC
	`, feedName)
	if err != nil {
		return nil, fmt.Errorf("failed to get all items: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// GetItemCount returns the total number of stored items for a feed
func (r *itemRepository) GetItemCount(feedName string) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*)
		FROM items
		JOIN feeds ON feeds.id = items.feed_id
		WHERE feeds.name = ?
	`, feedName).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get item count: %w", err)
	}
	return count, nil
}

// GetItemStats returns total, visible and filtered item counts for a feed
func (r *itemRepository) GetItemStats(feedName string) (int, int, int, error) {
	var total, visible, filtered int
	err := r.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN items.is_filtered = FALSE THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN items.is_filtered = TRUE THEN 1 ELSE 0 END), 0)
		FROM items
		JOIN feeds ON feeds.id = items.feed_id
		WHERE feeds.name = ?
	`, feedName).Scan(&total, &visible, &filtered)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to get item stats: %w", err)
	}
	return total, visible, filtered, nil
}

// UpsertItem inserts an item or refreshes its mutable columns when the
// (feed, guid) pair is already stored. The original published_at and
// the extraction state survive refreshes.
func (r *itemRepository) UpsertItem(feedName string, item FeedItem) error {
	authors, err := encodeStrings(item.Authors)
	if err != nil {
		return fmt.Errorf("failed to encode authors: %w", err)
	}
	categories, err := encodeStrings(item.Categories)
	if err != nil {
		return fmt.Errorf("failed to encode categories: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO items (
			id, feed_id, guid, link, title, description, content,
			published_at, updated_at, authors, categories,
			is_filtered, filter_reason, content_hash, created_at,
			enclosure_url, enclosure_length, enclosure_type
		)
		VALUES (?, (SELECT id FROM feeds WHERE name = ?), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (feed_id, guid) DO UPDATE SET
			link = EXCLUDED.link,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			content = EXCLUDED.content,
			updated_at = EXCLUDED.updated_at,
			authors = EXCLUDED.authors,
			categories = EXCLUDED.categories,
			is_filtered = EXCLUDED.is_filtered,
			filter_reason = EXCLUDED.filter_reason,
			content_hash = EXCLUDED.content_hash,
			enclosure_url = EXCLUDED.enclosure_url,
			enclosure_length = EXCLUDED.enclosure_length,
			enclosure_type = EXCLUDED.enclosure_type
	`, uuid.NewString(), feedName, item.GUID, item.Link, item.Title,
		item.Description, item.Content, item.PublishedAt.UTC(),
		utcPtr(item.UpdatedAt), authors, categories,
		item.IsFiltered, item.FilterReason, item.ContentHash,
		time.Now().UTC(), item.EnclosureURL, item.EnclosureLength,
		item.EnclosureType)

	if err != nil {
		return fmt.Errorf("failed to upsert item: %w", err)
	}

	return nil
}

// UpdateItemFilterStatus updates the filter state of a single item
func (r *itemRepository) UpdateItemFilterStatus(itemID string, isFiltered bool, reason string) error {
	_, err := r.db.Exec(`
		UPDATE items
		SET is_filtered = ?, filter_reason = ?
		WHERE id = ?
	`, isFiltered, reason, itemID)

	if err != nil {
		return fmt.Errorf("failed to update item filter status: %w", err)
	}

	return nil
}

// CheckDuplicate reports whether an item of the feed already carries
// the given content hash and returns the matching item id when it does.
func (r *itemRepository) CheckDuplicate(feedName, contentHash string) (bool, *string, error) {
	var id string
	err := r.db.QueryRow(`
		SELECT items.id
		FROM items
		JOIN feeds ON feeds.id = items.feed_id
		WHERE feeds.name = ? AND items.content_hash = ?
		LIMIT 1
	`, feedName, contentHash).Scan(&id)

	if err == sql.ErrNoRows {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, fmt.Errorf("failed to check duplicate: %w", err)
	}

	return true, &id, nil
}

// GetItemsForExtraction returns visible items that still need full-text
// extraction, newest first. Failed items are retried until the attempt
// budget runs out; skipped items and items without a link are not.
func (r *itemRepository) GetItemsForExtraction(feedName string, limit int) ([]ItemForExtraction, error) {
	rows, err := r.db.Query(`
		SELECT items.id, items.link
		FROM items
		JOIN feeds ON feeds.id = items.feed_id
		WHERE feeds.name = ?
		  AND items.is_filtered = FALSE
		  AND items.link != ''
		  AND items.content_extraction_status IN ('pending', 'failed')
		  AND items.extraction_attempts < 3
		ORDER BY items.published_at DESC
		LIMIT ?
	`, feedName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get items for extraction: %w", err)
	}
	defer rows.Close()

	var items []ItemForExtraction
	for rows.Next() {
		var item ItemForExtraction
		if err := rows.Scan(&item.ID, &item.Link); err != nil {
			return nil, fmt.Errorf("failed to scan item for extraction: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items for extraction: %w", err)
	}

	return items, nil
}

// UpdateExtractionStatus records the outcome of an extraction attempt
// that produced no content.
func (r *itemRepository) UpdateExtractionStatus(itemID string, status string, extractedAt *time.Time, errorMsg string) error {
	_, err := r.db.Exec(`
		UPDATE items
		SET content_extraction_status = ?,
		    content_extracted_at = ?,
		    content_extraction_error = ?,
		    extraction_attempts = extraction_attempts + 1
		WHERE id = ?
	`, status, utcPtr(extractedAt), errorMsg, itemID)

	if err != nil {
		return fmt.Errorf("failed to update extraction status: %w", err)
	}

	return nil
}

// UpdateExtractedContentAndStatus stores extracted content together
// with the outcome of the attempt.
func (r *itemRepository) UpdateExtractedContentAndStatus(itemID string, content string, status string, extractedAt *time.Time, errorMsg string) error {
	_, err := r.db.Exec(`
		UPDATE items
		SET extracted_content = ?,
		    content_extraction_status = ?,
		    content_extracted_at = ?,
		    content_extraction_error = ?,
		    extraction_attempts = extraction_attempts + 1
		WHERE id = ?
	`, content, status, utcPtr(extractedAt), errorMsg, itemID)

	if err != nil {
		return fmt.Errorf("failed to update extracted content: %w", err)
	}

	return nil
}

func collectItems(rows *sql.Rows) ([]Item, error) {
	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}

func scanItem(rows *sql.Rows) (Item, error) {
	var item Item
	var authors, categories string

	err := rows.Scan(
		&item.ID, &item.FeedID, &item.GUID, &item.Link, &item.Title,
		&item.Description, &item.Content, &item.ExtractedContent,
		&item.PublishedAt, &item.UpdatedAt, &authors, &categories,
		&item.IsFiltered, &item.FilterReason, &item.ContentHash, &item.CreatedAt,
		&item.ContentExtractedAt, &item.ContentExtractionStatus,
		&item.ContentExtractionError, &item.ExtractionAttempts,
		&item.EnclosureURL, &item.EnclosureLength, &item.EnclosureType,
	)
	if err != nil {
		return Item{}, fmt.Errorf("failed to scan item: %w", err)
	}

	if item.Authors, err = decodeStrings(authors); err != nil {
		return Item{}, fmt.Errorf("failed to decode authors: %w", err)
	}
	if item.Categories, err = decodeStrings(categories); err != nil {
		return Item{}, fmt.Errorf("failed to decode categories: %w", err)
	}

	return item, nil
}

// encodeStrings stores a string slice as JSON text. An empty slice is
// stored as "[]" so the column stays NOT NULL.
func encodeStrings(values []string) (string, error) {
	if len(values) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeStrings(data string) ([]string, error) {
	if data == "" || data == "[]" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, err
	}
	return values, nil
}

package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// feedRepository implements FeedRepository on SQLite.
type feedRepository struct {
	db *DB
}

var _ FeedRepository = (*feedRepository)(nil)

// NewFeedRepository creates a new feed repository
func NewFeedRepository(db *DB) FeedRepository {
	return &feedRepository{db: db}
}

const feedColumns = `id, name, feed_url, link, title, description, image_url, language,
       feed_type, last_error, last_fetched_at, next_fetch_at, feed_published_at,
       created_at, updated_at`

// GetFeed retrieves a feed by its configuration name
func (r *feedRepository) GetFeed(feedName string) (*Feed, error) {
	var feed Feed
	err := r.db.QueryRow(`
		SELECT `+feedColumns+`
		FROM feeds
		WHERE name = ?
	`, feedName).Scan(
		&feed.ID, &feed.Name, &feed.FeedURL, &feed.Link, &feed.Title,
		&feed.Description, &feed.ImageURL, &feed.Language, &feed.FeedType,
		&feed.LastError, &feed.LastFetchedAt, &feed.NextFetchAt,
		&feed.FeedPublishedAt, &feed.CreatedAt, &feed.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed: %w", err)
	}

	return &feed, nil
}

// GetFeedCount returns the total number of feeds
func (r *feedRepository) GetFeedCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM feeds").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get feed count: %w", err)
	}
	return count, nil
}

// UpsertFeed creates the row for a configured feed or updates its URL
// when the configuration changed. Metadata columns are left for the
// refresh to fill.
func (r *feedRepository) UpsertFeed(feedName, feedURL string) error {
	now := time.Now().UTC()
	_, err := r.db.Exec(`
		INSERT INTO feeds (id, name, feed_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			feed_url = EXCLUDED.feed_url,
			updated_at = EXCLUDED.updated_at
	`, uuid.NewString(), feedName, feedURL, now, now)

	if err != nil {
		return fmt.Errorf("failed to upsert feed: %w", err)
	}

	return nil
}

// UpdateFeedMetadata stores feed-level metadata after a successful
// refresh and schedules the next one. A previous fetch error is
// cleared.
func (r *feedRepository) UpdateFeedMetadata(feedName, title, link, description, imageURL, language, feedType string, feedPublishedAt *time.Time, nextFetch time.Time) error {
	now := time.Now().UTC()
	_, err := r.db.Exec(`
		UPDATE feeds
		SET title = ?, link = ?, description = ?, image_url = ?, language = ?,
		    feed_type = ?, feed_published_at = ?, last_error = '',
		    last_fetched_at = ?, next_fetch_at = ?, updated_at = ?
		WHERE name = ?
	`, title, link, description, imageURL, language, feedType,
		utcPtr(feedPublishedAt), now, nextFetch.UTC(), now, feedName)

	if err != nil {
		return fmt.Errorf("failed to update feed metadata: %w", err)
	}

	return nil
}

// UpdateFeedError records a failed refresh without touching the last
// known good metadata.
func (r *feedRepository) UpdateFeedError(feedName, message string) error {
	now := time.Now().UTC()
	_, err := r.db.Exec(`
		UPDATE feeds
		SET last_error = ?, last_fetched_at = ?, updated_at = ?
		WHERE name = ?
	`, message, now, now, feedName)

	if err != nil {
		return fmt.Errorf("failed to update feed error: %w", err)
	}

	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

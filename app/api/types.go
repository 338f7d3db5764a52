package api

import (
	"time"

	"github.com/feedmill/feedmill/app/database"
	"github.com/feedmill/feedmill/app/feed"
	"github.com/feedmill/feedmill/app/tasks"
)

type GeneratorInterface interface {
	Run(feed database.Feed, items []database.Item) (string, error)
}

var _ GeneratorInterface = (*feed.Generator)(nil)

type Handler struct {
	feedRepo    database.FeedRepository
	itemRepo    database.ItemRepository
	generator   GeneratorInterface
	configCache *feed.ConfigCache
	scheduler   tasks.TaskSchedulerInterface
}

type HealthResponse struct {
	Status         string `json:"status"`
	Version        string `json:"version"`
	Timestamp      string `json:"timestamp"`
	Feeds          int    `json:"feeds"`
	Configurations int    `json:"loaded_configurations"`
}

// FeedSummary merges the on-disk configuration with the feed's
// database state. Database fields stay empty until the first
// successful fetch.
type FeedSummary struct {
	Name            string     `json:"name"`
	URL             string     `json:"url"`
	Title           string     `json:"title"`
	FeedType        string     `json:"feed_type,omitempty"`
	Enabled         bool       `json:"enabled"`
	MaxItems        int        `json:"max_items"`
	RefreshInterval string     `json:"refresh_interval"`
	Filters         int        `json:"filters"`
	ItemCount       int        `json:"item_count"`
	LastError       string     `json:"last_error,omitempty"`
	LastFetchedAt   *time.Time `json:"last_fetched_at,omitempty"`
	NextFetchAt     *time.Time `json:"next_fetch_at,omitempty"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

type FeedListResponse struct {
	Feeds []FeedSummary `json:"feeds"`
	Total int           `json:"total"`
}

type ItemSummary struct {
	GUID             string     `json:"guid"`
	Title            string     `json:"title"`
	Link             string     `json:"link"`
	PublishedAt      time.Time  `json:"published_at"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
	Authors          []string   `json:"authors,omitempty"`
	Categories       []string   `json:"categories,omitempty"`
	IsFiltered       bool       `json:"is_filtered"`
	FilterReason     string     `json:"filter_reason,omitempty"`
	ExtractionStatus string     `json:"extraction_status,omitempty"`
}

type ItemStats struct {
	Total    int `json:"total"`
	Visible  int `json:"visible"`
	Filtered int `json:"filtered"`
}

type ItemListResponse struct {
	Feed  string        `json:"feed"`
	Stats ItemStats     `json:"stats"`
	Items []ItemSummary `json:"items"`
}

type TaskInfo struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type RefreshResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Feed    string     `json:"feed"`
	Tasks   []TaskInfo `json:"tasks"`
}

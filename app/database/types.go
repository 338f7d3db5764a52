package database

import (
	"time"
)

type Feed struct {
	ID              string // Database UUID
	Name            string // Configuration feed identifier derived from filename
	FeedURL         string // Source feed URL from configuration
	Link            string // Homepage URL from the feed's own metadata
	Title           string
	Description     string
	ImageURL        string
	Language        string
	FeedType        string // Source dialect reported by the parser
	LastError       string // Most recent fetch or parse failure, empty after success
	LastFetchedAt   *time.Time
	NextFetchAt     *time.Time
	FeedPublishedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Item struct {
	ID               string
	FeedID           string
	GUID             string
	Link             string
	Title            string
	Description      string
	Content          string
	ExtractedContent string // Readability output, empty until extraction runs
	PublishedAt      time.Time
	UpdatedAt        *time.Time
	Authors          []string // Multiple authors in format "email (name)" or "name"
	Categories       []string
	IsFiltered       bool
	FilterReason     string
	ContentHash      string
	CreatedAt        time.Time

	ContentExtractedAt      *time.Time
	ContentExtractionStatus string // pending, success, failed, skipped
	ContentExtractionError  string
	ExtractionAttempts      int

	EnclosureURL    string // RSS enclosure URL
	EnclosureLength int64  // RSS enclosure length in bytes
	EnclosureType   string // RSS enclosure MIME type
}

package feed

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/url"

	readability "codeberg.org/readeck/go-readability"
)

type ContentExtractor struct{}

func NewContentExtractor() *ContentExtractor {
	return &ContentExtractor{}
}

// Run extracts the readable article body from an HTML page. The page
// URL, when known, lets relative links inside the article resolve.
func (e *ContentExtractor) Run(data []byte, pageURL string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("HTML data is empty")
	}

	var baseURL *url.URL
	if pageURL != "" {
		if parsed, err := url.Parse(pageURL); err == nil {
			baseURL = parsed
		}
	}

	article, err := readability.FromReader(bytes.NewReader(data), baseURL)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	if article.Content == "" {
		return "", fmt.Errorf("no content extracted from HTML data")
	}

	slog.Debug("Content extracted successfully",
		"title", article.Title,
		"content_length", len(article.Content))

	return article.Content, nil
}

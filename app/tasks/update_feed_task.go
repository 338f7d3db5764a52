package tasks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/feedmill/feedmill/app/database"
	"github.com/feedmill/feedmill/app/feed"
)

type UpdateFeedTask struct {
	Task
	FeedConfig *feed.Config
	httpClient *http.Client
	parser     *feed.Parser
	filterer   *feed.Filterer
	feedRepo   database.FeedRepository
	itemRepo   database.ItemRepository
	scheduler  *Scheduler
	userAgent  string
}

func (s *Scheduler) NewUpdateFeedTask(feedConfig *feed.Config) TaskInterface {
	return &UpdateFeedTask{
		Task:       NewTask(TaskTypeUpdateFeed, feedConfig.Name),
		FeedConfig: feedConfig,
		httpClient: s.httpClient,
		parser:     s.parser,
		filterer:   s.filterer,
		feedRepo:   s.feedRepo,
		itemRepo:   s.itemRepo,
		scheduler:  s,
		userAgent:  s.userAgent,
	}
}

func (t *UpdateFeedTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.FeedConfig.Settings.Enabled {
		slog.Debug("Feed disabled, skipping", "feed", t.FeedName)
		return nil
	}

	// The feed row must exist before items can reference it. Upserting
	// here keeps the task safe to enqueue from any entry point, not
	// just the scheduler sync cycle.
	if err := t.feedRepo.UpsertFeed(t.FeedName, t.FeedConfig.URL); err != nil {
		return fmt.Errorf("failed to register feed: %w", err)
	}

	data, err := t.fetchFeed(ctx, t.FeedConfig.URL)
	if err != nil {
		t.recordFeedError(err)
		return fmt.Errorf("failed to fetch feed: %w", err)
	}

	metadata, items, err := t.parser.Run(data, t.FeedConfig.Settings.SanitizeContent)
	if err != nil {
		t.recordFeedError(err)
		return fmt.Errorf("failed to parse feed: %w", err)
	}

	if max := t.FeedConfig.Settings.MaxItems; len(items) > max {
		items = items[:max]
	}

	err = t.storeFeedMetadata(metadata)
	if err != nil {
		return fmt.Errorf("failed to store feed metadata: %w", err)
	}

	duplicateCount := 0
	filteredCount := 0
	newCount := 0

	if len(items) > 0 {
		var nonDuplicateItems []feed.Item
		for _, item := range items {
			isDuplicate, _, err := t.itemRepo.CheckDuplicate(t.FeedName, item.ContentHash)
			if err != nil {
				return fmt.Errorf("failed to check for duplicates: %w", err)
			}

			if isDuplicate {
				duplicateCount++
			} else {
				nonDuplicateItems = append(nonDuplicateItems, item)
			}
		}

		if len(nonDuplicateItems) > 0 {
			filteredItems := t.filterer.Run(nonDuplicateItems, t.FeedConfig)

			for _, item := range filteredItems {
				if item.IsFiltered {
					filteredCount++
				} else {
					newCount++
				}
			}

			err = t.storeItems(filteredItems)
			if err != nil {
				return fmt.Errorf("failed to store items: %w", err)
			}
		}
	}

	if t.FeedConfig.Settings.ExtractContent && t.scheduler != nil {
		if err := t.scheduler.EnqueueTask(t.scheduler.NewExtractContentTask(t.FeedConfig)); err != nil {
			slog.Warn("Failed to enqueue ExtractContentTask", "feed", t.FeedName, "error", err)
		}
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"feed", t.FeedName,
		"duration", t.GetDuration(),
		"total", len(items),
		"duplicates", duplicateCount,
		"filtered", filteredCount,
		"new", newCount)

	return nil
}

func (t *UpdateFeedTask) fetchFeed(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, time.Duration(t.FeedConfig.Settings.Timeout)*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

// recordFeedError stores the failure on the feed row so the API can
// surface it; the task error itself still drives the retry logic.
func (t *UpdateFeedTask) recordFeedError(err error) {
	if updateErr := t.feedRepo.UpdateFeedError(t.FeedName, err.Error()); updateErr != nil {
		slog.Error("Failed to record feed error", "feed", t.FeedName, "error", updateErr)
	}
}

func (t *UpdateFeedTask) storeFeedMetadata(metadata *feed.Metadata) error {
	now := time.Now().UTC()
	nextFetch := now.Add(time.Duration(t.FeedConfig.Settings.RefreshInterval) * time.Second)

	err := t.feedRepo.UpdateFeedMetadata(t.FeedName, metadata.Title, metadata.Link,
		metadata.Description, metadata.ImageURL, metadata.Language, metadata.FeedType,
		metadata.FeedPublishedAt, nextFetch)
	if err != nil {
		return fmt.Errorf("failed to update feed metadata and next fetch time: %w", err)
	}

	return nil
}

func (t *UpdateFeedTask) storeItems(items []feed.Item) error {
	for _, item := range items {
		dbItem := database.FeedItem{
			GUID:            item.GUID,
			Link:            item.Link,
			Title:           item.Title,
			Description:     item.Description,
			Content:         item.Content,
			PublishedAt:     item.PublishedAt,
			UpdatedAt:       item.UpdatedAt,
			Authors:         item.Authors,
			Categories:      item.Categories,
			IsFiltered:      item.IsFiltered,
			FilterReason:    item.FilterReason,
			ContentHash:     item.ContentHash,
			EnclosureURL:    item.EnclosureURL,
			EnclosureLength: item.EnclosureLength,
			EnclosureType:   item.EnclosureType,
		}

		err := t.itemRepo.UpsertItem(t.FeedName, dbItem)
		if err != nil {
			return fmt.Errorf("failed to upsert item: %w", err)
		}
	}

	return nil
}

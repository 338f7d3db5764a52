package api

import (
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/feedmill/feedmill/app/cfg"
	"github.com/feedmill/feedmill/app/database"
	"github.com/feedmill/feedmill/app/feed"
	"github.com/feedmill/feedmill/app/tasks"
)

func NewHandler(configCache *feed.ConfigCache, feedRepo database.FeedRepository,
	itemRepo database.ItemRepository, scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		feedRepo:    feedRepo,
		itemRepo:    itemRepo,
		generator:   feed.NewGenerator(),
		configCache: configCache,
		scheduler:   scheduler,
	}
}

func (h *Handler) GetFeed(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	feedConfig, err := h.configCache.GetConfig(name)
	if err != nil {
		slog.Error("Feed configuration not found", "feed", name, "error", err)
		c.Status(http.StatusNotFound)
		return
	}

	feed, err := h.feedRepo.GetFeed(name)
	if err != nil {
		slog.Error("Database error", "operation", "get_feed", "feed", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	if feed == nil {
		slog.Error("Feed not found in database", "feed", name)
		c.Status(http.StatusNotFound)
		return
	}

	items, err := h.itemRepo.GetVisibleItems(name, feedConfig.Settings.MaxItems)
	if err != nil {
		slog.Error("Database error", "operation", "get_items", "feed", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	rss, err := h.generator.Run(*feed, items)
	if err != nil {
		slog.Error("RSS generation error", "feed", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/rss+xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(items)))
	c.Header("X-Feed-Name", name)
	c.Header("X-Last-Updated", feed.UpdatedAt.Format(time.RFC3339))

	c.String(http.StatusOK, rss)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := HealthResponse{
		Status:    "ok",
		Version:   cfg.Get().Version,
		Timestamp: time.Now().In(time.Local).Format(time.RFC3339),
	}

	if feedCount, err := h.feedRepo.GetFeedCount(); err == nil {
		health.Feeds = feedCount
	}

	health.Configurations = h.configCache.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) APIListFeeds(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	feeds := make([]FeedSummary, 0, len(configs))

	for _, name := range slices.Sorted(maps.Keys(configs)) {
		feedConfig := configs[name]

		summary := FeedSummary{
			Name:            feedConfig.Name,
			URL:             feedConfig.URL,
			Enabled:         feedConfig.Settings.Enabled,
			MaxItems:        feedConfig.Settings.MaxItems,
			RefreshInterval: (time.Duration(feedConfig.Settings.RefreshInterval) * time.Second).String(),
			Filters:         len(feedConfig.Filters),
		}

		if feed, err := h.feedRepo.GetFeed(name); err == nil && feed != nil {
			summary.Title = feed.Title
			summary.FeedType = feed.FeedType
			summary.LastError = feed.LastError
			summary.LastFetchedAt = feed.LastFetchedAt
			summary.NextFetchAt = feed.NextFetchAt
			updatedAt := feed.UpdatedAt
			summary.UpdatedAt = &updatedAt
		}

		if itemCount, err := h.itemRepo.GetItemCount(name); err == nil {
			summary.ItemCount = itemCount
		}

		feeds = append(feeds, summary)
	}

	c.JSON(http.StatusOK, FeedListResponse{
		Feeds: feeds,
		Total: len(feeds),
	})
}

func (h *Handler) APIGetFeedItems(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing feed name parameter"})
		return
	}

	if _, err := h.configCache.GetConfig(name); err != nil {
		slog.Error("Feed configuration not found", "feed", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Feed configuration not found"})
		return
	}

	items, err := h.itemRepo.GetAllItems(name)
	if err != nil {
		slog.Error("Database error", "operation", "get_all_items", "feed", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	response := ItemListResponse{
		Feed:  name,
		Items: make([]ItemSummary, 0, len(items)),
	}

	if total, visible, filtered, err := h.itemRepo.GetItemStats(name); err == nil {
		response.Stats = ItemStats{Total: total, Visible: visible, Filtered: filtered}
	}

	for _, item := range items {
		response.Items = append(response.Items, ItemSummary{
			GUID:             item.GUID,
			Title:            item.Title,
			Link:             item.Link,
			PublishedAt:      item.PublishedAt,
			UpdatedAt:        item.UpdatedAt,
			Authors:          item.Authors,
			Categories:       item.Categories,
			IsFiltered:       item.IsFiltered,
			FilterReason:     item.FilterReason,
			ExtractionStatus: item.ContentExtractionStatus,
		})
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) APIRefreshFeed(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing feed name parameter"})
		return
	}

	if _, err := h.configCache.GetConfig(name); err != nil {
		slog.Error("Feed configuration not found", "feed", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Feed configuration not found"})
		return
	}

	// Reload from disk so filter or setting edits take effect without
	// waiting for the next sync cycle.
	feedConfig, err := h.configCache.LoadConfig(name)
	if err != nil {
		slog.Error("Error reloading configuration", "feed", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to reload configuration",
			"details": err.Error(),
		})
		return
	}

	refilterTask := h.scheduler.NewRefilterFeedTask(feedConfig)
	if err := h.scheduler.EnqueueTask(refilterTask); err != nil {
		slog.Error("Error enqueueing refilter task", "feed", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue refilter task",
			"details": err.Error(),
		})
		return
	}

	updateTask := h.scheduler.NewUpdateFeedTask(feedConfig)
	if err := h.scheduler.EnqueueTask(updateTask); err != nil {
		slog.Error("Error enqueueing update task", "feed", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue update task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, RefreshResponse{
		Success: true,
		Message: "Configuration reloaded and refresh tasks enqueued",
		Feed:    name,
		Tasks: []TaskInfo{
			{ID: refilterTask.GetID(), Type: string(refilterTask.GetType())},
			{ID: updateTask.GetID(), Type: string(updateTask.GetType())},
		},
	})
}

package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SyncConfigsTask reconciles the configuration directory with the
// database and enqueues a refresh for every enabled feed that is due.
// The scheduler runs one per tick, so edits to the directory are
// picked up without a restart.
type SyncConfigsTask struct {
	Task
	scheduler *Scheduler
}

func (s *Scheduler) NewSyncConfigsTask() TaskInterface {
	return &SyncConfigsTask{
		Task:      NewTask(TaskTypeSyncConfigs, ""),
		scheduler: s,
	}
}

func (t *SyncConfigsTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s := t.scheduler

	if err := s.configCache.Run(); err != nil {
		return fmt.Errorf("failed to reload feed configurations: %w", err)
	}

	feedConfigs := s.configCache.GetConfigs()
	if len(feedConfigs) == 0 {
		slog.Debug("No feed configurations found")
		return nil
	}

	enqueuedCount := 0

	for _, feedConfig := range feedConfigs {
		if err := s.feedRepo.UpsertFeed(feedConfig.Name, feedConfig.URL); err != nil {
			slog.Error("Failed to sync feed configuration", "feed", feedConfig.Name, "error", err)
			continue
		}

		if !feedConfig.Settings.Enabled {
			slog.Debug("Feed disabled, skipping refresh", "feed", feedConfig.Name)
			continue
		}

		feed, err := s.feedRepo.GetFeed(feedConfig.Name)
		if err != nil {
			slog.Warn("Failed to check feed schedule, skipping", "feed", feedConfig.Name, "error", err)
			continue
		}

		if feed != nil && feed.NextFetchAt != nil && feed.NextFetchAt.After(time.Now().UTC()) {
			slog.Debug("Feed not due for refresh yet", "feed", feedConfig.Name, "next_fetch_at", feed.NextFetchAt)
			continue
		}

		if err := s.EnqueueTask(s.NewUpdateFeedTask(feedConfig)); err != nil {
			slog.Warn("Failed to enqueue UpdateFeedTask", "feed", feedConfig.Name, "error", err)
			continue
		}
		enqueuedCount++
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"configs", len(feedConfigs),
		"enqueued", enqueuedCount)

	return nil
}

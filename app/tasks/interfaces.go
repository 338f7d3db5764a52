package tasks

import (
	"github.com/feedmill/feedmill/app/feed"
)

// TaskEnqueuer is the slice of the scheduler handed to code that only
// submits work.
type TaskEnqueuer interface {
	EnqueueTask(task TaskInterface) error
}

// TaskSchedulerInterface is what the main application and the API see
// of the scheduler. The factory methods build tasks around the
// scheduler's own pipeline dependencies so callers do not have to
// carry them.
type TaskSchedulerInterface interface {
	TaskEnqueuer
	Start()
	Stop()
	NewUpdateFeedTask(feedConfig *feed.Config) TaskInterface
	NewRefilterFeedTask(feedConfig *feed.Config) TaskInterface
}

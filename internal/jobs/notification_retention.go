package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yopdevs/platform/backend/pkg/logger"
)

// RetentionSchedule runs the cleanup every night at 03:00.
const RetentionSchedule = "0 3 * * *"

// ReadNotificationPruner deletes read notifications older than a cutoff.
type ReadNotificationPruner interface {
	PruneRead(ctx context.Context, retention time.Duration) (int64, error)
}

// StartNotificationRetention schedules the daily cleanup of read
// notifications and starts the scheduler. The caller stops it on shutdown.
func StartNotificationRetention(pruner ReadNotificationPruner, retention time.Duration, loc *time.Location) (*cron.Cron, error) {
	if loc == nil {
		loc = time.Local
	}
	c := cron.New(cron.WithLocation(loc))

	if _, err := c.AddFunc(RetentionSchedule, func() {
		pruneReadNotifications(context.Background(), pruner, retention)
	}); err != nil {
		return nil, err
	}

	c.Start()
	logger.Log.WithField("schedule", RetentionSchedule).
		WithField("retention", retention.String()).
		Info("notification retention job scheduled")
	return c, nil
}

func pruneReadNotifications(ctx context.Context, pruner ReadNotificationPruner, retention time.Duration) int64 {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	n, err := pruner.PruneRead(ctx, retention)
	if err != nil {
		logger.Log.WithError(err).Error("PruneRead failed")
		return 0
	}
	logger.Log.WithField("deleted", n).Info("read notifications pruned")
	return n
}

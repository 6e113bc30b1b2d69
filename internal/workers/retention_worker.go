package workers

import (
	"context"
	"time"

	"dealercrm_backend/internal/logger"
	"dealercrm_backend/internal/services"
)

// RetentionWorker garbage-collects read notifications past the retention
// window. Unread records are never purged regardless of age.
type RetentionWorker struct {
	notifications services.NotificationService
	retentionDays int
	interval      time.Duration
}

func NewRetentionWorker(notifications services.NotificationService, retentionDays int, interval time.Duration) *RetentionWorker {
	return &RetentionWorker{
		notifications: notifications,
		retentionDays: retentionDays,
		interval:      interval,
	}
}

func (w *RetentionWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *RetentionWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// One pass at startup so a long-idle deployment catches up immediately.
	w.purge()

	for {
		select {
		case <-ctx.Done():
			logger.Info("retention worker stopped")
			return
		case <-ticker.C:
			w.purge()
		}
	}
}

func (w *RetentionWorker) purge() {
	purged, err := w.notifications.PurgeOld(w.retentionDays)
	if err != nil {
		logger.Error("notification retention purge failed", "error", err)
		return
	}
	if purged > 0 {
		logger.Info("purged old read notifications", "count", purged)
	}
}

package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spybee/helpdesk/internal/dashboard"
	"github.com/spybee/helpdesk/internal/service"
)

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

// StartSessionReaper prunes idle dashboard sessions until ctx is done.
func StartSessionReaper(ctx context.Context, registry *dashboard.Registry, interval time.Duration, logger *zap.Logger) {
	if registry == nil {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := registry.PruneIdle(); removed > 0 {
					logger.Info("pruned idle dashboard sessions", zap.Int("count", removed))
				}
			}
		}
	}()
}

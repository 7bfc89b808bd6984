package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RequestPurger hard-deletes every request of a user once the horizon
// has passed.
type RequestPurger interface {
	PurgeForCreator(ctx context.Context, userID string) (int, error)
}

// ProcessDueDeletions polls for due cleanup entries until the context
// is cancelled.
func ProcessDueDeletions(
	ctx context.Context,
	repo Repository,
	purger RequestPurger,
	interval time.Duration,
	logger *zap.Logger,
) {
	if logger == nil {
		logger = zap.L().Named("deletion_worker")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("deletion worker started", zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			logger.Info("deletion worker stopped")
			return
		case <-ticker.C:
			runDueDeletions(ctx, repo, purger, logger)
		}
	}
}

func runDueDeletions(ctx context.Context, repo Repository, purger RequestPurger, logger *zap.Logger) {
	due, err := repo.ListDue(ctx, time.Now(), 20)
	if err != nil {
		logger.Error("failed to list due deletions", zap.Error(err))
		return
	}

	for _, entry := range due {
		purged, err := purger.PurgeForCreator(ctx, entry.UserID.String())
		if err != nil {
			logger.Error("failed to purge requests",
				zap.String("user_id", entry.UserID.String()), zap.Error(err))
			continue
		}
		if err := repo.MarkDone(ctx, entry.ID.String()); err != nil {
			logger.Error("failed to mark deletion done",
				zap.String("id", entry.ID.String()), zap.Error(err))
			continue
		}
		logger.Info("user requests purged",
			zap.String("user_id", entry.UserID.String()),
			zap.Int("requests", purged))
	}
}

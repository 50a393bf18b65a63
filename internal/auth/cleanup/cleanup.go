package cleanup

import (
	"context"
	"time"

	"github.com/AlibekovAA/toggle-task/internal/common/clock"
	"github.com/AlibekovAA/toggle-task/internal/common/logger"
	"github.com/AlibekovAA/toggle-task/internal/observability/metrics"
)

type ExpiredDeleter interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// StartRevokedSessionCleanup deletes expired revocations every interval until
// ctx is cancelled.
func StartRevokedSessionCleanup(ctx context.Context, repo ExpiredDeleter, clk clock.Clock, interval time.Duration, log *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			RunOnce(ctx, repo, clk, log)
		}
	}
}

func RunOnce(ctx context.Context, repo ExpiredDeleter, clk clock.Clock, log *logger.Logger) int64 {
	deleted, err := repo.DeleteExpired(ctx, clk.Now())
	if err != nil {
		log.Errorf("revoked session cleanup failed: %v", err)
		return 0
	}
	if deleted > 0 {
		metrics.RevokedSessionsCleanupDeleted.Add(float64(deleted))
		log.Infof("revoked session cleanup: deleted %d expired rows", deleted)
	}
	return deleted
}

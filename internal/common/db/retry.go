package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"

	"github.com/AlibekovAA/toggle-task/internal/common/logger"
	"github.com/AlibekovAA/toggle-task/internal/observability/metrics"
)

type RetryPolicy struct {
	Attempts   int
	FirstDelay time.Duration
	MaxDelay   time.Duration
	Factor     float64
}

var MigrationRetryPolicy = RetryPolicy{
	Attempts:   3,
	FirstDelay: 100 * time.Millisecond,
	MaxDelay:   2 * time.Second,
	Factor:     2.0,
}

// next returns the delay after d, capped at MaxDelay.
func (p RetryPolicy) next(d time.Duration) time.Duration {
	d = time.Duration(float64(d) * p.Factor)
	if d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// retryableCodes are connection exceptions (class 08), serialization
// failures, deadlocks and lock_not_available.
var retryableCodes = map[string]struct{}{
	"08000": {}, "08001": {}, "08003": {}, "08004": {}, "08006": {}, "08007": {}, "08P01": {},
	"40001": {}, "40P01": {},
	"55P03": {},
}

func IsRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	_, ok := retryableCodes[pgErr.Code]
	return ok
}

// Retry runs op until it succeeds, fails with a non-retryable error or the
// policy is exhausted. name labels logs and the retry counter.
func Retry(ctx context.Context, log *logger.Logger, policy RetryPolicy, name string, op func(context.Context) error) error {
	delay := policy.FirstDelay
	var err error

	for attempt := 1; ; attempt++ {
		if err = op(ctx); err == nil {
			if attempt > 1 {
				log.Infof("%s succeeded after %d attempts", name, attempt)
			}
			return nil
		}
		if !IsRetryableError(err) || attempt >= policy.Attempts {
			break
		}

		metrics.DBRetriesTotal.WithLabelValues(name).Inc()
		log.Warnf("%s failed (attempt %d/%d): %v, retrying in %v", name, attempt, policy.Attempts, err, delay)

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s cancelled during retry: %w", name, ctx.Err())
		case <-time.After(delay):
		}
		delay = policy.next(delay)
	}

	if !IsRetryableError(err) {
		return err
	}
	return fmt.Errorf("%s failed after %d attempts: %w", name, policy.Attempts, err)
}

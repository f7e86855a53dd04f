package bookings

import (
	"context"
	"time"

	"wanderly/internal/shared/config"
	"wanderly/pkg/logger"
)

// Completer is the slice of the repository the completion job needs
type Completer interface {
	CompletePast(ctx context.Context, before time.Time, limit int) (int64, error)
}

// CompletionJob periodically moves confirmed bookings whose day has passed
// to completed.
type CompletionJob struct {
	store    Completer
	interval time.Duration
	batch    int
	now      func() time.Time
}

func NewCompletionJob(store Completer, cfg config.JobConfig) *CompletionJob {
	interval := cfg.CompletionInterval
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	batch := cfg.CompletionBatch
	if batch <= 0 {
		batch = 500
	}
	return &CompletionJob{store: store, interval: interval, batch: batch, now: time.Now}
}

// Run sweeps once on start and then on every tick until ctx is cancelled.
func (j *CompletionJob) Run(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	logger.GetDefault().InfoWithContext(ctx, "Started booking completion job", map[string]interface{}{
		"interval": j.interval.String(),
		"batch":    j.batch,
	})

	j.Sweep(ctx)
	for {
		select {
		case <-ticker.C:
			j.Sweep(ctx)
		case <-ctx.Done():
			return nil
		}
	}
}

// Sweep completes every due booking in batches and returns how many changed.
// Errors are logged and end the sweep early.
func (j *CompletionJob) Sweep(ctx context.Context) int64 {
	today, _ := DayBounds(j.now())

	var total int64
	for {
		n, err := j.store.CompletePast(ctx, today, j.batch)
		if err != nil {
			logger.GetDefault().ErrorWithContext(ctx, "Error completing past bookings", err, nil)
			break
		}
		total += n
		if n < int64(j.batch) || ctx.Err() != nil {
			break
		}
	}

	if total > 0 {
		logger.GetDefault().InfoWithContext(ctx, "Completed past bookings", map[string]interface{}{
			"count": total,
		})
	}
	return total
}

package runner

import (
	"context"
	"errors"
	"time"
)

// DrainPending processes pending submissions until none remain or ctx is
// done. Failed analyses are logged and do not stop the drain.
func (r *Runner) DrainPending(ctx context.Context) (processed int, err error) {
	for ctx.Err() == nil {
		a, err := r.ProcessNextPending(ctx)
		switch {
		case errors.Is(err, ErrNoPending):
			return processed, nil
		case a == nil && err != nil:
			return processed, err
		case err != nil:
			logf("run %s failed: %v", a.RunID, err)
		}
		processed++
	}
	return processed, ctx.Err()
}

// Poll drains the pending queue every interval until ctx is cancelled.
func (r *Runner) Poll(ctx context.Context, interval time.Duration) error {
	ticker := r.clock.NewTicker(interval)
	defer ticker.Stop()

	logf("polling for pending submissions every %s", interval)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C():
			n, err := r.DrainPending(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				logf("drain pending: %v", err)
			}
			if n > 0 {
				logf("processed %d submission(s)", n)
			}
		}
	}
}

package presence

import (
	"context"
	"time"
)

// Sweep purges deeply expired entries every interval until ctx is done.
// Failures are logged and retried on the next tick.
func (r *Registry) Sweep(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	Log.WithField("interval", interval).Info("presence sweeper started")
	for {
		select {
		case <-ctx.Done():
			Log.Info("presence sweeper stopped")
			return nil
		case <-ticker.C:
			n, err := r.PurgeDeeplyExpiredEntries(ctx)
			if err != nil {
				Log.WithError(err).Error("unable to purge presence entries")
				continue
			}
			if n > 0 {
				Log.WithField("purged", n).Debug("purged presence entries")
			}
		}
	}
}

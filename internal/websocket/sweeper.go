package websocket

import (
	"context"
	"time"

	"github.com/parley-chat/server/pkg/logger"
)

// RunSweeper drains the namespace's expiry registry on a fixed interval
// until the context is cancelled. Cancellation mid-sweep is safe: the
// registry's pop is atomic, so no entry is ever left half-evicted.
func (l *Lifecycle) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Infof("Expiry sweeper started: namespace=%s interval=%s", l.namespace, interval)
	for {
		select {
		case <-ctx.Done():
			logger.Infof("Expiry sweeper stopped: namespace=%s", l.namespace)
			return
		case <-ticker.C:
			if _, err := l.SweepOnce(ctx); err != nil {
				logger.Warnf("Expiry sweep failed: namespace=%s: %v", l.namespace, err)
			}
		}
	}
}

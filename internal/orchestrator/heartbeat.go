package orchestrator

import (
	"context"
	"time"

	"github.com/orsta/orsta/internal/observability/metrics"
	"go.uber.org/zap"
)

// Heartbeat issues a trivial liveness statement against both backends under
// the coordinator lock, surfacing mirror outages through logs and metrics
// without touching request traffic.
func (o *Orchestrator) Heartbeat(ctx context.Context) {
	o.lock()
	defer o.mu.Unlock()

	if err := o.primary.WithContext(ctx).Exec("SELECT 1").Error; err != nil {
		o.metrics.RecordHeartbeat(metrics.HeartbeatResultPrimaryError)
		o.log.Error("primary heartbeat failed", zap.Error(err))
		return
	}

	if o.mirror != nil {
		if err := o.mirror.WithContext(ctx).Exec("SELECT 1").Error; err != nil {
			o.metrics.RecordHeartbeat(metrics.HeartbeatResultMirrorError)
			o.metrics.RecordMirrorFailure()
			o.log.Warn("mirror heartbeat failed", zap.Error(err))
			return
		}
	}

	o.metrics.RecordHeartbeat(metrics.HeartbeatResultOK)
}

// RunHeartbeat ticks until ctx is cancelled.
func (o *Orchestrator) RunHeartbeat(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = HeartbeatInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.Heartbeat(ctx)
		}
	}
}

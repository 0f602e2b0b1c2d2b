package engine

import (
	"context"

	"go.uber.org/zap"

	"lakupos/internal/domain"
)

const syncLeaseName = "full-sync"

// FullSync drains the outbox then refreshes the cache. Offline, it returns
// immediately and performs no work. Concurrent calls in-process collapse
// into one run; across processes sharing the cache file, the sync lease
// keeps a single writer. Per-entry skips and failures are reported in
// Upload without failing the sync, but a failed outbox scan or refresh
// fails the report: a summary from a broken scan must never read as an
// empty queue.
func (e *Engine) FullSync(ctx context.Context) domain.SyncReport {
	v, _, _ := e.sync.Do(syncLeaseName, func() (any, error) {
		return e.fullSync(ctx), nil
	})
	return v.(domain.SyncReport)
}

func (e *Engine) fullSync(ctx context.Context) domain.SyncReport {
	if !e.oracle.Online(ctx) {
		return domain.SyncReport{Success: false, Reason: "offline"}
	}

	ok, err := e.lease.Acquire(ctx, syncLeaseName, e.owner, e.leaseTTL)
	if err != nil {
		return domain.SyncReport{Success: false, Reason: err.Error()}
	}
	if !ok {
		return domain.SyncReport{Success: false, Reason: "sync already in progress"}
	}
	defer func() {
		if err := e.lease.Release(ctx, syncLeaseName, e.owner); err != nil {
			e.log.Warn("lease release failed", zap.Error(err))
		}
	}()

	sum, drainErr := e.DrainOutbox(ctx)
	if drainErr != nil {
		// The scan itself failed; still refresh so the catalog is current,
		// but the run must not report success.
		e.log.Error("outbox drain failed", zap.Error(drainErr))
	}

	if err := e.RefreshFromRemote(ctx); err != nil {
		return domain.SyncReport{Success: false, Reason: err.Error(), Upload: sum}
	}
	if drainErr != nil {
		return domain.SyncReport{Success: false, Reason: drainErr.Error(), Upload: sum}
	}
	return domain.SyncReport{Success: true, Upload: sum}
}

package engine

import (
	"context"

	"go.uber.org/zap"

	"lakupos/internal/domain"
	"lakupos/internal/remote"
)

// DrainOutbox replays pending entries against the remote store in creation
// order. Entries are handled independently: an entry hitting stock
// contention is skipped, an entry hitting an unexpected error is left
// pending for the next drain, and neither aborts the batch. Only a cache
// scan failure returns an error.
func (e *Engine) DrainOutbox(ctx context.Context) (domain.SyncSummary, error) {
	entries, err := e.outbox.PendingFIFO(ctx)
	if err != nil {
		return domain.SyncSummary{}, err
	}

	sum := domain.SyncSummary{TotalPending: len(entries)}
	for _, en := range entries {
		switch e.replay(ctx, en) {
		case replaySynced:
			sum.Synced++
		case replaySkipped:
			sum.Skipped++
		case replayFailed:
			sum.Failed++
		}
	}

	e.log.Info("outbox drained",
		zap.Int("pending", sum.TotalPending),
		zap.Int("synced", sum.Synced),
		zap.Int("skipped", sum.Skipped),
		zap.Int("failed", sum.Failed))
	return sum, nil
}

type replayResult int

const (
	replaySynced replayResult = iota
	replaySkipped
	replayFailed
)

func (e *Engine) replay(ctx context.Context, en domain.OutboxEntry) replayResult {
	if en.ProductID != "" && en.Type.ConsumesStock() {
		ps, err := e.remote.ProductStock(ctx, en.ProductID)
		if err != nil {
			e.noteReplayError(ctx, en, err.Error())
			return replayFailed
		}
		if ps == nil {
			// Product deleted remotely while the entry waited: same
			// disposition as stock contention.
			e.noteReplayError(ctx, en, "product no longer exists remotely")
			return replaySkipped
		}
		if ps.Stock < en.Quantity {
			e.noteReplayError(ctx, en, (&domain.InsufficientStockError{
				ProductID: en.ProductID, Requested: en.Quantity, Available: ps.Stock,
			}).Error())
			e.log.Warn("replay skipped on stock contention",
				zap.Int64("local_id", en.LocalID),
				zap.String("product_id", en.ProductID),
				zap.Int("need", en.Quantity),
				zap.Int("have", ps.Stock))
			return replaySkipped
		}
		if err := e.remote.UpdateProductStock(ctx, en.ProductID, ps.Stock-en.Quantity); err != nil {
			e.noteReplayError(ctx, en, err.Error())
			return replayFailed
		}
	}

	txID, err := e.remote.InsertTransaction(ctx, remote.RecordFromEntry(en))
	if err != nil {
		e.noteReplayError(ctx, en, err.Error())
		return replayFailed
	}
	if err := e.outbox.MarkSynced(ctx, en.LocalID, txID); err != nil {
		// Remote insert succeeded but the local flip failed; the client ref
		// makes the inevitable re-insert a no-op remotely.
		e.log.Error("mark synced failed", zap.Int64("local_id", en.LocalID), zap.Error(err))
		return replayFailed
	}
	return replaySynced
}

// noteReplayError is best-effort bookkeeping for manual reconciliation.
func (e *Engine) noteReplayError(ctx context.Context, en domain.OutboxEntry, msg string) {
	if err := e.outbox.SetLastError(ctx, en.LocalID, msg); err != nil {
		e.log.Debug("set last error failed", zap.Int64("local_id", en.LocalID), zap.Error(err))
	}
}

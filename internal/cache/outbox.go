package cache

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"lakupos/internal/domain"
)

// OutboxRepo is the offline transaction queue.
type OutboxRepo struct{ db *sqlx.DB }

func NewOutboxRepo(db *sqlx.DB) *OutboxRepo { return &OutboxRepo{db: db} }

// Append queues one entry with synced=0 and returns its local id.
func (r *OutboxRepo) Append(ctx context.Context, e *domain.OutboxEntry) (int64, error) {
	res, err := r.db.NamedExecContext(ctx, `
		INSERT INTO outbox(
			client_ref, user_id, store_id, product_id, product_name,
			unit_price, total_price, quantity, type, description,
			invoice_ref, created_at, synced
		)
		VALUES(
			:client_ref, :user_id, :store_id, :product_id, :product_name,
			:unit_price, :total_price, :quantity, :type, :description,
			:invoice_ref, :created_at, 0
		)
	`, e)
	if err != nil {
		return 0, storageErr("outbox.append", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storageErr("outbox.append", err)
	}
	return id, nil
}

// PendingFIFO returns every un-synced entry in creation order. created_at is
// RFC3339Nano text, so lexicographic order is chronological; local_id breaks
// same-instant ties.
func (r *OutboxRepo) PendingFIFO(ctx context.Context) ([]domain.OutboxEntry, error) {
	var out []domain.OutboxEntry
	err := r.db.SelectContext(ctx, &out, `
		SELECT * FROM outbox
		WHERE synced = 0
		ORDER BY created_at, local_id
	`)
	if err != nil {
		return nil, storageErr("outbox.pending", err)
	}
	return out, nil
}

// MarkSynced flips an entry to synced=1 and attaches the remote transaction
// id. The synced=0 guard makes the transition one-way.
func (r *OutboxRepo) MarkSynced(ctx context.Context, localID int64, transactionID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE outbox
		SET synced = 1, transaction_id = ?, last_error = ''
		WHERE local_id = ? AND synced = 0
	`, transactionID, localID)
	if err != nil {
		return storageErr("outbox.mark_synced", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storageErr("outbox.mark_synced", fmt.Errorf("entry %d not pending", localID))
	}
	return nil
}

// SetLastError annotates a pending entry with its most recent replay
// problem. Purely informational; it never changes replay eligibility.
func (r *OutboxRepo) SetLastError(ctx context.Context, localID int64, msg string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE outbox SET last_error = ? WHERE local_id = ? AND synced = 0
	`, msg, localID)
	return storageErr("outbox.set_last_error", err)
}

// PendingByStore lists a store's un-synced entries, oldest first.
func (r *OutboxRepo) PendingByStore(ctx context.Context, storeID string) ([]domain.OutboxEntry, error) {
	var out []domain.OutboxEntry
	err := r.db.SelectContext(ctx, &out, `
		SELECT * FROM outbox
		WHERE store_id = ? AND synced = 0
		ORDER BY created_at, local_id
	`, storeID)
	if err != nil {
		return nil, storageErr("outbox.pending_by_store", err)
	}
	return out, nil
}

// RecentByStore lists a store's newest entries regardless of sync state.
func (r *OutboxRepo) RecentByStore(ctx context.Context, storeID string, limit int) ([]domain.OutboxEntry, error) {
	var out []domain.OutboxEntry
	err := r.db.SelectContext(ctx, &out, `
		SELECT * FROM outbox
		WHERE store_id = ?
		ORDER BY created_at DESC, local_id DESC
		LIMIT ?
	`, storeID, limit)
	if err != nil {
		return nil, storageErr("outbox.recent_by_store", err)
	}
	return out, nil
}

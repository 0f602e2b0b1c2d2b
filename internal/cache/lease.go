package cache

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// LeaseRepo arbitrates single-writer access for processes sharing one cache
// file. A lease is a named row with an owner and an expiry; a stale lease
// (crashed holder) is taken over once expired.
type LeaseRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewLeaseRepo(db *sqlx.DB) *LeaseRepo {
	return &LeaseRepo{db: db, now: time.Now}
}

// Acquire takes or renews the named lease for owner. Returns false when a
// live lease is held by someone else.
func (r *LeaseRepo) Acquire(ctx context.Context, name, owner string, ttl time.Duration) (bool, error) {
	now := r.now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO sync_lease(name, owner, expires_at)
		VALUES(?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			owner = excluded.owner,
			expires_at = excluded.expires_at
		WHERE sync_lease.owner = excluded.owner
		   OR sync_lease.expires_at < ?
	`, name, owner, now.Add(ttl).Format(time.RFC3339Nano), now.Format(time.RFC3339Nano))
	if err != nil {
		return false, storageErr("lease.acquire", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storageErr("lease.acquire", err)
	}
	return n > 0, nil
}

// Release drops the lease if owner still holds it.
func (r *LeaseRepo) Release(ctx context.Context, name, owner string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM sync_lease WHERE name = ? AND owner = ?
	`, name, owner)
	return storageErr("lease.release", err)
}

package cache

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"lakupos/internal/domain"
)

// SessionRepo holds the singleton identity and store snapshots. Both rows
// use the fixed key 'current' and are wholly overwritten on each refresh.
type SessionRepo struct{ db *sqlx.DB }

func NewSessionRepo(db *sqlx.DB) *SessionRepo { return &SessionRepo{db: db} }

// Identity returns the cached identity, or nil when none has been stored.
func (r *SessionRepo) Identity(ctx context.Context) (*domain.Identity, error) {
	var id domain.Identity
	err := r.db.GetContext(ctx, &id, `
		SELECT user_id, name, email, role, store_id, is_active, subscription_days_left, pin_hash
		FROM session_identity WHERE key = 'current'
	`)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("session.identity", err)
	}
	return &id, nil
}

// Store returns the cached store record, or nil when none has been stored.
func (r *SessionRepo) Store(ctx context.Context) (*domain.Store, error) {
	var st domain.Store
	err := r.db.GetContext(ctx, &st, `
		SELECT store_id, store_name, store_address, store_phone
		FROM session_store WHERE key = 'current'
	`)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("session.store", err)
	}
	return &st, nil
}

// SetPINHash stores the offline unlock hash on the cached identity. Fails
// when no identity is cached: the PIN protects a known user.
func (r *SessionRepo) SetPINHash(ctx context.Context, hash string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE session_identity SET pin_hash = ? WHERE key = 'current'
	`, hash)
	if err != nil {
		return storageErr("session.set_pin", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrIdentityUnavailable
	}
	return nil
}

// saveIdentityTx upserts the identity snapshot, preserving any stored PIN
// hash across refreshes.
func saveIdentityTx(ctx context.Context, tx *sqlx.Tx, id domain.Identity) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO session_identity(key, user_id, name, email, role, store_id, is_active, subscription_days_left, pin_hash)
		VALUES('current', ?, ?, ?, ?, ?, ?, ?, '')
		ON CONFLICT(key) DO UPDATE SET
			user_id = excluded.user_id,
			name = excluded.name,
			email = excluded.email,
			role = excluded.role,
			store_id = excluded.store_id,
			is_active = excluded.is_active,
			subscription_days_left = excluded.subscription_days_left
	`, id.UserID, id.Name, id.Email, id.Role, id.StoreID, id.IsActive, id.SubscriptionDaysLeft)
	return err
}

func saveStoreTx(ctx context.Context, tx *sqlx.Tx, st domain.Store) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO session_store(key, store_id, store_name, store_address, store_phone)
		VALUES('current', ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			store_id = excluded.store_id,
			store_name = excluded.store_name,
			store_address = excluded.store_address,
			store_phone = excluded.store_phone
	`, st.StoreID, st.Name, st.Address, st.PhoneNumber)
	return err
}

// Snapshot is one refresh result: identity, store and the full catalog.
type Snapshot struct {
	Identity domain.Identity
	Store    domain.Store
	Products []domain.Product
}

// ApplySnapshot writes a refresh result as a single transaction so a
// mismatched identity/store/catalog triple is never observable.
func (r *SessionRepo) ApplySnapshot(ctx context.Context, snap Snapshot) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return storageErr("session.snapshot", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := saveIdentityTx(ctx, tx, snap.Identity); err != nil {
		return storageErr("session.snapshot", err)
	}
	if err := saveStoreTx(ctx, tx, snap.Store); err != nil {
		return storageErr("session.snapshot", err)
	}
	if err := replaceAllTx(ctx, tx, snap.Identity.StoreID, snap.Products); err != nil {
		return storageErr("session.snapshot", err)
	}
	if err := tx.Commit(); err != nil {
		return storageErr("session.snapshot", err)
	}
	return nil
}

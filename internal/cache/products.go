package cache

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"lakupos/internal/domain"
)

// ProductRepo is the cached catalog mirror.
type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

// Get returns the cached product, or nil if the catalog has no such row.
func (r *ProductRepo) Get(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, `SELECT * FROM products WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("products.get", err)
	}
	return &p, nil
}

// ListByStore returns the cached catalog for one store, name-ordered.
func (r *ProductRepo) ListByStore(ctx context.Context, storeID string) ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.SelectContext(ctx, &out, `
		SELECT * FROM products
		WHERE store_id = ?
		ORDER BY name, id
	`, storeID)
	if err != nil {
		return nil, storageErr("products.list", err)
	}
	return out, nil
}

// Decrement optimistically subtracts qty units if enough cached stock
// exists. The stock >= ? guard keeps the non-negative invariant even if the
// caller's read was stale.
func (r *ProductRepo) Decrement(ctx context.Context, id string, qty int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET stock = stock - ?
		WHERE id = ? AND stock >= ?
	`, qty, id, qty)
	if err != nil {
		return storageErr("products.decrement", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		avail := 0
		_ = r.db.GetContext(ctx, &avail, `SELECT stock FROM products WHERE id = ?`, id)
		return &domain.InsufficientStockError{ProductID: id, Requested: qty, Available: avail}
	}
	return nil
}

// replaceAllTx wholesale-replaces one store's catalog inside tx. Used by the
// refresh snapshot so a partial replacement is never observable.
func replaceAllTx(ctx context.Context, tx *sqlx.Tx, storeID string, ps []domain.Product) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM products WHERE store_id = ?`, storeID); err != nil {
		return err
	}
	for i := range ps {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO products(id, store_id, user_id, name, description, category, unit_price, stock, created_at)
			VALUES(:id, :store_id, :user_id, :name, :description, :category, :unit_price, :stock, :created_at)
		`, ps[i])
		if err != nil {
			return err
		}
	}
	return nil
}

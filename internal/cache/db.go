package cache

import (
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"lakupos/internal/domain"
)

// OpenDB opens (or creates) the durable local cache and ensures its schema.
// Use a file DSN in production so the cache survives restarts; tests pass
// ":memory:".
func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	// A single connection avoids table-lock races between the repos; the
	// engine is a single logical actor anyway.
	db.SetMaxOpenConns(1)

	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA journal_mode = WAL;
PRAGMA busy_timeout = 5000;

-- Product catalog mirror, bulk-replaced on every successful refresh.
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  store_id TEXT NOT NULL,
  user_id TEXT NOT NULL DEFAULT '',
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT '',
  unit_price NUMERIC NOT NULL CHECK (unit_price >= 0),
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  created_at TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_products_store ON products(store_id);

-- Offline transaction queue. Rows are never deleted: once synced they are
-- the historical offline ledger.
CREATE TABLE IF NOT EXISTS outbox(
  local_id INTEGER PRIMARY KEY AUTOINCREMENT,
  client_ref TEXT NOT NULL UNIQUE,
  transaction_id TEXT NOT NULL DEFAULT '',
  user_id TEXT NOT NULL,
  store_id TEXT NOT NULL,
  product_id TEXT NOT NULL DEFAULT '',
  product_name TEXT NOT NULL DEFAULT '',
  unit_price NUMERIC NOT NULL DEFAULT 0,
  total_price NUMERIC NOT NULL,
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  type TEXT NOT NULL CHECK (type IN ('sale','credit','expense')),
  description TEXT NOT NULL DEFAULT '',
  invoice_ref TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL,
  synced INTEGER NOT NULL DEFAULT 0 CHECK (synced IN (0,1)),
  last_error TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_outbox_synced  ON outbox(synced);
CREATE INDEX IF NOT EXISTS idx_outbox_store   ON outbox(store_id, created_at);

-- Singleton snapshot of the authenticated user (key fixed to 'current').
CREATE TABLE IF NOT EXISTS session_identity(
  key TEXT PRIMARY KEY CHECK (key = 'current'),
  user_id TEXT NOT NULL,
  name TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL DEFAULT '',
  role TEXT NOT NULL DEFAULT '',
  store_id TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  subscription_days_left INTEGER,
  pin_hash TEXT NOT NULL DEFAULT ''
);

-- Singleton snapshot of the caller's store record.
CREATE TABLE IF NOT EXISTS session_store(
  key TEXT PRIMARY KEY CHECK (key = 'current'),
  store_id TEXT NOT NULL,
  store_name TEXT NOT NULL,
  store_address TEXT NOT NULL DEFAULT '',
  store_phone TEXT NOT NULL DEFAULT ''
);

-- Single-writer arbitration for processes sharing one cache file.
CREATE TABLE IF NOT EXISTS sync_lease(
  name TEXT PRIMARY KEY,
  owner TEXT NOT NULL,
  expires_at TEXT NOT NULL
);
`
	_, err := db.Exec(schema)
	return err
}

// storageErr tags a local persistence failure so callers can tell it apart
// from remote failures.
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &domain.StorageError{Op: op, Err: err}
}

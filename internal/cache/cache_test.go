package cache_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"lakupos/internal/cache"
	"lakupos/internal/domain"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := cache.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedProduct(t *testing.T, db *sqlx.DB, id string, stock int) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO products(id, store_id, name, unit_price, stock)
		VALUES(?, 's-1', ?, 1000, ?)
	`, id, "Produk "+id, stock)
	if err != nil {
		t.Fatal(err)
	}
}

func TestOpenDBUnusablePath(t *testing.T) {
	if _, err := cache.OpenDB("/nonexistent-dir/lakupos.db"); err == nil {
		t.Fatal("unusable path must fail to open")
	}
}

func TestProductGetMissingIsNil(t *testing.T) {
	repo := cache.NewProductRepo(memdb(t))
	p, err := repo.Get(context.Background(), "nope")
	if err != nil {
		t.Fatal(err)
	}
	if p != nil {
		t.Fatalf("want nil for missing product, got %+v", p)
	}
}

func TestProductDecrement(t *testing.T) {
	db := memdb(t)
	seedProduct(t, db, "p-1", 5)
	repo := cache.NewProductRepo(db)
	ctx := context.Background()

	if err := repo.Decrement(ctx, "p-1", 3); err != nil {
		t.Fatal(err)
	}
	p, _ := repo.Get(ctx, "p-1")
	if p.Stock != 2 {
		t.Fatalf("want stock 2, got %d", p.Stock)
	}

	err := repo.Decrement(ctx, "p-1", 3)
	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("want InsufficientStockError, got %v", err)
	}
	if stockErr.Available != 2 || stockErr.Requested != 3 {
		t.Fatalf("bad error detail: %+v", stockErr)
	}
	p, _ = repo.Get(ctx, "p-1")
	if p.Stock != 2 {
		t.Fatalf("guarded decrement must not change stock, got %d", p.Stock)
	}
}

func entryAt(ref, createdAt string) *domain.OutboxEntry {
	return &domain.OutboxEntry{
		ClientRef:  ref,
		UserID:     "u-1",
		StoreID:    "s-1",
		ProductID:  "p-1",
		UnitPrice:  1000,
		TotalPrice: 1000,
		Quantity:   1,
		Type:       domain.TypeSale,
		CreatedAt:  createdAt,
	}
}

func TestOutboxPendingFIFO(t *testing.T) {
	db := memdb(t)
	repo := cache.NewOutboxRepo(db)
	ctx := context.Background()

	// Inserted out of chronological order on purpose.
	stamps := []string{
		"2026-08-27T10:00:02.000000000Z",
		"2026-08-27T10:00:00.000000000Z",
		"2026-08-27T10:00:01.000000000Z",
	}
	for i, ts := range stamps {
		if _, err := repo.Append(ctx, entryAt(fmt.Sprintf("ref-%d", i), ts)); err != nil {
			t.Fatal(err)
		}
	}

	pending, err := repo.PendingFIFO(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"ref-1", "ref-2", "ref-0"}
	if len(pending) != 3 {
		t.Fatalf("want 3 pending, got %d", len(pending))
	}
	for i, en := range pending {
		if en.ClientRef != want[i] {
			t.Fatalf("position %d: want %s got %s", i, want[i], en.ClientRef)
		}
	}
}

func TestOutboxMarkSyncedIsOneWay(t *testing.T) {
	db := memdb(t)
	repo := cache.NewOutboxRepo(db)
	ctx := context.Background()

	id, err := repo.Append(ctx, entryAt("ref-1", "2026-08-27T10:00:00Z"))
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.MarkSynced(ctx, id, "tx-1"); err != nil {
		t.Fatal(err)
	}
	if err := repo.MarkSynced(ctx, id, "tx-2"); err == nil {
		t.Fatal("second mark must fail: the flip is one-way")
	}

	var got struct {
		Synced        bool   `db:"synced"`
		TransactionID string `db:"transaction_id"`
	}
	if err := db.Get(&got, `SELECT synced, transaction_id FROM outbox WHERE local_id = ?`, id); err != nil {
		t.Fatal(err)
	}
	if !got.Synced || got.TransactionID != "tx-1" {
		t.Fatalf("first transaction id must stick: %+v", got)
	}

	pending, _ := repo.PendingFIFO(ctx)
	if len(pending) != 0 {
		t.Fatalf("synced entry must leave the pending set, got %d", len(pending))
	}
}

func TestOutboxLastErrorOnlyTouchesPending(t *testing.T) {
	db := memdb(t)
	repo := cache.NewOutboxRepo(db)
	ctx := context.Background()

	id, _ := repo.Append(ctx, entryAt("ref-1", "2026-08-27T10:00:00Z"))
	if err := repo.SetLastError(ctx, id, "stock contention"); err != nil {
		t.Fatal(err)
	}
	pending, _ := repo.PendingFIFO(ctx)
	if pending[0].LastError != "stock contention" {
		t.Fatalf("annotation lost: %+v", pending[0])
	}

	if err := repo.MarkSynced(ctx, id, "tx-1"); err != nil {
		t.Fatal(err)
	}
	// Annotation is cleared on sync and further notes are ignored.
	_ = repo.SetLastError(ctx, id, "late note")
	var lastErr string
	if err := db.Get(&lastErr, `SELECT last_error FROM outbox WHERE local_id = ?`, id); err != nil {
		t.Fatal(err)
	}
	if lastErr != "" {
		t.Fatalf("synced entry must keep a clean annotation, got %q", lastErr)
	}
}

func TestOutboxRecentByStore(t *testing.T) {
	db := memdb(t)
	repo := cache.NewOutboxRepo(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		ts := fmt.Sprintf("2026-08-27T10:00:0%d.000000000Z", i)
		if _, err := repo.Append(ctx, entryAt(fmt.Sprintf("ref-%d", i), ts)); err != nil {
			t.Fatal(err)
		}
	}

	recent, err := repo.RecentByStore(ctx, "s-1", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 {
		t.Fatalf("limit not honored, got %d", len(recent))
	}
	if recent[0].ClientRef != "ref-4" || recent[1].ClientRef != "ref-3" {
		t.Fatalf("want newest first, got %s %s", recent[0].ClientRef, recent[1].ClientRef)
	}
}

func snapshot(products ...domain.Product) cache.Snapshot {
	return cache.Snapshot{
		Identity: domain.Identity{UserID: "u-1", Email: "a@b.c", Role: "owner", StoreID: "s-1", IsActive: true},
		Store:    domain.Store{StoreID: "s-1", Name: "Warung"},
		Products: products,
	}
}

func TestSessionEmptyCacheIsNil(t *testing.T) {
	repo := cache.NewSessionRepo(memdb(t))
	ctx := context.Background()

	id, err := repo.Identity(ctx)
	if err != nil || id != nil {
		t.Fatalf("want (nil, nil), got (%+v, %v)", id, err)
	}
	st, err := repo.Store(ctx)
	if err != nil || st != nil {
		t.Fatalf("want (nil, nil), got (%+v, %v)", st, err)
	}
}

func TestSessionSnapshotReplacesCatalog(t *testing.T) {
	db := memdb(t)
	seedProduct(t, db, "stale", 9)
	repo := cache.NewSessionRepo(db)
	ctx := context.Background()

	snap := snapshot(
		domain.Product{ID: "p-1", StoreID: "s-1", Name: "Kopi", UnitPrice: 1500, Stock: 3},
	)
	if err := repo.ApplySnapshot(ctx, snap); err != nil {
		t.Fatal(err)
	}

	products, err := cache.NewProductRepo(db).ListByStore(ctx, "s-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(products) != 1 || products[0].ID != "p-1" {
		t.Fatalf("stale rows must be gone: %+v", products)
	}

	id, _ := repo.Identity(ctx)
	if id == nil || id.UserID != "u-1" {
		t.Fatalf("identity not stored: %+v", id)
	}
	st, _ := repo.Store(ctx)
	if st == nil || st.Name != "Warung" {
		t.Fatalf("store not stored: %+v", st)
	}
}

func TestSessionPINSurvivesRefresh(t *testing.T) {
	db := memdb(t)
	repo := cache.NewSessionRepo(db)
	ctx := context.Background()

	// No identity yet: setting a PIN fails closed.
	if err := repo.SetPINHash(ctx, "h1"); !errors.Is(err, domain.ErrIdentityUnavailable) {
		t.Fatalf("want ErrIdentityUnavailable, got %v", err)
	}

	if err := repo.ApplySnapshot(ctx, snapshot()); err != nil {
		t.Fatal(err)
	}
	if err := repo.SetPINHash(ctx, "h1"); err != nil {
		t.Fatal(err)
	}

	// A later refresh must not wipe the stored hash.
	if err := repo.ApplySnapshot(ctx, snapshot()); err != nil {
		t.Fatal(err)
	}
	id, _ := repo.Identity(ctx)
	if id.PINHash != "h1" {
		t.Fatalf("pin hash lost across refresh: %q", id.PINHash)
	}
}

func TestLeaseAcquireReleaseExpiry(t *testing.T) {
	db := memdb(t)
	repo := cache.NewLeaseRepo(db)
	ctx := context.Background()

	ok, err := repo.Acquire(ctx, "full-sync", "a", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}

	// A live lease blocks other owners but renews for its holder.
	ok, err = repo.Acquire(ctx, "full-sync", "b", time.Minute)
	if err != nil || ok {
		t.Fatalf("foreign acquire must fail: ok=%v err=%v", ok, err)
	}
	ok, err = repo.Acquire(ctx, "full-sync", "a", time.Minute)
	if err != nil || !ok {
		t.Fatalf("renewal must succeed: ok=%v err=%v", ok, err)
	}

	if err := repo.Release(ctx, "full-sync", "a"); err != nil {
		t.Fatal(err)
	}
	ok, err = repo.Acquire(ctx, "full-sync", "b", 10*time.Millisecond)
	if err != nil || !ok {
		t.Fatalf("acquire after release: ok=%v err=%v", ok, err)
	}

	// An expired lease is taken over.
	time.Sleep(20 * time.Millisecond)
	ok, err = repo.Acquire(ctx, "full-sync", "c", time.Minute)
	if err != nil || !ok {
		t.Fatalf("stale takeover must succeed: ok=%v err=%v", ok, err)
	}
}

func TestLeaseNamesAreIndependent(t *testing.T) {
	db := memdb(t)
	repo := cache.NewLeaseRepo(db)
	ctx := context.Background()

	if ok, _ := repo.Acquire(ctx, "full-sync", "a", time.Minute); !ok {
		t.Fatal("acquire full-sync")
	}
	if ok, _ := repo.Acquire(ctx, "compaction", "b", time.Minute); !ok {
		t.Fatal("a different lease name must be free")
	}
}

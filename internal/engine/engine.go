// Package engine is the offline-first synchronization core: the dual-path
// write router, the outbox uploader, the catalog/session refresher and the
// orchestrator that sequences them over the durable local cache.
package engine

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"lakupos/internal/cache"
	"lakupos/internal/domain"
	"lakupos/internal/remote"
)

const defaultLeaseTTL = 2 * time.Minute

// Options tunes an Engine.
type Options struct {
	// LeaseTTL bounds how long a crashed sync holder can block others
	// sharing the same cache file.
	LeaseTTL time.Duration
}

// Engine routes writes between the remote store and the local outbox and
// reconciles the two. One Engine per process; overlapping full syncs are
// collapsed by a single-flight group and a cache lease.
type Engine struct {
	products *cache.ProductRepo
	outbox   *cache.OutboxRepo
	session  *cache.SessionRepo
	lease    *cache.LeaseRepo

	remote remote.Store
	oracle remote.Oracle

	log      *zap.Logger
	validate *validator.Validate
	sync     singleflight.Group
	leaseTTL time.Duration
	owner    string
	now      func() time.Time
}

// New wires an Engine over an opened cache database.
func New(db *sqlx.DB, rs remote.Store, oracle remote.Oracle, logger *zap.Logger, opts Options) *Engine {
	ttl := opts.LeaseTTL
	if ttl <= 0 {
		ttl = defaultLeaseTTL
	}
	return &Engine{
		products: cache.NewProductRepo(db),
		outbox:   cache.NewOutboxRepo(db),
		session:  cache.NewSessionRepo(db),
		lease:    cache.NewLeaseRepo(db),
		remote:   rs,
		oracle:   oracle,
		log:      logger,
		validate: validator.New(),
		leaseTTL: ttl,
		owner:    uuid.NewString(),
		now:      time.Now,
	}
}

// CachedProducts returns the cached catalog for a store.
func (e *Engine) CachedProducts(ctx context.Context, storeID string) ([]domain.Product, error) {
	return e.products.ListByStore(ctx, storeID)
}

// CachedIdentity returns the cached identity snapshot, nil when absent.
func (e *Engine) CachedIdentity(ctx context.Context) (*domain.Identity, error) {
	return e.session.Identity(ctx)
}

// CachedStore returns the cached store snapshot, nil when absent.
func (e *Engine) CachedStore(ctx context.Context) (*domain.Store, error) {
	return e.session.Store(ctx)
}

// PendingOutbox lists a store's queued, not-yet-committed entries.
func (e *Engine) PendingOutbox(ctx context.Context, storeID string) ([]domain.OutboxEntry, error) {
	return e.outbox.PendingByStore(ctx, storeID)
}

// RecentOutbox lists a store's newest ledger entries.
func (e *Engine) RecentOutbox(ctx context.Context, storeID string, limit int) ([]domain.OutboxEntry, error) {
	return e.outbox.RecentByStore(ctx, storeID, limit)
}

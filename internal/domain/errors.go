package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrIdentityUnavailable means the engine is offline with no cached
	// identity; no command can be processed (fails closed).
	ErrIdentityUnavailable = errors.New("offline and no cached identity")
	// ErrUnauthenticated means the remote store has no current identity.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrProfileNotFound is a refresh failure: no profile for the identity.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrStoreNotFound is a refresh failure: no store record.
	ErrStoreNotFound = errors.New("store not found")
	// ErrCatalogFetch is a refresh failure: product catalog unavailable.
	ErrCatalogFetch = errors.New("catalog fetch failed")
	// ErrNoPIN means no offline unlock PIN has been set.
	ErrNoPIN = errors.New("no offline pin set")
)

// InsufficientStockError is an expected business condition: the requested
// quantity exceeds the available stock. It is always surfaced and never
// retried automatically.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (need %d, have %d)", e.ProductID, e.Requested, e.Available)
}

// StorageError is a local persistence failure. Fatal to the current
// operation; callers must not swallow it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage: %s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

// RemoteError is a network/backend failure. Recoverable: queued entries
// stay pending and are retried on the next drain.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string { return fmt.Sprintf("remote: %s: %v", e.Op, e.Err) }
func (e *RemoteError) Unwrap() error { return e.Err }

package engine

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"lakupos/internal/domain"
)

// resolveSession produces the acting user/store pair for one write: the
// remote identity when online, the cached identity when offline. Offline
// with nothing cached fails closed.
func (e *Engine) resolveSession(ctx context.Context, online bool) (domain.SessionContext, error) {
	if online {
		id, err := e.remote.CurrentIdentity(ctx)
		if err != nil {
			return domain.SessionContext{}, err
		}
		if id == nil {
			return domain.SessionContext{}, domain.ErrUnauthenticated
		}
		return domain.SessionContext{UserID: id.UserID, StoreID: id.StoreID}, nil
	}

	cached, err := e.session.Identity(ctx)
	if err != nil {
		return domain.SessionContext{}, err
	}
	if cached == nil {
		return domain.SessionContext{}, domain.ErrIdentityUnavailable
	}
	return domain.SessionContext{UserID: cached.UserID, StoreID: cached.StoreID}, nil
}

// Session resolves the current session context using the live
// connectivity answer.
func (e *Engine) Session(ctx context.Context) (domain.SessionContext, error) {
	return e.resolveSession(ctx, e.oracle.Online(ctx))
}

// SetOfflinePIN hashes and stores a device unlock PIN on the cached
// identity, letting the surrounding app gate offline use without the
// remote.
func (e *Engine) SetOfflinePIN(ctx context.Context, pin string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return e.session.SetPINHash(ctx, string(hash))
}

// VerifyOfflinePIN checks a PIN against the stored hash. Fails closed when
// no identity or no PIN is cached.
func (e *Engine) VerifyOfflinePIN(ctx context.Context, pin string) (bool, error) {
	id, err := e.session.Identity(ctx)
	if err != nil {
		return false, err
	}
	if id == nil {
		return false, domain.ErrIdentityUnavailable
	}
	if id.PINHash == "" {
		return false, domain.ErrNoPIN
	}
	return bcrypt.CompareHashAndPassword([]byte(id.PINHash), []byte(pin)) == nil, nil
}

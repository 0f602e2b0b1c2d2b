package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"lakupos/internal/cache"
	"lakupos/internal/domain"
)

// RefreshFromRemote pulls the authoritative identity, store record and
// product catalog and applies them to the local cache as one transaction.
// On any failure the cache is left exactly as it was.
func (e *Engine) RefreshFromRemote(ctx context.Context) error {
	id, err := e.remote.CurrentIdentity(ctx)
	if err != nil {
		return err
	}
	if id == nil {
		return domain.ErrUnauthenticated
	}

	prof, err := e.remote.Profile(ctx, id.UserID)
	if err != nil {
		return err
	}
	if prof == nil {
		return fmt.Errorf("%w: user %s", domain.ErrProfileNotFound, id.UserID)
	}

	st, err := e.remote.StoreInfo(ctx, prof.StoreID)
	if err != nil {
		return err
	}
	if st == nil {
		return fmt.Errorf("%w: store %s", domain.ErrStoreNotFound, prof.StoreID)
	}

	products, err := e.remote.ListProducts(ctx, prof.StoreID)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCatalogFetch, err)
	}

	var daysLeft *int
	end, err := e.remote.SubscriptionEndDate(ctx, prof.StoreID)
	if err != nil {
		return err
	}
	if end != nil {
		d := int(end.Sub(e.now()).Hours() / 24)
		daysLeft = &d
	}

	snap := cache.Snapshot{
		Identity: domain.Identity{
			UserID:               id.UserID,
			Name:                 prof.Name,
			Email:                prof.Email,
			Role:                 prof.Role,
			StoreID:              prof.StoreID,
			IsActive:             prof.IsActive,
			SubscriptionDaysLeft: daysLeft,
		},
		Store: domain.Store{
			StoreID:     prof.StoreID,
			Name:        st.StoreName,
			Address:     st.StoreAddress,
			PhoneNumber: st.StorePhoneNumber,
		},
		Products: products,
	}
	if err := e.session.ApplySnapshot(ctx, snap); err != nil {
		return err
	}

	e.log.Info("cache refreshed",
		zap.String("user_id", id.UserID),
		zap.String("store_id", prof.StoreID),
		zap.Int("products", len(products)))
	return nil
}

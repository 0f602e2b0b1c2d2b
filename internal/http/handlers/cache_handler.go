package handlers

import (
	"github.com/gofiber/fiber/v2"

	"lakupos/internal/engine"
	"lakupos/internal/validate"
)

// CacheHandler serves read-only views over the local cache, so the
// surrounding application renders from cached data whether online or not.
type CacheHandler struct {
	Engine *engine.Engine
}

// storeID resolves the store scope for a read: explicit query param, else
// the cached identity's store.
func (h *CacheHandler) storeID(c *fiber.Ctx) (string, error) {
	if raw := c.Query("store_id"); raw != "" {
		id, ok := validate.ID(raw)
		if !ok {
			return "", fiber.NewError(fiber.StatusBadRequest, "invalid store_id")
		}
		return id, nil
	}
	cached, err := h.Engine.CachedIdentity(c.UserContext())
	if err != nil {
		return "", err
	}
	if cached == nil {
		return "", fiber.NewError(fiber.StatusNotFound, "no cached identity")
	}
	return cached.StoreID, nil
}

func (h *CacheHandler) Products(c *fiber.Ctx) error {
	storeID, err := h.storeID(c)
	if err != nil {
		return err
	}
	products, err := h.Engine.CachedProducts(c.UserContext(), storeID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"store_id": storeID, "products": products})
}

func (h *CacheHandler) Session(c *fiber.Ctx) error {
	identity, err := h.Engine.CachedIdentity(c.UserContext())
	if err != nil {
		return respondErr(c, err)
	}
	store, err := h.Engine.CachedStore(c.UserContext())
	if err != nil {
		return respondErr(c, err)
	}
	if identity == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no cached session"})
	}
	return c.JSON(fiber.Map{"identity": identity, "store": store})
}

func (h *CacheHandler) OutboxPending(c *fiber.Ctx) error {
	storeID, err := h.storeID(c)
	if err != nil {
		return err
	}
	entries, err := h.Engine.PendingOutbox(c.UserContext(), storeID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"store_id": storeID, "entries": entries})
}

func (h *CacheHandler) OutboxRecent(c *fiber.Ctx) error {
	storeID, err := h.storeID(c)
	if err != nil {
		return err
	}
	limit := validate.Limit(c.Query("limit"), 20, 200)
	entries, err := h.Engine.RecentOutbox(c.UserContext(), storeID, limit)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"store_id": storeID, "entries": entries})
}

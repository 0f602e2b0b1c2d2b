package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"lakupos/internal/domain"
)

// respondErr translates the engine error taxonomy to HTTP statuses. The
// caller must distinguish committed / queued / rejected, so business
// conditions keep their detail.
func respondErr(c *fiber.Ctx, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": verrs.Error()})
	}

	var stock *domain.InsufficientStockError
	if errors.As(err, &stock) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":      "insufficient stock",
			"product_id": stock.ProductID,
			"requested":  stock.Requested,
			"available":  stock.Available,
		})
	}

	switch {
	case errors.Is(err, domain.ErrIdentityUnavailable),
		errors.Is(err, domain.ErrUnauthenticated):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrNoPIN):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}

	var re *domain.RemoteError
	if errors.As(err, &re) {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "remote store unavailable"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"lakupos/internal/domain"
	"lakupos/internal/engine"
)

type TransactionHandler struct {
	Engine *engine.Engine
	Log    *zap.Logger
}

// Record accepts one transaction command. The response carries the
// durability level: committed remotely, or queued locally for later upload.
func (h *TransactionHandler) Record(c *fiber.Ctx) error {
	var cmd domain.TransactionCommand
	if err := c.BodyParser(&cmd); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}

	out, err := h.Engine.RecordTransaction(c.UserContext(), cmd)
	if err != nil {
		h.Log.Warn("record transaction rejected", zap.Error(err))
		return respondErr(c, err)
	}

	status := fiber.StatusCreated
	if out.State == domain.WriteQueued {
		// 202: durable locally, not yet remote-committed.
		status = fiber.StatusAccepted
	}
	return c.Status(status).JSON(out)
}

// RecordInvoice fans an invoice's lines out to individual transactions
// sharing one invoice reference. The status carries the same durability
// distinction as Record: 201 when lines committed remotely, 202 when they
// were only queued, 422 when every line was rejected.
func (h *TransactionHandler) RecordInvoice(c *fiber.Ctx) error {
	var cmd domain.InvoiceCommand
	if err := c.BodyParser(&cmd); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}

	out, err := h.Engine.RecordInvoice(c.UserContext(), cmd)
	if err != nil {
		h.Log.Warn("record invoice rejected", zap.Error(err))
		return respondErr(c, err)
	}

	status := fiber.StatusUnprocessableEntity
	for _, ln := range out.Lines {
		if ln.Error != "" {
			continue
		}
		if ln.Outcome.State == domain.WriteQueued {
			status = fiber.StatusAccepted
			break
		}
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(out)
}

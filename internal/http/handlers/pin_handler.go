package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"lakupos/internal/engine"
	"lakupos/internal/validate"
)

// PINHandler manages the offline unlock PIN on the cached identity.
type PINHandler struct {
	Engine *engine.Engine
	Log    *zap.Logger
}

type pinBody struct {
	PIN string `json:"pin"`
}

func (h *PINHandler) Set(c *fiber.Ctx) error {
	var body pinBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}
	if !validate.PIN(body.PIN) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "pin must be 4-8 digits"})
	}
	if err := h.Engine.SetOfflinePIN(c.UserContext(), body.PIN); err != nil {
		h.Log.Warn("set pin failed", zap.Error(err))
		return respondErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *PINHandler) Verify(c *fiber.Ctx) error {
	var body pinBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}
	ok, err := h.Engine.VerifyOfflinePIN(c.UserContext(), body.PIN)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"valid": ok})
}

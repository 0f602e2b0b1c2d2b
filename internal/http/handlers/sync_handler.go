package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"lakupos/internal/engine"
)

type SyncHandler struct {
	Engine *engine.Engine
	Log    *zap.Logger
}

// Run triggers a full sync: outbox drain, then cache refresh. Always 200;
// the report carries the outcome so callers can schedule retries.
func (h *SyncHandler) Run(c *fiber.Ctx) error {
	report := h.Engine.FullSync(c.UserContext())
	if !report.Success {
		h.Log.Warn("full sync incomplete", zap.String("reason", report.Reason))
	}
	return c.JSON(report)
}

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"lakupos/internal/engine"
)

// Deps bundles the handlers over one engine instance.
type Deps struct {
	TransactionHandler *TransactionHandler
	SyncHandler        *SyncHandler
	CacheHandler       *CacheHandler
	PINHandler         *PINHandler
}

func NewDeps(eng *engine.Engine, logger *zap.Logger) *Deps {
	return &Deps{
		TransactionHandler: &TransactionHandler{Engine: eng, Log: logger},
		SyncHandler:        &SyncHandler{Engine: eng, Log: logger},
		CacheHandler:       &CacheHandler{Engine: eng},
		PINHandler:         &PINHandler{Engine: eng, Log: logger},
	}
}

// Register mounts the JSON API.
func Register(app *fiber.App, deps *Deps) {
	api := app.Group("/api/v1")

	api.Post("/transactions", deps.TransactionHandler.Record)
	api.Post("/invoices", deps.TransactionHandler.RecordInvoice)
	api.Post("/sync", deps.SyncHandler.Run)

	api.Get("/products", deps.CacheHandler.Products)
	api.Get("/session", deps.CacheHandler.Session)
	api.Get("/outbox/pending", deps.CacheHandler.OutboxPending)
	api.Get("/outbox/recent", deps.CacheHandler.OutboxRecent)

	api.Post("/pin", deps.PINHandler.Set)
	api.Post("/pin/verify", deps.PINHandler.Verify)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
}

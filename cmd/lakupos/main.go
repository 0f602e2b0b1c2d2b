package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"lakupos/internal/cache"
	"lakupos/internal/config"
	"lakupos/internal/engine"
	"lakupos/internal/http/handlers"
	applog "lakupos/internal/log"
	"lakupos/internal/remote"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := applog.New(applog.Config{
		Level:       cfg.LogLevel,
		Encoding:    cfg.LogEncoding,
		Development: cfg.Development,
	})
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	db, err := cache.OpenDB(cfg.CacheDSN)
	if err != nil {
		logger.Fatal("open cache", zap.Error(err))
	}
	defer db.Close()
	logger.Info("cache opened", zap.String("dsn", cfg.CacheDSN))

	store := remote.NewHTTPStore(cfg.RemoteBaseURL, cfg.RemoteAPIKey, cfg.RemoteTimeout)
	probe := remote.NewProbe(cfg.ProbeURL)

	eng := engine.New(db, store, probe, logger, engine.Options{LeaseTTL: cfg.SyncLeaseTTL})

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				code = fe.Code
				return c.Status(code).JSON(fiber.Map{"error": fe.Message})
			}
			logger.Error("unhandled error", zap.Error(err))
			return c.Status(code).JSON(fiber.Map{"error": "internal error"})
		},
	})
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	app.Use(requestid.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
	}))

	handlers.Register(app, handlers.NewDeps(eng, logger))

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Fatal("listen", zap.Error(err))
		}
	}()
	logger.Info("listening", zap.String("port", cfg.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	if err := app.Shutdown(); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

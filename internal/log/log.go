// Package log builds the process-wide structured logger.
package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls level, output encoding and development niceties.
type Config struct {
	Level       string
	Encoding    string // "json" or "console"
	Development bool
}

// New constructs a zap logger. Unknown levels fall back to info rather than
// failing startup.
func New(cfg Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if l, err := zapcore.ParseLevel(cfg.Level); err == nil {
		level = l
	}

	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	if cfg.Encoding != "" {
		zc.Encoding = cfg.Encoding
	}
	zc.DisableStacktrace = true

	return zc.Build()
}

package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the process configuration, loaded from the environment after an
// optional .env file.
type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	CacheDSN string `envconfig:"CACHE_DSN" default:"lakupos.db"`

	RemoteBaseURL string        `envconfig:"REMOTE_BASE_URL" default:"http://localhost:9000"`
	RemoteAPIKey  string        `envconfig:"REMOTE_API_KEY"`
	RemoteTimeout time.Duration `envconfig:"REMOTE_TIMEOUT" default:"10s"`

	// ProbeURL is the connectivity health endpoint; empty means
	// RemoteBaseURL + /healthz.
	ProbeURL     string        `envconfig:"PROBE_URL"`
	SyncLeaseTTL time.Duration `envconfig:"SYNC_LEASE_TTL" default:"2m"`

	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`
	Development bool   `envconfig:"DEVELOPMENT" default:"false"`
}

// Load reads the environment into a Config.
func Load() (Config, error) {
	_ = godotenv.Load() // .env is optional

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	if cfg.ProbeURL == "" {
		cfg.ProbeURL = cfg.RemoteBaseURL + "/healthz"
	}
	return cfg, nil
}

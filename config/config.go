// Package config loads runtime configuration for the fxpulse daemon from
// environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the daemon configuration.
type Config struct {
	// ListenAddr is the HTTP listen address for the lookup and metrics
	// endpoints.
	ListenAddr string `env:"FXPULSE_LISTEN_ADDR" envDefault:":8080"`

	// Pair is the tracked currency pair, e.g. "USD/EUR".
	Pair string `env:"FXPULSE_PAIR" envDefault:"USD/EUR"`

	// SourceURL is the remote JSON rate endpoint.
	SourceURL string `env:"FXPULSE_SOURCE_URL,required"`

	// FetchTimeout bounds a single remote fetch attempt.
	FetchTimeout time.Duration `env:"FXPULSE_FETCH_TIMEOUT" envDefault:"10s"`

	// RedisAddr is the synced tier address. Empty disables the synced tier.
	RedisAddr     string `env:"FXPULSE_REDIS_ADDR"`
	RedisPassword string `env:"FXPULSE_REDIS_PASSWORD"`
	RedisDB       int    `env:"FXPULSE_REDIS_DB" envDefault:"0"`

	// SQLitePath is the local tier database file. Empty disables the local
	// tier.
	SQLitePath string `env:"FXPULSE_SQLITE_PATH" envDefault:"fxpulse.db"`

	// MemoryMaxEntries bounds the in-process tier.
	MemoryMaxEntries int64 `env:"FXPULSE_MEMORY_MAX_ENTRIES" envDefault:"1024"`

	// ProbeAddr is dialled to detect connectivity. Empty assumes online.
	ProbeAddr string `env:"FXPULSE_PROBE_ADDR"`

	LogLevel  string `env:"FXPULSE_LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"FXPULSE_LOG_PRETTY" envDefault:"false"`

	// TraceStdout enables the stdout trace exporter (for local debugging).
	TraceStdout bool `env:"FXPULSE_TRACE_STDOUT" envDefault:"false"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

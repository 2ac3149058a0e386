// Package config loads rokt's startup configuration: a JSON file on disk
// (§6) overridden by a small set of ROKT_* environment variables.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/cuemby/rokt/pkg/log"
)

// Encryption holds the AES-128-CTR passphrase and IV (§4.1, §6).
type Encryption struct {
	Passphrase string `json:"passphrase"`
	IV         string `json:"iv"`
}

// Network holds the TCP listener's port and accept backlog.
type Network struct {
	Port    int `json:"port"`
	Backlog int `json:"backlog"`
}

// Thread holds the request pipeline's worker pool and queue sizing (C8).
type Thread struct {
	MaxWorkers       int `json:"maxWorkers"`
	MaxTaskQueueSize int `json:"maxTaskQueueSize"`
}

// Metrics holds the loopback-only Prometheus endpoint's port (D1). It has
// no counterpart in spec.md's configuration schema — SPEC_FULL.md §6
// adds it as the ambient observability surface, deliberately never
// multiplexed onto the client-facing TCP protocol.
type Metrics struct {
	Port int `json:"port"`
}

// Config is the top-level shape of config.json (§6).
type Config struct {
	Encryption Encryption `json:"encryption"`
	Network    Network    `json:"network"`
	Thread     Thread     `json:"thread"`
	Metrics    Metrics    `json:"metrics"`
}

const (
	defaultPort            = 8080
	defaultBacklog         = 10
	defaultMaxWorkers      = 8
	defaultMaxTaskQueueSize = 100
	defaultMetricsPort     = 9090
	hardMaxWorkers         = 64
)

// Load reads path, applies defaults for absent fields, then applies the
// ROKT_PORT / ROKT_MAX_WORKERS / ROKT_MAX_TASK_QUEUE_SIZE environment
// overrides (§6). An invalid environment override is logged and ignored
// rather than failing startup; a malformed or unreadable config file
// fails startup (exit code 1, §6 CLI surface).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	applyDefaults(&cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Network.Port == 0 {
		cfg.Network.Port = defaultPort
	}
	if cfg.Network.Backlog == 0 {
		cfg.Network.Backlog = defaultBacklog
	}
	if cfg.Thread.MaxWorkers == 0 {
		cfg.Thread.MaxWorkers = defaultMaxWorkers
	}
	if cfg.Thread.MaxTaskQueueSize == 0 {
		cfg.Thread.MaxTaskQueueSize = defaultMaxTaskQueueSize
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = defaultMetricsPort
	}
	if cfg.Thread.MaxWorkers > hardMaxWorkers {
		cfg.Thread.MaxWorkers = hardMaxWorkers
	}
}

func (cfg *Config) validate() error {
	if len(cfg.Encryption.Passphrase) == 0 {
		return fmt.Errorf("config: encryption.passphrase must not be empty")
	}
	if len(cfg.Encryption.IV) != 16 {
		return fmt.Errorf("config: encryption.iv must be exactly 16 characters, got %d", len(cfg.Encryption.IV))
	}
	if cfg.Network.Port < 1 || cfg.Network.Port > 65535 {
		return fmt.Errorf("config: network.port must be in 1..65535, got %d", cfg.Network.Port)
	}
	if cfg.Thread.MaxWorkers <= 0 {
		return fmt.Errorf("config: thread.maxWorkers must be > 0")
	}
	if cfg.Thread.MaxTaskQueueSize <= 0 {
		return fmt.Errorf("config: thread.maxTaskQueueSize must be > 0")
	}
	return nil
}

// applyEnvOverrides applies ROKT_PORT / ROKT_MAX_WORKERS /
// ROKT_MAX_TASK_QUEUE_SIZE on top of an already-validated config. Each is
// parsed, range-checked the same way the file value was, and logged
// (never silently dropped, per SPEC_FULL.md §6) on failure.
func applyEnvOverrides(cfg *Config) {
	logger := log.Component("config").Logger()

	if v, ok := os.LookupEnv("ROKT_PORT"); ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 65535 {
			cfg.Network.Port = n
		} else {
			logger.Warn().Str("ROKT_PORT", v).Msg("invalid port override, ignoring")
		}
	}
	if v, ok := os.LookupEnv("ROKT_MAX_WORKERS"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			if n > hardMaxWorkers {
				n = hardMaxWorkers
			}
			cfg.Thread.MaxWorkers = n
		} else {
			logger.Warn().Str("ROKT_MAX_WORKERS", v).Msg("invalid worker count override, ignoring")
		}
	}
	if v, ok := os.LookupEnv("ROKT_MAX_TASK_QUEUE_SIZE"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Thread.MaxTaskQueueSize = n
		} else {
			logger.Warn().Str("ROKT_MAX_TASK_QUEUE_SIZE", v).Msg("invalid queue size override, ignoring")
		}
	}
}

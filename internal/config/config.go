package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds server configuration.
type Config struct {
	// Addr is the listen address for the HTTP server.
	Addr string
	// DatabasePath is the SQLite database location.
	DatabasePath string
	// MasterSecret seeds the token signing/verification key.
	MasterSecret string
	// RedisAddr is the shared-store address backing the expiry registry.
	// Empty selects the in-process registry (single-node deployments).
	RedisAddr string
	Debug     bool
	// AllowedOrigins is the CORS allow list.
	AllowedOrigins []string
	// SweepInterval is how often the expiry sweep runs per namespace.
	SweepInterval time.Duration
	// EvictionMargin is subtracted from each credential expiry so sessions
	// are demoted slightly before the token actually lapses.
	EvictionMargin time.Duration
}

// Overrides optionally overrides values from environment variables.
//
// A nil pointer means "use the environment/default value".
type Overrides struct {
	Addr           *string
	DatabasePath   *string
	MasterSecret   *string
	RedisAddr      *string
	Debug          *bool
	SweepInterval  *time.Duration
	EvictionMargin *time.Duration
}

// Load loads server configuration from environment variables and applies any
// explicit overrides.
func Load(overrides Overrides) (*Config, error) {
	port := 3005
	if portStr := os.Getenv("PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			port = p
		}
	}

	addr := fmt.Sprintf(":%d", port)
	if overrides.Addr != nil {
		addr = *overrides.Addr
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "./parley.db"
	}
	if overrides.DatabasePath != nil {
		dbPath = *overrides.DatabasePath
	}

	masterSecret := os.Getenv("PARLEY_MASTER_SECRET")
	if overrides.MasterSecret != nil {
		masterSecret = *overrides.MasterSecret
	}
	if masterSecret == "" {
		return nil, fmt.Errorf("PARLEY_MASTER_SECRET environment variable is required")
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if overrides.RedisAddr != nil {
		redisAddr = *overrides.RedisAddr
	}

	debug := false
	if debugStr := os.Getenv("DEBUG"); debugStr == "true" || debugStr == "1" {
		debug = true
	}
	if overrides.Debug != nil {
		debug = *overrides.Debug
	}

	sweepInterval := 30 * time.Second
	if raw := os.Getenv("SWEEP_INTERVAL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			sweepInterval = d
		}
	}
	if overrides.SweepInterval != nil {
		sweepInterval = *overrides.SweepInterval
	}

	evictionMargin := 10 * time.Second
	if raw := os.Getenv("EVICTION_MARGIN"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d >= 0 {
			evictionMargin = d
		}
	}
	if overrides.EvictionMargin != nil {
		evictionMargin = *overrides.EvictionMargin
	}

	return &Config{
		Addr:           addr,
		DatabasePath:   dbPath,
		MasterSecret:   masterSecret,
		RedisAddr:      redisAddr,
		Debug:          debug,
		AllowedOrigins: []string{"*"}, // For self-hosted, allow all origins
		SweepInterval:  sweepInterval,
		EvictionMargin: evictionMargin,
	}, nil
}

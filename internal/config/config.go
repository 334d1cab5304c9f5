// Package config reads process configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Token modes accepted by TOKEN_MODE.
const (
	TokenModeMock = "mock"
	TokenModeJWT  = "jwt"
)

// Config holds every setting of the server and the CLI.
type Config struct {
	Port string

	// StoreDriver selects the Record Store behind the mock backend.
	StoreDriver  string
	DatabasePath string
	RedisURL     string
	RedisPrefix  string

	// MockAPI selects the in-process mock backend. When false, APIBaseURL
	// points at a real server.
	MockAPI     bool
	APIBaseURL  string
	APITimeout  time.Duration
	MockLatency time.Duration

	TokenMode  string
	JWTSecret  string
	BcryptCost int
	SeedDemo   bool

	// SessionStorePath is the SQLite file holding the CLI's persisted session.
	SessionStorePath string

	// AuthRatePerMinute and AuthBurst limit POST /auth/* per client IP.
	AuthRatePerMinute int
	AuthBurst         int
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads the configuration through getenv.
func LoadFrom(getenv func(string) string) (Config, error) {
	env := func(key, defaultVal string) string {
		if val := strings.TrimSpace(getenv(key)); val != "" {
			return val
		}
		return defaultVal
	}

	cfg := Config{
		Port:             env("PORT", "3000"),
		StoreDriver:      strings.ToLower(env("STORE_DRIVER", DriverSQLite)),
		DatabasePath:     env("DATABASE_PATH", "taskboard.db"),
		RedisURL:         env("REDIS_URL", "redis://localhost:6379/0"),
		RedisPrefix:      env("REDIS_PREFIX", "taskboard:"),
		APIBaseURL:       env("API_BASE_URL", "http://localhost:3000"),
		TokenMode:        strings.ToLower(env("TOKEN_MODE", TokenModeMock)),
		JWTSecret:        getenv("JWT_SECRET"),
		SessionStorePath: env("SESSION_STORE_PATH", "taskctl-session.db"),
	}

	switch cfg.StoreDriver {
	case DriverSQLite, DriverRedis, DriverMemory:
	default:
		return Config{}, fmt.Errorf("STORE_DRIVER must be one of sqlite, redis, memory: got %q", cfg.StoreDriver)
	}

	switch cfg.TokenMode {
	case TokenModeMock:
	case TokenModeJWT:
		if len(cfg.JWTSecret) < 32 {
			return Config{}, fmt.Errorf("JWT_SECRET must be at least 32 characters when TOKEN_MODE=jwt")
		}
	default:
		return Config{}, fmt.Errorf("TOKEN_MODE must be mock or jwt: got %q", cfg.TokenMode)
	}

	var err error
	if cfg.MockAPI, err = parseBool(env("MOCK_API", "true"), "MOCK_API"); err != nil {
		return Config{}, err
	}
	if cfg.SeedDemo, err = parseBool(env("SEED_DEMO_DATA", "true"), "SEED_DEMO_DATA"); err != nil {
		return Config{}, err
	}
	if cfg.APITimeout, err = parseDuration(env("API_TIMEOUT", "10s"), "API_TIMEOUT", time.Millisecond, 5*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.MockLatency, err = parseDuration(env("MOCK_LATENCY", "500ms"), "MOCK_LATENCY", 0, time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.BcryptCost, err = parseInt(env("BCRYPT_COST", "12"), "BCRYPT_COST", 4, 14); err != nil {
		return Config{}, err
	}
	if cfg.AuthRatePerMinute, err = parseInt(env("AUTH_RATE_PER_MINUTE", "10"), "AUTH_RATE_PER_MINUTE", 1, 10000); err != nil {
		return Config{}, err
	}
	if cfg.AuthBurst, err = parseInt(env("AUTH_BURST", "5"), "AUTH_BURST", 1, 10000); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Addr is the listen address of the server.
func (c Config) Addr() string {
	return ":" + c.Port
}

func parseBool(raw, key string) (bool, error) {
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseInt(raw, key string, lo, hi int) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("%s must be between %d and %d: got %d", key, lo, hi, v)
	}
	return v, nil
}

func parseDuration(raw, key string, lo, hi time.Duration) (time.Duration, error) {
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("%s must be between %s and %s: got %s", key, lo, hi, v)
	}
	return v, nil
}

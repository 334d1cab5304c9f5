// Package app wires configuration into stores, backends and containers.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/msomdec/taskboard/internal/apiclient"
	"github.com/msomdec/taskboard/internal/config"
	"github.com/msomdec/taskboard/internal/domain"
	"github.com/msomdec/taskboard/internal/repository/memory"
	"github.com/msomdec/taskboard/internal/repository/redisstore"
	"github.com/msomdec/taskboard/internal/repository/sqlite"
	"github.com/msomdec/taskboard/internal/service"
)

// Store is a Record Store together with the function that releases it.
type Store struct {
	domain.RecordStore
	close func() error
}

// Close releases the store's connection, if any.
func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// OpenStore opens the Record Store selected by cfg.StoreDriver.
func OpenStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		return OpenSQLiteStore(ctx, cfg.DatabasePath, logger)
	case config.DriverRedis:
		rs, err := redisstore.Open(ctx, cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			return nil, err
		}
		logger.Info("record store ready", "driver", cfg.StoreDriver)
		return &Store{RecordStore: rs, close: rs.Close}, nil
	case config.DriverMemory:
		logger.Info("record store ready", "driver", cfg.StoreDriver)
		return &Store{RecordStore: memory.NewRecordStore()}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// OpenSQLiteStore opens the SQLite file at path and applies its migrations.
func OpenSQLiteStore(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sqlite.New(path)
	if err != nil {
		return nil, err
	}
	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("record store ready", "driver", config.DriverSQLite, "path", path)
	return &Store{RecordStore: db.Records(), close: db.Close}, nil
}

func migrate(ctx context.Context, db domain.Database) error {
	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Tokens returns the token issuer selected by cfg.TokenMode.
func Tokens(cfg config.Config) service.TokenIssuer {
	if cfg.TokenMode == config.TokenModeJWT {
		return service.NewJWTTokens(cfg.JWTSecret, 24*time.Hour)
	}
	return service.MockTokens{}
}

// NewMockBackend builds the mock backend over store and seeds the demo
// account when cfg asks for it.
func NewMockBackend(ctx context.Context, cfg config.Config, store domain.RecordStore, logger *slog.Logger) (*service.MockBackend, error) {
	backend := service.NewMockBackend(store, Tokens(cfg), service.MockBackendConfig{
		BcryptCost: cfg.BcryptCost,
		Latency:    cfg.MockLatency,
		Logger:     logger,
	})
	if cfg.SeedDemo {
		if err := backend.Seed(ctx); err != nil {
			return nil, fmt.Errorf("seed demo data: %w", err)
		}
	}
	return backend, nil
}

// NewBackend returns the backend the containers should talk to: the
// in-process mock over store when cfg.MockAPI is set, otherwise an HTTP
// client for cfg.APIBaseURL.
func NewBackend(ctx context.Context, cfg config.Config, store domain.RecordStore, logger *slog.Logger) (domain.Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MockAPI {
		return NewMockBackend(ctx, cfg, store, logger)
	}
	client, err := apiclient.New(cfg.APIBaseURL, apiclient.WithTimeout(cfg.APITimeout))
	if err != nil {
		return nil, err
	}
	logger.Info("using remote api", "base_url", cfg.APIBaseURL)
	return client, nil
}

// Containers are the two state containers of a signed-in client.
type Containers struct {
	Session *service.Session
	Tasks   *service.Tasks
}

// NewContainers creates the containers over backend, persisting the session in
// store. Signing in or out empties the task list.
func NewContainers(backend domain.Backend, store domain.RecordStore, logger *slog.Logger) *Containers {
	session := service.NewSession(backend, store, logger)
	tasks := service.NewTasks(backend, session, logger)
	session.OnSignIn(tasks.Reset)
	session.OnSignOut(tasks.Reset)
	return &Containers{Session: session, Tasks: tasks}
}

package providers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/eventboard/eventboard-server/internal/config"
	"github.com/eventboard/eventboard-server/internal/logger"
	"github.com/eventboard/eventboard-server/internal/seed"
	"github.com/eventboard/eventboard-server/internal/sse"
	"github.com/eventboard/eventboard-server/internal/store"
	"github.com/eventboard/eventboard-server/internal/store/redisstore"
	"github.com/eventboard/eventboard-server/internal/store/sqlite"
)

// SQLiteFile is the database file name under the data directory.
const SQLiteFile = "eventboard.db"

// OpenBackend opens the key-value backend selected by cfg.Backend.
func OpenBackend(cfg config.StorageConfig, log *slog.Logger) (store.Backend, error) {
	switch cfg.Backend {
	case config.BackendBadger:
		return store.OpenBadger(filepath.Join(cfg.DataPath, "db"), log)
	case config.BackendSQLite:
		if err := os.MkdirAll(cfg.DataPath, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		return sqlite.Open(filepath.Join(cfg.DataPath, SQLiteFile), log)
	case config.BackendRedis:
		return redisstore.Open(redisstore.Options{URL: cfg.RedisURL, Logger: log})
	case config.BackendFile:
		return store.OpenFile(cfg.FilePath)
	case config.BackendMemory:
		return store.NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.Logger)

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the event store over the configured backend.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	backend, err := OpenBackend(cfg.Storage, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", cfg.Storage.Backend, err)
	}

	st := store.New(backend, store.Options{
		Seed:   seed.Resolve(cfg.App.SeedFile, log.Logger),
		Logger: log.Component("store"),
	})

	log.Info("Storage initialized", "backend", cfg.Storage.Backend)

	return &StoreHandle{Store: st}, nil
}

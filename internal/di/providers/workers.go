package providers

import (
	"context"
	"errors"

	"github.com/samber/do/v2"

	"github.com/eventboard/eventboard-server/internal/config"
	"github.com/eventboard/eventboard-server/internal/jobs"
	"github.com/eventboard/eventboard-server/internal/logger"
	"github.com/eventboard/eventboard-server/internal/service"
	"github.com/eventboard/eventboard-server/internal/store"
	"github.com/eventboard/eventboard-server/internal/watcher"
)

// FileWatcherHandle follows the file backend's JSON file and reloads the
// board when another process edits it. It is idle for other backends.
type FileWatcherHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Shutdown implements do.Shutdownable.
func (h *FileWatcherHandle) Shutdown() error {
	if h.cancel == nil {
		return nil
	}
	h.cancel()
	<-h.done
	return nil
}

// ProvideFileWatcher provides the storage file watcher.
func ProvideFileWatcher(i do.Injector) (*FileWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	events := do.MustInvoke[*service.EventService](i)

	fileBackend, ok := storeHandle.Backend().(*store.FileBackend)
	if !ok || !cfg.Storage.WatchFile {
		return &FileWatcherHandle{}, nil
	}

	follower := &watcher.FileFollower{
		Path: fileBackend.Path(),
		Self: fileBackend,
		OnChange: func(ctx context.Context) {
			snap := events.Reload(ctx)
			log.Info("Storage file changed, board reloaded",
				"events", len(snap.Events),
				"bookmarks", len(snap.Bookmarks),
			)
		},
		Logger: log.Component("watcher"),
	}

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		if err := follower.Run(ctx, watcher.Options{}); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("File watcher error", "error", err)
		}
	}()

	log.Info("Watching storage file", "path", fileBackend.Path())

	return &FileWatcherHandle{cancel: cancel, done: done}, nil
}

// JobsHandle wraps the scheduler with shutdown capability.
type JobsHandle struct {
	*jobs.Scheduler
}

// Shutdown implements do.Shutdownable.
func (h *JobsHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Stop(ctx)
}

// ProvideJobs provides the scheduler running periodic storage maintenance.
func ProvideJobs(i do.Injector) (*JobsHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	scheduler := jobs.New(log.Component("jobs"))

	if cfg.Jobs.GCSchedule != "" {
		if name, fn, ok := jobs.StorageMaintenance(storeHandle.Backend(), log.Logger); ok {
			if err := scheduler.Register(name, cfg.Jobs.GCSchedule, fn); err != nil {
				return nil, err
			}
		}
	}

	scheduler.Start()
	log.Info("Job scheduler started", "jobs", scheduler.Len())

	return &JobsHandle{Scheduler: scheduler}, nil
}

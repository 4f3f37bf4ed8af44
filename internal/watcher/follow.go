package watcher

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// SelfWriteChecker recognizes content its owner wrote itself.
// *store.FileBackend satisfies it.
type SelfWriteChecker interface {
	WroteContent(data []byte) bool
}

// FileFollower calls OnChange whenever a single file is changed by
// someone other than its owner.
type FileFollower struct {
	Path     string
	Self     SelfWriteChecker
	OnChange func(ctx context.Context)
	Logger   *slog.Logger
}

// Run watches f.Path until ctx is canceled. It blocks.
func (f *FileFollower) Run(ctx context.Context, opts Options) error {
	logger := f.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	path := filepath.Clean(f.Path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	w, err := New(logger, opts)
	if err != nil {
		return err
	}
	defer w.Stop()

	if err := w.Watch(filepath.Dir(path)); err != nil {
		return err
	}

	go func() {
		if err := w.Start(ctx); err != nil {
			logger.Error("file watcher stopped", "error", err)
		}
	}()

	logger.Info("following storage file", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-w.Errors():
			logger.Warn("file watcher error", "error", err)
		case ev := <-w.Events():
			if ev.Path != path || ev.Type == EventRemoved {
				continue
			}
			if f.ownWrite(path) {
				logger.Debug("ignoring own write", "path", path)
				continue
			}
			logger.Info("storage file changed externally, reloading", "path", path, "change", ev.Type.String())
			f.OnChange(ctx)
		}
	}
}

// ownWrite reports whether the file currently holds the owner's last write.
func (f *FileFollower) ownWrite(path string) bool {
	if f.Self == nil {
		return false
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return true
	}
	if err != nil {
		return false
	}
	return f.Self.WroteContent(data)
}

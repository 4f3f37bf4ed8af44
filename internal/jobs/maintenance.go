package jobs

import (
	"context"
	"log/slog"
)

// BadgerDiscardRatio is the value-log GC threshold passed to Badger.
const BadgerDiscardRatio = 0.5

type valueLogCollector interface {
	RunGC(discardRatio float64) (int, error)
}

type optimizer interface {
	Optimize(ctx context.Context) error
}

// StorageMaintenance returns the housekeeping job for a storage backend,
// if it has one: value-log GC for Badger, PRAGMA optimize for SQLite.
func StorageMaintenance(backend any, logger *slog.Logger) (string, Func, bool) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	switch b := backend.(type) {
	case valueLogCollector:
		return "badger-value-log-gc", func(context.Context) error {
			rewritten, err := b.RunGC(BadgerDiscardRatio)
			if err != nil {
				return err
			}
			if rewritten > 0 {
				logger.Info("badger value log collected", "files_rewritten", rewritten)
			}
			return nil
		}, true
	case optimizer:
		return "sqlite-optimize", b.Optimize, true
	default:
		return "", nil, false
	}
}

package sqlite

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventboard/eventboard-server/internal/domain"
	"github.com/eventboard/eventboard-server/internal/seed"
	"github.com/eventboard/eventboard-server/internal/store"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	b, err := Open(dbPath, logger)
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b
}

func TestOpen(t *testing.T) {
	b := newTestBackend(t)

	var journalMode string
	require.NoError(t, b.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)

	var name string
	require.NoError(t, b.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='records'").Scan(&name))
	assert.Equal(t, "records", name)
}

func TestGetSet(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	_, err := b.Get(ctx, store.KeyEvents)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, b.Set(ctx, store.KeyBookmarks, []byte("[1,2]")))
	require.NoError(t, b.Set(ctx, store.KeyBookmarks, []byte("[2]")))

	got, err := b.Get(ctx, store.KeyBookmarks)
	require.NoError(t, err)
	assert.Equal(t, "[2]", string(got))
}

func TestUpdatedAt(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)
	fixed := time.UnixMilli(1_759_000_000_000)
	b.now = func() time.Time { return fixed }

	_, err := b.UpdatedAt(ctx, store.KeyEvents)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, b.Set(ctx, store.KeyEvents, []byte("[]")))
	at, err := b.UpdatedAt(ctx, store.KeyEvents)
	require.NoError(t, err)
	assert.True(t, fixed.Equal(at))
}

func TestStoreOverSQLite(t *testing.T) {
	ctx := context.Background()
	s := store.New(newTestBackend(t), store.Options{})

	assert.Equal(t, seed.Default(), s.LoadEvents(ctx))

	events := []domain.Event{{ID: 10, Name: "Poetry Slam", Category: "Arts", Date: "2025-10-20", Location: "Library"}}
	require.NoError(t, s.SaveEvents(ctx, events))
	assert.Equal(t, events, s.LoadEvents(ctx))
}

func TestOptimize(t *testing.T) {
	b := newTestBackend(t)
	require.NoError(t, b.Set(context.Background(), store.KeyEvents, []byte("[]")))
	assert.NoError(t, b.Optimize(context.Background()))
}

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventboard/eventboard-server/internal/seed"
	"github.com/eventboard/eventboard-server/internal/store"
)

// closeTracker records whether the store closed its backend.
type closeTracker struct {
	*store.MemoryBackend
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return c.MemoryBackend.Close()
}

func writeCalendar(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "import.ics")
	body := strings.Join(append(append([]string{"BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:-//test//EN"}, lines...), "END:VCALENDAR", ""), "\r\n")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRun_SeedsDefaults(t *testing.T) {
	st := store.New(store.NewMemoryBackend(), store.Options{})
	var out bytes.Buffer

	require.NoError(t, run(context.Background(), st, options{}, "memory", nil, &out))

	assert.Len(t, st.LoadEvents(context.Background()), len(seed.Default()))
	assert.Contains(t, out.String(), "Seeded 5 events into memory storage")
}

func TestRun_RefusesToOverwrite(t *testing.T) {
	ctx := context.Background()
	st := store.New(store.NewMemoryBackend(), store.Options{})
	require.NoError(t, st.SaveBookmarks(ctx, []int64{1}))

	err := run(ctx, st, options{}, "memory", nil, &bytes.Buffer{})
	require.ErrorIs(t, err, errRecordExists)
	assert.Equal(t, []int64{1}, st.LoadBookmarks(ctx))

	require.NoError(t, run(ctx, st, options{force: true}, "memory", nil, &bytes.Buffer{}))
	assert.Empty(t, st.LoadBookmarks(ctx))
}

func TestRun_MissingCalendarReturnsErrorAndStoreCloses(t *testing.T) {
	backend := &closeTracker{MemoryBackend: store.NewMemoryBackend()}
	st := store.New(backend, store.Options{})

	err := run(context.Background(), st, options{icsFile: filepath.Join(t.TempDir(), "missing.ics")}, "memory", nil, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open calendar")

	// The caller can still close the store after a failed run.
	require.NoError(t, st.Close())
	assert.True(t, backend.closed)
}

func TestImportCalendar_UnparseableFile(t *testing.T) {
	st := store.New(store.NewMemoryBackend(), store.Options{})
	path := filepath.Join(t.TempDir(), "empty.ics")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o600))

	_, _, err := importCalendar(context.Background(), st, path, nil, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse calendar")
}

func TestImportCalendar_SkipsInvalidEvents(t *testing.T) {
	ctx := context.Background()
	st := store.New(store.NewMemoryBackend(), store.Options{Seed: seed.Default()})
	path := writeCalendar(t,
		"BEGIN:VEVENT", "UID:a", "DTSTAMP:20250901T120000Z", "DTSTART:20251103T180000Z",
		"SUMMARY:Evening Talk", "LOCATION:Hall A", "CATEGORIES:Talks", "END:VEVENT",
		"BEGIN:VEVENT", "UID:b", "DTSTAMP:20250901T120000Z", "DTSTART:20251104T180000Z",
		"SUMMARY:No Place", "CATEGORIES:Talks", "END:VEVENT",
	)
	var out bytes.Buffer

	imported, skipped, err := importCalendar(ctx, st, path, nil, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, imported)
	assert.Equal(t, 1, skipped)
	assert.Contains(t, out.String(), `skipped "No Place"`)

	events := st.LoadEvents(ctx)
	require.Len(t, events, len(seed.Default())+1)
	assert.Equal(t, "Evening Talk", events[len(events)-1].Name)
}

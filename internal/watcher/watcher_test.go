package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, dir string) *Watcher {
	t.Helper()

	w, err := New(nil, Options{SettleDelay: 50 * time.Millisecond})
	require.NoError(t, err)
	require.NoError(t, w.Watch(dir))

	ctx, cancel := context.WithCancel(context.Background())
	go w.Start(ctx)
	t.Cleanup(func() {
		cancel()
		_ = w.Stop()
	})
	return w
}

func waitEvent(t *testing.T, w *Watcher) Event {
	t.Helper()
	select {
	case ev := <-w.Events():
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for watcher event")
		return Event{}
	}
}

func TestWatcher_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir)

	path := filepath.Join(dir, "events.json")
	for i := range 5 {
		require.NoError(t, os.WriteFile(path, []byte{byte('a' + i)}, 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	ev := waitEvent(t, w)
	assert.Equal(t, path, ev.Path)
	assert.Equal(t, EventAdded, ev.Type)

	select {
	case extra := <-w.Events():
		t.Fatalf("expected a single settled event, got another: %+v", extra)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_ModifiedAfterKnown(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	w, err := New(nil, Options{SettleDelay: 50 * time.Millisecond})
	require.NoError(t, err)
	require.NoError(t, w.Watch(path))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("[1]"), 0o644))
	ev := waitEvent(t, w)
	assert.Equal(t, EventModified, ev.Type)
}

func TestWatcher_IgnoresTempFiles(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".events.json.1.tmp"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "real.json"), []byte("x"), 0o644))

	ev := waitEvent(t, w)
	assert.Equal(t, filepath.Join(dir, "real.json"), ev.Path)
}

func TestWatcher_StopTwice(t *testing.T) {
	w, err := New(nil, Options{})
	require.NoError(t, err)
	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}

type fakeSelf struct{ content atomic.Value }

func (f *fakeSelf) WroteContent(data []byte) bool {
	v, _ := f.content.Load().(string)
	return v == string(data)
}

func TestFileFollower(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "eventboard.json")
	self := &fakeSelf{}

	var reloads atomic.Int32
	follower := &FileFollower{
		Path:     path,
		Self:     self,
		OnChange: func(context.Context) { reloads.Add(1) },
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- follower.Run(ctx, Options{SettleDelay: 50 * time.Millisecond}) }()
	defer func() {
		cancel()
		<-done
	}()

	// Give the watch time to register.
	time.Sleep(100 * time.Millisecond)

	// Own write: suppressed.
	self.content.Store(`{"events":[]}`)
	require.NoError(t, os.WriteFile(path, []byte(`{"events":[]}`), 0o644))
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(0), reloads.Load())

	// External write: reload.
	require.NoError(t, os.WriteFile(path, []byte(`{"events":[{"id":1}]}`), 0o644))
	assert.Eventually(t, func() bool { return reloads.Load() == 1 }, 3*time.Second, 20*time.Millisecond)

	// Other files in the directory are not followed.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644))
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), reloads.Load())
}

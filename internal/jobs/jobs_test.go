package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RegisterValidatesSpec(t *testing.T) {
	s := New(nil)

	require.NoError(t, s.Register("gc", "@every 10m", func(context.Context) error { return nil }))
	require.NoError(t, s.Register("nightly", "0 3 * * *", func(context.Context) error { return nil }))
	assert.Error(t, s.Register("bad", "every ten minutes", func(context.Context) error { return nil }))
	assert.Error(t, s.Register("gc", "@hourly", func(context.Context) error { return nil }), "duplicate name")
	assert.Equal(t, 2, s.Len())
}

func TestScheduler_RunNow(t *testing.T) {
	s := New(nil)

	var runs atomic.Int32
	require.NoError(t, s.Register("count", "@hourly", func(context.Context) error {
		runs.Add(1)
		return nil
	}))

	require.NoError(t, s.RunNow("count"))
	assert.Equal(t, int32(1), runs.Load())
	assert.Error(t, s.RunNow("missing"))
}

func TestScheduler_RecoversPanics(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Register("boom", "@hourly", func(context.Context) error { panic("boom") }))
	require.NoError(t, s.Register("fails", "@hourly", func(context.Context) error { return errors.New("nope") }))

	assert.NotPanics(t, func() { _ = s.RunNow("boom") })
	assert.NotPanics(t, func() { _ = s.RunNow("fails") })
}

func TestScheduler_RunsOnSchedule(t *testing.T) {
	s := New(nil)

	var runs atomic.Int32
	require.NoError(t, s.Register("tick", "@every 1s", func(context.Context) error {
		runs.Add(1)
		return nil
	}))
	s.Start()

	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}

func TestScheduler_StopCancelsJobContext(t *testing.T) {
	s := New(nil)

	observed := make(chan error, 1)
	require.NoError(t, s.Register("wait", "@hourly", func(ctx context.Context) error {
		<-ctx.Done()
		observed <- ctx.Err()
		return nil
	}))

	go func() { _ = s.RunNow("wait") }()
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	select {
	case err := <-observed:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("job context was not canceled")
	}
}

type fakeGC struct{ calls int }

func (f *fakeGC) RunGC(float64) (int, error) {
	f.calls++
	return 2, nil
}

type fakeOptimizer struct{ calls int }

func (f *fakeOptimizer) Optimize(context.Context) error {
	f.calls++
	return nil
}

func TestStorageMaintenance(t *testing.T) {
	gc := &fakeGC{}
	name, fn, ok := StorageMaintenance(gc, nil)
	require.True(t, ok)
	assert.Equal(t, "badger-value-log-gc", name)
	require.NoError(t, fn(context.Background()))
	assert.Equal(t, 1, gc.calls)

	opt := &fakeOptimizer{}
	name, fn, ok = StorageMaintenance(opt, nil)
	require.True(t, ok)
	assert.Equal(t, "sqlite-optimize", name)
	require.NoError(t, fn(context.Background()))
	assert.Equal(t, 1, opt.calls)

	_, _, ok = StorageMaintenance(struct{}{}, nil)
	assert.False(t, ok)
}

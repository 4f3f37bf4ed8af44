package id

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Format(t *testing.T) {
	id, err := Generate("sse")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(id, "sse-"))
	assert.Len(t, strings.TrimPrefix(id, "sse-"), 21, "NanoID part should be 21 characters")
}

func TestGenerate_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	for range 200 {
		id, err := Generate("test")
		require.NoError(t, err)
		assert.False(t, ids[id], "ID should be unique: %s", id)
		ids[id] = true
	}
}

func TestClockSequence_SameMillisecond(t *testing.T) {
	frozen := time.UnixMilli(1_700_000_000_000)
	seq := NewClockSequence(func() time.Time { return frozen })

	first := seq.Next()
	second := seq.Next()
	third := seq.Next()

	assert.Equal(t, int64(1_700_000_000_000), first)
	assert.Equal(t, first+1, second)
	assert.Equal(t, second+1, third)
}

func TestClockSequence_ClockGoesBackwards(t *testing.T) {
	now := time.UnixMilli(2_000)
	seq := NewClockSequence(func() time.Time { return now })

	first := seq.Next()
	now = time.UnixMilli(1_000)
	second := seq.Next()

	assert.Greater(t, second, first)
}

func TestClockSequence_Observe(t *testing.T) {
	seq := NewClockSequence(func() time.Time { return time.UnixMilli(10) })
	seq.Observe(5_000)

	assert.Equal(t, int64(5_001), seq.Next())
}

func TestClockSequence_Concurrent(t *testing.T) {
	seq := NewClockSequence(nil)

	var mu sync.Mutex
	seen := make(map[int64]bool)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				id := seq.Next()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 800)
}

func TestCounterSequence(t *testing.T) {
	seq := NewCounterSequence(0)
	assert.Equal(t, int64(1), seq.Next())
	assert.Equal(t, int64(2), seq.Next())

	seq.Observe(10)
	assert.Equal(t, int64(11), seq.Next())

	seq.Observe(3)
	assert.Equal(t, int64(12), seq.Next())
}

func BenchmarkClockSequence(b *testing.B) {
	seq := NewClockSequence(nil)
	for b.Loop() {
		seq.Next()
	}
}

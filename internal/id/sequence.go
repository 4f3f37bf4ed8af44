package id

import (
	"sync"
	"time"
)

// Sequence hands out event ids.
type Sequence interface {
	// Next returns an id strictly greater than every id it returned before
	// and every id passed to Observe.
	Next() int64
	// Observe raises the floor so Next never returns id or anything below it.
	Observe(id int64)
}

// ClockSequence derives ids from wall-clock milliseconds and stays strictly
// increasing when several ids are requested within the same millisecond.
type ClockSequence struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

// NewClockSequence creates a clock-seeded sequence. A nil now uses time.Now.
func NewClockSequence(now func() time.Time) *ClockSequence {
	if now == nil {
		now = time.Now
	}
	return &ClockSequence{now: now}
}

// Next implements Sequence.
func (s *ClockSequence) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := max(s.now().UnixMilli(), s.last+1)
	s.last = next
	return next
}

// Observe implements Sequence.
func (s *ClockSequence) Observe(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.last = max(s.last, id)
}

// CounterSequence is a plain counter, used where deterministic ids are wanted.
type CounterSequence struct {
	mu   sync.Mutex
	last int64
}

// NewCounterSequence creates a counter whose first id is start+1.
func NewCounterSequence(start int64) *CounterSequence {
	return &CounterSequence{last: start}
}

// Next implements Sequence.
func (s *CounterSequence) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.last++
	return s.last
}

// Observe implements Sequence.
func (s *CounterSequence) Observe(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.last = max(s.last, id)
}

package sessionstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type entry[T any] struct {
	value   T
	touched time.Time
}

// Store keeps short-lived per-browser values in memory. Entries idle for
// longer than the TTL are treated as absent and dropped by Sweep.
type Store[T any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[uuid.UUID]entry[T]
}

func New[T any](ttl time.Duration) *Store[T] {
	return NewWithClock[T](ttl, time.Now)
}

func NewWithClock[T any](ttl time.Duration, now func() time.Time) *Store[T] {
	return &Store[T]{
		ttl:     ttl,
		now:     now,
		entries: make(map[uuid.UUID]entry[T]),
	}
}

// TTL is how long an entry may sit idle before it expires.
func (s *Store[T]) TTL() time.Duration {
	return s.ttl
}

func (s *Store[T]) Get(id uuid.UUID) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		var zero T
		return zero, false
	}
	now := s.now()
	if now.Sub(e.touched) > s.ttl {
		delete(s.entries, id)
		var zero T
		return zero, false
	}
	e.touched = now
	s.entries[id] = e
	return e.value, true
}

func (s *Store[T]) Put(id uuid.UUID, value T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[id] = entry[T]{value: value, touched: s.now()}
}

func (s *Store[T]) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, id)
}

// Sweep drops expired entries and reports how many were removed.
func (s *Store[T]) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, e := range s.entries {
		if now.Sub(e.touched) > s.ttl {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

// RunJanitor sweeps on every tick until ctx is done.
func (s *Store[T]) RunJanitor(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

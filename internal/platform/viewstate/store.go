package viewstate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dugoutlabs/ballclub/internal/platform/resilience"
)

// Store holds the per-screen list snapshots the HTTP layer serves. One
// reconciler covers both mutation strategies: Replace swaps a whole list in
// after a re-fetch, Upsert folds a single server echo in by identifier
// (replace-or-append). A failed mutation never touches a snapshot, so
// readers keep seeing the last good list.
type Store[T any] struct {
	mu     sync.RWMutex
	lists  map[string]snapshot[T]
	ttl    time.Duration
	keyOf  func(T) string
	flight resilience.SingleFlight
}

type snapshot[T any] struct {
	items     []T
	expiresAt time.Time
}

func NewStore[T any](ttl time.Duration, keyOf func(T) string) *Store[T] {
	if keyOf == nil {
		panic("viewstate: keyOf is required")
	}
	return &Store[T]{
		lists: make(map[string]snapshot[T]),
		ttl:   ttl,
		keyOf: keyOf,
	}
}

// Get returns a copy of the snapshot so callers cannot alias store memory.
func (s *Store[T]) Get(_ context.Context, key string) ([]T, bool) {
	if key == "" {
		return nil, false
	}

	now := time.Now()
	s.mu.RLock()
	snap, ok := s.lists[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.ttl > 0 && !snap.expiresAt.After(now) {
		s.mu.Lock()
		delete(s.lists, key)
		s.mu.Unlock()
		return nil, false
	}

	out := make([]T, len(snap.items))
	copy(out, snap.items)
	return out, true
}

// Replace installs a freshly fetched list as the snapshot in one step.
func (s *Store[T]) Replace(_ context.Context, key string, items []T) {
	if key == "" {
		return
	}

	owned := make([]T, len(items))
	copy(owned, items)

	s.mu.Lock()
	s.lists[key] = snapshot[T]{items: owned, expiresAt: s.deadline()}
	s.mu.Unlock()
}

// Upsert folds one item into the snapshot by identifier: an existing row
// with the same id is replaced, otherwise the item is appended. Identifiers
// come from the server echo; nothing is synthesized here. Upsert on a key
// with no snapshot is a no-op, there is no displayed list to reconcile.
func (s *Store[T]) Upsert(_ context.Context, key string, item T) {
	if key == "" {
		return
	}
	id := s.keyOf(item)
	if id == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.lists[key]
	if !ok {
		return
	}

	items := make([]T, len(snap.items))
	copy(items, snap.items)
	replaced := false
	for i, existing := range items {
		if s.keyOf(existing) == id {
			items[i] = item
			replaced = true
			break
		}
	}
	if !replaced {
		items = append(items, item)
	}

	s.lists[key] = snapshot[T]{items: items, expiresAt: s.deadline()}
}

func (s *Store[T]) Invalidate(_ context.Context, key string) {
	if key == "" {
		return
	}

	s.mu.Lock()
	delete(s.lists, key)
	s.mu.Unlock()
}

// GetOrLoad serves the snapshot when present and otherwise loads it exactly
// once per key across concurrent callers, installing the result via Replace.
func (s *Store[T]) GetOrLoad(ctx context.Context, key string, loader func(context.Context) ([]T, error)) ([]T, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	if items, ok := s.Get(ctx, key); ok {
		return items, nil
	}

	out, err, _ := s.flight.Do(key, func() (any, error) {
		if cached, ok := s.Get(ctx, key); ok {
			return cached, nil
		}

		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		s.Replace(ctx, key, loaded)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	items, ok := out.([]T)
	if !ok {
		return nil, fmt.Errorf("unexpected snapshot payload type %T", out)
	}
	return items, nil
}

func (s *Store[T]) deadline() time.Time {
	if s.ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(s.ttl)
}

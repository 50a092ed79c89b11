package mirror

import (
	"context"
	"sync"
)

// Mirror keeps a local, continuously updated copy of a remote collection's
// current contents. A degraded feed leaves the last applied snapshot in
// place; only the loading flag and error change.
type Mirror[T any] struct {
	topic *Topic[T]

	mu         sync.RWMutex
	snapshot   []T
	generation uint64
	loading    bool
	err        error
}

func NewMirror[T any](topic *Topic[T]) *Mirror[T] {
	return &Mirror[T]{
		topic:   topic,
		loading: true,
	}
}

// Run subscribes to the topic and applies updates until ctx is cancelled.
// Teardown is guaranteed on return; no update is applied afterwards.
func (m *Mirror[T]) Run(ctx context.Context) {
	sub, snapshot, ok := m.topic.Subscribe()
	defer sub.Close()

	if ok {
		m.apply(snapshot)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case u := <-sub.Updates():
			if u.Err != nil {
				m.degrade(u.Err)
				continue
			}
			m.apply(u.Snapshot)
		}
	}
}

func (m *Mirror[T]) apply(snapshot []T) {
	m.mu.Lock()
	m.snapshot = snapshot
	m.generation++
	m.loading = false
	m.err = nil
	m.mu.Unlock()
}

func (m *Mirror[T]) degrade(err error) {
	m.mu.Lock()
	m.loading = false
	m.err = err
	m.mu.Unlock()
}

// Snapshot returns the current full snapshot together with its generation.
// The generation changes only when a new snapshot is applied, so callers can
// memoize derived values against it.
func (m *Mirror[T]) Snapshot() ([]T, uint64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot, m.generation
}

func (m *Mirror[T]) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

func (m *Mirror[T]) Err() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.err
}

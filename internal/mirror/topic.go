package mirror

import (
	"sync"
)

const subscriberBuffer = 1

// Update carries either a full replacement snapshot or a subscription error.
type Update[T any] struct {
	Snapshot []T
	Err      error
}

// Topic fans full collection snapshots out to subscribers. Every publish
// replaces the previous snapshot wholesale; subscribers never observe an
// incremental patch. Slow subscribers are skipped ahead to the newest
// snapshot (latest wins) instead of blocking the publisher.
type Topic[T any] struct {
	mu        sync.RWMutex
	latest    []T
	hasLatest bool
	subs      map[uint64]chan Update[T]
	nextID    uint64
}

// Subscription is one consumer's handle on a Topic. Close is idempotent and
// guarantees no further deliveries.
type Subscription[T any] struct {
	topic *Topic[T]
	id    uint64
	ch    chan Update[T]
	once  sync.Once
}

func NewTopic[T any]() *Topic[T] {
	return &Topic[T]{
		subs: make(map[uint64]chan Update[T]),
	}
}

// Publish replaces the topic snapshot and notifies all subscribers. The
// snapshot is copied so later caller mutations cannot leak into consumers.
func (t *Topic[T]) Publish(snapshot []T) {
	if t == nil {
		return
	}
	cloned := append([]T(nil), snapshot...)

	t.mu.Lock()
	t.latest = cloned
	t.hasLatest = true
	subs := make([]chan Update[T], 0, len(t.subs))
	for _, ch := range t.subs {
		subs = append(subs, ch)
	}
	t.mu.Unlock()

	for _, ch := range subs {
		deliver(ch, Update[T]{Snapshot: cloned})
	}
}

// Fail notifies subscribers that the backing feed is degraded. The last
// published snapshot stays in place.
func (t *Topic[T]) Fail(err error) {
	if t == nil || err == nil {
		return
	}
	t.mu.RLock()
	subs := make([]chan Update[T], 0, len(t.subs))
	for _, ch := range t.subs {
		subs = append(subs, ch)
	}
	t.mu.RUnlock()

	for _, ch := range subs {
		deliver(ch, Update[T]{Err: err})
	}
}

// deliver is a non-blocking send that keeps only the newest pending update.
func deliver[T any](ch chan Update[T], u Update[T]) {
	for {
		select {
		case ch <- u:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Subscribe registers a consumer and hands back the current snapshot, if one
// has been published yet.
func (t *Topic[T]) Subscribe() (*Subscription[T], []T, bool) {
	ch := make(chan Update[T], subscriberBuffer)

	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.subs[id] = ch
	snapshot := t.latest
	ok := t.hasLatest
	t.mu.Unlock()

	return &Subscription[T]{topic: t, id: id, ch: ch}, snapshot, ok
}

func (t *Topic[T]) unsubscribe(id uint64) {
	t.mu.Lock()
	delete(t.subs, id)
	t.mu.Unlock()
}

// Latest returns the current snapshot without subscribing.
func (t *Topic[T]) Latest() ([]T, bool) {
	if t == nil {
		return nil, false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.latest, t.hasLatest
}

func (s *Subscription[T]) Updates() <-chan Update[T] {
	if s == nil {
		return nil
	}
	return s.ch
}

func (s *Subscription[T]) Close() {
	if s == nil || s.topic == nil {
		return
	}
	s.once.Do(func() {
		s.topic.unsubscribe(s.id)
	})
}

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/greenmandi/storefront/internal/catalog/domain"
	"github.com/greenmandi/storefront/internal/mirror"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

// Store holds the authoritative in-memory product snapshot. Reads are
// synchronous; all mutation funnels through BulkUpdate, which persists and
// then swaps the snapshot in one step, so no reader ever observes a
// partially applied bulk update.
type Store struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	topic *mirror.Topic[domain.Product]

	initOnce sync.Once
	initErr  error

	writeMu sync.Mutex // serializes writers; readers go through mu only
	mu      sync.RWMutex
	items   []domain.Product
	index   map[string]int
}

func New(p Params) *Store {
	return &Store{
		db:    p.DB,
		log:   p.Log.Named("catalog.store"),
		repo:  p.Repo,
		topic: mirror.NewTopic[domain.Product](),
		index: make(map[string]int),
	}
}

// Initialize loads the catalog exactly once per process lifetime. Calling it
// again is a no-op and never resets edits applied since the first load.
func (s *Store) Initialize(ctx context.Context) error {
	s.initOnce.Do(func() {
		items, err := s.repo.FindAll(ctx, s.db)
		if err != nil {
			s.initErr = err
			return
		}
		s.swap(items)
		s.log.Info("catalog loaded", zap.Int("products", len(items)))
	})
	return s.initErr
}

// Products returns a copy of the current snapshot.
func (s *Store) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Product(nil), s.items...)
}

func (s *Store) Get(id string) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return domain.Product{}, false
	}
	return s.items[i], true
}

// Categories returns the distinct category labels, sorted.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{}, len(s.items))
	out := make([]string, 0, len(s.items))
	for _, p := range s.items {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out
}

// BulkUpdate merges patch into every product whose ID is in ids and reports
// how many records matched. An empty selection is a no-op, not an error: the
// dashboard routinely calls this after a cleared selection. The patch is
// persisted first; the in-memory snapshot is swapped only after the write
// succeeds, keeping store and database consistent.
func (s *Store) BulkUpdate(ctx context.Context, ids []string, patch domain.Patch) (int, error) {
	if len(ids) == 0 || patch.IsEmpty() {
		return 0, nil
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	targets := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		targets[id] = struct{}{}
	}

	now := time.Now().UTC()

	s.mu.RLock()
	next := append([]domain.Product(nil), s.items...)
	s.mu.RUnlock()

	matched := 0
	updatedIDs := make([]string, 0, len(ids))
	for i, p := range next {
		if _, ok := targets[p.ID]; !ok {
			continue
		}
		next[i] = patch.Apply(p, now)
		updatedIDs = append(updatedIDs, p.ID)
		matched++
	}
	if matched == 0 {
		return 0, nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.BulkUpdate(ctx, tx, updatedIDs, patch, now)
	})
	if err != nil {
		return 0, err
	}

	s.swap(next)
	s.log.Info("bulk update applied", zap.Int("matched", matched))
	return matched, nil
}

// swap installs a new snapshot as one atomic transition and notifies watchers.
func (s *Store) swap(items []domain.Product) {
	index := make(map[string]int, len(items))
	for i, p := range items {
		index[p.ID] = i
	}

	s.mu.Lock()
	s.items = items
	s.index = index
	s.mu.Unlock()

	s.topic.Publish(items)
}

// Watch subscribes to full catalog snapshots.
func (s *Store) Watch() (*mirror.Subscription[domain.Product], []domain.Product, bool) {
	return s.topic.Subscribe()
}

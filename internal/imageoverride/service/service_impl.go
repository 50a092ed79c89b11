package service

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/greenmandi/storefront/internal/catalog/store"
	"github.com/greenmandi/storefront/internal/imageoverride/domain"
	"github.com/oklog/ulid/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var extByContentType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Repo    domain.Repository
	Objects domain.ObjectStore
	Catalog *store.Store
}

// Service keeps the override map in memory for synchronous resolution and
// writes every change through to the database.
type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    domain.Repository
	objects domain.ObjectStore
	catalog *store.Store

	mu        sync.RWMutex
	overrides map[string]domain.Override
}

func New(p Params) *Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("imageoverride.service"),
		repo:      p.Repo,
		objects:   p.Objects,
		catalog:   p.Catalog,
		overrides: make(map[string]domain.Override),
	}
}

// Initialize loads persisted overrides into the in-memory map.
func (s *Service) Initialize(ctx context.Context) error {
	items, err := s.repo.FindAll(ctx, s.db)
	if err != nil {
		return err
	}

	overrides := make(map[string]domain.Override, len(items))
	for _, item := range items {
		overrides[item.ProductID] = item
	}

	s.mu.Lock()
	s.overrides = overrides
	s.mu.Unlock()

	s.log.Info("image overrides loaded", zap.Int("count", len(overrides)))
	return nil
}

// Upload stores the blob and, only on success, records its URL as the
// override for productID. Any failure leaves the existing override (or lack
// of one) untouched and is returned to the caller.
func (s *Service) Upload(ctx context.Context, productID, contentType string, blob io.Reader) (*domain.Override, error) {
	productID = strings.TrimSpace(productID)
	if _, ok := s.catalog.Get(productID); !ok {
		return nil, domain.ErrProductNotFound
	}

	ext, ok := extByContentType[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return nil, domain.ErrUnsupportedContent
	}

	key := strings.ToLower(ulid.Make().String()) + ext
	url, err := s.objects.Put(ctx, key, contentType, blob)
	if err != nil {
		return nil, err
	}

	override := domain.Override{
		ProductID: productID,
		URL:       url,
		ObjectKey: key,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.repo.Upsert(ctx, s.db, &override); err != nil {
		// The blob is orphaned; reclaim it so a failed upload leaves
		// nothing behind.
		if delErr := s.objects.Delete(ctx, key); delErr != nil {
			s.log.Warn("failed to reclaim orphaned object", zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}

	s.mu.Lock()
	prior, hadPrior := s.overrides[productID]
	s.overrides[productID] = override
	s.mu.Unlock()

	if hadPrior && prior.ObjectKey != "" && prior.ObjectKey != key {
		if err := s.objects.Delete(ctx, prior.ObjectKey); err != nil {
			s.log.Warn("failed to delete replaced object", zap.String("key", prior.ObjectKey), zap.Error(err))
		}
	}

	return &override, nil
}

// Remove deletes the override entry if present; removing a missing override
// is a no-op.
func (s *Service) Remove(ctx context.Context, productID string) error {
	productID = strings.TrimSpace(productID)

	s.mu.RLock()
	prior, ok := s.overrides[productID]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	if err := s.repo.Delete(ctx, s.db, productID); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.overrides, productID)
	s.mu.Unlock()

	if prior.ObjectKey != "" {
		if err := s.objects.Delete(ctx, prior.ObjectKey); err != nil {
			s.log.Warn("failed to delete removed object", zap.String("key", prior.ObjectKey), zap.Error(err))
		}
	}
	return nil
}

// Resolve returns the override URL for productID or the fallback unchanged.
func (s *Service) Resolve(productID, fallback string) string {
	s.mu.RLock()
	override, ok := s.overrides[productID]
	s.mu.RUnlock()
	if ok && override.URL != "" {
		return override.URL
	}
	return fallback
}

var _ domain.Service = (*Service)(nil)

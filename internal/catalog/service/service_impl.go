package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/greenmandi/storefront/internal/catalog/domain"
	"github.com/greenmandi/storefront/internal/catalog/store"
	"github.com/greenmandi/storefront/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log     *zap.Logger
	Store   *store.Store
	Runtime *config.StorefrontConfigHolder
}

type Service struct {
	log     *zap.Logger
	store   *store.Store
	runtime *config.StorefrontConfigHolder
}

func New(p Params) domain.Service {
	return &Service{
		log:     p.Log.Named("catalog.service"),
		store:   p.Store,
		runtime: p.Runtime,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	_ = ctx
	cfg := s.runtime.Current()

	locale := strings.TrimSpace(req.Locale)
	if locale == "" {
		locale = cfg.DefaultLocale
	}
	category := strings.TrimSpace(req.Category)
	search := strings.ToLower(strings.TrimSpace(req.Search))

	items := s.store.Products()
	resp := make([]domain.Response, 0, len(items))
	for _, item := range items {
		if category != "" && item.Category != category {
			continue
		}
		if req.Organic != nil && item.Organic != *req.Organic {
			continue
		}
		if req.InStock != nil && item.InStock != *req.InStock {
			continue
		}
		if search != "" && !matchesSearch(item, search) {
			continue
		}
		resp = append(resp, toResponse(item, locale, cfg.DefaultLocale))
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	_ = ctx
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrInvalidID
	}

	item, ok := s.store.Get(id)
	if !ok {
		return nil, domain.ErrNotFound
	}

	cfg := s.runtime.Current()
	resp := toResponse(item, cfg.DefaultLocale, cfg.DefaultLocale)
	return &resp, nil
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	_ = ctx
	return s.store.Categories(), nil
}

func (s *Service) BulkUpdate(ctx context.Context, req domain.BulkUpdateRequest) (int, error) {
	return s.store.BulkUpdate(ctx, req.IDs, domain.Patch{
		Price:    req.Price,
		InStock:  req.InStock,
		Category: req.Category,
	})
}

// matchesSearch checks the search term against every localized name plus the
// category label.
func matchesSearch(p domain.Product, term string) bool {
	for _, v := range p.Name {
		if s, ok := v.(string); ok && strings.Contains(strings.ToLower(s), term) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(p.Category), term)
}

func toResponse(p domain.Product, locale, fallback string) domain.Response {
	return domain.Response{
		ID:       p.ID,
		Name:     map[string]any(p.Name),
		Display:  p.LocalizedName(locale, fallback),
		Price:    p.Price,
		Image:    p.Image,
		Gallery:  galleryURLs(p),
		Category: p.Category,
		InStock:  p.InStock,
		Rating:   p.Rating,
		Reviews:  p.Reviews,
		Organic:  p.Organic,
		Unit:     p.Unit,
	}
}

func galleryURLs(p domain.Product) []string {
	if len(p.Gallery) == 0 {
		return nil
	}
	var urls []string
	if err := json.Unmarshal(p.Gallery, &urls); err != nil {
		return nil
	}
	return urls
}

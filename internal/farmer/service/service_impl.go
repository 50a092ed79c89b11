package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/greenmandi/storefront/internal/farmer/domain"
	"github.com/greenmandi/storefront/internal/mirror"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Repo   domain.Repository
	Mirror *mirror.Mirror[domain.Farmer]
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	repo   domain.Repository
	mirror *mirror.Mirror[domain.Farmer]
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("farmer.service"),
		repo:   p.Repo,
		mirror: p.Mirror,
	}
}

func (s *Service) List(ctx context.Context) ([]domain.Response, error) {
	items, _ := s.mirror.Snapshot()
	if len(items) == 0 && s.mirror.Loading() {
		var err error
		items, err = s.repo.FindAll(ctx, s.db)
		if err != nil {
			return nil, err
		}
	}

	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrInvalidID
	}

	if snapshot, _ := s.mirror.Snapshot(); len(snapshot) > 0 {
		for i := range snapshot {
			if snapshot[i].ID == id {
				resp := toResponse(&snapshot[i])
				return &resp, nil
			}
		}
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	resp := toResponse(item)
	return &resp, nil
}

func toResponse(f *domain.Farmer) domain.Response {
	var certs []string
	if len(f.Certifications) > 0 {
		_ = json.Unmarshal(f.Certifications, &certs)
	}
	return domain.Response{
		ID:             f.ID,
		Name:           f.Name,
		FarmName:       f.FarmName,
		Location:       f.Location,
		Certifications: certs,
		Rating:         f.Rating,
	}
}

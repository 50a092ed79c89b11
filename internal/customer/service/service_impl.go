package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/greenmandi/storefront/internal/customer/domain"
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
	Mirror *mirror.Mirror[domain.Customer]
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	repo   domain.Repository
	mirror *mirror.Mirror[domain.Customer]
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("customer.service"),
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
	for _, item := range items {
		resp = append(resp, domain.Response{
			ID:        snowflake.ID(item.ID).String(),
			Name:      item.Name,
			Email:     item.Email,
			Phone:     item.Phone,
			CreatedAt: item.CreatedAt,
		})
	}
	return resp, nil
}

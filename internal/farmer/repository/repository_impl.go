package repository

import (
	"context"

	"github.com/greenmandi/storefront/internal/farmer/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB) ([]domain.Farmer, error) {
	var items []domain.Farmer
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, farm_name, location, certifications, rating, created_at
		 FROM farmers ORDER BY name ASC`,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id string) (*domain.Farmer, error) {
	var f domain.Farmer
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, farm_name, location, certifications, rating, created_at
		 FROM farmers WHERE id = ?`,
		id,
	).Scan(&f).Error
	if err != nil {
		return nil, err
	}
	if f.ID == "" {
		return nil, nil
	}
	return &f, nil
}

package repository

import (
	"context"

	"github.com/greenmandi/storefront/internal/imageoverride/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB) ([]domain.Override, error) {
	var items []domain.Override
	err := db.WithContext(ctx).Raw(
		`SELECT product_id, url, object_key, updated_at FROM image_overrides`,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, override *domain.Override) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"url", "object_key", "updated_at"}),
		}).
		Create(override).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, productID string) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM image_overrides WHERE product_id = ?`,
		productID,
	).Error
}

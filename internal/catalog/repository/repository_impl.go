package repository

import (
	"context"
	"time"

	"github.com/greenmandi/storefront/internal/catalog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB) ([]domain.Product, error) {
	var items []domain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, price, image, gallery, category, in_stock, rating, reviews, organic, unit, created_at, updated_at
		 FROM products ORDER BY created_at ASC, id ASC`,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id string) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, price, image, gallery, category, in_stock, rating, reviews, organic, unit, created_at, updated_at
		 FROM products WHERE id = ?`,
		id,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == "" {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO products (id, name, price, image, gallery, category, in_stock, rating, reviews, organic, unit, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID,
		product.Name,
		product.Price,
		product.Image,
		product.Gallery,
		product.Category,
		product.InStock,
		product.Rating,
		product.Reviews,
		product.Organic,
		product.Unit,
		product.CreatedAt,
		product.UpdatedAt,
	).Error
}

// BulkUpdate writes one patch to every targeted row in a single statement so
// the change lands as one transaction on the database side as well.
func (r *repo) BulkUpdate(ctx context.Context, db *gorm.DB, ids []string, patch domain.Patch, now time.Time) error {
	if len(ids) == 0 || patch.IsEmpty() {
		return nil
	}
	return db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id IN ?", ids).
		Updates(patch.Fields(now)).Error
}

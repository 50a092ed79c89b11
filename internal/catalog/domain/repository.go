package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	FindAll(ctx context.Context, db *gorm.DB) ([]Product, error)
	FindByID(ctx context.Context, db *gorm.DB, id string) (*Product, error)
	Create(ctx context.Context, db *gorm.DB, product *Product) error
	BulkUpdate(ctx context.Context, db *gorm.DB, ids []string, patch Patch, now time.Time) error
}

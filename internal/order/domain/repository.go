package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, order *Order) error
	FindAll(ctx context.Context, db *gorm.DB) ([]Order, error)
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Order, error)
	List(ctx context.Context, db *gorm.DB, status Status, after *time.Time, afterID int64, limit int) ([]Order, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id int64, status Status, now time.Time) error
}

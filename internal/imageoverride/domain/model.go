package domain

import (
	"context"
	"errors"
	"io"
	"time"

	"gorm.io/gorm"
)

// Override substitutes a product's catalog image without touching the
// product record. Removing it restores exactly the catalog default.
type Override struct {
	ProductID string    `json:"product_id" gorm:"primaryKey;type:text"`
	URL       string    `json:"url" gorm:"type:text;not null"`
	ObjectKey string    `json:"object_key" gorm:"type:text;not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Override) TableName() string { return "image_overrides" }

type Service interface {
	Upload(ctx context.Context, productID, contentType string, blob io.Reader) (*Override, error)
	Remove(ctx context.Context, productID string) error
	// Resolve is pure, synchronous and total: the override URL when one
	// exists, the fallback unchanged otherwise.
	Resolve(productID, fallback string) string
}

// ObjectStore is the external blob store collaborator.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, blob io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}

type Repository interface {
	FindAll(ctx context.Context, db *gorm.DB) ([]Override, error)
	Upsert(ctx context.Context, db *gorm.DB, override *Override) error
	Delete(ctx context.Context, db *gorm.DB, productID string) error
}

var (
	ErrProductNotFound    = errors.New("product_not_found")
	ErrUnsupportedContent = errors.New("unsupported_content_type")
)

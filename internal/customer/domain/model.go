package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Customer struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:text;not null"`
	Email     string    `json:"email" gorm:"type:text;not null"`
	Phone     string    `json:"phone" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Customer) TableName() string { return "customers" }

type Service interface {
	List(ctx context.Context) ([]Response, error)
}

type Response struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Repository interface {
	FindAll(ctx context.Context, db *gorm.DB) ([]Customer, error)
}

var ErrNotFound = errors.New("not_found")

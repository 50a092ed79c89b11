package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Farmer is a seller profile. It is owned and mutated by the external
// onboarding flow; this application only reads it.
type Farmer struct {
	ID             string         `json:"id" gorm:"primaryKey;type:text"`
	Name           string         `json:"name" gorm:"type:text;not null"`
	FarmName       string         `json:"farm_name" gorm:"type:text;not null"`
	Location       string         `json:"location" gorm:"type:text;not null"`
	Certifications datatypes.JSON `json:"certifications,omitempty" gorm:"type:jsonb"`
	Rating         float64        `json:"rating" gorm:"not null;default:0"`
	CreatedAt      time.Time      `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Farmer) TableName() string { return "farmers" }

type Service interface {
	List(ctx context.Context) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
}

type Response struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	FarmName       string   `json:"farm_name"`
	Location       string   `json:"location"`
	Certifications []string `json:"certifications,omitempty"`
	Rating         float64  `json:"rating"`
}

type Repository interface {
	FindAll(ctx context.Context, db *gorm.DB) ([]Farmer, error)
	FindByID(ctx context.Context, db *gorm.DB, id string) (*Farmer, error)
}

var (
	ErrNotFound  = errors.New("not_found")
	ErrInvalidID = errors.New("invalid_id")
)

package domain

import (
	"context"
	"errors"
)

type Service interface {
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Categories(ctx context.Context) ([]string, error)
	BulkUpdate(ctx context.Context, req BulkUpdateRequest) (int, error)
}

type ListRequest struct {
	Category string
	Organic  *bool
	InStock  *bool
	Search   string
	Locale   string
}

// BulkUpdateRequest applies one partial field set to every product in IDs.
type BulkUpdateRequest struct {
	IDs      []string
	Price    *float64
	InStock  *bool
	Category *string
}

type Response struct {
	ID       string         `json:"id"`
	Name     map[string]any `json:"name"`
	Display  string         `json:"display_name"`
	Price    float64        `json:"price"`
	Image    string         `json:"image"`
	Gallery  []string       `json:"gallery,omitempty"`
	Category string         `json:"category"`
	InStock  bool           `json:"in_stock"`
	Rating   float64        `json:"rating"`
	Reviews  int            `json:"reviews"`
	Organic  bool           `json:"organic"`
	Unit     string         `json:"unit"`
}

var (
	ErrNotFound  = errors.New("not_found")
	ErrInvalidID = errors.New("invalid_id")
)

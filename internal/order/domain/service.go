package domain

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/greenmandi/storefront/pkg/db/pagination"
)

type Service interface {
	Place(ctx context.Context, req PlaceRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, *pagination.PageInfo, error)
	Get(ctx context.Context, id string) (*Response, error)
	UpdateStatus(ctx context.Context, id string, next Status) (*Response, error)
}

type PlaceRequest struct {
	UserID string      `json:"user_id"`
	Items  []PlaceItem `json:"items"`
}

type PlaceItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type ListRequest struct {
	Status Status
	Page   pagination.Pagination
}

type Response struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Status    Status     `json:"status"`
	Total     float64    `json:"total"`
	Items     []LineItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ToResponse renders an order for clients. Snowflake identifiers are carried
// as strings so values above 2^53 survive JSON number parsing.
func ToResponse(o *Order) Response {
	var items []LineItem
	if len(o.Items) > 0 {
		_ = json.Unmarshal(o.Items, &items)
	}
	return Response{
		ID:        snowflake.ID(o.ID).String(),
		UserID:    snowflake.ID(o.UserID).String(),
		Status:    o.Status,
		Total:     o.Total,
		Items:     items,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

var (
	ErrNotFound          = errors.New("not_found")
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidUser       = errors.New("invalid_user")
	ErrEmptyOrder        = errors.New("empty_order")
	ErrInvalidQuantity   = errors.New("invalid_quantity")
	ErrUnknownProduct    = errors.New("unknown_product")
	ErrOutOfStock        = errors.New("out_of_stock")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrInvalidTransition = errors.New("invalid_transition")
)

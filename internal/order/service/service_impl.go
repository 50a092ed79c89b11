package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/greenmandi/storefront/internal/catalog/store"
	"github.com/greenmandi/storefront/internal/config"
	"github.com/greenmandi/storefront/internal/mirror"
	"github.com/greenmandi/storefront/internal/order/domain"
	"github.com/greenmandi/storefront/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	Catalog *store.Store
	Runtime *config.StorefrontConfigHolder
	Topic   *mirror.Topic[domain.Order]
	Mirror  *mirror.Mirror[domain.Order]
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	catalog *store.Store
	runtime *config.StorefrontConfigHolder
	topic   *mirror.Topic[domain.Order]
	mirror  *mirror.Mirror[domain.Order]
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("order.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		catalog: p.Catalog,
		runtime: p.Runtime,
		topic:   p.Topic,
		mirror:  p.Mirror,
	}
}

func (s *Service) Place(ctx context.Context, req domain.PlaceRequest) (*domain.Response, error) {
	userID, err := snowflake.ParseString(strings.TrimSpace(req.UserID))
	if err != nil {
		return nil, domain.ErrInvalidUser
	}
	if len(req.Items) == 0 {
		return nil, domain.ErrEmptyOrder
	}

	cfg := s.runtime.Current()

	total := 0.0
	lines := make([]domain.LineItem, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		product, ok := s.catalog.Get(strings.TrimSpace(item.ProductID))
		if !ok {
			return nil, domain.ErrUnknownProduct
		}
		if !product.InStock {
			return nil, domain.ErrOutOfStock
		}
		lines = append(lines, domain.LineItem{
			ProductID: product.ID,
			Name:      product.LocalizedName(cfg.DefaultLocale, cfg.DefaultLocale),
			Price:     product.Price,
			Unit:      product.Unit,
			Quantity:  item.Quantity,
		})
		total += product.Price * float64(item.Quantity)
	}

	encoded, err := json.Marshal(lines)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:        s.genID.Generate().Int64(),
		UserID:    userID.Int64(),
		Status:    domain.StatusProcessing,
		Total:     total,
		Items:     datatypes.JSON(encoded),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, s.db, order); err != nil {
		return nil, err
	}

	s.publishSnapshot(ctx)

	resp := domain.ToResponse(order)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, *pagination.PageInfo, error) {
	if req.Status != "" && !req.Status.Valid() {
		return nil, nil, domain.ErrInvalidStatus
	}

	limit := req.Page.PageSize
	if limit <= 0 {
		limit = 20
	}

	var after *time.Time
	var afterID int64
	if token := strings.TrimSpace(req.Page.PageToken); token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err != nil {
			return nil, nil, domain.ErrInvalidID
		}
		ts, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
		if err != nil {
			return nil, nil, domain.ErrInvalidID
		}
		parsed, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return nil, nil, domain.ErrInvalidID
		}
		after = &ts
		afterID = parsed.Int64()
	}

	items, err := s.repo.List(ctx, s.db, req.Status, after, afterID, limit+1)
	if err != nil {
		return nil, nil, err
	}

	items, pageInfo := pagination.BuildCursorPageInfo(items, limit, func(o domain.Order) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{
			ID:        snowflake.ID(o.ID).String(),
			CreatedAt: o.CreatedAt.Format(time.RFC3339Nano),
		})
		return token
	})

	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, domain.ToResponse(&items[i]))
	}
	return resp, pageInfo, nil
}

// Get consults the live mirror first and falls back to a one-shot fetch, so
// a missing record surfaces as not-found rather than a blank view.
func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	orderID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	if snapshot, _ := s.mirror.Snapshot(); len(snapshot) > 0 {
		for i := range snapshot {
			if snapshot[i].ID == orderID.Int64() {
				resp := domain.ToResponse(&snapshot[i])
				return &resp, nil
			}
		}
	}

	item, err := s.repo.FindByID(ctx, s.db, orderID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	resp := domain.ToResponse(item)
	return &resp, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id string, next domain.Status) (*domain.Response, error) {
	if !next.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	orderID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, orderID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if !item.Status.CanTransition(next) {
		return nil, domain.ErrInvalidTransition
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateStatus(ctx, s.db, item.ID, next, now); err != nil {
		return nil, err
	}
	item.Status = next
	item.UpdatedAt = now

	s.publishSnapshot(ctx)

	resp := domain.ToResponse(item)
	return &resp, nil
}

// publishSnapshot re-materializes the full collection and pushes it to the
// mirror topic. A failed read degrades subscribers instead of feeding them a
// partial list.
func (s *Service) publishSnapshot(ctx context.Context) {
	items, err := s.repo.FindAll(ctx, s.db)
	if err != nil {
		s.log.Warn("failed to materialize orders snapshot", zap.Error(err))
		s.topic.Fail(err)
		return
	}
	s.topic.Publish(items)
}


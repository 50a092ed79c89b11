package analytics

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/greenmandi/storefront/internal/config"
	"github.com/greenmandi/storefront/internal/mirror"
	orderdomain "github.com/greenmandi/storefront/internal/order/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Summary struct {
	TotalRevenue  float64                    `json:"total_revenue"`
	OrderCount    int                        `json:"order_count"`
	WindowCount   int                        `json:"window_count"`
	WindowHours   float64                    `json:"window_hours"`
	AvgOrderValue float64                    `json:"avg_order_value"`
	StatusCounts  map[orderdomain.Status]int `json:"status_counts"`
	TopProducts   []ProductQuantity          `json:"top_products"`
	Degraded      bool                       `json:"degraded"`
	ComputedAt    time.Time                  `json:"computed_at"`
}

type ProductQuantity struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
}

type Params struct {
	fx.In

	Log     *zap.Logger
	Runtime *config.StorefrontConfigHolder
	Mirror  *mirror.Mirror[orderdomain.Order]
}

// Service computes dashboard aggregates from the orders mirror. Results are
// memoized against the mirror generation so an unchanged snapshot never
// triggers recomputation.
type Service struct {
	log     *zap.Logger
	runtime *config.StorefrontConfigHolder
	mirror  *mirror.Mirror[orderdomain.Order]

	mu       sync.Mutex
	cachedAt uint64
	cached   *Summary
}

func New(p Params) *Service {
	return &Service{
		log:     p.Log.Named("analytics.service"),
		runtime: p.Runtime,
		mirror:  p.Mirror,
	}
}

func (s *Service) Summary() Summary {
	snapshot, generation := s.mirror.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && s.cachedAt == generation {
		out := *s.cached
		out.Degraded = s.mirror.Err() != nil
		return out
	}

	window := s.runtime.Current().RevenueWindow
	now := time.Now().UTC()

	revenue := TotalRevenue(snapshot)
	windowed := OrdersWithin(snapshot, now, window)

	summary := Summary{
		TotalRevenue:  revenue,
		OrderCount:    len(snapshot),
		WindowCount:   len(windowed),
		WindowHours:   window.Hours(),
		AvgOrderValue: AvgOrderValue(revenue, len(snapshot)),
		StatusCounts:  StatusCounts(snapshot),
		TopProducts:   topProducts(snapshot, 5),
		Degraded:      s.mirror.Err() != nil,
		ComputedAt:    now,
	}

	s.cached = &summary
	s.cachedAt = generation
	return summary
}

func topProducts(orders []orderdomain.Order, limit int) []ProductQuantity {
	quantities := make(map[string]*ProductQuantity)
	for _, o := range orders {
		var lines []orderdomain.LineItem
		if err := json.Unmarshal(o.Items, &lines); err != nil {
			continue
		}
		for _, line := range lines {
			pq, ok := quantities[line.ProductID]
			if !ok {
				pq = &ProductQuantity{ProductID: line.ProductID, Name: line.Name}
				quantities[line.ProductID] = pq
			}
			pq.Quantity += line.Quantity
		}
	}

	out := make([]ProductQuantity, 0, len(quantities))
	for _, pq := range quantities {
		out = append(out, *pq)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].ProductID < out[j].ProductID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

var Module = fx.Module("analytics",
	fx.Provide(New),
)

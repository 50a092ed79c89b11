package analytics

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/greenmandi/storefront/internal/config"
	"github.com/greenmandi/storefront/internal/mirror"
	orderdomain "github.com/greenmandi/storefront/internal/order/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/datatypes"
)

func makeOrder(id int64, total float64, age time.Duration, status orderdomain.Status, items []orderdomain.LineItem) orderdomain.Order {
	encoded, _ := json.Marshal(items)
	return orderdomain.Order{
		ID:        id,
		UserID:    1,
		Status:    status,
		Total:     total,
		Items:     datatypes.JSON(encoded),
		CreatedAt: time.Now().UTC().Add(-age),
	}
}

func TestTotalRevenue(t *testing.T) {
	orders := []orderdomain.Order{
		makeOrder(1, 100, time.Hour, orderdomain.StatusProcessing, nil),
		makeOrder(2, 250.5, 2*time.Hour, orderdomain.StatusDelivered, nil),
	}
	assert.Equal(t, 350.5, TotalRevenue(orders))
	assert.Zero(t, TotalRevenue(nil))
}

func TestOrdersWithinSlidingWindow(t *testing.T) {
	now := time.Now().UTC()
	orders := []orderdomain.Order{
		makeOrder(1, 100, time.Hour, orderdomain.StatusProcessing, nil),
		makeOrder(2, 100, 23*time.Hour, orderdomain.StatusProcessing, nil),
		makeOrder(3, 100, 25*time.Hour, orderdomain.StatusDelivered, nil),
	}
	within := OrdersWithin(orders, now, 24*time.Hour)
	require.Len(t, within, 2)
}

func TestAvgOrderValueZeroOrders(t *testing.T) {
	assert.Equal(t, 0.0, AvgOrderValue(0, 0), "no NaN, no panic")
	assert.Equal(t, 50.0, AvgOrderValue(100, 2))
}

func TestSummaryIsIdempotentPerGeneration(t *testing.T) {
	topic := mirror.NewTopic[orderdomain.Order]()
	m := mirror.NewMirror(topic)

	svc := New(Params{
		Log:     zaptest.NewLogger(t),
		Runtime: &config.StorefrontConfigHolder{},
		Mirror:  m,
	})

	first := svc.Summary()
	second := svc.Summary()
	assert.Equal(t, first.TotalRevenue, second.TotalRevenue)
	assert.Equal(t, first.ComputedAt, second.ComputedAt, "memoized while generation unchanged")
	assert.Equal(t, 0.0, first.AvgOrderValue)
}

func TestSummaryAggregates(t *testing.T) {
	topic := mirror.NewTopic[orderdomain.Order]()
	m := mirror.NewMirror(topic)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	items := []orderdomain.LineItem{
		{ProductID: "tomato", Name: "Tomato", Price: 40, Unit: "kg", Quantity: 2},
	}
	orders := []orderdomain.Order{
		makeOrder(1, 80, time.Hour, orderdomain.StatusProcessing, items),
		makeOrder(2, 120, 30*time.Hour, orderdomain.StatusDelivered, items),
	}
	topic.Publish(orders)

	require.Eventually(t, func() bool {
		snapshot, _ := m.Snapshot()
		return len(snapshot) == 2
	}, time.Second, 5*time.Millisecond)

	svc := New(Params{
		Log:     zaptest.NewLogger(t),
		Runtime: &config.StorefrontConfigHolder{},
		Mirror:  m,
	})

	summary := svc.Summary()
	assert.Equal(t, 200.0, summary.TotalRevenue)
	assert.Equal(t, 2, summary.OrderCount)
	assert.Equal(t, 1, summary.WindowCount, "25h-old order falls outside the 24h window")
	assert.Equal(t, 100.0, summary.AvgOrderValue)
	assert.Equal(t, 1, summary.StatusCounts[orderdomain.StatusProcessing])
	assert.Equal(t, 1, summary.StatusCounts[orderdomain.StatusDelivered])
	require.Len(t, summary.TopProducts, 1)
	assert.Equal(t, 4, summary.TopProducts[0].Quantity)
	assert.False(t, summary.Degraded)

	// Unchanged generation returns the memoized summary.
	again := svc.Summary()
	assert.Equal(t, summary.ComputedAt, again.ComputedAt)

	// Degradation flips the flag without recomputing the data.
	topic.Fail(assert.AnError)
	require.Eventually(t, func() bool {
		return m.Err() != nil
	}, time.Second, 5*time.Millisecond)
	degraded := svc.Summary()
	assert.True(t, degraded.Degraded)
	assert.Equal(t, 200.0, degraded.TotalRevenue)
}

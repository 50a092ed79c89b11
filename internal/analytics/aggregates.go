package analytics

import (
	"time"

	orderdomain "github.com/greenmandi/storefront/internal/order/domain"
)

// TotalRevenue sums the total over all orders.
func TotalRevenue(orders []orderdomain.Order) float64 {
	total := 0.0
	for _, o := range orders {
		total += o.Total
	}
	return total
}

// OrdersWithin returns the orders created at or after now minus window. The
// window slides at compute time; the result only changes when the snapshot
// does, which is an accepted staleness tradeoff.
func OrdersWithin(orders []orderdomain.Order, now time.Time, window time.Duration) []orderdomain.Order {
	cutoff := now.Add(-window)
	out := make([]orderdomain.Order, 0, len(orders))
	for _, o := range orders {
		if !o.CreatedAt.Before(cutoff) {
			out = append(out, o)
		}
	}
	return out
}

// AvgOrderValue is revenue over count, 0 when there are no orders.
func AvgOrderValue(revenue float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return revenue / float64(count)
}

// StatusCounts tallies orders per status.
func StatusCounts(orders []orderdomain.Order) map[orderdomain.Status]int {
	counts := make(map[orderdomain.Status]int, len(orders))
	for _, o := range orders {
		counts[o.Status]++
	}
	return counts
}

package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	orderdomain "github.com/greenmandi/storefront/internal/order/domain"
)

func TestWriteOrderSnapshotRendersStringIDs(t *testing.T) {
	now := time.Now().UTC()
	order := orderdomain.Order{
		ID:        2094101660639956992,
		UserID:    1234567890123456789,
		Status:    orderdomain.StatusProcessing,
		Total:     120,
		Items:     datatypes.JSON(`[{"product_id":"tomato","name":"Tomato","price":40,"unit":"kg","quantity":3}]`),
		CreatedAt: now,
		UpdatedAt: now,
	}

	var buf bytes.Buffer
	require.NoError(t, writeOrderSnapshot(&buf, []orderdomain.Order{order}, nil))

	payload := buf.String()
	require.True(t, strings.HasPrefix(payload, "data: "))
	// IDs wider than 2^53 must not go out as bare JSON numbers.
	require.Contains(t, payload, `"id":"2094101660639956992"`)
	require.Contains(t, payload, `"user_id":"1234567890123456789"`)
	require.NotContains(t, payload, `"id":2094101660639956992`)

	var event orderStreamEvent
	body := strings.TrimSpace(strings.TrimPrefix(payload, "data: "))
	require.NoError(t, json.Unmarshal([]byte(body), &event))
	require.Len(t, event.Orders, 1)
	require.Equal(t, "2094101660639956992", event.Orders[0].ID)
	require.Len(t, event.Orders[0].Items, 1)
	require.Equal(t, "tomato", event.Orders[0].Items[0].ProductID)
	require.False(t, event.Degraded)
}

func TestWriteOrderSnapshotDegraded(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeOrderSnapshot(&buf, nil, errors.New("orders_offline")))

	var event orderStreamEvent
	body := strings.TrimSpace(strings.TrimPrefix(buf.String(), "data: "))
	require.NoError(t, json.Unmarshal([]byte(body), &event))
	require.True(t, event.Degraded)
	require.Equal(t, "orders_offline", event.Error)
	require.Empty(t, event.Orders)
}

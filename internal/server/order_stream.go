package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	orderdomain "github.com/greenmandi/storefront/internal/order/domain"
)

// StreamOrders pushes the full order snapshot to the admin dashboard over
// SSE. Every event carries the complete current collection; the client
// replaces its copy wholesale instead of patching.
func (s *Server) StreamOrders(c *gin.Context) {
	if s.orderTopic == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	subscription, snapshot, hasSnapshot := s.orderTopic.Subscribe()
	defer subscription.Close()

	writer := c.Writer
	headers := writer.Header()
	headers.Set("Content-Type", "text/event-stream")
	headers.Set("Cache-Control", "no-cache")
	headers.Set("Connection", "keep-alive")
	headers.Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	flusher, ok := writer.(http.Flusher)
	if !ok {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	if _, err := io.WriteString(writer, "retry: 2000\n\n"); err != nil {
		return
	}

	if hasSnapshot {
		if err := writeOrderSnapshot(writer, snapshot, nil); err != nil {
			return
		}
	}
	flusher.Flush()

	ctx := c.Request.Context()
	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case update := <-subscription.Updates():
			if err := writeOrderSnapshot(writer, update.Snapshot, update.Err); err != nil {
				return
			}
			flusher.Flush()
		case <-heartbeat.C:
			if _, err := io.WriteString(writer, ": heartbeat\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

type orderStreamEvent struct {
	Orders   []orderdomain.Response `json:"orders"`
	Degraded bool                   `json:"degraded,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

// writeOrderSnapshot renders records through the same response view as the
// REST handlers, keeping snowflake identifiers as strings on the wire.
func writeOrderSnapshot(w io.Writer, snapshot []orderdomain.Order, streamErr error) error {
	event := orderStreamEvent{Orders: make([]orderdomain.Response, 0, len(snapshot))}
	for i := range snapshot {
		event.Orders = append(event.Orders, orderdomain.ToResponse(&snapshot[i]))
	}
	if streamErr != nil {
		event.Degraded = true
		event.Error = streamErr.Error()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}

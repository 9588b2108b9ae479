package api

import (
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/partybus-booking-backend/internal/db"
)

const keepAliveInterval = 25 * time.Second

// ChangeSource is implemented by db.Hub.
type ChangeSource interface {
	Subscribe(collections ...string) (<-chan db.Change, func())
}

type StreamHandler struct {
	changes   ChangeSource
	keepAlive time.Duration
}

func NewStreamHandler(changes ChangeSource) *StreamHandler {
	return &StreamHandler{changes: changes, keepAlive: keepAliveInterval}
}

// GET /v1/admin/stream?collections=bookings,drivers
// Each change is sent as a "change" event until the client goes away.
func (h *StreamHandler) Stream(c *gin.Context) {
	var collections []string
	for _, part := range strings.Split(c.Query("collections"), ",") {
		if p := strings.TrimSpace(part); p != "" {
			collections = append(collections, p)
		}
	}

	ch, unsubscribe := h.changes.Subscribe(collections...)
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case change, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("change", change)
			return true
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			return true
		}
	})
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"leadinbox/pkg/outbox"
)

type OutboxAdmin interface {
	GetFailedEvents(ctx context.Context, limit int) ([]*outbox.Event, error)
	ReplayEvent(ctx context.Context, eventID int64) error
}

// AdminHandler exposes the operational surface for parked outbox events:
// list what gave up after max retries, and push an event back to pending.
type AdminHandler struct {
	outbox OutboxAdmin
	logger *zap.Logger
}

func NewAdminHandler(outbox OutboxAdmin, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		outbox: outbox,
		logger: logger,
	}
}

type outboxEventView struct {
	ID          int64           `json:"id"`
	RoutingKey  string          `json:"routing_key"`
	Payload     json.RawMessage `json:"payload"`
	RetryCount  int             `json:"retry_count"`
	NextRetryAt *time.Time      `json:"next_retry_at,omitempty"`
	CreatedAt   string          `json:"created_at"`
}

// ListFailedEvents handles GET /admin/outbox/failed.
func (h *AdminHandler) ListFailedEvents(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	events, err := h.outbox.GetFailedEvents(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list failed outbox events", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list events"})
		return
	}

	views := make([]outboxEventView, 0, len(events))
	for _, e := range events {
		views = append(views, outboxEventView{
			ID:          e.ID,
			RoutingKey:  e.RoutingKey,
			Payload:     e.Payload,
			RetryCount:  e.RetryCount,
			NextRetryAt: e.NextRetryAt,
			CreatedAt:   e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "events": views})
}

// ReplayEvent handles POST /admin/outbox/:id/replay.
func (h *AdminHandler) ReplayEvent(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	if err := h.outbox.ReplayEvent(c.Request.Context(), id); err != nil {
		h.logger.Error("Failed to replay outbox event", zap.Int64("event_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to replay event"})
		return
	}

	h.logger.Info("Outbox event replayed", zap.Int64("event_id", id))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"leadinbox/internal/model"
)

type IngestService interface {
	Sync(ctx context.Context, accountEmail string) (int, error)
}

type ClassifyService interface {
	Categorize(ctx context.Context, messageID string) (model.Category, error)
}

type NotifyService interface {
	Notify(ctx context.Context, emailID int64) error
}

// PipelineHandler exposes the three pipeline stages as independent endpoints.
type PipelineHandler struct {
	ingest   IngestService
	classify ClassifyService
	notify   NotifyService
	logger   *zap.Logger
}

func NewPipelineHandler(
	ingest IngestService,
	classify ClassifyService,
	notify NotifyService,
	logger *zap.Logger,
) *PipelineHandler {
	return &PipelineHandler{
		ingest:   ingest,
		classify: classify,
		notify:   notify,
		logger:   logger,
	}
}

// SyncEmails handles POST /sync-emails.
func (h *PipelineHandler) SyncEmails(c *gin.Context) {
	var req struct {
		AccountEmail string `json:"accountEmail" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	count, err := h.ingest.Sync(c.Request.Context(), req.AccountEmail)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
			return
		}
		h.logger.Error("Sync failed", zap.String("account_email", req.AccountEmail), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sync failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
}

// CategorizeEmail handles POST /categorize-email. emailId is the
// source-system message identifier.
func (h *PipelineHandler) CategorizeEmail(c *gin.Context) {
	var req struct {
		EmailID string `json:"emailId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	category, err := h.classify.Categorize(c.Request.Context(), req.EmailID)
	if err != nil {
		if errors.Is(err, model.ErrEmailNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "email not found"})
			return
		}
		h.logger.Error("Categorization failed", zap.String("message_id", req.EmailID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "categorization failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "category": category.String()})
}

// NotifyWebhook handles POST /notify-webhook. emailId is the store id.
func (h *PipelineHandler) NotifyWebhook(c *gin.Context) {
	var req struct {
		EmailID string `json:"emailId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	emailID, err := strconv.ParseInt(req.EmailID, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email id"})
		return
	}

	if err := h.notify.Notify(c.Request.Context(), emailID); err != nil {
		if errors.Is(err, model.ErrEmailNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "email not found"})
			return
		}
		h.logger.Error("Notification failed", zap.Int64("email_id", emailID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "notification failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

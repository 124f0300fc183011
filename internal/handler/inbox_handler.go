package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"leadinbox/internal/model"
)

type AccountResolver interface {
	FindByEmail(ctx context.Context, email string) (*model.Account, error)
}

type EmailReader interface {
	ListByAccount(ctx context.Context, accountID int64) ([]model.Email, error)
	MarkAsRead(ctx context.Context, id int64) error
}

// InboxHandler serves the read-side endpoints the inbox UI consumes.
type InboxHandler struct {
	accounts AccountResolver
	emails   EmailReader
	logger   *zap.Logger
}

func NewInboxHandler(accounts AccountResolver, emails EmailReader, logger *zap.Logger) *InboxHandler {
	return &InboxHandler{
		accounts: accounts,
		emails:   emails,
		logger:   logger,
	}
}

type emailView struct {
	ID          int64  `json:"id"`
	MessageID   string `json:"message_id"`
	FromAddress string `json:"from_address"`
	ToAddress   string `json:"to_address"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	Folder      string `json:"folder"`
	ReceivedAt  string `json:"received_at"`
	IsRead      bool   `json:"is_read"`
	Category    string `json:"category"`
}

// ListEmails handles GET /emails?accountEmail=...
func (h *InboxHandler) ListEmails(c *gin.Context) {
	accountEmail := c.Query("accountEmail")
	if accountEmail == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "accountEmail is required"})
		return
	}

	account, err := h.accounts.FindByEmail(c.Request.Context(), accountEmail)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
			return
		}
		h.logger.Error("Failed to resolve account", zap.String("account_email", accountEmail), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list emails"})
		return
	}

	emails, err := h.emails.ListByAccount(c.Request.Context(), account.ID)
	if err != nil {
		h.logger.Error("Failed to list emails", zap.Int64("account_id", account.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list emails"})
		return
	}

	views := make([]emailView, 0, len(emails))
	for _, e := range emails {
		views = append(views, emailView{
			ID:          e.ID,
			MessageID:   e.MessageID,
			FromAddress: e.FromAddress,
			ToAddress:   e.ToAddress,
			Subject:     e.Subject,
			Body:        e.Body,
			Folder:      e.Folder,
			ReceivedAt:  e.ReceivedAt.UTC().Format(time.RFC3339),
			IsRead:      e.IsRead,
			Category:    e.Category.String(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "emails": views})
}

// MarkRead handles POST /emails/:id/read.
func (h *InboxHandler) MarkRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email id"})
		return
	}

	if err := h.emails.MarkAsRead(c.Request.Context(), id); err != nil {
		h.logger.Error("Failed to mark email as read", zap.Int64("email_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark as read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

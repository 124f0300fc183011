package mqhandler

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"

	mqcontracts "leadinbox/contracts/mq"
	"leadinbox/internal/model"
	"leadinbox/pkg/logger"
	"leadinbox/pkg/mq"
	"leadinbox/pkg/trace"
	"leadinbox/pkg/util"
)

const notifyTimeout = 30 * time.Second

type Notifier interface {
	Notify(ctx context.Context, emailID int64) error
}

// EmailInterestedNotifyHandler consumes email.interested events and runs the
// notification stage. Duplicate deliveries are suppressed with a Redis
// once-lock so a lead is not announced twice.
type EmailInterestedNotifyHandler struct {
	notify  Notifier
	deduper *util.Deduper
	dlq     DLQPublisher
	logger  *zap.Logger
}

func NewEmailInterestedNotifyHandler(
	notify Notifier,
	deduper *util.Deduper,
	dlq DLQPublisher,
	log *zap.Logger,
) *EmailInterestedNotifyHandler {
	return &EmailInterestedNotifyHandler{
		notify:  notify,
		deduper: deduper,
		dlq:     dlq,
		logger:  log,
	}
}

func (h *EmailInterestedNotifyHandler) HandleEmailInterested(ctx context.Context, raw json.RawMessage) error {
	var p mqcontracts.EmailInterestedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal email.interested payload, sending to DLQ",
			zap.Error(err),
			zap.String("raw_payload", string(raw)),
		)
		if dlqErr := h.dlq.PublishToDLQ(mq.RoutingKeyEmailInterested, raw, err.Error()); dlqErr != nil {
			h.logger.Error("Failed to publish to DLQ", zap.Error(dlqErr))
		}
		return nil
	}

	if p.TraceID != "" {
		ctx = trace.WithContext(ctx, p.TraceID)
	}
	log := logger.WithTrace(ctx, h.logger)

	key := strconv.FormatInt(p.EmailID, 10)
	if !h.deduper.AcquireOnce(ctx, "notify", key) {
		log.Info("Duplicate notification event skipped",
			zap.Int64("email_id", p.EmailID),
		)
		return nil
	}

	notifyCtx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	if err := h.notify.Notify(notifyCtx, p.EmailID); err != nil {
		if errors.Is(err, model.ErrEmailNotFound) {
			log.Warn("Email not found, dropping event",
				zap.Int64("email_id", p.EmailID),
			)
			return nil
		}

		isRetryable, errType := util.IsRetryableError(err)
		log.Error("Notification failed",
			zap.Int64("email_id", p.EmailID),
			zap.String("error_type", errType),
			zap.Bool("retryable", isRetryable),
			zap.Error(err),
		)
		if isRetryable {
			// release the once-lock so the redelivery is not deduped away
			h.deduper.Release(ctx, "notify", key)
			return err
		}
		return nil
	}

	log.Info("Notification event processed",
		zap.Int64("email_id", p.EmailID),
	)

	return nil
}

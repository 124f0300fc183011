package mqhandler

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	mqcontracts "leadinbox/contracts/mq"
	"leadinbox/internal/model"
	"leadinbox/pkg/logger"
	"leadinbox/pkg/mq"
	"leadinbox/pkg/trace"
	"leadinbox/pkg/util"
)

const (
	maxClassifyRetries  = 5
	classifyTimeout     = 30 * time.Second
	defaultRequeueDelay = 2 * time.Second
)

type Categorizer interface {
	Categorize(ctx context.Context, messageID string) (model.Category, error)
}

type DLQPublisher interface {
	PublishToDLQ(routingKey string, payload []byte, originalError string) error
}

// EmailReceivedClassifyHandler consumes email.received events and runs the
// classification stage. Redeliveries are capped via a Redis retry counter;
// unparseable payloads go straight to the DLQ.
type EmailReceivedClassifyHandler struct {
	classify     Categorizer
	retryCounter *util.RetryCounter
	dlq          DLQPublisher
	logger       *zap.Logger
	// requeueDelay paces nacks while the retry counter is unreachable,
	// since the cap cannot advance without it.
	requeueDelay time.Duration
}

func NewEmailReceivedClassifyHandler(
	classify Categorizer,
	retryCounter *util.RetryCounter,
	dlq DLQPublisher,
	log *zap.Logger,
) *EmailReceivedClassifyHandler {
	return &EmailReceivedClassifyHandler{
		classify:     classify,
		retryCounter: retryCounter,
		dlq:          dlq,
		logger:       log,
		requeueDelay: defaultRequeueDelay,
	}
}

// HandleEmailReceived returns an error only for retryable failures under the
// retry cap; everything else is acked so the queue keeps moving.
func (h *EmailReceivedClassifyHandler) HandleEmailReceived(ctx context.Context, raw json.RawMessage) error {
	var p mqcontracts.EmailReceivedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal email.received payload, sending to DLQ",
			zap.Error(err),
			zap.String("raw_payload", string(raw)),
		)
		if dlqErr := h.dlq.PublishToDLQ(mq.RoutingKeyEmailReceived, raw, err.Error()); dlqErr != nil {
			h.logger.Error("Failed to publish to DLQ", zap.Error(dlqErr))
		}
		return nil
	}

	if p.TraceID != "" {
		ctx = trace.WithContext(ctx, p.TraceID)
	}
	log := logger.WithTrace(ctx, h.logger)

	log.Info("Processing classification event",
		zap.Int64("email_id", p.EmailID),
		zap.String("message_id", p.MessageID),
	)

	retryKey := util.FormatRetryKey("classify", p.MessageID)
	retryCount, err := h.retryCounter.IncrementAndGet(ctx, retryKey)
	counterDown := err != nil
	if counterDown {
		// Redis being down must not stall classification.
		log.Warn("Failed to get retry count, continuing anyway",
			zap.String("message_id", p.MessageID),
			zap.Error(err),
		)
		retryCount = 1
	}

	classifyCtx, cancel := context.WithTimeout(ctx, classifyTimeout)
	defer cancel()

	category, err := h.classify.Categorize(classifyCtx, p.MessageID)
	if err != nil {
		if errors.Is(err, model.ErrEmailNotFound) {
			log.Warn("Email not found, dropping event",
				zap.String("message_id", p.MessageID),
			)
			h.retryCounter.Reset(ctx, retryKey)
			return nil
		}

		isRetryable, errType := util.IsRetryableError(err)
		log.Error("Classification failed",
			zap.String("message_id", p.MessageID),
			zap.String("error_type", errType),
			zap.Bool("retryable", isRetryable),
			zap.Int64("retry_count", retryCount),
			zap.Error(err),
		)

		if util.ShouldRetry(retryCount, maxClassifyRetries, isRetryable) {
			if counterDown {
				// Pinned at retry 1 the cap never trips, so pace the
				// redelivery instead of nack-looping at full speed.
				select {
				case <-time.After(h.requeueDelay):
				case <-ctx.Done():
				}
			}
			// nack and let MQ redeliver
			return err
		}

		log.Warn("Giving up on classification event",
			zap.String("message_id", p.MessageID),
			zap.Int64("retry_count", retryCount),
		)
		h.retryCounter.Reset(ctx, retryKey)
		return nil
	}

	h.retryCounter.Reset(ctx, retryKey)

	log.Info("Classification event processed",
		zap.Int64("email_id", p.EmailID),
		zap.String("category", category.String()),
	)

	return nil
}

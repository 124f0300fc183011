package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"leadinbox/internal/model"
	"leadinbox/pkg/logger"
	"leadinbox/pkg/metrics"
)

const storeTimeout = 5 * time.Second

type EmailStore interface {
	FindByID(ctx context.Context, id int64) (*model.Email, error)
}

type NotificationStore interface {
	Insert(ctx context.Context, n *model.WebhookNotification) (int64, error)
}

// Sink is one outbound notification channel.
type Sink interface {
	Name() string
	URL() string
	Deliver(ctx context.Context, e *model.Email) (string, error)
}

// Service is the notification stage: deliver an interested lead to every
// configured sink independently and append one audit record per attempt.
type Service struct {
	emails        EmailStore
	notifications NotificationStore
	sinks         []Sink
	logger        *zap.Logger
}

func NewService(emails EmailStore, notifications NotificationStore, sinks []Sink, log *zap.Logger) *Service {
	return &Service{
		emails:        emails,
		notifications: notifications,
		sinks:         sinks,
		logger:        log,
	}
}

// Notify delivers the message to all sinks. Sink failures are best-effort and
// never propagate; the stage fails only when the message cannot be loaded.
func (s *Service) Notify(ctx context.Context, emailID int64) error {
	log := logger.WithTrace(ctx, s.logger)

	findCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	email, err := s.emails.FindByID(findCtx, emailID)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to load email %d: %w", emailID, err)
	}

	log.Info("Sending notifications",
		zap.Int64("email_id", email.ID),
		zap.String("subject", email.Subject),
	)

	for _, sink := range s.sinks {
		s.deliverOne(ctx, log, sink, email)
	}

	return nil
}

// deliverOne attempts one sink and records the outcome. One sink's outage
// must not suppress delivery to the others.
func (s *Service) deliverOne(ctx context.Context, log *zap.Logger, sink Sink, email *model.Email) {
	record := &model.WebhookNotification{
		EmailID:    email.ID,
		WebhookURL: sink.URL(),
	}

	response, err := sink.Deliver(ctx, email)
	if err != nil {
		log.Error("Sink delivery failed",
			zap.Int64("email_id", email.ID),
			zap.String("sink", sink.Name()),
			zap.Error(err),
		)
		record.Status = model.NotificationStatusFailed
		if response != "" {
			record.Response = response
		} else {
			record.Response = err.Error()
		}
	} else {
		log.Info("Sink delivery succeeded",
			zap.Int64("email_id", email.ID),
			zap.String("sink", sink.Name()),
		)
		record.Status = model.NotificationStatusSent
		record.Response = response
	}
	metrics.IncrementWebhookDelivery(sink.Name(), record.Status)

	insertCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if _, err := s.notifications.Insert(insertCtx, record); err != nil {
		log.Error("Failed to insert notification record",
			zap.Int64("email_id", email.ID),
			zap.String("sink", sink.Name()),
			zap.Error(err),
		)
	}
}

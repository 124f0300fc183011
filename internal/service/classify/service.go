package classify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	mqcontracts "leadinbox/contracts/mq"
	"leadinbox/internal/model"
	"leadinbox/pkg/logger"
	"leadinbox/pkg/metrics"
	"leadinbox/pkg/mq"
	"leadinbox/pkg/trace"
)

const storeTimeout = 5 * time.Second

type EmailStore interface {
	FindByMessageID(ctx context.Context, messageID string) (*model.Email, error)
	UpdateCategory(ctx context.Context, id int64, category model.Category) error
}

type Classifier interface {
	Classify(ctx context.Context, subject, body string) (string, error)
}

type Publisher interface {
	Publish(routingKey string, payload any) error
}

// Service is the classification stage: load, call the classifier, normalize
// into the fixed taxonomy, persist, and trigger notification for interested
// leads.
type Service struct {
	emails    EmailStore
	ai        Classifier
	publisher Publisher
	logger    *zap.Logger
}

func NewService(emails EmailStore, ai Classifier, publisher Publisher, log *zap.Logger) *Service {
	return &Service{
		emails:    emails,
		ai:        ai,
		publisher: publisher,
		logger:    log,
	}
}

// Categorize classifies one message and returns the persisted category.
// Classifier failures are fatal for the invocation and leave the stored
// category unchanged; redelivery is safe because persisting the same label
// twice is idempotent.
func (s *Service) Categorize(ctx context.Context, messageID string) (model.Category, error) {
	log := logger.WithTrace(ctx, s.logger)

	findCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	email, err := s.emails.FindByMessageID(findCtx, messageID)
	cancel()
	if err != nil {
		return "", fmt.Errorf("failed to load email %q: %w", messageID, err)
	}

	log.Info("Categorizing email",
		zap.Int64("email_id", email.ID),
		zap.String("message_id", messageID),
		zap.String("subject", email.Subject),
	)

	reply, err := s.ai.Classify(ctx, email.Subject, email.Body)
	if err != nil {
		return "", fmt.Errorf("classification failed: %w", err)
	}

	category, ok := model.ParseCategory(reply)
	if !ok {
		// Taxonomy violation: never persist an unknown label verbatim.
		log.Warn("Classifier returned unknown category, coercing to uncategorized",
			zap.Int64("email_id", email.ID),
			zap.String("raw_category", reply),
		)
	}

	updateCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	err = s.emails.UpdateCategory(updateCtx, email.ID, category)
	cancel()
	if err != nil {
		return "", fmt.Errorf("failed to persist category: %w", err)
	}
	metrics.IncrementEmailsClassified(category.String())

	log.Info("Email categorized",
		zap.Int64("email_id", email.ID),
		zap.String("category", category.String()),
	)

	// Conditional fan-out: only interested leads notify, and only best-effort.
	if category == model.CategoryInterested {
		payload := mqcontracts.EmailInterestedPayload{
			EmailID:  email.ID,
			Category: category.String(),
			TraceID:  trace.FromContext(ctx),
		}
		if err := s.publisher.Publish(mq.RoutingKeyEmailInterested, payload); err != nil {
			log.Error("Failed to publish notification trigger",
				zap.Int64("email_id", email.ID),
				zap.Error(err),
			)
		}
	}

	return category, nil
}

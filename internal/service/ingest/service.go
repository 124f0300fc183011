package ingest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	mqcontracts "leadinbox/contracts/mq"
	"leadinbox/internal/mailsource"
	"leadinbox/internal/model"
	"leadinbox/pkg/logger"
	"leadinbox/pkg/metrics"
	"leadinbox/pkg/trace"
)

const storeTimeout = 5 * time.Second

type AccountStore interface {
	FindByEmail(ctx context.Context, email string) (*model.Account, error)
	UpdateLastSync(ctx context.Context, id int64, syncedAt time.Time) error
}

type EmailStore interface {
	Upsert(ctx context.Context, e *model.Email) (int64, error)
}

type Enqueuer interface {
	EnqueueEmailReceived(ctx context.Context, p mqcontracts.EmailReceivedPayload) error
}

// Service is the ingestion stage: fetch candidates, upsert with dedup, trigger
// classification per message, stamp last_sync_at.
type Service struct {
	accounts AccountStore
	emails   EmailStore
	source   mailsource.Source
	events   Enqueuer
	logger   *zap.Logger
}

func NewService(
	accounts AccountStore,
	emails EmailStore,
	source mailsource.Source,
	events Enqueuer,
	log *zap.Logger,
) *Service {
	return &Service{
		accounts: accounts,
		emails:   emails,
		source:   source,
		events:   events,
		logger:   log,
	}
}

// Sync runs one ingestion pass for the account and returns the number of
// messages upserted. A failed upsert skips that one candidate; only a failure
// resolving the account is fatal.
func (s *Service) Sync(ctx context.Context, accountEmail string) (int, error) {
	log := logger.WithTrace(ctx, s.logger)

	findCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	account, err := s.accounts.FindByEmail(findCtx, accountEmail)
	cancel()
	if err != nil {
		return 0, fmt.Errorf("failed to resolve account %q: %w", accountEmail, err)
	}

	log.Info("Syncing emails",
		zap.Int64("account_id", account.ID),
		zap.String("email", account.Email),
	)

	candidates, err := s.source.FetchCandidates(ctx, account)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch candidates: %w", err)
	}

	count := 0
	for _, raw := range candidates {
		email := &model.Email{
			AccountID:   account.ID,
			UserID:      account.UserID,
			MessageID:   raw.MessageID,
			FromAddress: raw.FromAddress,
			ToAddress:   raw.ToAddress,
			Subject:     raw.Subject,
			Body:        raw.Body,
			Folder:      raw.Folder,
			ReceivedAt:  raw.ReceivedAt,
			Category:    model.CategoryUncategorized,
		}

		upsertCtx, cancel := context.WithTimeout(ctx, storeTimeout)
		id, err := s.emails.Upsert(upsertCtx, email)
		cancel()
		if err != nil {
			// One bad candidate never aborts the batch.
			log.Error("Failed to upsert email, skipping",
				zap.Int64("account_id", account.ID),
				zap.String("message_id", raw.MessageID),
				zap.Error(err),
			)
			metrics.IncrementEmailsIngested("failed")
			continue
		}
		count++
		metrics.IncrementEmailsIngested("upserted")

		// Fire-and-forget: ingestion does not block on, or fail because of,
		// classification's outcome.
		payload := mqcontracts.EmailReceivedPayload{
			EmailID:    id,
			AccountID:  account.ID,
			UserID:     account.UserID,
			MessageID:  raw.MessageID,
			Subject:    raw.Subject,
			ReceivedAt: raw.ReceivedAt,
			TraceID:    trace.FromContext(ctx),
		}
		if err := s.events.EnqueueEmailReceived(ctx, payload); err != nil {
			log.Error("Failed to enqueue classification trigger",
				zap.Int64("email_id", id),
				zap.String("message_id", raw.MessageID),
				zap.Error(err),
			)
		}
	}

	// Stamp the run even when individual upserts failed.
	syncCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	err = s.accounts.UpdateLastSync(syncCtx, account.ID, time.Now())
	cancel()
	if err != nil {
		log.Error("Failed to update last sync time",
			zap.Int64("account_id", account.ID),
			zap.Error(err),
		)
	}

	log.Info("Sync completed",
		zap.Int64("account_id", account.ID),
		zap.Int("candidates", len(candidates)),
		zap.Int("upserted", count),
	)

	return count, nil
}

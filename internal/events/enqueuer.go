package events

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	mqcontracts "leadinbox/contracts/mq"
	"leadinbox/pkg/mq"
	"leadinbox/pkg/outbox"
)

// OutboxEnqueuer durably enqueues pipeline triggers through the outbox table;
// the dispatcher publishes them to MQ out of band. A broker outage therefore
// delays classification triggers instead of dropping them.
type OutboxEnqueuer struct {
	db     *pgxpool.Pool
	repo   *outbox.Repository
	logger *zap.Logger
}

func NewOutboxEnqueuer(db *pgxpool.Pool, repo *outbox.Repository, logger *zap.Logger) *OutboxEnqueuer {
	return &OutboxEnqueuer{
		db:     db,
		repo:   repo,
		logger: logger,
	}
}

// EnqueueEmailReceived records an email.received trigger for the dispatcher.
func (e *OutboxEnqueuer) EnqueueEmailReceived(ctx context.Context, p mqcontracts.EmailReceivedPayload) error {
	tx, err := e.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	emailID := p.EmailID
	if err := outbox.InsertEventInTx(ctx, tx, e.repo, "email", &emailID, mq.RoutingKeyEmailReceived, p); err != nil {
		e.logger.Error("Failed to insert email.received to outbox",
			zap.Int64("email_id", p.EmailID),
			zap.Error(err),
		)
		return err
	}

	return tx.Commit(ctx)
}

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"leadinbox/internal/model"
	"leadinbox/pkg/metrics"
)

type AccountRepository struct {
	db *pgxpool.Pool
}

func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

// FindByEmail resolves an account by its mailbox address.
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("select", "email_accounts", time.Since(start)) }()

	query := `
        SELECT id, user_id, email, imap_host, imap_port, imap_username, imap_password,
               is_active, last_sync_at, created_at, updated_at
        FROM email_accounts
        WHERE email = $1
    `
	var a model.Account
	err := r.db.QueryRow(ctx, query, email).Scan(
		&a.ID,
		&a.UserID,
		&a.Email,
		&a.IMAPHost,
		&a.IMAPPort,
		&a.IMAPUsername,
		&a.IMAPPassword,
		&a.IsActive,
		&a.LastSyncAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrAccountNotFound
		}
		return nil, err
	}
	return &a, nil
}

// UpdateLastSync stamps a completed ingestion run.
func (r *AccountRepository) UpdateLastSync(ctx context.Context, id int64, syncedAt time.Time) error {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("update", "email_accounts", time.Since(start)) }()

	query := `
        UPDATE email_accounts
        SET last_sync_at = $1, updated_at = NOW()
        WHERE id = $2
    `
	_, err := r.db.Exec(ctx, query, syncedAt, id)
	return err
}

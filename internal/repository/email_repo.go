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

type EmailRepository struct {
	db *pgxpool.Pool
}

func NewEmailRepository(db *pgxpool.Pool) *EmailRepository {
	return &EmailRepository{db: db}
}

const emailColumns = `
        id, account_id, user_id, message_id, from_address, to_address,
        subject, body, folder, received_at, is_read, category, created_at, updated_at`

// Upsert inserts a message or, when (account_id, message_id) already exists,
// updates the row in place. Atomic with respect to concurrent upserts of the
// same key; last writer wins on the non-key fields.
func (r *EmailRepository) Upsert(ctx context.Context, e *model.Email) (int64, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("upsert", "emails", time.Since(start)) }()

	query := `
        INSERT INTO emails (account_id, user_id, message_id, from_address, to_address,
                            subject, body, folder, received_at, category)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (account_id, message_id) DO UPDATE SET
            from_address = EXCLUDED.from_address,
            to_address   = EXCLUDED.to_address,
            subject      = EXCLUDED.subject,
            body         = EXCLUDED.body,
            folder       = EXCLUDED.folder,
            received_at  = EXCLUDED.received_at,
            updated_at   = NOW()
        RETURNING id
    `
	var id int64
	err := r.db.QueryRow(ctx, query,
		e.AccountID,
		e.UserID,
		e.MessageID,
		e.FromAddress,
		e.ToAddress,
		e.Subject,
		e.Body,
		e.Folder,
		e.ReceivedAt,
		e.Category,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// FindByMessageID loads a message by its source-system identifier.
func (r *EmailRepository) FindByMessageID(ctx context.Context, messageID string) (*model.Email, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("select", "emails", time.Since(start)) }()

	query := `SELECT` + emailColumns + `
        FROM emails
        WHERE message_id = $1
    `
	return r.scanOne(r.db.QueryRow(ctx, query, messageID))
}

// FindByID loads a message by its store id.
func (r *EmailRepository) FindByID(ctx context.Context, id int64) (*model.Email, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("select", "emails", time.Since(start)) }()

	query := `SELECT` + emailColumns + `
        FROM emails
        WHERE id = $1
    `
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// UpdateCategory persists the classification label. Idempotent: writing the
// same category twice leaves the row identical.
func (r *EmailRepository) UpdateCategory(ctx context.Context, id int64, category model.Category) error {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("update", "emails", time.Since(start)) }()

	query := `
        UPDATE emails
        SET category = $1, updated_at = NOW()
        WHERE id = $2
    `
	_, err := r.db.Exec(ctx, query, category, id)
	return err
}

// MarkAsRead flips the read flag (owned by the inbox UI).
func (r *EmailRepository) MarkAsRead(ctx context.Context, id int64) error {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("update", "emails", time.Since(start)) }()

	query := `UPDATE emails SET is_read = TRUE, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

// ListByAccount returns an account's messages, newest first.
func (r *EmailRepository) ListByAccount(ctx context.Context, accountID int64) ([]model.Email, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("select", "emails", time.Since(start)) }()

	query := `SELECT` + emailColumns + `
        FROM emails
        WHERE account_id = $1
        ORDER BY received_at DESC
    `
	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	emails := []model.Email{}
	for rows.Next() {
		var e model.Email
		if err := rows.Scan(
			&e.ID,
			&e.AccountID,
			&e.UserID,
			&e.MessageID,
			&e.FromAddress,
			&e.ToAddress,
			&e.Subject,
			&e.Body,
			&e.Folder,
			&e.ReceivedAt,
			&e.IsRead,
			&e.Category,
			&e.CreatedAt,
			&e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		emails = append(emails, e)
	}

	return emails, rows.Err()
}

func (r *EmailRepository) scanOne(row pgx.Row) (*model.Email, error) {
	var e model.Email
	err := row.Scan(
		&e.ID,
		&e.AccountID,
		&e.UserID,
		&e.MessageID,
		&e.FromAddress,
		&e.ToAddress,
		&e.Subject,
		&e.Body,
		&e.Folder,
		&e.ReceivedAt,
		&e.IsRead,
		&e.Category,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrEmailNotFound
		}
		return nil, err
	}
	return &e, nil
}

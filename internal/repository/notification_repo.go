package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"leadinbox/internal/model"
	"leadinbox/pkg/metrics"
)

type NotificationRepository struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Insert appends a delivery-audit record. Records are never updated.
func (r *NotificationRepository) Insert(ctx context.Context, n *model.WebhookNotification) (int64, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("insert", "webhook_notifications", time.Since(start)) }()

	query := `
        INSERT INTO webhook_notifications (email_id, webhook_url, status, response)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `
	var id int64
	err := r.db.QueryRow(ctx, query, n.EmailID, n.WebhookURL, n.Status, n.Response).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// ListByEmail returns the audit trail for one message, oldest first.
func (r *NotificationRepository) ListByEmail(ctx context.Context, emailID int64) ([]model.WebhookNotification, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("select", "webhook_notifications", time.Since(start)) }()

	query := `
        SELECT id, email_id, webhook_url, status, response, created_at
        FROM webhook_notifications
        WHERE email_id = $1
        ORDER BY created_at ASC
    `
	rows, err := r.db.Query(ctx, query, emailID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []model.WebhookNotification{}
	for rows.Next() {
		var n model.WebhookNotification
		if err := rows.Scan(&n.ID, &n.EmailID, &n.WebhookURL, &n.Status, &n.Response, &n.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, n)
	}

	return records, rows.Err()
}

// Package notification_repo provides the PostgreSQL implementation of
// notification and throttle-marker storage.
package notification_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockcontrol/internal/core/apperror"
	"stockcontrol/internal/domain/notification"
	"stockcontrol/internal/infrastructure/storage/postgres"
)

var _ notification.Repository = (*NotificationRepo)(nil)

// NotificationRepo implements notification.Repository.
type NotificationRepo struct {
	txManager *postgres.TxManager
	inserter  *postgres.BatchInserter
}

// NewNotificationRepo creates a notification repository.
func NewNotificationRepo(txManager *postgres.TxManager) *NotificationRepo {
	return &NotificationRepo{
		txManager: txManager,
		inserter:  postgres.NewBatchInserter(txManager),
	}
}

func (r *NotificationRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// CreateAlert inserts a throttle marker.
func (r *NotificationRepo) CreateAlert(ctx context.Context, alert *notification.StockAlert) error {
	sql, args, err := r.builder().
		Insert("stock_alerts").
		Columns("product_id", "company_id", "quantity", "severity", "sent_at").
		Values(alert.ProductID, alert.CompanyID, alert.Quantity, alert.Severity, alert.SentAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&alert.ID); err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

// HasRecentAlert reports whether a marker exists for the product with
// sent_at at or after since.
func (r *NotificationRepo) HasRecentAlert(ctx context.Context, productID, companyID int64, since time.Time) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM stock_alerts
			WHERE product_id = $1 AND company_id = $2 AND sent_at >= $3
		)
	`

	querier := r.txManager.GetQuerier(ctx)

	var exists bool
	if err := querier.QueryRow(ctx, query, productID, companyID, since).Scan(&exists); err != nil {
		return false, fmt.Errorf("check recent alert: %w", err)
	}
	return exists, nil
}

// CreateNotification inserts a notification and sets its generated ID.
func (r *NotificationRepo) CreateNotification(ctx context.Context, n *notification.Notification) error {
	sql, args, err := r.builder().
		Insert("notifications").
		Columns("company_id", "user_id", "title", "body", "created_at").
		Values(n.CompanyID, n.UserID, n.Title, n.Body, n.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&n.ID); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// CreateRecipients bulk-inserts the per-user delivery rows of a
// broadcast. Requires an active transaction.
func (r *NotificationRepo) CreateRecipients(ctx context.Context, recipients []notification.Recipient) error {
	if len(recipients) == 0 {
		return nil
	}

	rows := make([][]any, len(recipients))
	for i, rec := range recipients {
		rows[i] = []any{rec.NotificationID, rec.UserID, rec.Read, rec.ReadAt}
	}

	columns := []string{"notification_id", "user_id", "read", "read_at"}
	if _, err := r.inserter.CopyFromSlice(ctx, "notification_recipients", columns, rows); err != nil {
		return fmt.Errorf("copy recipients: %w", err)
	}
	return nil
}

// ListByUser returns notifications delivered to the user, newest first.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]notification.Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT n.id, n.company_id, n.user_id, n.title, n.body, n.created_at
		FROM notifications n
		LEFT JOIN notification_recipients nr ON nr.notification_id = n.id
		WHERE n.user_id = $1 OR nr.user_id = $1
		ORDER BY n.created_at DESC
		LIMIT $2 OFFSET $3
	`

	var notifications []notification.Notification
	err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &notifications, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead marks a broadcast delivery row as read.
func (r *NotificationRepo) MarkRead(ctx context.Context, notificationID, userID int64) error {
	query := `
		UPDATE notification_recipients
		SET read = TRUE, read_at = $3
		WHERE notification_id = $1 AND user_id = $2 AND read = FALSE
	`

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, query, notificationID, userID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if result.RowsAffected() == 0 {
		// Already read is fine; a row that never existed is not.
		exists, err := r.recipientExists(ctx, notificationID, userID)
		if err != nil {
			return err
		}
		if !exists {
			return apperror.NewNotFound("notification", notificationID)
		}
	}
	return nil
}

func (r *NotificationRepo) recipientExists(ctx context.Context, notificationID, userID int64) (bool, error) {
	querier := r.txManager.GetQuerier(ctx)

	var exists bool
	err := querier.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM notification_recipients WHERE notification_id = $1 AND user_id = $2)",
		notificationID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check recipient: %w", err)
	}
	return exists, nil
}

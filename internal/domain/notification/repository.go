package notification

import (
	"context"
	"time"
)

// Repository defines notification and throttle-marker storage.
type Repository interface {
	// CreateAlert inserts a throttle marker.
	CreateAlert(ctx context.Context, alert *StockAlert) error

	// HasRecentAlert reports whether a marker exists for the product and
	// company with sent_at >= since.
	HasRecentAlert(ctx context.Context, productID, companyID int64, since time.Time) (bool, error)

	// CreateNotification inserts a notification.
	CreateNotification(ctx context.Context, n *Notification) error

	// CreateRecipients inserts the per-user delivery rows of a broadcast.
	CreateRecipients(ctx context.Context, recipients []Recipient) error

	// ListByUser returns notifications addressed to or broadcast to the
	// user, newest first.
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]Notification, error)

	// MarkRead marks a broadcast delivery row as read.
	MarkRead(ctx context.Context, notificationID, userID int64) error
}

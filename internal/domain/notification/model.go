// Package notification provides notifications, recipients, and the
// low-stock notifier.
package notification

import (
	"time"
)

// Severity is the low-stock alert tier.
type Severity string

const (
	// SeverityAlerta warns that balance is at or near the threshold.
	SeverityAlerta Severity = "ALERTA"
	// SeverityCritico means balance dropped below the threshold.
	SeverityCritico Severity = "CRITICO"
	// SeverityZerado means the product is out of stock.
	SeverityZerado Severity = "ZERADO"
)

// StockAlert is the throttle marker: one row per alert emitted, consulted
// to suppress repeats within the cool-down window. Nothing reads it for
// display.
type StockAlert struct {
	ID        int64    `db:"id" json:"id"`
	ProductID int64    `db:"product_id" json:"productId"`
	CompanyID int64    `db:"company_id" json:"companyId"`
	Quantity  int64    `db:"quantity" json:"quantity"`
	Severity  Severity `db:"severity" json:"severity"`
	SentAt    time.Time `db:"sent_at" json:"sentAt"`
}

// Notification has a title/body and is addressed either to one user or
// broadcast to a company via per-user recipient rows.
type Notification struct {
	ID        int64     `db:"id" json:"id"`
	CompanyID int64     `db:"company_id" json:"companyId"`
	UserID    *int64    `db:"user_id" json:"userId,omitempty"`
	Title     string    `db:"title" json:"title"`
	Body      string    `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Recipient is one per-user delivery/read marker of a broadcast
// notification.
type Recipient struct {
	NotificationID int64      `db:"notification_id" json:"notificationId"`
	UserID         int64      `db:"user_id" json:"userId"`
	Read           bool       `db:"read" json:"read"`
	ReadAt         *time.Time `db:"read_at" json:"readAt,omitempty"`
}

// Package audit defines the audit-log contract. The storage
// implementation lives in infrastructure/storage/postgres.
package audit

import (
	"context"
	"encoding/json"
	"time"
)

// Action is the type of audited operation.
type Action string

const (
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionConclude Action = "conclude"
	ActionCancel   Action = "cancel"
	ActionMovement Action = "movement"
)

// Entry is one audit-log record. Changes holds the raw JSON payload;
// large payloads may be stored compressed by the implementation.
type Entry struct {
	ID         int64           `db:"id"`
	CompanyID  int64           `db:"company_id"`
	EntityType string          `db:"entity_type"`
	EntityID   int64           `db:"entity_id"`
	Action     Action          `db:"action"`
	UserID     int64           `db:"user_id"`
	Changes    json.RawMessage `db:"changes"`
	CreatedAt  time.Time       `db:"created_at"`
}

// Logger records audit entries. Implementations join the caller's
// transaction when one is active in the context.
type Logger interface {
	// LogChange records one entity change.
	LogChange(ctx context.Context, entityType string, entityID int64, action Action, changes map[string]any) error

	// EntityHistory returns entries for one entity, newest first.
	EntityHistory(ctx context.Context, entityType string, entityID int64, limit int) ([]Entry, error)
}

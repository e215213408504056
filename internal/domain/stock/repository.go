package stock

import (
	"context"
	"time"
)

// HistoryFilter filters movement history queries (audit display).
type HistoryFilter struct {
	Kind     *Kind
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int
	Offset   int
}

// Repository defines movement storage operations.
type Repository interface {
	// Create appends one movement.
	Create(ctx context.Context, m *Movement) error

	// CreateBatch appends several movements (order transitions).
	CreateBatch(ctx context.Context, movements []*Movement) error

	// FindByProducts retrieves every movement of the given products in
	// one query. The ledger folds balances from this; callers must never
	// loop products issuing one query each.
	FindByProducts(ctx context.Context, productIDs []int64) ([]Movement, error)

	// HistoryByProduct returns movements ordered by creation time,
	// newest first.
	HistoryByProduct(ctx context.Context, productID int64, filter HistoryFilter) ([]Movement, error)

	// LockProduct takes a row lock on the product inside the current
	// transaction. Serializes concurrent outflows against one product.
	LockProduct(ctx context.Context, productID int64) error
}

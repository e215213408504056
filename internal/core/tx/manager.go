// Package tx defines the transaction management contract.
// Domain services depend on this interface; the pgx-backed implementation
// lives in infrastructure/storage/postgres.
package tx

import (
	"context"
)

// Manager runs functions inside a database transaction.
type Manager interface {
	// RunInTransaction executes fn within a transaction: commit when fn
	// returns nil, rollback otherwise. Nested calls reuse the transaction
	// already carried by ctx.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

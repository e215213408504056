package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// BatchInserter provides bulk inserts over the COPY protocol. Used for
// multi-row writes (order movements, notification recipient fan-out)
// inside an open transaction.
type BatchInserter struct {
	txManager *TxManager
}

// NewBatchInserter creates a batch inserter.
func NewBatchInserter(txManager *TxManager) *BatchInserter {
	return &BatchInserter{txManager: txManager}
}

// CopyFromSlice bulk-inserts rows into table. Requires an active
// transaction in ctx so the COPY joins the caller's commit point.
func (b *BatchInserter) CopyFromSlice(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	dbTx := b.txManager.GetTx(ctx)
	if dbTx == nil {
		return 0, fmt.Errorf("CopyFromSlice requires transaction context")
	}
	return dbTx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
}

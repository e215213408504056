// Package stock_repo provides the PostgreSQL implementation of the
// stock movement repository. Movements are append-only: no UPDATE or
// DELETE statements exist here.
package stock_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"stockcontrol/internal/core/apperror"
	"stockcontrol/internal/domain/stock"
	"stockcontrol/internal/infrastructure/storage/postgres"
)

var _ stock.Repository = (*MovementRepo)(nil)

var movementColumns = []string{
	"line_id", "product_id", "company_id", "kind", "quantity",
	"reason", "note", "user_id", "sale_id", "order_id", "created_at",
}

// MovementRepo implements stock.Repository.
type MovementRepo struct {
	txManager *postgres.TxManager
	inserter  *postgres.BatchInserter
}

// NewMovementRepo creates a movement repository.
func NewMovementRepo(txManager *postgres.TxManager) *MovementRepo {
	return &MovementRepo{
		txManager: txManager,
		inserter:  postgres.NewBatchInserter(txManager),
	}
}

func (r *MovementRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create appends one movement.
func (r *MovementRepo) Create(ctx context.Context, m *stock.Movement) error {
	sql, args, err := r.builder().
		Insert("stock_movements").
		Columns(movementColumns...).
		Values(
			m.LineID, m.ProductID, m.CompanyID, m.Kind, m.Quantity,
			m.Reason, m.Note, m.UserID, m.SaleID, m.OrderID, m.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// CreateBatch appends several movements over the COPY protocol.
// Requires an active transaction (order transitions always have one).
func (r *MovementRepo) CreateBatch(ctx context.Context, movements []*stock.Movement) error {
	if len(movements) == 0 {
		return nil
	}

	rows := make([][]any, len(movements))
	for i, m := range movements {
		rows[i] = []any{
			m.LineID, m.ProductID, m.CompanyID, m.Kind, m.Quantity,
			m.Reason, m.Note, m.UserID, m.SaleID, m.OrderID, m.CreatedAt,
		}
	}

	if _, err := r.inserter.CopyFromSlice(ctx, "stock_movements", movementColumns, rows); err != nil {
		return fmt.Errorf("copy movements: %w", err)
	}
	return nil
}

// FindByProducts retrieves every movement of the given products in one
// query.
func (r *MovementRepo) FindByProducts(ctx context.Context, productIDs []int64) ([]stock.Movement, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	sql, args, err := r.builder().
		Select(movementColumns...).
		From("stock_movements").
		Where(squirrel.Eq{"product_id": productIDs}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var movements []stock.Movement
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("query movements: %w", err)
	}
	return movements, nil
}

// HistoryByProduct returns movements ordered newest first.
func (r *MovementRepo) HistoryByProduct(ctx context.Context, productID int64, filter stock.HistoryFilter) ([]stock.Movement, error) {
	q := r.builder().
		Select(movementColumns...).
		From("stock_movements").
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("created_at DESC")

	if filter.Kind != nil {
		q = q.Where(squirrel.Eq{"kind": *filter.Kind})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *filter.ToDate})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var movements []stock.Movement
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	return movements, nil
}

// LockProduct takes a row lock on the product inside the current
// transaction.
func (r *MovementRepo) LockProduct(ctx context.Context, productID int64) error {
	querier := r.txManager.GetQuerier(ctx)

	var id int64
	err := querier.QueryRow(ctx, "SELECT id FROM products WHERE id = $1 FOR UPDATE", productID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.NewNotFound("product", productID)
	}
	if err != nil {
		return fmt.Errorf("lock product: %w", err)
	}
	return nil
}

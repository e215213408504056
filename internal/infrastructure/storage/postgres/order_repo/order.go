// Package order_repo provides the PostgreSQL implementation of the
// purchase-order repository.
package order_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"stockcontrol/internal/core/apperror"
	"stockcontrol/internal/domain/order"
	"stockcontrol/internal/infrastructure/storage/postgres"
)

var _ order.Repository = (*OrderRepo)(nil)

var orderColumns = []string{
	"id", "company_id", "number", "status", "total", "note",
	"created_by", "created_at", "updated_at",
}

// OrderRepo implements order.Repository.
type OrderRepo struct {
	txManager *postgres.TxManager
}

// NewOrderRepo creates an order repository.
func NewOrderRepo(txManager *postgres.TxManager) *OrderRepo {
	return &OrderRepo{txManager: txManager}
}

func (r *OrderRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create persists the order and its lines, setting generated IDs.
func (r *OrderRepo) Create(ctx context.Context, o *order.Order) error {
	sql, args, err := r.builder().
		Insert("orders").
		Columns("company_id", "number", "status", "total", "note", "created_by", "created_at", "updated_at").
		Values(o.CompanyID, o.Number, o.Status, o.Total, o.Note, o.CreatedBy, o.CreatedAt, o.UpdatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&o.ID); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range o.Lines {
		line := &o.Lines[i]
		line.OrderID = o.ID

		sql, args, err := r.builder().
			Insert("order_lines").
			Columns("order_id", "product_id", "requested", "fulfilled", "unit_price").
			Values(line.OrderID, line.ProductID, line.Requested, line.Fulfilled, line.UnitPrice).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return fmt.Errorf("build line insert: %w", err)
		}
		if err := querier.QueryRow(ctx, sql, args...).Scan(&line.ID); err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}
	return nil
}

// GetByID returns the order with its lines.
func (r *OrderRepo) GetByID(ctx context.Context, id, companyID int64) (*order.Order, error) {
	return r.get(ctx, id, companyID, false)
}

// GetByIDForUpdate is GetByID holding a row lock on the order inside the
// current transaction.
func (r *OrderRepo) GetByIDForUpdate(ctx context.Context, id, companyID int64) (*order.Order, error) {
	return r.get(ctx, id, companyID, true)
}

func (r *OrderRepo) get(ctx context.Context, id, companyID int64, forUpdate bool) (*order.Order, error) {
	q := r.builder().
		Select(orderColumns...).
		From("orders").
		Where(squirrel.Eq{"id": id, "company_id": companyID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)

	var o order.Order
	err = pgxscan.Get(ctx, querier, &o, sql, args...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFound("order", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}

	linesSQL, linesArgs, err := r.builder().
		Select("id", "order_id", "product_id", "requested", "fulfilled", "unit_price").
		From("order_lines").
		Where(squirrel.Eq{"order_id": o.ID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lines select: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &o.Lines, linesSQL, linesArgs...); err != nil {
		return nil, fmt.Errorf("query order lines: %w", err)
	}
	return &o, nil
}

// UpdateStatus sets the order status.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id int64, status order.Status) error {
	sql, args, err := r.builder().
		Update("orders").
		Set("status", status).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("order", id)
	}
	return nil
}

// UpdateLineFulfilled sets the fulfilled quantity of one line.
func (r *OrderRepo) UpdateLineFulfilled(ctx context.Context, lineID, fulfilled int64) error {
	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx,
		"UPDATE order_lines SET fulfilled = $2 WHERE id = $1", lineID, fulfilled)
	if err != nil {
		return fmt.Errorf("update line fulfilled: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("order line", lineID)
	}
	return nil
}

// ListByCompany returns orders without lines, newest first.
func (r *OrderRepo) ListByCompany(ctx context.Context, companyID int64, filter order.ListFilter) ([]order.Order, error) {
	q := r.builder().
		Select(orderColumns...).
		From("orders").
		Where(squirrel.Eq{"company_id": companyID}).
		OrderBy("created_at DESC")

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
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

	var orders []order.Order
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &orders, sql, args...); err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	return orders, nil
}

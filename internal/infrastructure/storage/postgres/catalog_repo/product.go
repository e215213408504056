// Package catalog_repo provides the PostgreSQL implementation of the
// product catalog repository.
package catalog_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"stockcontrol/internal/core/apperror"
	"stockcontrol/internal/domain/product"
	"stockcontrol/internal/infrastructure/storage/postgres"
)

var _ product.Repository = (*ProductRepo)(nil)

var productColumns = []string{
	"id", "company_id", "name", "description", "unit_price",
	"min_quantity", "created_at", "updated_at",
}

// ProductRepo implements product.Repository.
type ProductRepo struct {
	txManager *postgres.TxManager
}

// NewProductRepo creates a product repository.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{txManager: txManager}
}

func (r *ProductRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts a product and sets its generated ID.
func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	sql, args, err := r.builder().
		Insert("products").
		Columns("company_id", "name", "description", "unit_price", "min_quantity", "created_at", "updated_at").
		Values(p.CompanyID, p.Name, p.Description, p.UnitPrice, p.MinQuantity, p.CreatedAt, p.UpdatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&p.ID); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID retrieves one product.
func (r *ProductRepo) GetByID(ctx context.Context, productID int64) (*product.Product, error) {
	sql, args, err := r.builder().
		Select(productColumns...).
		From("products").
		Where(squirrel.Eq{"id": productID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var p product.Product
	err = pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &p, sql, args...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFound("product", productID)
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}
	return &p, nil
}

// Update updates product data.
func (r *ProductRepo) Update(ctx context.Context, p *product.Product) error {
	sql, args, err := r.builder().
		Update("products").
		Set("name", p.Name).
		Set("description", p.Description).
		Set("unit_price", p.UnitPrice).
		Set("min_quantity", p.MinQuantity).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": p.ID, "company_id": p.CompanyID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("product", p.ID)
	}
	return nil
}

// Delete removes a product. The schema cascades its movements away.
func (r *ProductRepo) Delete(ctx context.Context, productID int64) error {
	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, "DELETE FROM products WHERE id = $1", productID)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("product", productID)
	}
	return nil
}

// ListByCompany retrieves a company's products.
func (r *ProductRepo) ListByCompany(ctx context.Context, companyID int64, filter product.ListFilter) ([]product.Product, error) {
	q := r.builder().
		Select(productColumns...).
		From("products").
		Where(squirrel.Eq{"company_id": companyID}).
		OrderBy("name ASC")

	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"name": "%" + filter.Search + "%"})
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

	var products []product.Product
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &products, sql, args...); err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	return products, nil
}

// FindMonitored returns low-stock scan candidates.
func (r *ProductRepo) FindMonitored(ctx context.Context, companyID *int64, createdBefore time.Time) ([]product.Product, error) {
	q := r.builder().
		Select(productColumns...).
		From("products").
		Where(squirrel.Gt{"min_quantity": 0}).
		Where(squirrel.LtOrEq{"created_at": createdBefore})

	if companyID != nil {
		q = q.Where(squirrel.Eq{"company_id": *companyID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var products []product.Product
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &products, sql, args...); err != nil {
		return nil, fmt.Errorf("query monitored products: %w", err)
	}
	return products, nil
}

package auth_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"stockcontrol/internal/core/apperror"
	"stockcontrol/internal/domain/user"
	"stockcontrol/internal/infrastructure/storage/postgres"
)

var _ user.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo implements user.CompanyRepository.
type CompanyRepo struct {
	txManager *postgres.TxManager
}

// NewCompanyRepo creates a company repository.
func NewCompanyRepo(txManager *postgres.TxManager) *CompanyRepo {
	return &CompanyRepo{txManager: txManager}
}

func (r *CompanyRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts a company and sets its generated ID.
func (r *CompanyRepo) Create(ctx context.Context, c *user.Company) error {
	sql, args, err := r.builder().
		Insert("companies").
		Columns("name", "created_at").
		Values(c.Name, c.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&c.ID); err != nil {
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

// GetByID retrieves one company.
func (r *CompanyRepo) GetByID(ctx context.Context, companyID int64) (*user.Company, error) {
	sql, args, err := r.builder().
		Select("id", "name", "created_at").
		From("companies").
		Where(squirrel.Eq{"id": companyID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var c user.Company
	err = pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &c, sql, args...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFound("company", companyID)
	}
	if err != nil {
		return nil, fmt.Errorf("query company: %w", err)
	}
	return &c, nil
}

// List returns all companies.
func (r *CompanyRepo) List(ctx context.Context) ([]user.Company, error) {
	sql, args, err := r.builder().
		Select("id", "name", "created_at").
		From("companies").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var companies []user.Company
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &companies, sql, args...); err != nil {
		return nil, fmt.Errorf("query companies: %w", err)
	}
	return companies, nil
}

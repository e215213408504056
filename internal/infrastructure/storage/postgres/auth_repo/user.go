// Package auth_repo provides PostgreSQL implementations for the user,
// company, and permission repositories.
package auth_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"stockcontrol/internal/core/apperror"
	"stockcontrol/internal/domain/user"
	"stockcontrol/internal/infrastructure/storage/postgres"
)

var _ user.Repository = (*UserRepo)(nil)

var userColumns = []string{
	"id", "company_id", "name", "email", "password_hash", "role",
	"custom_permissions", "is_active", "created_at", "updated_at",
}

// UserRepo implements user.Repository.
type UserRepo struct {
	txManager *postgres.TxManager
}

// NewUserRepo creates a user repository.
func NewUserRepo(txManager *postgres.TxManager) *UserRepo {
	return &UserRepo{txManager: txManager}
}

func (r *UserRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts a user and sets its generated ID.
func (r *UserRepo) Create(ctx context.Context, u *user.User) error {
	sql, args, err := r.builder().
		Insert("users").
		Columns("company_id", "name", "email", "password_hash", "role",
			"custom_permissions", "is_active", "created_at", "updated_at").
		Values(u.CompanyID, u.Name, u.Email, u.PasswordHash, u.Role,
			u.CustomPermissions, u.IsActive, u.CreatedAt, u.UpdatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&u.ID); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID retrieves a user.
func (r *UserRepo) GetByID(ctx context.Context, userID int64) (*user.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": userID}, userID)
}

// GetByEmail retrieves a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.getOne(ctx, squirrel.Eq{"email": email}, email)
}

func (r *UserRepo) getOne(ctx context.Context, where squirrel.Eq, key any) (*user.User, error) {
	sql, args, err := r.builder().
		Select(userColumns...).
		From("users").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var u user.User
	err = pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &u, sql, args...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFound("user", key)
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}

// Update updates user data.
func (r *UserRepo) Update(ctx context.Context, u *user.User) error {
	sql, args, err := r.builder().
		Update("users").
		Set("name", u.Name).
		Set("role", u.Role).
		Set("custom_permissions", u.CustomPermissions).
		Set("is_active", u.IsActive).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": u.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("user", u.ID)
	}
	return nil
}

// ListActiveByCompany returns active users of a company in the given
// roles.
func (r *UserRepo) ListActiveByCompany(ctx context.Context, companyID int64, roles []user.Role) ([]user.User, error) {
	sql, args, err := r.builder().
		Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"company_id": companyID, "is_active": true, "role": roles}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var users []user.User
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &users, sql, args...); err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	return users, nil
}

// ExistsEmail checks whether the email is already registered.
func (r *UserRepo) ExistsEmail(ctx context.Context, email string) (bool, error) {
	querier := r.txManager.GetQuerier(ctx)

	var exists bool
	err := querier.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}
	return exists, nil
}

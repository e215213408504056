package auth_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"stockcontrol/internal/core/apperror"
	"stockcontrol/internal/domain/permission"
	"stockcontrol/internal/infrastructure/storage/postgres"
)

var _ permission.Repository = (*PermissionRepo)(nil)

// PermissionRepo implements permission.Repository.
type PermissionRepo struct {
	txManager *postgres.TxManager
}

// NewPermissionRepo creates a permission repository.
func NewPermissionRepo(txManager *postgres.TxManager) *PermissionRepo {
	return &PermissionRepo{txManager: txManager}
}

func (r *PermissionRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// GetByKey retrieves a permission by its unique key.
func (r *PermissionRepo) GetByKey(ctx context.Context, key string) (*permission.Permission, error) {
	sql, args, err := r.builder().
		Select("id", "key", "name", "description", "category", "created_at").
		From("permissions").
		Where(squirrel.Eq{"key": key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var p permission.Permission
	err = pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &p, sql, args...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFound("permission", key)
	}
	if err != nil {
		return nil, fmt.Errorf("query permission: %w", err)
	}
	return &p, nil
}

// List retrieves the full permission catalog.
func (r *PermissionRepo) List(ctx context.Context) ([]permission.Permission, error) {
	sql, args, err := r.builder().
		Select("id", "key", "name", "description", "category", "created_at").
		From("permissions").
		OrderBy("key ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var permissions []permission.Permission
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &permissions, sql, args...); err != nil {
		return nil, fmt.Errorf("query permissions: %w", err)
	}
	return permissions, nil
}

// Upsert inserts or updates a catalog entry, keyed by the permission key.
func (r *PermissionRepo) Upsert(ctx context.Context, p *permission.Permission) error {
	query := `
		INSERT INTO permissions (key, name, description, category, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (key) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			category = EXCLUDED.category
		RETURNING id
	`

	querier := r.txManager.GetQuerier(ctx)
	err := querier.QueryRow(ctx, query, p.Key, p.Name, p.Description, p.Category, p.CreatedAt).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("upsert permission: %w", err)
	}
	return nil
}

// GetGrant retrieves the (user, permission) grant row, or nil when no
// row exists.
func (r *PermissionRepo) GetGrant(ctx context.Context, userID, permissionID int64) (*permission.Grant, error) {
	sql, args, err := r.builder().
		Select("user_id", "permission_id", "granted", "updated_at").
		From("user_permissions").
		Where(squirrel.Eq{"user_id": userID, "permission_id": permissionID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var g permission.Grant
	err = pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &g, sql, args...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query grant: %w", err)
	}
	return &g, nil
}

// ListGrants retrieves all grant rows for a user.
func (r *PermissionRepo) ListGrants(ctx context.Context, userID int64) ([]permission.Grant, error) {
	sql, args, err := r.builder().
		Select("user_id", "permission_id", "granted", "updated_at").
		From("user_permissions").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var grants []permission.Grant
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &grants, sql, args...); err != nil {
		return nil, fmt.Errorf("query grants: %w", err)
	}
	return grants, nil
}

// SaveGrant upserts a grant row.
func (r *PermissionRepo) SaveGrant(ctx context.Context, g *permission.Grant) error {
	query := `
		INSERT INTO user_permissions (user_id, permission_id, granted, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, permission_id) DO UPDATE SET
			granted = EXCLUDED.granted,
			updated_at = EXCLUDED.updated_at
	`

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, query, g.UserID, g.PermissionID, g.Granted, g.UpdatedAt); err != nil {
		return fmt.Errorf("upsert grant: %w", err)
	}
	return nil
}

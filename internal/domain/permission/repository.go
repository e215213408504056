package permission

import (
	"context"
)

// Repository defines permission catalog and grant storage operations.
type Repository interface {
	// GetByKey retrieves a permission by its unique key.
	// Returns apperror.NewNotFound when the key is unknown.
	GetByKey(ctx context.Context, key string) (*Permission, error)

	// List retrieves the full permission catalog.
	List(ctx context.Context) ([]Permission, error)

	// Upsert inserts or updates a catalog entry (seeding).
	Upsert(ctx context.Context, p *Permission) error

	// GetGrant retrieves the (user, permission) grant row, or nil when
	// no row exists.
	GetGrant(ctx context.Context, userID, permissionID int64) (*Grant, error)

	// ListGrants retrieves all grant rows for a user.
	ListGrants(ctx context.Context, userID int64) ([]Grant, error)

	// SaveGrant upserts a grant: creating a grant for an existing
	// (user, permission) pair updates it.
	SaveGrant(ctx context.Context, g *Grant) error
}

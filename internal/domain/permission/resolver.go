package permission

import (
	"context"
	"fmt"

	"stockcontrol/internal/core/apperror"
	"stockcontrol/internal/domain/user"
)

// Resolver decides whether a user holds a permission. Read-only: it is an
// authorization gate wrapping mutating operations elsewhere.
type Resolver struct {
	users user.Repository
	repo  Repository
}

// NewResolver creates a new permission resolver.
func NewResolver(users user.Repository, repo Repository) *Resolver {
	return &Resolver{
		users: users,
		repo:  repo,
	}
}

// HasPermission reports whether the user holds the permission key.
//
// Unknown users and unknown keys resolve to false rather than an error:
// denial is the safe answer and callers treat it as a 403, not a 500.
func (r *Resolver) HasPermission(ctx context.Context, userID int64, key string) (bool, error) {
	u, err := r.users.GetByID(ctx, userID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("get user: %w", err)
	}

	// Owners hold every permission regardless of the custom flag.
	if u.Role == user.RoleProprietario {
		return true, nil
	}

	if !u.CustomPermissions {
		return RoleHasDefault(u.Role, key), nil
	}

	p, err := r.repo.GetByKey(ctx, key)
	if err != nil {
		if apperror.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("get permission: %w", err)
	}

	grant, err := r.repo.GetGrant(ctx, userID, p.ID)
	if err != nil {
		return false, fmt.Errorf("get grant: %w", err)
	}
	if grant == nil {
		return false, nil
	}

	return grant.Granted, nil
}

// Require returns an AccessDenied error naming the missing key when the
// user does not hold it.
func (r *Resolver) Require(ctx context.Context, userID int64, key string) error {
	ok, err := r.HasPermission(ctx, userID, key)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NewForbidden("insufficient permissions").
			WithDetail("required_permission", key)
	}
	return nil
}

// EffectivePermissions returns the full set of keys the user holds.
// Used to stamp JWT claims and to seed UI defaults.
func (r *Resolver) EffectivePermissions(ctx context.Context, userID int64) ([]string, error) {
	u, err := r.users.GetByID(ctx, userID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if u.Role == user.RoleProprietario {
		out := make([]string, len(AllKeys))
		copy(out, AllKeys)
		return out, nil
	}

	if !u.CustomPermissions {
		return DefaultsForRole(u.Role), nil
	}

	grants, err := r.repo.ListGrants(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}

	granted := make(map[int64]bool, len(grants))
	for _, g := range grants {
		if g.Granted {
			granted[g.PermissionID] = true
		}
	}
	if len(granted) == 0 {
		return nil, nil
	}

	catalog, err := r.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}

	var keys []string
	for _, p := range catalog {
		if granted[p.ID] {
			keys = append(keys, p.Key)
		}
	}
	return keys, nil
}

// SetGrant upserts an explicit grant for a user.
func (r *Resolver) SetGrant(ctx context.Context, userID int64, key string, granted bool) error {
	p, err := r.repo.GetByKey(ctx, key)
	if err != nil {
		return err
	}

	return r.repo.SaveGrant(ctx, &Grant{
		UserID:       userID,
		PermissionID: p.ID,
		Granted:      granted,
	})
}

// Ensure the resolver satisfies the auth service's claim source.
var _ user.PermissionSource = (*Resolver)(nil)

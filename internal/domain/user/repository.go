package user

import (
	"context"
	"time"
)

// Repository defines user storage operations.
type Repository interface {
	// Create creates a new user.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves user by ID. Returns apperror.NewNotFound when missing.
	GetByID(ctx context.Context, userID int64) (*User, error)

	// GetByEmail retrieves user by email.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Update updates user data.
	Update(ctx context.Context, user *User) error

	// ListActiveByCompany returns active users of a company whose role is
	// in roles. Used for notification fan-out.
	ListActiveByCompany(ctx context.Context, companyID int64, roles []Role) ([]User, error)

	// ExistsEmail checks if email is already registered.
	ExistsEmail(ctx context.Context, email string) (bool, error)
}

// CompanyRepository defines company storage operations.
type CompanyRepository interface {
	Create(ctx context.Context, company *Company) error
	GetByID(ctx context.Context, companyID int64) (*Company, error)
	List(ctx context.Context) ([]Company, error)
}

// SignupStore holds pending registrations with a TTL lifecycle: an entry
// is created on registration start and removed on verification success,
// failure, or expiry.
type SignupStore interface {
	Put(ctx context.Context, token string, pending *PendingRegistration, ttl time.Duration) error
	Get(ctx context.Context, token string) (*PendingRegistration, error)
	Delete(ctx context.Context, token string) error
}

// PermissionSource resolves the effective permission keys of a user.
// Implemented by the permission resolver; declared here to avoid a
// package cycle (auth stamps permissions into JWT claims).
type PermissionSource interface {
	EffectivePermissions(ctx context.Context, userID int64) ([]string, error)
}

// Package user provides user accounts, companies, and authentication.
package user

import (
	"context"
	"strings"
	"time"

	"stockcontrol/internal/core/apperror"
)

// Role is the closed set of user roles.
type Role string

const (
	// RoleProprietario is the company owner. Holds every permission
	// unconditionally.
	RoleProprietario Role = "PROPRIETARIO"
	// RoleAdmin is an administrator with the admin default permission set.
	RoleAdmin Role = "ADMIN"
	// RoleFuncionario is regular staff with a view-mostly default set.
	RoleFuncionario Role = "FUNCIONARIO"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleProprietario, RoleAdmin, RoleFuncionario:
		return true
	}
	return false
}

// ActiveRoles are the roles eligible to receive company-wide notifications.
var ActiveRoles = []Role{RoleProprietario, RoleAdmin, RoleFuncionario}

// User represents a system user. A user belongs to exactly one company.
type User struct {
	ID           int64     `db:"id" json:"id"`
	CompanyID    int64     `db:"company_id" json:"companyId"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`

	// CustomPermissions switches permission resolution from the role
	// default table to explicit per-permission grants.
	CustomPermissions bool `db:"custom_permissions" json:"customPermissions"`

	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewUser creates a new active user.
func NewUser(companyID int64, name, email, passwordHash string, role Role) *User {
	now := time.Now().UTC()
	return &User{
		CompanyID:    companyID,
		Name:         name,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Validate validates user data.
func (u *User) Validate(ctx context.Context) error {
	if u.Email == "" {
		return apperror.NewValidation("email is required").WithDetail("field", "email")
	}
	if u.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if !u.Role.Valid() {
		return apperror.NewValidation("invalid role").
			WithDetail("field", "role").
			WithDetail("value", string(u.Role))
	}
	return nil
}

// CanLogin checks if user can login.
func (u *User) CanLogin() error {
	if !u.IsActive {
		return apperror.NewForbidden("account is disabled")
	}
	return nil
}

// Company groups users, products, and every other tenant-scoped entity.
type Company struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Credentials for login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenPair contains access and refresh tokens.
type TokenPair struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	TokenType    string    `json:"tokenType"`
}

// PendingRegistration is a registration awaiting e-mail verification.
// Stored in the TTL-backed signup store, never in process memory, so the
// flow survives restarts and multi-instance deployments.
type PendingRegistration struct {
	CompanyName  string    `json:"companyName"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	Code         string    `json:"code"`
	CreatedAt    time.Time `json:"createdAt"`
}

// RegisterRequest starts a registration.
type RegisterRequest struct {
	CompanyName string `json:"companyName"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

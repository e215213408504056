package dto

import "stockcontrol/internal/domain/user"

// LoginRequest for authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest starts a company registration.
type RegisterRequest struct {
	CompanyName string `json:"companyName" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
}

// RegisterResponse carries the opaque token identifying the pending
// registration.
type RegisterResponse struct {
	Token string `json:"token"`
}

// VerifyRequest completes a registration.
type VerifyRequest struct {
	Token string `json:"token" binding:"required"`
	Code  string `json:"code" binding:"required,len=6"`
}

// CreateUserRequest creates a staff user inside the caller's company.
type CreateUserRequest struct {
	Name     string    `json:"name" binding:"required"`
	Email    string    `json:"email" binding:"required,email"`
	Password string    `json:"password" binding:"required,min=8"`
	Role     user.Role `json:"role" binding:"required"`
}

// UserResponse is the public user shape.
type UserResponse struct {
	ID                int64  `json:"id"`
	CompanyID         int64  `json:"companyId"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	Role              string `json:"role"`
	CustomPermissions bool   `json:"customPermissions"`
	IsActive          bool   `json:"isActive"`
}

// FromUser maps a user to its response shape.
func FromUser(u *user.User) UserResponse {
	return UserResponse{
		ID:                u.ID,
		CompanyID:         u.CompanyID,
		Name:              u.Name,
		Email:             u.Email,
		Role:              string(u.Role),
		CustomPermissions: u.CustomPermissions,
		IsActive:          u.IsActive,
	}
}

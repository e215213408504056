package middleware

import (
	"github.com/gin-gonic/gin"

	"stockcontrol/internal/core/apperror"
	appctx "stockcontrol/internal/core/context"
	"stockcontrol/internal/domain/user"
)

// RequirePermission checks the JWT claim permissions for a key. Owners
// pass unconditionally. This is a fast pre-filter; domain services run
// the authoritative resolver check as well, so a stale claim can only
// deny early, never grant.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := appctx.GetUser(c.Request.Context())
		if u == nil {
			_ = c.Error(apperror.NewUnauthorized("authentication required"))
			c.Abort()
			return
		}

		if u.Role == string(user.RoleProprietario) {
			c.Next()
			return
		}

		for _, perm := range u.Permissions {
			if perm == permission {
				c.Next()
				return
			}
		}

		_ = c.Error(
			apperror.NewForbidden("insufficient permissions").
				WithDetail("required_permission", permission),
		)
		c.Abort()
	}
}

// RequireRole checks if the user has one of the given roles.
func RequireRole(roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := appctx.GetUser(c.Request.Context())
		if u == nil {
			_ = c.Error(apperror.NewUnauthorized("authentication required"))
			c.Abort()
			return
		}

		for _, required := range roles {
			if u.Role == string(required) {
				c.Next()
				return
			}
		}

		_ = c.Error(
			apperror.NewForbidden("insufficient permissions").
				WithDetail("required_roles", roles),
		)
		c.Abort()
	}
}

package handlers

import (
	"github.com/gin-gonic/gin"

	"stockcontrol/internal/domain/permission"
	"stockcontrol/internal/infrastructure/http/v1/dto"
)

// PermissionHandler handles permission catalog and grant management.
type PermissionHandler struct {
	BaseHandler
	resolver *permission.Resolver
	repo     permission.Repository
}

// NewPermissionHandler creates a permission handler.
func NewPermissionHandler(resolver *permission.Resolver, repo permission.Repository) *PermissionHandler {
	return &PermissionHandler{resolver: resolver, repo: repo}
}

// Catalog returns the full permission catalog.
// GET /api/v1/permissions
func (h *PermissionHandler) Catalog(c *gin.Context) {
	permissions, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{Items: permissions, Count: len(permissions)})
}

// Effective returns the effective permission keys of a user.
// GET /api/v1/users/:id/permissions
func (h *PermissionHandler) Effective(c *gin.Context) {
	userID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	keys, err := h.resolver.EffectivePermissions(c.Request.Context(), userID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{Items: keys, Count: len(keys)})
}

// SetGrant sets one explicit permission grant.
// PUT /api/v1/permissions/grants
func (h *PermissionHandler) SetGrant(c *gin.Context) {
	var req dto.SetGrantRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.resolver.SetGrant(c.Request.Context(), req.UserID, req.Key, req.Granted); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "grant updated")
}

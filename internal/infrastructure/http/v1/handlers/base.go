// Package handlers provides HTTP request handlers.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stockcontrol/internal/core/apperror"
	appctx "stockcontrol/internal/core/context"
	"stockcontrol/internal/infrastructure/http/v1/dto"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

// BindJSON binds and validates the JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// BindQuery binds and validates query parameters.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid query parameters").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// ParamID parses an int64 path parameter.
func (h *BaseHandler) ParamID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		h.Error(c, apperror.NewValidation("invalid path parameter").WithDetail("param", name))
		return 0, false
	}
	return id, true
}

// Error registers the error on the gin context and aborts. The JSON
// response is produced by middleware.ErrorHandler, the single source of
// truth for error bodies.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// UserID extracts the acting user ID from the request context.
func (h *BaseHandler) UserID(c *gin.Context) int64 {
	return appctx.GetUserID(c.Request.Context())
}

// CompanyID extracts the acting user's company ID from the request
// context.
func (h *BaseHandler) CompanyID(c *gin.Context) int64 {
	return appctx.GetCompanyID(c.Request.Context())
}

// Created sends a 201 response with the new ID.
func (h *BaseHandler) Created(c *gin.Context, id int64) {
	c.JSON(http.StatusCreated, dto.IDResponse{ID: id})
}

// OK sends a 200 response with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// NoContent sends a 204 response.
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Success sends a success response without data.
func (h *BaseHandler) Success(c *gin.Context, message string) {
	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: message})
}

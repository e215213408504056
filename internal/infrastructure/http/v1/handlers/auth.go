package handlers

import (
	"github.com/gin-gonic/gin"

	"stockcontrol/internal/domain/user"
	"stockcontrol/internal/infrastructure/http/v1/dto"
)

// AuthHandler handles authentication and registration.
type AuthHandler struct {
	BaseHandler
	users *user.Service
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(users *user.Service) *AuthHandler {
	return &AuthHandler{users: users}
}

// Login authenticates a user.
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	pair, err := h.users.Login(c.Request.Context(), user.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, pair)
}

// Register starts a company registration.
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	token, err := h.users.StartRegistration(c.Request.Context(), user.RegisterRequest{
		CompanyName: req.CompanyName,
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.RegisterResponse{Token: token})
}

// Verify completes a registration with the emailed code.
// POST /api/v1/auth/verify
func (h *AuthHandler) Verify(c *gin.Context) {
	var req dto.VerifyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	created, err := h.users.VerifyRegistration(c.Request.Context(), req.Token, req.Code)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromUser(created))
}

// CreateUser creates a staff user inside the caller's company.
// POST /api/v1/users
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	created, err := h.users.CreateUser(c.Request.Context(), h.CompanyID(c), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, created.ID)
}

// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	users *user.Service
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users *user.Service) *AuthHandler {
	return &AuthHandler{users: users}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid registration payload: "+err.Error())
		return
	}

	resp, err := h.users.Register(&req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, "Registration successful", resp)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid login payload: "+err.Error())
		return
	}

	resp, err := h.users.Login(&req)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Login successful", resp)
}

// Refresh handles POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req user.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Refresh token required")
		return
	}

	resp, err := h.users.Refresh(req.RefreshToken)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Token refreshed", resp)
}

// Profile handles GET /auth/profile
func (h *AuthHandler) Profile(c *gin.Context) {
	u, err := h.users.GetProfile(middleware.UserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Profile retrieved", u)
}

// UpdateProfile handles PUT /auth/profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req user.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid profile payload")
		return
	}

	u, err := h.users.UpdateProfile(middleware.UserID(c), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Profile updated", u)
}

// AddAddress handles POST /auth/addresses
func (h *AuthHandler) AddAddress(c *gin.Context) {
	var addr user.Address
	if err := c.ShouldBindJSON(&addr); err != nil {
		BadRequest(c, "Invalid address payload")
		return
	}

	created, err := h.users.AddAddress(middleware.UserID(c), &addr)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, "Address added", created)
}

// DeleteAddress handles DELETE /auth/addresses/:id
func (h *AuthHandler) DeleteAddress(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.users.DeleteAddress(middleware.UserID(c), id); err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Address deleted", nil)
}

// Package handlers provides HTTP request handlers.
package handlers

import (
	"github.com/gin-gonic/gin"

	"bizbooks/internal/domain/auth"
	"bizbooks/internal/infrastructure/http/v1/dto"
	"bizbooks/internal/infrastructure/metrics"
)

// AuthHandler handles login, password change and user administration.
type AuthHandler struct {
	*BaseHandler
	service *auth.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, service *auth.Service) *AuthHandler {
	return &AuthHandler{BaseHandler: base, service: service}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	session, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.metrics.RecordLogin(metrics.LoginFailure)
		h.Error(c, err)
		return
	}
	h.metrics.RecordLogin(metrics.LoginSuccess)
	h.OK(c, session)
}

// ChangePassword handles POST /auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if !h.BindJSON(c, &req) {
		return
	}

	session, err := h.service.ChangePassword(c.Request.Context(), h.Principal(c), req.CurrentPassword, req.NewPassword)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, session)
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	p := h.Principal(c)
	h.OK(c, gin.H{
		"id":                 p.UserID,
		"username":           p.Username,
		"isAdmin":            p.IsAdmin,
		"mustChangePassword": p.MustChangePassword,
	})
}

// --- Administration ---

// ListUsers handles GET /admin/users
func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context(), h.Principal(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(users))
}

// GetUser handles GET /admin/users/:id
func (h *AuthHandler) GetUser(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	user, err := h.service.GetUser(c.Request.Context(), h.Principal(c), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, user)
}

// CreateUser handles POST /admin/users
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToDomain()
	if err != nil {
		h.Error(c, err)
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), h.Principal(c), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.metrics.RecordOperation(metrics.OpUserCreated)
	h.Created(c, user)
}

// SetBlocked handles PUT /admin/users/:id/blocked
func (h *AuthHandler) SetBlocked(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.FlagRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if err := h.service.SetBlocked(c.Request.Context(), h.Principal(c), id, *req.Value); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// SetAdmin handles PUT /admin/users/:id/admin
func (h *AuthHandler) SetAdmin(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.FlagRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if err := h.service.SetAdmin(c.Request.Context(), h.Principal(c), id, *req.Value); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// ResetPassword handles POST /admin/users/:id/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.ResetPasswordRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if err := h.service.ResetPassword(c.Request.Context(), h.Principal(c), id, req.Password); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// ExtendSubscription handles PUT /admin/users/:id/subscription
func (h *AuthHandler) ExtendSubscription(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.ExtendSubscriptionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	end, err := dto.ParseOptionalDate("endDate", req.EndDate)
	if err != nil {
		h.Error(c, err)
		return
	}

	user, err := h.service.ExtendSubscription(c.Request.Context(), h.Principal(c), id, end)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, user)
}

// RevokeSubscription handles DELETE /admin/users/:id/subscription
func (h *AuthHandler) RevokeSubscription(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	user, err := h.service.RevokeSubscription(c.Request.Context(), h.Principal(c), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, user)
}

// DeleteUser handles DELETE /admin/users/:id
func (h *AuthHandler) DeleteUser(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.DeleteUserRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if err := h.service.DeleteUser(c.Request.Context(), h.Principal(c), id, req.Confirmation); err != nil {
		h.Error(c, err)
		return
	}
	h.metrics.RecordOperation(metrics.OpUserDeleted)
	h.NoContent(c)
}

package dto

import (
	"bizbooks/internal/domain/auth"
)

// LoginRequest for user login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest for the authenticated user's own password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// CreateUserRequest for a new tenant account.
type CreateUserRequest struct {
	Username            string `json:"username" binding:"required"`
	Password            string `json:"password" binding:"required"`
	IsAdmin             bool   `json:"isAdmin"`
	SubscriptionEndDate string `json:"subscriptionEndDate,omitempty"`
}

// ToDomain converts to the domain request.
func (r *CreateUserRequest) ToDomain() (auth.CreateUserRequest, error) {
	end, err := ParseOptionalDate("subscriptionEndDate", r.SubscriptionEndDate)
	if err != nil {
		return auth.CreateUserRequest{}, err
	}
	return auth.CreateUserRequest{
		Username:            r.Username,
		Password:            r.Password,
		IsAdmin:             r.IsAdmin,
		SubscriptionEndDate: end,
	}, nil
}

// FlagRequest toggles a boolean account flag.
type FlagRequest struct {
	Value *bool `json:"value" binding:"required"`
}

// ResetPasswordRequest sets a temporary password.
type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

// ExtendSubscriptionRequest moves the subscription end forward.
// An empty endDate grants an unlimited subscription.
type ExtendSubscriptionRequest struct {
	EndDate string `json:"endDate"`
}

// DeleteUserRequest carries the typed confirmation.
type DeleteUserRequest struct {
	Confirmation string `json:"confirmation" binding:"required"`
}

// UserListResponse lists accounts.
type UserListResponse struct {
	Users []auth.User `json:"users"`
}

// Package auth provides tenant accounts, sessions and the administrator's
// account lifecycle operations.
package auth

import (
	"strings"
	"time"
	"unicode/utf8"

	"bizbooks/internal/core/apperror"
	"bizbooks/internal/core/security"
)

// User is a tenant account. Every other row in the system is owned by one.
type User struct {
	ID                  int64      `db:"id" json:"id"`
	Username            string     `db:"username" json:"username"`
	PasswordHash        string     `db:"password_hash" json:"-"`
	MustChangePassword  bool       `db:"must_change_password" json:"mustChangePassword"`
	IsBlocked           bool       `db:"is_blocked" json:"isBlocked"`
	FirstLoginAt        *time.Time `db:"first_login_at" json:"firstLoginAt,omitempty"`
	IsAdmin             bool       `db:"is_admin" json:"isAdmin"`
	SubscriptionEndDate *time.Time `db:"subscription_end_date" json:"subscriptionEndDate,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"createdAt"`
}

// AccountState projects the fields the access gate needs.
func (u *User) AccountState() security.AccountState {
	return security.AccountState{
		Username:            u.Username,
		IsAdmin:             u.IsAdmin,
		IsBlocked:           u.IsBlocked,
		MustChangePassword:  u.MustChangePassword,
		SubscriptionEndDate: u.SubscriptionEndDate,
	}
}

// Principal builds the caller identity carried by a session.
func (u *User) Principal() security.Principal {
	return security.Principal{
		UserID:             u.ID,
		Username:           u.Username,
		IsAdmin:            u.IsAdmin,
		MustChangePassword: u.MustChangePassword,
	}
}

// NormalizeUsername trims surrounding whitespace; case is preserved.
func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

// ValidateUsername rejects empty names and embedded whitespace.
func ValidateUsername(username string) error {
	if username == "" {
		return apperror.NewInvalidField("username", "username is required")
	}
	if strings.ContainsAny(username, " \t\r\n") {
		return apperror.NewInvalidField("username", "username must not contain spaces")
	}
	if utf8.RuneCountInString(username) > 100 {
		return apperror.NewInvalidField("username", "username is too long")
	}
	return nil
}

// Session is the result of a successful login or password change.
type Session struct {
	Principal           security.Principal             `json:"-"`
	Token               string                         `json:"token"`
	ExpiresAt           time.Time                      `json:"expiresAt"`
	User                *User                          `json:"user"`
	SubscriptionWarning *security.SubscriptionAdvisory `json:"subscriptionWarning,omitempty"`
}

// CreateUserRequest holds admin input for a new tenant.
type CreateUserRequest struct {
	Username            string
	Password            string
	IsAdmin             bool
	SubscriptionEndDate *time.Time
}

// DeleteConfirmation is the literal an admin must echo before deleting username.
func DeleteConfirmation(username string) string {
	return "eliminar " + username
}

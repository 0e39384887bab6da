package auth

import (
	"context"
	"time"
)

// PasswordHasher hides the hashing primitive.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(hash, plaintext string) bool
}

// UserRepository defines user storage operations.
type UserRepository interface {
	// Create inserts the user and fills ID and CreatedAt.
	// A case-insensitive username collision fails with DUPLICATE_NAME.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves user by ID. Missing rows fail with NOT_FOUND.
	GetByID(ctx context.Context, userID int64) (*User, error)

	// FindByUsername matches case-insensitively. Missing rows fail with NOT_FOUND.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// List returns all users ordered by username.
	List(ctx context.Context) ([]User, error)

	// ExistsUsername checks for a case-insensitive collision.
	ExistsUsername(ctx context.Context, username string) (bool, error)

	SetBlocked(ctx context.Context, userID int64, blocked bool) error
	SetPassword(ctx context.Context, userID int64, hash string, mustChange bool) error
	SetSubscriptionEnd(ctx context.Context, userID int64, end *time.Time) error
	SetAdmin(ctx context.Context, userID int64, isAdmin bool) error

	// RecordFirstLogin sets first_login_at only when it is still null.
	RecordFirstLogin(ctx context.Context, userID int64, at time.Time) error

	// Delete removes the user and every row the user owns.
	Delete(ctx context.Context, userID int64) error
}

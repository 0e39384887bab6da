package auth

import (
	"context"
	"fmt"
	"time"

	"bizbooks/internal/core/apperror"
	"bizbooks/internal/core/security"
	"bizbooks/internal/core/tx"
	"bizbooks/internal/core/types"
	"bizbooks/pkg/logger"
)

// ServiceConfig holds auth service configuration.
type ServiceConfig struct {
	PasswordMinLength int
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{PasswordMinLength: 6}
}

// Service provides authentication, the session gate and user administration.
type Service struct {
	users     UserRepository
	txManager tx.Manager
	hasher    PasswordHasher
	tokens    *JWTService
	policy    *security.AccessPolicy
	config    ServiceConfig
}

// NewService creates a new auth service.
func NewService(
	users UserRepository,
	txManager tx.Manager,
	hasher PasswordHasher,
	tokens *JWTService,
	policy *security.AccessPolicy,
	config ServiceConfig,
) *Service {
	if config.PasswordMinLength <= 0 {
		config.PasswordMinLength = DefaultServiceConfig().PasswordMinLength
	}
	return &Service{
		users:     users,
		txManager: txManager,
		hasher:    hasher,
		tokens:    tokens,
		policy:    policy,
		config:    config,
	}
}

func invalidCredentials() *apperror.AppError {
	return apperror.NewUnauthorized("invalid username or password")
}

// Login authenticates a tenant and opens a session.
// Blocked and expired accounts are refused here; a forced password change is
// reflected in the session and enforced by Authorize on later calls.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	username = NormalizeUsername(username)
	if username == "" || password == "" {
		return nil, invalidCredentials()
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, invalidCredentials()
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		logger.Info(ctx, "login rejected", "username", username)
		return nil, invalidCredentials()
	}

	advisory, err := s.policy.CheckAuthentication(user.AccountState())
	if err != nil {
		logger.Info(ctx, "login refused", "username", user.Username, "reason", err.Error())
		return nil, err
	}

	if user.FirstLoginAt == nil {
		now := s.policy.CurrentTime().UTC()
		if err := s.users.RecordFirstLogin(ctx, user.ID, now); err != nil {
			return nil, fmt.Errorf("record first login: %w", err)
		}
		user.FirstLoginAt = &now
	}

	session, err := s.newSession(user)
	if err != nil {
		return nil, err
	}
	session.SubscriptionWarning = advisory

	if advisory != nil {
		logger.Warn(ctx, "subscription ending soon",
			"user_id", user.ID,
			"end_date", advisory.EndDate.Format(types.DateLayout),
			"days_left", advisory.DaysLeft,
		)
	}

	logger.Info(ctx, "user logged in",
		"user_id", user.ID,
		"is_admin", user.IsAdmin,
		"must_change_password", user.MustChangePassword,
	)

	return session, nil
}

func (s *Service) newSession(user *User) (*Session, error) {
	principal := user.Principal()
	token, expiresAt, err := s.tokens.GenerateAccessToken(principal)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &Session{
		Principal: principal,
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

// ValidateToken resolves a bearer token to the principal it was issued for.
func (s *Service) ValidateToken(token string) (security.Principal, error) {
	p, err := s.tokens.ValidateToken(token)
	if err != nil {
		return security.Principal{}, apperror.NewUnauthorized("invalid or expired token").WithCause(err)
	}
	return p, nil
}

// Authorize re-checks the live user row behind a token-based principal.
// The returned principal reflects the current admin and password-change flags.
func (s *Service) Authorize(ctx context.Context, p security.Principal) (security.Principal, error) {
	user, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return security.Principal{}, apperror.NewUnauthorized("account no longer exists")
		}
		return security.Principal{}, fmt.Errorf("load user: %w", err)
	}
	if _, err := s.policy.CheckAuthentication(user.AccountState()); err != nil {
		return security.Principal{}, err
	}
	return user.Principal(), nil
}

// ChangePassword verifies the current password, stores the new one and
// clears the forced-change flag. A fresh session is returned.
func (s *Service) ChangePassword(ctx context.Context, p security.Principal, current, next string) (*Session, error) {
	user, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !s.hasher.Verify(user.PasswordHash, current) {
		return nil, apperror.NewInvalidField("currentPassword", "current password is incorrect")
	}
	if err := s.validatePassword("newPassword", next); err != nil {
		return nil, err
	}
	if next == current {
		return nil, apperror.NewInvalidField("newPassword", "new password must differ from the current one")
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.SetPassword(ctx, user.ID, hash, false); err != nil {
		return nil, fmt.Errorf("set password: %w", err)
	}
	user.PasswordHash = hash
	user.MustChangePassword = false

	logger.Info(ctx, "password changed", "user_id", user.ID)
	return s.newSession(user)
}

func (s *Service) validatePassword(field, password string) error {
	if len(password) < s.config.PasswordMinLength {
		return apperror.NewInvalidField(field,
			fmt.Sprintf("password must be at least %d characters", s.config.PasswordMinLength))
	}
	return nil
}

// --- Administration ---

// ListUsers returns every account.
func (s *Service) ListUsers(ctx context.Context, admin security.Principal) ([]User, error) {
	if err := security.RequireAdmin(admin); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

// GetUser returns one account.
func (s *Service) GetUser(ctx context.Context, admin security.Principal, userID int64) (*User, error) {
	if err := security.RequireAdmin(admin); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

// CreateUser registers a tenant. New accounts must change their password on first login.
func (s *Service) CreateUser(ctx context.Context, admin security.Principal, req CreateUserRequest) (*User, error) {
	if err := security.RequireAdmin(admin); err != nil {
		return nil, err
	}

	username := NormalizeUsername(req.Username)
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := s.validatePassword("password", req.Password); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return nil, apperror.NewDuplicateName("user", username)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		Username:           username,
		PasswordHash:       hash,
		MustChangePassword: true,
		IsAdmin:            req.IsAdmin,
	}
	if req.SubscriptionEndDate != nil {
		end := types.TruncateDay(req.SubscriptionEndDate.UTC())
		user.SubscriptionEndDate = &end
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Info(ctx, "user created", "user_id", user.ID, "username", user.Username, "is_admin", user.IsAdmin)
	return user, nil
}

// loadTarget fetches the user an admin action applies to, refusing self-targeting when selfForbidden.
func (s *Service) loadTarget(ctx context.Context, admin security.Principal, userID int64, selfForbidden bool) (*User, error) {
	if err := security.RequireAdmin(admin); err != nil {
		return nil, err
	}
	if selfForbidden && admin.UserID == userID {
		return nil, apperror.NewAccessDenied("administrators cannot apply this action to their own account")
	}
	return s.users.GetByID(ctx, userID)
}

// SetBlocked blocks or unblocks a tenant.
func (s *Service) SetBlocked(ctx context.Context, admin security.Principal, userID int64, blocked bool) error {
	user, err := s.loadTarget(ctx, admin, userID, blocked)
	if err != nil {
		return err
	}
	if err := s.users.SetBlocked(ctx, user.ID, blocked); err != nil {
		return fmt.Errorf("set blocked: %w", err)
	}
	logger.Info(ctx, "user block state changed", "user_id", user.ID, "blocked", blocked)
	return nil
}

// ResetPassword sets a temporary password and forces a change on next login.
func (s *Service) ResetPassword(ctx context.Context, admin security.Principal, userID int64, password string) error {
	user, err := s.loadTarget(ctx, admin, userID, false)
	if err != nil {
		return err
	}
	if err := s.validatePassword("password", password); err != nil {
		return err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.SetPassword(ctx, user.ID, hash, true); err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	logger.Info(ctx, "user password reset", "user_id", user.ID)
	return nil
}

// ExtendSubscription moves the end date forward, or clears it when end is nil.
// The new date may not be earlier than today or than the current end date.
func (s *Service) ExtendSubscription(ctx context.Context, admin security.Principal, userID int64, end *time.Time) (*User, error) {
	user, err := s.loadTarget(ctx, admin, userID, false)
	if err != nil {
		return nil, err
	}

	if end != nil {
		d := types.TruncateDay(end.UTC())
		if d.Before(s.policy.Today()) {
			return nil, apperror.NewInvalidField("subscriptionEndDate", "subscription end date cannot be in the past")
		}
		if user.SubscriptionEndDate != nil && d.Before(types.TruncateDay(user.SubscriptionEndDate.UTC())) {
			return nil, apperror.NewInvalidField("subscriptionEndDate", "subscription can only be extended forward")
		}
		end = &d
	}

	if err := s.users.SetSubscriptionEnd(ctx, user.ID, end); err != nil {
		return nil, fmt.Errorf("set subscription end: %w", err)
	}
	user.SubscriptionEndDate = end

	logger.Info(ctx, "subscription extended", "user_id", user.ID, "end_date", formatOptionalDate(end))
	return user, nil
}

// RevokeSubscription expires a tenant immediately by setting the end date to yesterday.
func (s *Service) RevokeSubscription(ctx context.Context, admin security.Principal, userID int64) (*User, error) {
	user, err := s.loadTarget(ctx, admin, userID, true)
	if err != nil {
		return nil, err
	}
	yesterday := s.policy.Today().AddDate(0, 0, -1)
	if err := s.users.SetSubscriptionEnd(ctx, user.ID, &yesterday); err != nil {
		return nil, fmt.Errorf("set subscription end: %w", err)
	}
	user.SubscriptionEndDate = &yesterday

	logger.Info(ctx, "subscription revoked", "user_id", user.ID)
	return user, nil
}

// SetAdmin grants or removes the admin flag. Admins cannot demote themselves.
func (s *Service) SetAdmin(ctx context.Context, admin security.Principal, userID int64, isAdmin bool) error {
	user, err := s.loadTarget(ctx, admin, userID, !isAdmin)
	if err != nil {
		return err
	}
	if err := s.users.SetAdmin(ctx, user.ID, isAdmin); err != nil {
		return fmt.Errorf("set admin: %w", err)
	}
	logger.Info(ctx, "user admin flag changed", "user_id", user.ID, "is_admin", isAdmin)
	return nil
}

// DeleteUser removes a tenant and all owned rows in one transaction.
// confirmation must equal DeleteConfirmation(username) exactly.
func (s *Service) DeleteUser(ctx context.Context, admin security.Principal, userID int64, confirmation string) error {
	user, err := s.loadTarget(ctx, admin, userID, true)
	if err != nil {
		return err
	}
	if confirmation != DeleteConfirmation(user.Username) {
		return apperror.NewInvalidField("confirmation",
			fmt.Sprintf("type %q to confirm", DeleteConfirmation(user.Username)))
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.users.Delete(ctx, user.ID)
	})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	logger.Info(ctx, "user deleted", "user_id", user.ID, "username", user.Username)
	return nil
}

// EnsureAdmin creates the administrator or resets its password and unblocks it.
// Used by the seed command; no principal is involved.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) (*User, error) {
	username = NormalizeUsername(username)
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := s.validatePassword("password", password); err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var user *User
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.users.FindByUsername(ctx, username)
		if err != nil && !apperror.IsNotFound(err) {
			return err
		}
		if existing == nil {
			user = &User{Username: username, PasswordHash: hash, IsAdmin: true}
			return s.users.Create(ctx, user)
		}
		user = existing
		if err := s.users.SetPassword(ctx, user.ID, hash, false); err != nil {
			return err
		}
		if err := s.users.SetAdmin(ctx, user.ID, true); err != nil {
			return err
		}
		if err := s.users.SetBlocked(ctx, user.ID, false); err != nil {
			return err
		}
		user.PasswordHash, user.IsAdmin, user.IsBlocked, user.MustChangePassword = hash, true, false, false
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ensure admin: %w", err)
	}

	logger.Info(ctx, "administrator ensured", "user_id", user.ID, "username", user.Username)
	return user, nil
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return "none"
	}
	return t.Format(types.DateLayout)
}

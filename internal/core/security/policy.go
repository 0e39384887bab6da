package security

import (
	"time"

	"bizbooks/internal/core/apperror"
	"bizbooks/internal/core/types"
)

// DefaultWarningDays is how close to expiry a subscription triggers the advisory.
const DefaultWarningDays = 5

// AccountState is the slice of a user row the access gate looks at.
type AccountState struct {
	Username            string
	IsAdmin             bool
	IsBlocked           bool
	MustChangePassword  bool
	SubscriptionEndDate *time.Time
}

// SubscriptionAdvisory tells a tenant their subscription ends soon.
type SubscriptionAdvisory struct {
	EndDate  time.Time `json:"end_date"`
	DaysLeft int       `json:"days_left"`
}

// AccessPolicy decides whether an account may open or keep a session.
type AccessPolicy struct {
	WarningDays int
	Now         func() time.Time
}

// NewAccessPolicy creates a policy; warningDays <= 0 uses the default.
func NewAccessPolicy(warningDays int) *AccessPolicy {
	if warningDays <= 0 {
		warningDays = DefaultWarningDays
	}
	return &AccessPolicy{WarningDays: warningDays, Now: time.Now}
}

// CurrentTime returns the policy clock.
func (p *AccessPolicy) CurrentTime() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *AccessPolicy) today() time.Time {
	t := p.CurrentTime().UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the policy's notion of the current calendar date.
func (p *AccessPolicy) Today() time.Time { return p.today() }

// CheckAuthentication applies the blocked and expiry gates.
// A non-nil advisory is returned when the subscription ends within WarningDays.
// Admins are never subject to expiry.
func (p *AccessPolicy) CheckAuthentication(acc AccountState) (*SubscriptionAdvisory, error) {
	if acc.IsBlocked {
		return nil, apperror.NewAccountBlocked(acc.Username)
	}
	if acc.IsAdmin || acc.SubscriptionEndDate == nil {
		return nil, nil
	}

	today := p.today()
	end := types.TruncateDay(acc.SubscriptionEndDate.UTC())
	if end.Before(today) {
		return nil, apperror.NewSubscriptionExpired(end.Format(types.DateLayout))
	}

	daysLeft := int(end.Sub(today).Hours() / 24)
	if daysLeft <= p.WarningDays {
		return &SubscriptionAdvisory{EndDate: end, DaysLeft: daysLeft}, nil
	}
	return nil, nil
}

// CheckSession is CheckAuthentication plus the forced password change gate.
func (p *AccessPolicy) CheckSession(acc AccountState) error {
	if _, err := p.CheckAuthentication(acc); err != nil {
		return err
	}
	if acc.MustChangePassword {
		return apperror.NewPasswordChangeRequired()
	}
	return nil
}

// RequireAdmin refuses non-admin principals.
func RequireAdmin(p Principal) error {
	if !p.IsAdmin {
		return apperror.NewAccessDenied("administrator privileges required")
	}
	return nil
}

// RequireActive refuses principals that still owe a password change.
func RequireActive(p Principal) error {
	if p.UserID <= 0 {
		return apperror.NewUnauthorized("authentication required")
	}
	if p.MustChangePassword {
		return apperror.NewPasswordChangeRequired()
	}
	return nil
}

// RequireOwner refuses access to rows owned by another tenant.
func RequireOwner(p Principal, ownerID int64) error {
	if p.UserID != ownerID {
		return apperror.NewAccessDenied("record belongs to another account")
	}
	return nil
}

package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizbooks/internal/core/apperror"
)

func fixedPolicy(today time.Time) *AccessPolicy {
	p := NewAccessPolicy(0)
	p.Now = func() time.Time { return today.Add(15 * time.Hour) }
	return p
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestCheckAuthentication(t *testing.T) {
	today := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	p := fixedPolicy(today)

	tests := []struct {
		name     string
		acc      AccountState
		wantCode string
		wantDays int
		advisory bool
	}{
		{name: "no expiry", acc: AccountState{Username: "u"}},
		{name: "blocked", acc: AccountState{Username: "u", IsBlocked: true}, wantCode: apperror.CodeAccountBlocked},
		{name: "expired yesterday", acc: AccountState{SubscriptionEndDate: date(2024, 6, 9)}, wantCode: apperror.CodeSubscriptionExpired},
		{name: "admin ignores expiry", acc: AccountState{IsAdmin: true, SubscriptionEndDate: date(2020, 1, 1)}},
		{name: "ends today", acc: AccountState{SubscriptionEndDate: date(2024, 6, 10)}, advisory: true, wantDays: 0},
		{name: "ends tomorrow", acc: AccountState{SubscriptionEndDate: date(2024, 6, 11)}, advisory: true, wantDays: 1},
		{name: "five days", acc: AccountState{SubscriptionEndDate: date(2024, 6, 15)}, advisory: true, wantDays: 5},
		{name: "six days", acc: AccountState{SubscriptionEndDate: date(2024, 6, 16)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adv, err := p.CheckAuthentication(tt.acc)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, apperror.HasCode(err, tt.wantCode))
				return
			}
			require.NoError(t, err)
			if !tt.advisory {
				assert.Nil(t, adv)
				return
			}
			require.NotNil(t, adv)
			assert.Equal(t, tt.wantDays, adv.DaysLeft)
		})
	}
}

func TestCheckSession_ForcedPasswordChange(t *testing.T) {
	p := fixedPolicy(time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	err := p.CheckSession(AccountState{MustChangePassword: true})
	assert.True(t, apperror.HasCode(err, apperror.CodePasswordChangeRequired))
}

func TestPrincipalGuards(t *testing.T) {
	assert.True(t, apperror.HasCode(RequireAdmin(Principal{UserID: 1}), apperror.CodeAccessDenied))
	assert.NoError(t, RequireAdmin(Principal{UserID: 1, IsAdmin: true}))

	assert.True(t, apperror.HasCode(RequireActive(Principal{}), apperror.CodeUnauthorized))
	assert.True(t, apperror.HasCode(RequireActive(Principal{UserID: 2, MustChangePassword: true}), apperror.CodePasswordChangeRequired))
	assert.NoError(t, RequireActive(Principal{UserID: 2}))

	assert.True(t, apperror.HasCode(RequireOwner(Principal{UserID: 2}, 3), apperror.CodeAccessDenied))
	assert.NoError(t, RequireOwner(Principal{UserID: 3}, 3))
}

package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserProfile(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice@example.com")
	f.fund(alice.ID, "300")
	f.invest(alice.ID, "100")

	profile, err := f.svc.Users.Profile(f.ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, profile.User.ID)
	assertDecimal(t, "200", profile.Wallet.Balance)
	assertDecimal(t, "300", profile.Wallet.TotalDeposited)
	assert.Equal(t, int64(1), profile.InvestmentCount)
	assert.False(t, profile.IsAdmin)
	assert.False(t, profile.Referred)

	adminProfile, err := f.svc.Users.Profile(f.ctx, f.admin.ID)
	require.NoError(t, err)
	assert.True(t, adminProfile.IsAdmin)

	_, err = f.svc.Users.Profile(f.ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

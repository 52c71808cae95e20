package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yield-ledger/internal/models"
)

func TestIsAdmin(t *testing.T) {
	f := newFixture(t)
	u := f.user("user@example.com")

	ok, err := f.svc.Admin.IsAdmin(f.ctx, f.admin.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.Admin.IsAdmin(f.ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAdjustInvestmentConvertsPercentageToAmount(t *testing.T) {
	f := newFixture(t)
	u := f.user("user@example.com")
	f.fund(u.ID, "500")
	inv := f.invest(u.ID, "500")
	f.clock.Advance(2 * 24 * time.Hour)

	adjusted, err := f.svc.Admin.AdjustInvestment(f.ctx, f.admin.ID, inv.ID, true, dec("3"))
	require.NoError(t, err)
	assert.True(t, adjusted.AdminAdjustment.Enabled)
	assertDecimal(t, "3", adjusted.AdminAdjustment.Percentage)
	assert.True(t, adjusted.ManualAdjustment.IsActive)
	assertDecimal(t, "15", adjusted.ManualAdjustment.Amount)
	// 10 accrued plus the 15 offset
	assertDecimal(t, "25", adjusted.TotalEarnings)
	assertDecimal(t, "525", adjusted.CurrentValue)

	got, err := f.svc.Investments.Get(f.ctx, u.ID, inv.ID)
	require.NoError(t, err)
	assertDecimal(t, "525", got.CurrentValue)

	disabled, err := f.svc.Admin.AdjustInvestment(f.ctx, f.admin.ID, inv.ID, false, dec("0"))
	require.NoError(t, err)
	assert.False(t, disabled.ManualAdjustment.IsActive)
	assertDecimal(t, "510", disabled.CurrentValue)

	logs, err := f.repo.ListAdminLogs(f.ctx, 10)
	require.NoError(t, err)
	// two adjustments and the funding deposit
	require.Len(t, logs, 3)
	assert.Equal(t, "adjust_investment", logs[0].Action)
	require.NotNil(t, logs[0].ResourceID)
	assert.Equal(t, inv.ID, *logs[0].ResourceID)
}

func TestDisablingPercentageKeepsManualAdjustment(t *testing.T) {
	f := newFixture(t)
	u := f.user("user@example.com")
	f.fund(u.ID, "500")
	inv := f.invest(u.ID, "500")

	_, err := f.svc.Admin.AdjustInvestment(f.ctx, f.admin.ID, inv.ID, true, dec("2"))
	require.NoError(t, err)
	manual, err := f.svc.Admin.ManualAdjust(f.ctx, f.admin.ID, inv.ID, dec("-7"), "fee correction", true)
	require.NoError(t, err)
	assert.False(t, manual.AdminAdjustment.Enabled)

	disabled, err := f.svc.Admin.AdjustInvestment(f.ctx, f.admin.ID, inv.ID, false, dec("0"))
	require.NoError(t, err)
	assert.True(t, disabled.ManualAdjustment.IsActive)
	assertDecimal(t, "-7", disabled.ManualAdjustment.Amount)
	assert.Equal(t, "fee correction", disabled.ManualAdjustment.Reason)
	assertDecimal(t, "493", disabled.CurrentValue)

	stored, err := f.repo.GetInvestmentByID(f.ctx, inv.ID)
	require.NoError(t, err)
	assertDecimal(t, "-7", stored.ManualAdjustment.Amount)
	assert.True(t, stored.ManualAdjustment.IsActive)
}

func TestManualAdjustFlowsIntoMaturityPayout(t *testing.T) {
	f := newFixture(t)
	u := f.user("user@example.com")
	f.fund(u.ID, "500")
	inv := f.invest(u.ID, "500")

	_, err := f.svc.Admin.ManualAdjust(f.ctx, f.admin.ID, inv.ID, dec("-5"), "fee correction", true)
	require.NoError(t, err)

	f.clock.Advance(7 * 24 * time.Hour)
	got, err := f.svc.Investments.Get(f.ctx, u.ID, inv.ID)
	require.NoError(t, err)
	assert.True(t, got.MaturityProcessed)
	assertDecimal(t, "530", got.CurrentValue)
	assertDecimal(t, "530", f.wallet(u.ID).Balance)

	_, err = f.svc.Admin.ManualAdjust(f.ctx, f.admin.ID, inv.ID, dec("100"), "late", true)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
	_, err = f.svc.Admin.AdjustInvestment(f.ctx, f.admin.ID, inv.ID, true, dec("1"))
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestAdjustmentsRefusedOnSoldOrMissing(t *testing.T) {
	f := newFixture(t)
	u := f.user("user@example.com")
	f.fund(u.ID, "500")
	inv := f.invest(u.ID, "500")
	_, err := f.svc.Investments.Sell(f.ctx, u.ID, inv.ID)
	require.NoError(t, err)

	_, err = f.svc.Admin.ManualAdjust(f.ctx, f.admin.ID, inv.ID, dec("1"), "", true)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)

	_, err = f.svc.Admin.ManualAdjust(f.ctx, f.admin.ID, 9999, dec("1"), "", true)
	assert.ErrorIs(t, err, ErrNotFound)

	other := f.invest(u.ID, "100")
	_, err = f.svc.Admin.ManualAdjust(f.ctx, f.admin.ID, other.ID, dec("-100.01"), "", true)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestPlatformStats(t *testing.T) {
	f := newFixture(t)
	u := f.user("user@example.com")
	f.fund(u.ID, "1000")
	_, err := f.svc.Deposits.Request(f.ctx, u.ID, dec("40"), "paypal")
	require.NoError(t, err)
	f.invest(u.ID, "500")
	f.invest(u.ID, "100")
	_, err = f.svc.Withdrawals.Create(f.ctx, u.ID, dec("50"), testPayout)
	require.NoError(t, err)

	f.clock.Advance(7 * 24 * time.Hour)
	_, err = f.svc.Investments.List(f.ctx, u.ID)
	require.NoError(t, err)

	stats, err := f.svc.Admin.PlatformStats(f.ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalUsers)
	assert.EqualValues(t, 0, stats.ActiveInvestments)
	assert.EqualValues(t, 1, stats.PendingWithdrawals)
	assert.EqualValues(t, 1, stats.PendingDeposits)
	assertDecimal(t, "1000", stats.TotalDeposited)
	assertDecimal(t, "0", stats.TotalWithdrawn)
	assertDecimal(t, "600", stats.TotalInvested)
	assertDecimal(t, "642", stats.TotalMaturityPayout)
}

func TestLogAdminAction(t *testing.T) {
	f := newFixture(t)
	id := uint(7)
	require.NoError(t, f.svc.Admin.LogAdminAction(f.ctx, f.admin.ID, "process_withdrawal", "withdrawal_request", &id, models.JSONB{"status": "approved"}))

	logs, err := f.repo.ListAdminLogs(f.ctx, 5)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "approved", logs[0].Details["status"])
}

package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"yield-ledger/internal/models"
)

func newAccrualInvestment(start time.Time) *models.Investment {
	return &models.Investment{
		ID:                    1,
		Amount:                dec("500"),
		DailyReturnPercentage: dec("1.0"),
		Duration:              7,
		StartDate:             start,
		EndDate:               start.Add(7 * day),
		Status:                models.InvestmentStatusActive,
		CurrentValue:          dec("500"),
	}
}

func TestElapsedDays(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"before start", start.Add(-time.Hour), 0},
		{"at start", start, 0},
		{"just short of a day", start.Add(day - time.Second), 0},
		{"one day", start.Add(day), 1},
		{"three and a half days", start.Add(3*day + 12*time.Hour), 3},
		{"exactly the term", start.Add(7 * day), 7},
		{"past the term", start.Add(30 * day), 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ElapsedDays(start, tt.now, 7))
		})
	}
}

func TestComputeAccrualAtMaturity(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	inv := newAccrualInvestment(start)

	a := ComputeAccrual(inv, start.Add(7*day))

	assert.Equal(t, 7, a.ElapsedDays)
	assert.True(t, a.Due)
	assertDecimal(t, "35", a.CalculatedEarnings)
	assertDecimal(t, "35", a.TotalEarnings)
	assertDecimal(t, "535", a.CurrentValue)
	assertDecimal(t, "35", a.ProfitLoss)
	assertDecimal(t, "7", a.ProfitLossPercentage)
}

func TestComputeAccrualAddsManualAdjustment(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	inv := newAccrualInvestment(start)
	inv.ManualAdjustment = models.ManualAdjustment{Amount: dec("-12.5"), IsActive: true}

	a := ComputeAccrual(inv, start.Add(2*day))
	assertDecimal(t, "10", a.CalculatedEarnings)
	assertDecimal(t, "-2.5", a.TotalEarnings)
	assertDecimal(t, "497.5", a.CurrentValue)
	assertDecimal(t, "-0.5", a.ProfitLossPercentage)
	assert.False(t, a.Due)

	inv.ManualAdjustment.IsActive = false
	a = ComputeAccrual(inv, start.Add(2*day))
	assertDecimal(t, "10", a.TotalEarnings)
}

func TestApplyAccrualIsIdempotent(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	inv := newAccrualInvestment(start)
	now := start.Add(3 * day)

	assert.True(t, ApplyAccrual(inv, now))
	first := *inv

	assert.False(t, ApplyAccrual(inv, now))
	assert.True(t, first.CurrentValue.Equal(inv.CurrentValue))
	assert.True(t, first.ProfitLoss.Equal(inv.ProfitLoss))
	assert.Equal(t, models.InvestmentStatusActive, inv.Status)
	assertDecimal(t, "515", inv.CurrentValue)
}

func TestApplyAccrualCompletesOnce(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	inv := newAccrualInvestment(start)

	assert.True(t, ApplyAccrual(inv, start.Add(7*day)))
	assert.Equal(t, models.InvestmentStatusCompleted, inv.Status)

	// Later evaluations stay capped at the term.
	assert.False(t, ApplyAccrual(inv, start.Add(40*day)))
	assert.Equal(t, models.InvestmentStatusCompleted, inv.Status)
	assertDecimal(t, "535", inv.CurrentValue)
}

func TestApplyAccrualLeavesSoldFrozen(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	inv := newAccrualInvestment(start)
	inv.Status = models.InvestmentStatusSold
	inv.CurrentValue = dec("510")
	inv.TotalEarnings = dec("10")

	assert.False(t, ApplyAccrual(inv, start.Add(7*day)))
	assert.Equal(t, models.InvestmentStatusSold, inv.Status)
	assertDecimal(t, "510", inv.CurrentValue)
}

package services

import (
	"time"

	"github.com/shopspring/decimal"

	"yield-ledger/internal/models"
)

const day = 24 * time.Hour

// moneyPlaces matches the decimal(20,8) columns.
const moneyPlaces = 8

var hundred = decimal.NewFromInt(100)

// Accrual is the outcome of evaluating an investment at a point in time.
type Accrual struct {
	ElapsedDays          int
	CalculatedEarnings   decimal.Decimal
	TotalEarnings        decimal.Decimal
	CurrentValue         decimal.Decimal
	ProfitLoss           decimal.Decimal
	ProfitLossPercentage decimal.Decimal
	Due                  bool
}

// ElapsedDays counts whole days from start to now, clamped to [0, duration].
func ElapsedDays(start, now time.Time, duration int) int {
	if !now.After(start) {
		return 0
	}
	days := int(now.Sub(start) / day)
	if days > duration {
		return duration
	}
	return days
}

// ComputeAccrual evaluates the time-based yield of inv at now. An active
// manual adjustment is added on top of the calculated earnings.
func ComputeAccrual(inv *models.Investment, now time.Time) Accrual {
	elapsed := ElapsedDays(inv.StartDate, now, inv.Duration)

	calculated := inv.Amount.
		Mul(inv.DailyReturnPercentage).
		Mul(decimal.NewFromInt(int64(elapsed))).
		Div(hundred).
		Round(moneyPlaces)

	total := calculated
	if inv.ManualAdjustment.IsActive {
		total = total.Add(inv.ManualAdjustment.Amount)
	}

	pct := decimal.Zero
	if inv.Amount.IsPositive() {
		pct = total.Div(inv.Amount).Mul(hundred).Round(moneyPlaces)
	}

	return Accrual{
		ElapsedDays:          elapsed,
		CalculatedEarnings:   calculated,
		TotalEarnings:        total,
		CurrentValue:         inv.Amount.Add(total),
		ProfitLoss:           total,
		ProfitLossPercentage: pct,
		Due:                  elapsed >= inv.Duration,
	}
}

// ApplyAccrual recomputes the displayed figures of inv in place and moves an
// active investment whose term has run to completed. Sold and cancelled
// investments are frozen. It reports whether anything changed, so repeated
// evaluation at the same instant is a no-op.
func ApplyAccrual(inv *models.Investment, now time.Time) bool {
	if inv.Status != models.InvestmentStatusActive && inv.Status != models.InvestmentStatusCompleted {
		return false
	}

	a := ComputeAccrual(inv, now)
	changed := !inv.TotalEarnings.Equal(a.TotalEarnings) ||
		!inv.CurrentValue.Equal(a.CurrentValue) ||
		!inv.ProfitLoss.Equal(a.ProfitLoss) ||
		!inv.ProfitLossPercentage.Equal(a.ProfitLossPercentage)

	inv.TotalEarnings = a.TotalEarnings
	inv.CurrentValue = a.CurrentValue
	inv.ProfitLoss = a.ProfitLoss
	inv.ProfitLossPercentage = a.ProfitLossPercentage

	if a.Due && inv.Status == models.InvestmentStatusActive {
		inv.Status = models.InvestmentStatusCompleted
		changed = true
	}
	return changed
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"yield-ledger/internal/models"
)

// CreateInvestment persists a new investment.
func (r *Repository) CreateInvestment(ctx context.Context, inv *models.Investment) error {
	if err := r.db.WithContext(ctx).Create(inv).Error; err != nil {
		return fmt.Errorf("failed to create investment: %w", err)
	}
	return nil
}

// GetInvestmentByID returns the investment or ErrNotFound.
func (r *Repository) GetInvestmentByID(ctx context.Context, id uint) (*models.Investment, error) {
	var inv models.Investment
	if err := r.db.WithContext(ctx).First(&inv, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &inv, nil
}

// ListUserInvestments returns the user's investments newest first.
func (r *Repository) ListUserInvestments(ctx context.Context, userID uint) ([]models.Investment, error) {
	var invs []models.Investment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&invs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list investments: %w", err)
	}
	return invs, nil
}

// CountUserInvestments counts every investment the user ever created.
func (r *Repository) CountUserInvestments(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Investment{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count investments: %w", err)
	}
	return count, nil
}

// SaveAccrual writes the accrual figures and status of inv, provided the stored
// status still equals expected. It returns false when the row moved on.
func (r *Repository) SaveAccrual(
	ctx context.Context,
	inv *models.Investment,
	expected models.InvestmentStatus,
	at time.Time,
) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Investment{}).
		Where("id = ? AND status = ?", inv.ID, expected).
		Updates(map[string]interface{}{
			"status":                 inv.Status,
			"current_value":          inv.CurrentValue,
			"profit_loss":            inv.ProfitLoss,
			"profit_loss_percentage": inv.ProfitLossPercentage,
			"total_earnings":         inv.TotalEarnings,
			"updated_at":             at,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to save accrual: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// ClaimMaturity is the exactly-once guard for maturity payouts: it flips
// maturity_processed only on a completed investment that has not been claimed.
func (r *Repository) ClaimMaturity(ctx context.Context, id uint, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Investment{}).
		Where("id = ? AND status = ? AND maturity_processed = ?", id, models.InvestmentStatusCompleted, false).
		Updates(map[string]interface{}{
			"maturity_processed": true,
			"matured_at":         at,
			"updated_at":         at,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to claim maturity: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// MarkSold moves an active investment to sold with its final figures.
func (r *Repository) MarkSold(ctx context.Context, inv *models.Investment, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Investment{}).
		Where("id = ? AND status = ?", inv.ID, models.InvestmentStatusActive).
		Updates(map[string]interface{}{
			"status":                 models.InvestmentStatusSold,
			"sold_at":                at,
			"updated_at":             at,
			"current_value":          inv.CurrentValue,
			"profit_loss":            inv.ProfitLoss,
			"profit_loss_percentage": inv.ProfitLossPercentage,
			"total_earnings":         inv.TotalEarnings,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark investment sold: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// SaveAdjustments writes both override records of an investment.
func (r *Repository) SaveAdjustments(ctx context.Context, inv *models.Investment, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.Investment{}).
		Where("id = ?", inv.ID).
		Updates(map[string]interface{}{
			"admin_adjustment_enabled":    inv.AdminAdjustment.Enabled,
			"admin_adjustment_percentage": inv.AdminAdjustment.Percentage,
			"manual_adjustment_amount":    inv.ManualAdjustment.Amount,
			"manual_adjustment_reason":    inv.ManualAdjustment.Reason,
			"manual_adjustment_active":    inv.ManualAdjustment.IsActive,
			"updated_at":                  at,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to save adjustments: %w", err)
	}
	return nil
}

// ListMaturityCandidates returns investments that are due or completed but not
// yet paid out, oldest end date first.
func (r *Repository) ListMaturityCandidates(ctx context.Context, now time.Time, limit int) ([]models.Investment, error) {
	var invs []models.Investment
	err := r.db.WithContext(ctx).
		Where("maturity_processed = ?", false).
		Where("((status = ? AND end_date <= ?) OR status = ?)",
			models.InvestmentStatusActive, now, models.InvestmentStatusCompleted).
		Order("end_date ASC").
		Limit(limit).
		Find(&invs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list maturity candidates: %w", err)
	}
	return invs, nil
}

// ListClaimedWithoutJournal returns claimed investments lacking a MATURE:<id> entry.
func (r *Repository) ListClaimedWithoutJournal(ctx context.Context) ([]models.Investment, error) {
	var invs []models.Investment
	err := r.db.WithContext(ctx).
		Where("maturity_processed = ?", true).
		Where("NOT EXISTS (SELECT 1 FROM transactions t WHERE t.reference = 'MATURE:' || CAST(investments.id AS TEXT))").
		Order("matured_at ASC").
		Find(&invs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list unpaid maturities: %w", err)
	}
	return invs, nil
}

// CountInvestmentsByStatus counts investments across all users.
func (r *Repository) CountInvestmentsByStatus(ctx context.Context, status models.InvestmentStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Investment{}).Where("status = ?", status).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count investments: %w", err)
	}
	return count, nil
}

// SumInvestedPrincipal adds up the principal of every investment.
func (r *Repository) SumInvestedPrincipal(ctx context.Context) (decimal.Decimal, error) {
	total, err := sumAmounts(r.db.WithContext(ctx).Model(&models.Investment{}))
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum investments: %w", err)
	}
	return total, nil
}
